package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clinic-queue-manager/internal/delivery/dto"
	"clinic-queue-manager/internal/usecase"
	"clinic-queue-manager/pkg/response"
	"clinic-queue-manager/pkg/validator"

	"github.com/gorilla/mux"
)

// stubQueueUsecase returns the canned response or error configured per
// method.
type stubQueueUsecase struct {
	queue   *dto.QueueResponse
	queues  *dto.QueueListResponse
	board   *dto.QueueBoardResponse
	err     error
	lastReq any
}

func (s *stubQueueUsecase) CreateQueue(_ context.Context, req *dto.CreateQueueRequest) (*dto.QueueResponse, error) {
	s.lastReq = req
	return s.queue, s.err
}

func (s *stubQueueUsecase) GetQueue(_ context.Context, _ int64) (*dto.QueueResponse, error) {
	return s.queue, s.err
}

func (s *stubQueueUsecase) GetQueueBoard(_ context.Context, _ int64) (*dto.QueueBoardResponse, error) {
	return s.board, s.err
}

func (s *stubQueueUsecase) ListQueues(_ context.Context, req *dto.ListQueuesRequest) (*dto.QueueListResponse, error) {
	s.lastReq = req
	return s.queues, s.err
}

func (s *stubQueueUsecase) UpdateQueue(_ context.Context, _ int64, req *dto.UpdateQueueRequest) (*dto.QueueResponse, error) {
	s.lastReq = req
	return s.queue, s.err
}

func (s *stubQueueUsecase) DeleteQueue(_ context.Context, _ int64) error {
	return s.err
}

type stubEventUsecase struct {
	events *dto.QueueEventListResponse
	err    error
}

func (s *stubEventUsecase) ListQueueEvents(_ context.Context, _ int64, _ int) (*dto.QueueEventListResponse, error) {
	return s.events, s.err
}

func newQueueTestRouter(queues *stubQueueUsecase, events *stubEventUsecase) *mux.Router {
	h := NewQueueHandler(queues, events, validator.NewValidator())
	router := mux.NewRouter()
	router.HandleFunc("/queues", h.CreateQueue).Methods(http.MethodPost)
	router.HandleFunc("/queues", h.ListQueues).Methods(http.MethodGet)
	router.HandleFunc("/queues/{id}", h.GetQueue).Methods(http.MethodGet)
	router.HandleFunc("/queues/{id}/board", h.GetQueueBoard).Methods(http.MethodGet)
	router.HandleFunc("/queues/{id}", h.UpdateQueue).Methods(http.MethodPatch)
	router.HandleFunc("/queues/{id}/events", h.ListQueueEvents).Methods(http.MethodGet)
	return router
}

func doRequest(t *testing.T, router *mux.Router, method, target, body string) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope response.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, envelope
}

func TestCreateQueueSuccess(t *testing.T) {
	stub := &stubQueueUsecase{queue: &dto.QueueResponse{ID: 7, ClinicID: 3, Status: "active"}}
	router := newQueueTestRouter(stub, &stubEventUsecase{})

	rec, envelope := doRequest(t, router, http.MethodPost, "/queues", `{"clinic_id":3}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d, want 201", rec.Code)
	}
	if !envelope.Success {
		t.Fatalf("success=false: %+v", envelope)
	}

	req, ok := stub.lastReq.(*dto.CreateQueueRequest)
	if !ok || req.ClinicID != 3 {
		t.Fatalf("usecase received %+v", stub.lastReq)
	}
}

func TestCreateQueueValidation(t *testing.T) {
	stub := &stubQueueUsecase{}
	router := newQueueTestRouter(stub, &stubEventUsecase{})

	rec, envelope := doRequest(t, router, http.MethodPost, "/queues", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rec.Code)
	}
	if envelope.Success {
		t.Fatal("expected failure envelope")
	}
	if stub.lastReq != nil {
		t.Fatal("usecase should not be reached on validation failure")
	}
}

func TestCreateQueueConflict(t *testing.T) {
	stub := &stubQueueUsecase{err: usecase.ErrClinicHasOpenQueue}
	router := newQueueTestRouter(stub, &stubEventUsecase{})

	rec, _ := doRequest(t, router, http.MethodPost, "/queues", `{"clinic_id":3}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status=%d, want 409", rec.Code)
	}
}

func TestGetQueueErrors(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		err      error
		wantCode int
	}{
		{"not found", "/queues/42", usecase.ErrQueueNotFound, http.StatusNotFound},
		{"bad id", "/queues/abc", nil, http.StatusBadRequest},
		{"zero id", "/queues/0", nil, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := newQueueTestRouter(&stubQueueUsecase{err: tc.err}, &stubEventUsecase{})
			rec, _ := doRequest(t, router, http.MethodGet, tc.target, "")
			if rec.Code != tc.wantCode {
				t.Fatalf("status=%d, want %d", rec.Code, tc.wantCode)
			}
		})
	}
}

func TestGetQueueBoard(t *testing.T) {
	changed := time.Date(2026, 3, 9, 10, 30, 0, 0, time.UTC)
	stub := &stubQueueUsecase{board: &dto.QueueBoardResponse{QueueID: 7, Status: "active", LastChange: changed}}
	router := newQueueTestRouter(stub, &stubEventUsecase{})

	rec, envelope := doRequest(t, router, http.MethodGet, "/queues/7/board", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rec.Code)
	}
	if !envelope.Success {
		t.Fatalf("success=false: %+v", envelope)
	}

	router = newQueueTestRouter(&stubQueueUsecase{err: usecase.ErrQueueNotFound}, &stubEventUsecase{})
	rec, _ = doRequest(t, router, http.MethodGet, "/queues/42/board", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want 404", rec.Code)
	}
}

func TestUpdateQueueErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
	}{
		{"stale", `{"status":"paused"}`, usecase.ErrStaleQueueUpdate, http.StatusConflict},
		{"illegal transition", `{"status":"active"}`, usecase.ErrInvalidQueueTransition, http.StatusConflict},
		{"unknown status rejected by validator", `{"status":"archived"}`, nil, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubQueueUsecase{err: tc.err}
			router := newQueueTestRouter(stub, &stubEventUsecase{})
			rec, _ := doRequest(t, router, http.MethodPatch, "/queues/7", tc.body)
			if rec.Code != tc.wantCode {
				t.Fatalf("status=%d, want %d", rec.Code, tc.wantCode)
			}
		})
	}
}

func TestListQueuesQueryParsing(t *testing.T) {
	stub := &stubQueueUsecase{queues: &dto.QueueListResponse{Page: 1, Size: 20}}
	router := newQueueTestRouter(stub, &stubEventUsecase{})

	rec, _ := doRequest(t, router, http.MethodGet, "/queues?clinic_id=5&status=active,paused&page=2&size=10&include_count=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rec.Code)
	}

	req, ok := stub.lastReq.(*dto.ListQueuesRequest)
	if !ok {
		t.Fatalf("usecase received %+v", stub.lastReq)
	}
	if req.ClinicID == nil || *req.ClinicID != 5 {
		t.Fatalf("clinic_id=%v, want 5", req.ClinicID)
	}
	if len(req.Statuses) != 2 || req.Statuses[0] != "active" || req.Statuses[1] != "paused" {
		t.Fatalf("statuses=%v", req.Statuses)
	}
	if req.Page != 2 || req.Size != 10 || !req.IncludeCount {
		t.Fatalf("page=%d size=%d include_count=%v", req.Page, req.Size, req.IncludeCount)
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/queues?clinic_id=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad clinic_id: status=%d, want 400", rec.Code)
	}
}

func TestListQueueEventsLimit(t *testing.T) {
	events := &stubEventUsecase{events: &dto.QueueEventListResponse{}}
	router := newQueueTestRouter(&stubQueueUsecase{}, events)

	rec, _ := doRequest(t, router, http.MethodGet, "/queues/7/events?limit=-1", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative limit: status=%d, want 400", rec.Code)
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/queues/7/events?limit=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rec.Code)
	}
}
