package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"clinic-queue-manager/internal/delivery/dto"
	"clinic-queue-manager/internal/usecase"
	"clinic-queue-manager/pkg/response"
	"clinic-queue-manager/pkg/validator"

	"github.com/gorilla/mux"
)

type QueueHandler struct {
	queueUsecase usecase.QueueUsecase
	eventUsecase usecase.QueueEventUsecase
	validator    *validator.CustomValidator
}

func NewQueueHandler(queueUsecase usecase.QueueUsecase, eventUsecase usecase.QueueEventUsecase, validator *validator.CustomValidator) *QueueHandler {
	return &QueueHandler{
		queueUsecase: queueUsecase,
		eventUsecase: eventUsecase,
		validator:    validator,
	}
}

func (h *QueueHandler) CreateQueue(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateQueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	queue, err := h.queueUsecase.CreateQueue(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrClinicNotFound:
			response.NotFound(w, "Clinic not found")
		case usecase.ErrClinicHasOpenQueue:
			response.Conflict(w, "Clinic already has an open queue")
		default:
			response.InternalServerError(w, "Failed to create queue")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Queue created successfully", queue)
}

func (h *QueueHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	queueID, ok := parseIDVar(w, r, "id")
	if !ok {
		return
	}

	queue, err := h.queueUsecase.GetQueue(r.Context(), queueID)
	if err != nil {
		switch err {
		case usecase.ErrQueueNotFound:
			response.NotFound(w, "Queue not found")
		default:
			response.InternalServerError(w, "Failed to get queue")
		}
		return
	}

	response.Success(w, http.StatusOK, "Queue retrieved successfully", queue)
}

func (h *QueueHandler) GetQueueBoard(w http.ResponseWriter, r *http.Request) {
	queueID, ok := parseIDVar(w, r, "id")
	if !ok {
		return
	}

	board, err := h.queueUsecase.GetQueueBoard(r.Context(), queueID)
	if err != nil {
		switch err {
		case usecase.ErrQueueNotFound:
			response.NotFound(w, "Queue not found")
		default:
			response.InternalServerError(w, "Failed to get queue board")
		}
		return
	}

	response.Success(w, http.StatusOK, "Queue board retrieved successfully", board)
}

func (h *QueueHandler) ListQueues(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := dto.ListQueuesRequest{
		SortBy:       query.Get("sort_by"),
		SortDir:      query.Get("sort_dir"),
		IncludeCount: query.Get("include_count") == "true",
	}

	if raw := query.Get("clinic_id"); raw != "" {
		clinicID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.BadRequest(w, "Invalid clinic_id")
			return
		}
		req.ClinicID = &clinicID
	}

	if raw := query.Get("status"); raw != "" {
		req.Statuses = strings.Split(raw, ",")
	}

	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 0 {
			response.BadRequest(w, "Invalid page")
			return
		}
		req.Page = page
	}

	if raw := query.Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 0 || size > 200 {
			response.BadRequest(w, "Invalid size")
			return
		}
		req.Size = size
	}

	queues, err := h.queueUsecase.ListQueues(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrInvalidSortField:
			response.BadRequest(w, "Invalid sort field")
		case usecase.ErrInvalidQueueStatus:
			response.BadRequest(w, "Invalid queue status filter")
		default:
			response.InternalServerError(w, "Failed to list queues")
		}
		return
	}

	response.Success(w, http.StatusOK, "Queues retrieved successfully", queues)
}

func (h *QueueHandler) UpdateQueue(w http.ResponseWriter, r *http.Request) {
	queueID, ok := parseIDVar(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdateQueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	queue, err := h.queueUsecase.UpdateQueue(r.Context(), queueID, &req)
	if err != nil {
		switch err {
		case usecase.ErrQueueNotFound:
			response.NotFound(w, "Queue not found")
		case usecase.ErrInvalidQueueStatus:
			response.BadRequest(w, "Invalid queue status")
		case usecase.ErrInvalidQueueTransition:
			response.Conflict(w, "Queue status transition is not allowed")
		case usecase.ErrStaleQueueUpdate:
			response.Conflict(w, "Queue was modified by another request")
		default:
			response.InternalServerError(w, "Failed to update queue")
		}
		return
	}

	response.Success(w, http.StatusOK, "Queue updated successfully", queue)
}

func (h *QueueHandler) DeleteQueue(w http.ResponseWriter, r *http.Request) {
	queueID, ok := parseIDVar(w, r, "id")
	if !ok {
		return
	}

	if err := h.queueUsecase.DeleteQueue(r.Context(), queueID); err != nil {
		switch err {
		case usecase.ErrQueueNotFound:
			response.NotFound(w, "Queue not found")
		default:
			response.InternalServerError(w, "Failed to delete queue")
		}
		return
	}

	response.Success(w, http.StatusOK, "Queue deleted successfully", nil)
}

func (h *QueueHandler) ListQueueEvents(w http.ResponseWriter, r *http.Request) {
	queueID, ok := parseIDVar(w, r, "id")
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.BadRequest(w, "Invalid limit")
			return
		}
		limit = parsed
	}

	events, err := h.eventUsecase.ListQueueEvents(r.Context(), queueID, limit)
	if err != nil {
		switch err {
		case usecase.ErrQueueNotFound:
			response.NotFound(w, "Queue not found")
		default:
			response.InternalServerError(w, "Failed to list queue events")
		}
		return
	}

	response.Success(w, http.StatusOK, "Queue events retrieved successfully", events)
}

// parseIDVar reads a positive int64 path variable, writing a 400
// response on failure.
func parseIDVar(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars[name], 10, 64)
	if err != nil || id < 1 {
		response.BadRequest(w, "Invalid "+name)
		return 0, false
	}
	return id, true
}
