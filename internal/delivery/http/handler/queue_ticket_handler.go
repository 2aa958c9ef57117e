package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"clinic-queue-manager/internal/delivery/dto"
	"clinic-queue-manager/internal/usecase"
	"clinic-queue-manager/pkg/response"
	"clinic-queue-manager/pkg/validator"
)

type QueueTicketHandler struct {
	ticketUsecase usecase.QueueTicketUsecase
	validator     *validator.CustomValidator
}

func NewQueueTicketHandler(ticketUsecase usecase.QueueTicketUsecase, validator *validator.CustomValidator) *QueueTicketHandler {
	return &QueueTicketHandler{
		ticketUsecase: ticketUsecase,
		validator:     validator,
	}
}

func (h *QueueTicketHandler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	queueID, ok := parseIDVar(w, r, "id")
	if !ok {
		return
	}

	var req dto.CreateTicketRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request body")
			return
		}
	}
	req.QueueID = queueID

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	ticket, err := h.ticketUsecase.CreateTicket(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrQueueNotFound:
			response.NotFound(w, "Queue not found")
		case usecase.ErrQueueClosed:
			response.Conflict(w, "Queue is closed and cannot accept tickets")
		case usecase.ErrInvalidTicketPriority:
			response.BadRequest(w, "Invalid ticket priority")
		default:
			response.InternalServerError(w, "Failed to create ticket")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Ticket created successfully", ticket)
}

func (h *QueueTicketHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticketID, ok := parseIDVar(w, r, "id")
	if !ok {
		return
	}

	ticket, err := h.ticketUsecase.GetTicket(r.Context(), ticketID)
	if err != nil {
		switch err {
		case usecase.ErrTicketNotFound:
			response.NotFound(w, "Ticket not found")
		default:
			response.InternalServerError(w, "Failed to get ticket")
		}
		return
	}

	response.Success(w, http.StatusOK, "Ticket retrieved successfully", ticket)
}

func (h *QueueTicketHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	queueID, ok := parseIDVar(w, r, "id")
	if !ok {
		return
	}

	query := r.URL.Query()
	req := dto.ListTicketsRequest{
		QueueID: queueID,
		SortBy:  query.Get("sort_by"),
		SortDir: query.Get("sort_dir"),
	}
	if raw := query.Get("status"); raw != "" {
		req.Statuses = strings.Split(raw, ",")
	}

	tickets, err := h.ticketUsecase.ListTickets(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrQueueNotFound:
			response.NotFound(w, "Queue not found")
		case usecase.ErrInvalidSortField:
			response.BadRequest(w, "Invalid sort field")
		case usecase.ErrInvalidTicketStatus:
			response.BadRequest(w, "Invalid ticket status filter")
		default:
			response.InternalServerError(w, "Failed to list tickets")
		}
		return
	}

	response.Success(w, http.StatusOK, "Tickets retrieved successfully", tickets)
}

func (h *QueueTicketHandler) NextToServe(w http.ResponseWriter, r *http.Request) {
	queueID, ok := parseIDVar(w, r, "id")
	if !ok {
		return
	}

	next, err := h.ticketUsecase.NextToServe(r.Context(), queueID)
	if err != nil {
		switch err {
		case usecase.ErrQueueNotFound:
			response.NotFound(w, "Queue not found")
		default:
			response.InternalServerError(w, "Failed to get next ticket")
		}
		return
	}

	response.Success(w, http.StatusOK, "Next ticket retrieved successfully", next)
}

func (h *QueueTicketHandler) CallNext(w http.ResponseWriter, r *http.Request) {
	queueID, ok := parseIDVar(w, r, "id")
	if !ok {
		return
	}

	ticket, err := h.ticketUsecase.CallNext(r.Context(), queueID)
	if err != nil {
		switch err {
		case usecase.ErrQueueNotFound:
			response.NotFound(w, "Queue not found")
		case usecase.ErrTicketNotFound:
			response.NotFound(w, "No waiting tickets in queue")
		case usecase.ErrTicketAlreadyCalled:
			response.Conflict(w, "Another ticket is already being served")
		case usecase.ErrTicketNotWaiting:
			response.Conflict(w, "Ticket is no longer waiting")
		default:
			response.InternalServerError(w, "Failed to call next ticket")
		}
		return
	}

	response.Success(w, http.StatusOK, "Ticket called successfully", ticket)
}

func (h *QueueTicketHandler) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	ticketID, ok := parseIDVar(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	ticket, err := h.ticketUsecase.UpdateTicket(r.Context(), ticketID, &req)
	if err != nil {
		switch err {
		case usecase.ErrTicketNotFound:
			response.NotFound(w, "Ticket not found")
		case usecase.ErrQueueNotFound:
			response.NotFound(w, "Queue not found")
		case usecase.ErrInvalidTicketStatus:
			response.BadRequest(w, "Invalid ticket status")
		case usecase.ErrInvalidTicketPriority:
			response.BadRequest(w, "Invalid ticket priority")
		case usecase.ErrInvalidTicketTransition:
			response.Conflict(w, "Ticket status transition is not allowed")
		case usecase.ErrTicketAlreadyCalled:
			response.Conflict(w, "Another ticket is already being served")
		case usecase.ErrTicketNotWaiting:
			response.Conflict(w, "Ticket is no longer waiting")
		case usecase.ErrStaleTicketUpdate:
			response.Conflict(w, "Ticket was modified by another request")
		default:
			response.InternalServerError(w, "Failed to update ticket")
		}
		return
	}

	response.Success(w, http.StatusOK, "Ticket updated successfully", ticket)
}

func (h *QueueTicketHandler) DeleteTicket(w http.ResponseWriter, r *http.Request) {
	ticketID, ok := parseIDVar(w, r, "id")
	if !ok {
		return
	}

	if err := h.ticketUsecase.DeleteTicket(r.Context(), ticketID); err != nil {
		switch err {
		case usecase.ErrTicketNotFound:
			response.NotFound(w, "Ticket not found")
		default:
			response.InternalServerError(w, "Failed to delete ticket")
		}
		return
	}

	response.Success(w, http.StatusOK, "Ticket deleted successfully", nil)
}
