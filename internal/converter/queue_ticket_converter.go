package converter

import (
	"clinic-queue-manager/internal/delivery/dto"
	"clinic-queue-manager/internal/domain/entity"
)

// TicketToResponse converts a QueueTicket entity to TicketResponse DTO
func TicketToResponse(ticket *entity.QueueTicket) *dto.TicketResponse {
	if ticket == nil {
		return nil
	}

	return &dto.TicketResponse{
		ID:            ticket.ID,
		QueueID:       ticket.QueueID,
		AppointmentID: ticket.AppointmentID,
		TicketNumber:  ticket.TicketNumber,
		Priority:      ticket.Priority,
		Status:        string(ticket.Status),
		CalledAt:      ticket.CalledAt,
		CompletedAt:   ticket.CompletedAt,
		NoShowAt:      ticket.NoShowAt,
		CreatedAt:     ticket.CreatedAt,
		UpdatedAt:     ticket.UpdatedAt,
	}
}

// TicketsToResponses converts a slice of QueueTicket entities to TicketResponse DTOs
func TicketsToResponses(tickets []entity.QueueTicket) []dto.TicketResponse {
	responses := make([]dto.TicketResponse, len(tickets))
	for i, ticket := range tickets {
		resp := TicketToResponse(&ticket)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
