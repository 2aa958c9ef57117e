package converter

import (
	"clinic-queue-manager/internal/delivery/dto"
	"clinic-queue-manager/internal/domain/entity"
)

// QueueEventToResponse converts a QueueEvent entity to its DTO
func QueueEventToResponse(event *entity.QueueEvent) *dto.QueueEventResponse {
	if event == nil {
		return nil
	}

	return &dto.QueueEventResponse{
		ID:        event.ID,
		QueueID:   event.QueueID,
		TicketID:  event.TicketID,
		ActorID:   event.ActorID,
		Action:    event.Action,
		Metadata:  event.Metadata,
		CreatedAt: event.CreatedAt,
	}
}

// QueueEventsToResponses converts a slice of QueueEvent entities to DTOs
func QueueEventsToResponses(events []entity.QueueEvent) []dto.QueueEventResponse {
	responses := make([]dto.QueueEventResponse, len(events))
	for i, event := range events {
		resp := QueueEventToResponse(&event)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
