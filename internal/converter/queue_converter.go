package converter

import (
	"clinic-queue-manager/internal/delivery/dto"
	"clinic-queue-manager/internal/domain/entity"
)

// QueueToResponse converts a Queue entity to QueueResponse DTO
func QueueToResponse(queue *entity.Queue) *dto.QueueResponse {
	if queue == nil {
		return nil
	}

	response := &dto.QueueResponse{
		ID:        queue.ID,
		ClinicID:  queue.ClinicID,
		Status:    string(queue.Status),
		CreatedAt: queue.CreatedAt,
		UpdatedAt: queue.UpdatedAt,
	}

	// Include clinic info if preloaded
	if queue.Clinic.ID != 0 {
		response.Clinic = ClinicToResponse(&queue.Clinic)
	}

	return response
}

// QueuesToResponses converts a slice of Queue entities to QueueResponse DTOs
func QueuesToResponses(queues []entity.Queue) []dto.QueueResponse {
	responses := make([]dto.QueueResponse, len(queues))
	for i, queue := range queues {
		resp := QueueToResponse(&queue)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
