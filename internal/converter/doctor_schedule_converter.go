package converter

import (
	"time"

	"clinic-queue-manager/internal/delivery/dto"
	"clinic-queue-manager/internal/domain/entity"
)

// ScheduleToResponse converts a DoctorSchedule entity to ScheduleResponse DTO
func ScheduleToResponse(schedule *entity.DoctorSchedule) *dto.ScheduleResponse {
	if schedule == nil {
		return nil
	}

	return &dto.ScheduleResponse{
		ID:          schedule.ID,
		DoctorID:    schedule.DoctorID,
		DayOfWeek:   schedule.DayOfWeek,
		StartTime:   schedule.StartTime,
		EndTime:     schedule.EndTime,
		SlotMinutes: schedule.SlotMinutes,
		ValidFrom:   formatScheduleDate(schedule.ValidFrom),
		ValidTo:     formatScheduleDate(schedule.ValidTo),
		CreatedAt:   schedule.CreatedAt,
		UpdatedAt:   schedule.UpdatedAt,
	}
}

// SchedulesToResponses converts a slice of DoctorSchedule entities to DTOs
func SchedulesToResponses(schedules []entity.DoctorSchedule) []dto.ScheduleResponse {
	responses := make([]dto.ScheduleResponse, len(schedules))
	for i, schedule := range schedules {
		resp := ScheduleToResponse(&schedule)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}

func formatScheduleDate(date *time.Time) *string {
	if date == nil {
		return nil
	}
	formatted := date.Format("2006-01-02")
	return &formatted
}
