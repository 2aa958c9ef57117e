package converter

import (
	"clinic-queue-manager/internal/delivery/dto"
	"clinic-queue-manager/internal/domain/entity"
)

// ClinicToResponse converts a Clinic entity to ClinicResponse DTO
func ClinicToResponse(clinic *entity.Clinic) *dto.ClinicResponse {
	if clinic == nil {
		return nil
	}

	return &dto.ClinicResponse{
		ID:          clinic.ID,
		Name:        clinic.Name,
		AddressLine: clinic.AddressLine,
		Area:        clinic.Area,
		Region:      clinic.Region,
		ClinicType:  clinic.ClinicType,
		OpenTime:    clinic.OpenTime,
		CloseTime:   clinic.CloseTime,
		CreatedAt:   clinic.CreatedAt,
		UpdatedAt:   clinic.UpdatedAt,
	}
}

// ClinicsToResponses converts a slice of Clinic entities to DTOs
func ClinicsToResponses(clinics []entity.Clinic) []dto.ClinicResponse {
	responses := make([]dto.ClinicResponse, len(clinics))
	for i, clinic := range clinics {
		resp := ClinicToResponse(&clinic)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
