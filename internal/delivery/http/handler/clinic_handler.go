package handler

import (
	"encoding/json"
	"net/http"

	"clinic-queue-manager/internal/delivery/dto"
	"clinic-queue-manager/internal/usecase"
	"clinic-queue-manager/pkg/response"
	"clinic-queue-manager/pkg/validator"
)

type ClinicHandler struct {
	clinicUsecase usecase.ClinicUsecase
	doctorUsecase usecase.DoctorUsecase
	validator     *validator.CustomValidator
}

func NewClinicHandler(clinicUsecase usecase.ClinicUsecase, doctorUsecase usecase.DoctorUsecase, validator *validator.CustomValidator) *ClinicHandler {
	return &ClinicHandler{
		clinicUsecase: clinicUsecase,
		doctorUsecase: doctorUsecase,
		validator:     validator,
	}
}

func (h *ClinicHandler) CreateClinic(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateClinicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	clinic, err := h.clinicUsecase.CreateClinic(r.Context(), &req)
	if err != nil {
		response.InternalServerError(w, "Failed to create clinic")
		return
	}

	response.Success(w, http.StatusCreated, "Clinic created successfully", clinic)
}

func (h *ClinicHandler) GetClinic(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := parseIDVar(w, r, "id")
	if !ok {
		return
	}

	clinic, err := h.clinicUsecase.GetClinic(r.Context(), clinicID)
	if err != nil {
		switch err {
		case usecase.ErrClinicNotFound:
			response.NotFound(w, "Clinic not found")
		default:
			response.InternalServerError(w, "Failed to get clinic")
		}
		return
	}

	response.Success(w, http.StatusOK, "Clinic retrieved successfully", clinic)
}

func (h *ClinicHandler) ListClinics(w http.ResponseWriter, r *http.Request) {
	clinics, err := h.clinicUsecase.ListClinics(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to list clinics")
		return
	}

	response.Success(w, http.StatusOK, "Clinics retrieved successfully", clinics)
}

func (h *ClinicHandler) UpdateClinic(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := parseIDVar(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdateClinicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	clinic, err := h.clinicUsecase.UpdateClinic(r.Context(), clinicID, &req)
	if err != nil {
		switch err {
		case usecase.ErrClinicNotFound:
			response.NotFound(w, "Clinic not found")
		default:
			response.InternalServerError(w, "Failed to update clinic")
		}
		return
	}

	response.Success(w, http.StatusOK, "Clinic updated successfully", clinic)
}

func (h *ClinicHandler) DeleteClinic(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := parseIDVar(w, r, "id")
	if !ok {
		return
	}

	if err := h.clinicUsecase.DeleteClinic(r.Context(), clinicID); err != nil {
		switch err {
		case usecase.ErrClinicNotFound:
			response.NotFound(w, "Clinic not found")
		default:
			response.InternalServerError(w, "Failed to delete clinic")
		}
		return
	}

	response.Success(w, http.StatusOK, "Clinic deleted successfully", nil)
}

func (h *ClinicHandler) ListClinicDoctors(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := parseIDVar(w, r, "id")
	if !ok {
		return
	}

	doctors, err := h.doctorUsecase.ListDoctorsByClinic(r.Context(), clinicID)
	if err != nil {
		switch err {
		case usecase.ErrClinicNotFound:
			response.NotFound(w, "Clinic not found")
		default:
			response.InternalServerError(w, "Failed to list doctors")
		}
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", doctors)
}
