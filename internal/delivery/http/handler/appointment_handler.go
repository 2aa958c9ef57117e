package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"clinic-queue-manager/internal/delivery/dto"
	"clinic-queue-manager/internal/usecase"
	"clinic-queue-manager/pkg/response"
	"clinic-queue-manager/pkg/validator"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
	}
}

func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.CreateAppointment(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrClinicNotFound:
			response.NotFound(w, "Clinic not found")
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		case usecase.ErrDoctorInactive:
			response.Conflict(w, "Doctor is not active")
		case usecase.ErrInvalidAppointmentTime:
			response.BadRequest(w, "Appointment start time must be before end time")
		case usecase.ErrAppointmentOverlap:
			response.Conflict(w, "Doctor already has an appointment in this time range")
		default:
			response.InternalServerError(w, "Failed to create appointment")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Appointment created successfully", appointment)
}

func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := parseIDVar(w, r, "id")
	if !ok {
		return
	}

	appointment, err := h.appointmentUsecase.GetAppointment(r.Context(), appointmentID)
	if err != nil {
		switch err {
		case usecase.ErrAppointmentNotFound:
			response.NotFound(w, "Appointment not found")
		default:
			response.InternalServerError(w, "Failed to get appointment")
		}
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}

func (h *AppointmentHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var req dto.ListAppointmentsRequest

	for param, target := range map[string]**int64{
		"doctor_id":  &req.DoctorID,
		"clinic_id":  &req.ClinicID,
		"patient_id": &req.PatientID,
	} {
		if raw := query.Get(param); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id < 1 {
				response.BadRequest(w, "Invalid "+param)
				return
			}
			*target = &id
		}
	}

	if raw := query.Get("status"); raw != "" {
		req.Status = &raw
	}

	appointments, err := h.appointmentUsecase.ListAppointments(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrInvalidAppointmentStatus:
			response.BadRequest(w, "Invalid appointment status filter")
		default:
			response.InternalServerError(w, "Failed to list appointments")
		}
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := parseIDVar(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.UpdateAppointment(r.Context(), appointmentID, &req)
	if err != nil {
		switch err {
		case usecase.ErrAppointmentNotFound:
			response.NotFound(w, "Appointment not found")
		case usecase.ErrInvalidAppointmentStatus:
			response.BadRequest(w, "Invalid appointment status")
		case usecase.ErrInvalidAppointmentTransition:
			response.Conflict(w, "Appointment status transition is not allowed")
		case usecase.ErrStaleAppointmentUpdate:
			response.Conflict(w, "Appointment was modified by another request")
		default:
			response.InternalServerError(w, "Failed to update appointment")
		}
		return
	}

	response.Success(w, http.StatusOK, "Appointment updated successfully", appointment)
}
