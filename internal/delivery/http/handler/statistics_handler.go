package handler

import (
	"net/http"
	"strconv"

	"clinic-queue-manager/internal/usecase"
	"clinic-queue-manager/pkg/response"
)

type StatisticsHandler struct {
	statisticsUsecase usecase.StatisticsUsecase
}

func NewStatisticsHandler(statisticsUsecase usecase.StatisticsUsecase) *StatisticsHandler {
	return &StatisticsHandler{
		statisticsUsecase: statisticsUsecase,
	}
}

func (h *StatisticsHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	var clinicID *int64
	if raw := r.URL.Query().Get("clinic_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			response.BadRequest(w, "Invalid clinic_id")
			return
		}
		clinicID = &id
	}

	stats, err := h.statisticsUsecase.GetStatistics(r.Context(), clinicID)
	if err != nil {
		response.InternalServerError(w, "Failed to get statistics")
		return
	}

	response.Success(w, http.StatusOK, "Statistics retrieved successfully", stats)
}
