package handler

import (
	"net/http"
	"strconv"

	"github.com/straye-as/project-tracker/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// @Summary Get dashboard
// @Description Returns the portfolio overview built from the filtered projects.
// @Description
// @Description - `statuses`: project counts per status
// @Description - `groups`: product group cards with active project count and a risk flag
// @Description - `upcoming`: GTM stage planned ends and important task due dates, most overdue first
// @Description - `recent_changes`: latest history events across projects, newest first
// @Tags Dashboard
// @Produce json
// @Param include_archived query bool false "Include archived groups and projects"
// @Param group_id query string false "Only this product group" format(uuid)
// @Param brand query string false "Only this brand"
// @Param status query string false "Comma-separated project statuses"
// @Param upcoming_limit query int false "Maximum upcoming items" default(10)
// @Param changes_limit query int false "Maximum recent changes" default(20)
// @Success 200 {object} domain.DashboardPayload
// @Failure 400 {object} domain.APIError
// @Router /dashboard [get]
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectFilters, err := parseProjectFilters(r, false)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	filters := service.DashboardFilters{
		IncludeArchived: projectFilters.IncludeArchived,
		GroupID:         projectFilters.GroupID,
		Brand:           projectFilters.Brand,
		Statuses:        projectFilters.Statuses,
	}
	filters.UpcomingLimit, _ = strconv.Atoi(r.URL.Query().Get("upcoming_limit"))
	filters.ChangesLimit, _ = strconv.Atoi(r.URL.Query().Get("changes_limit"))

	payload, err := h.dashboardService.Get(r.Context(), filters)
	if err != nil {
		handleServiceError(w, h.logger, err, "build dashboard")
		return
	}

	respondJSON(w, http.StatusOK, payload)
}
