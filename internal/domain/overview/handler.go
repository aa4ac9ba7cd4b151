package overview

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dischargeflow/dischargeflow/internal/domain/patient"
	"github.com/dischargeflow/dischargeflow/internal/domain/task"
)

type Handler struct {
	patients    patient.Repository
	tasks       task.Repository
	dailyTarget int
}

func NewHandler(patients patient.Repository, tasks task.Repository, dailyTarget int) *Handler {
	return &Handler{patients: patients, tasks: tasks, dailyTarget: dailyTarget}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/overview", h.GetOverview)
}

// GetOverview recomputes the analytics snapshot from current state. The
// read is not transactional with pipeline writes; a concurrent run just
// means the next request sees the newer state.
func (h *Handler) GetOverview(c echo.Context) error {
	ctx := c.Request().Context()

	patients, err := h.patients.ListDischarge(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ids := make([]string, 0, len(patients))
	for _, p := range patients {
		ids = append(ids, p.ID)
	}
	var tasks []*task.Task
	if len(ids) > 0 {
		tasks, err = h.tasks.ListByPatients(ctx, ids)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, Build(time.Now(), patients, tasks, h.dailyTarget))
}
