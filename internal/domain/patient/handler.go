package patient

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dischargeflow/dischargeflow/internal/domain/agentlog"
	"github.com/dischargeflow/dischargeflow/internal/domain/extraction"
	"github.com/dischargeflow/dischargeflow/internal/domain/task"
	"github.com/dischargeflow/dischargeflow/pkg/pagination"
)

// PipelineTrigger enqueues background agent work for a patient. The
// returned bool reports whether the job was accepted, not whether it
// succeeded.
type PipelineTrigger interface {
	TriggerExtraction(patientID string) bool
	TriggerTaskSynthesis(patientID string) bool
}

type Handler struct {
	svc         *Service
	tasks       task.Repository
	extractions extraction.Repository
	logs        agentlog.Repository
	pipeline    PipelineTrigger
}

func NewHandler(svc *Service, tasks task.Repository, extractions extraction.Repository, logs agentlog.Repository, pipeline PipelineTrigger) *Handler {
	return &Handler{svc: svc, tasks: tasks, extractions: extractions, logs: logs, pipeline: pipeline}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/patients", h.CreatePatient)
	api.GET("/patients", h.ListPatients)
	api.GET("/patients/:id", h.GetPatient)
	api.GET("/patients/:id/dashboard", h.GetDashboard)
	api.POST("/patients/:id/mark-ready", h.MarkReady)
	api.POST("/patients/:id/extract", h.TriggerExtraction)
	api.POST("/patients/:id/generate-tasks", h.TriggerTaskSynthesis)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreatePatient(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	p, err := h.svc.GetPatient(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPatients(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// Dashboard is everything the discharge board needs for one patient in
// a single round trip.
type Dashboard struct {
	Patient    *Patient                  `json:"patient"`
	Extraction *extraction.ExtractedData `json:"extraction,omitempty"`
	Tasks      []*task.Task              `json:"tasks"`
	AgentLogs  []*agentlog.Entry         `json:"agent_logs"`
}

func (h *Handler) GetDashboard(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := h.svc.GetPatient(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	dash := Dashboard{Patient: p, Tasks: []*task.Task{}, AgentLogs: []*agentlog.Entry{}}

	ext, err := h.extractions.LatestByPatient(ctx, p.ID)
	if err != nil && !errors.Is(err, extraction.ErrNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	dash.Extraction = ext

	tasks, err := h.tasks.ListByPatient(ctx, p.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if tasks != nil {
		dash.Tasks = tasks
	}

	logs, err := h.logs.ListByPatient(ctx, p.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if logs != nil {
		dash.AgentLogs = logs
	}

	return c.JSON(http.StatusOK, dash)
}

// MarkReady flags the patient and kicks off extraction in the
// background. The response does not wait for the pipeline.
func (h *Handler) MarkReady(c echo.Context) error {
	id := c.Param("id")
	if err := h.svc.MarkReady(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	queued := h.pipeline.TriggerExtraction(id)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"patient_id":           id,
		"ready_for_evaluation": true,
		"extraction_queued":    queued,
	})
}

func (h *Handler) TriggerExtraction(c echo.Context) error {
	id := c.Param("id")
	if _, err := h.svc.GetPatient(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	queued := h.pipeline.TriggerExtraction(id)
	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"patient_id": id,
		"queued":     queued,
	})
}

func (h *Handler) TriggerTaskSynthesis(c echo.Context) error {
	id := c.Param("id")
	if _, err := h.svc.GetPatient(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	queued := h.pipeline.TriggerTaskSynthesis(id)
	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"patient_id": id,
		"queued":     queued,
	})
}
