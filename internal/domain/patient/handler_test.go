package patient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dischargeflow/dischargeflow/internal/domain/agentlog"
	"github.com/dischargeflow/dischargeflow/internal/domain/extraction"
	"github.com/dischargeflow/dischargeflow/internal/domain/task"
)

// -- Collaborator mocks --

type stubTaskRepo struct {
	tasks []*task.Task
}

func (s *stubTaskRepo) Create(_ context.Context, t *task.Task) error {
	s.tasks = append(s.tasks, t)
	return nil
}

func (s *stubTaskRepo) GetByID(_ context.Context, id string) (*task.Task, error) {
	for _, t := range s.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, task.ErrNotFound
}

func (s *stubTaskRepo) ListByPatient(_ context.Context, patientID string) ([]*task.Task, error) {
	var r []*task.Task
	for _, t := range s.tasks {
		if t.PatientID == patientID {
			r = append(r, t)
		}
	}
	return r, nil
}

func (s *stubTaskRepo) ListByPatients(_ context.Context, _ []string) ([]*task.Task, error) {
	return s.tasks, nil
}

func (s *stubTaskRepo) UpdateStatus(_ context.Context, _, _ string) error { return nil }

type stubExtractionRepo struct {
	latest *extraction.ExtractedData
}

func (s *stubExtractionRepo) Create(_ context.Context, e *extraction.ExtractedData) error {
	s.latest = e
	return nil
}

func (s *stubExtractionRepo) LatestByPatient(_ context.Context, _ string) (*extraction.ExtractedData, error) {
	if s.latest == nil {
		return nil, extraction.ErrNotFound
	}
	return s.latest, nil
}

type stubLogRepo struct {
	entries []*agentlog.Entry
}

func (s *stubLogRepo) Create(_ context.Context, e *agentlog.Entry) error {
	s.entries = append(s.entries, e)
	return nil
}

func (s *stubLogRepo) ListByPatient(_ context.Context, _ string) ([]*agentlog.Entry, error) {
	return s.entries, nil
}

type stubTrigger struct {
	extractions []string
	syntheses   []string
	accept      bool
}

func (s *stubTrigger) TriggerExtraction(id string) bool {
	s.extractions = append(s.extractions, id)
	return s.accept
}

func (s *stubTrigger) TriggerTaskSynthesis(id string) bool {
	s.syntheses = append(s.syntheses, id)
	return s.accept
}

func newTestHandler() (*Handler, *echo.Echo, *stubTrigger) {
	trigger := &stubTrigger{accept: true}
	h := NewHandler(NewService(newMockPatientRepo()), &stubTaskRepo{}, &stubExtractionRepo{}, &stubLogRepo{}, trigger)
	return h, echo.New(), trigger
}

// -- Handler Tests --

func TestHandler_CreatePatient(t *testing.T) {
	h, e, _ := newTestHandler()

	body := `{"mrn":"MRN-1001","name":"Jordan Avery","admission_id":"ADM-2025-0147"}`
	req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreatePatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var p Patient
	json.Unmarshal(rec.Body.Bytes(), &p)
	if p.ID == "" {
		t.Error("expected id in response")
	}
	if p.DischargeStatus != StatusPending {
		t.Errorf("expected status pending, got %q", p.DischargeStatus)
	}
}

func TestHandler_CreatePatient_BadRequest(t *testing.T) {
	h, e, _ := newTestHandler()

	body := `{"name":"Jordan Avery"}`
	req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreatePatient(c); err == nil {
		t.Error("expected error for missing mrn")
	}
}

func TestHandler_GetPatient_NotFound(t *testing.T) {
	h, e, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	err := h.GetPatient(c)
	if err == nil {
		t.Fatal("expected error for missing patient")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_MarkReady_QueuesExtraction(t *testing.T) {
	h, e, trigger := newTestHandler()

	p := &Patient{MRN: "MRN-1001", Name: "Jordan Avery", AdmissionID: "ADM-2025-0147"}
	h.svc.CreatePatient(context.Background(), p)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID)

	if err := h.MarkReady(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if len(trigger.extractions) != 1 || trigger.extractions[0] != p.ID {
		t.Errorf("expected extraction trigger for %s, got %v", p.ID, trigger.extractions)
	}

	var resp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["extraction_queued"] != true {
		t.Errorf("expected extraction_queued true, got %v", resp["extraction_queued"])
	}
}

func TestHandler_MarkReady_NotFound(t *testing.T) {
	h, e, trigger := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	if err := h.MarkReady(c); err == nil {
		t.Fatal("expected error for missing patient")
	}
	if len(trigger.extractions) != 0 {
		t.Error("must not trigger extraction for a missing patient")
	}
}

func TestHandler_TriggerTaskSynthesis(t *testing.T) {
	h, e, trigger := newTestHandler()

	p := &Patient{MRN: "MRN-1001", Name: "Jordan Avery", AdmissionID: "ADM-2025-0147"}
	h.svc.CreatePatient(context.Background(), p)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID)

	if err := h.TriggerTaskSynthesis(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Errorf("expected 202, got %d", rec.Code)
	}
	if len(trigger.syntheses) != 1 {
		t.Errorf("expected one synthesis trigger, got %d", len(trigger.syntheses))
	}
}

func TestHandler_Dashboard(t *testing.T) {
	trigger := &stubTrigger{accept: true}
	tasks := &stubTaskRepo{}
	extractions := &stubExtractionRepo{}
	logs := &stubLogRepo{}
	h := NewHandler(NewService(newMockPatientRepo()), tasks, extractions, logs, trigger)
	e := echo.New()

	p := &Patient{MRN: "MRN-1001", Name: "Jordan Avery", AdmissionID: "ADM-2025-0147"}
	h.svc.CreatePatient(context.Background(), p)

	snap := &extraction.ExtractedData{PatientID: p.ID, ExtractedAt: time.Now().UTC()}
	snap.Normalize()
	extractions.Create(context.Background(), snap)
	tasks.Create(context.Background(), &task.Task{ID: "t1", PatientID: p.ID, Title: "A", Status: task.StatusPending})
	logs.Create(context.Background(), &agentlog.Entry{ID: "l1", PatientID: p.ID, Agent: "extraction_agent", Action: "start_extraction"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID)

	if err := h.GetDashboard(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var dash Dashboard
	json.Unmarshal(rec.Body.Bytes(), &dash)
	if dash.Patient == nil || dash.Patient.ID != p.ID {
		t.Error("expected patient in dashboard")
	}
	if dash.Extraction == nil {
		t.Error("expected extraction snapshot in dashboard")
	}
	if len(dash.Tasks) != 1 {
		t.Errorf("expected 1 task, got %d", len(dash.Tasks))
	}
	if len(dash.AgentLogs) != 1 {
		t.Errorf("expected 1 log entry, got %d", len(dash.AgentLogs))
	}
}

func TestHandler_Dashboard_NoExtraction(t *testing.T) {
	h, e, _ := newTestHandler()

	p := &Patient{MRN: "MRN-1001", Name: "Jordan Avery", AdmissionID: "ADM-2025-0147"}
	h.svc.CreatePatient(context.Background(), p)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID)

	if err := h.GetDashboard(c); err != nil {
		t.Fatalf("missing extraction must not fail the dashboard: %v", err)
	}

	var dash Dashboard
	json.Unmarshal(rec.Body.Bytes(), &dash)
	if dash.Extraction != nil {
		t.Error("expected nil extraction")
	}
	if dash.Tasks == nil {
		t.Error("expected empty task list, not null")
	}
}
