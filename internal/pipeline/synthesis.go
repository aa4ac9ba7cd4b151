package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dischargeflow/dischargeflow/internal/domain/extraction"
	"github.com/dischargeflow/dischargeflow/internal/domain/patient"
	"github.com/dischargeflow/dischargeflow/internal/domain/task"
)

// Essential tasks present for every patient regardless of how synthesis
// went, deduplicated by title.
const (
	essentialEducationTitle = "Patient Education"
	essentialTransportTitle = "Arrange Transportation"
)

const minModelTasks = 3

// RunTaskSynthesis turns the latest extraction snapshot into discharge
// tasks. Strategies are tried in order: model output, then rule-based
// generation from the snapshot; the essential tasks are guaranteed on
// top of either. Any unexpected failure lands in the hard fallback,
// which writes a fixed task list so the patient never ends up with an
// empty board.
func (p *Pipeline) RunTaskSynthesis(ctx context.Context, patientID string) {
	defer func() {
		if r := recover(); r != nil {
			p.hardFallback(ctx, patientID, fmt.Sprintf("task synthesis panicked: %v", r))
		}
	}()

	pt, err := p.patients.GetByID(ctx, patientID)
	if err != nil {
		p.hardFallback(ctx, patientID, fmt.Sprintf("patient lookup failed: %v", err))
		return
	}
	ext, err := p.extractions.LatestByPatient(ctx, patientID)
	if err != nil {
		p.hardFallback(ctx, patientID, fmt.Sprintf("no extraction snapshot: %v", err))
		return
	}

	p.logAction(ctx, patientID, AgentTaskGenerator, "start_task_generation",
		"Generating discharge tasks from the latest extraction snapshot", nil, "")

	tasks, source := p.synthesizeTasks(ctx, pt, ext)
	tasks = ensureEssentialTasks(patientID, tasks)

	persisted := 0
	for _, t := range tasks {
		t.PatientID = patientID
		t.Status = task.StatusPending
		if err := p.tasks.Create(ctx, t); err != nil {
			p.log.Error().Err(err).Str("patient_id", patientID).Str("title", t.Title).Msg("failed to persist task")
			continue
		}
		persisted++
	}

	status := patient.StatusReady
	if len(ext.Blockers()) > 0 {
		status = patient.StatusBlocked
	}
	if err := p.patients.FinishTaskGeneration(ctx, patientID, status); err != nil {
		p.log.Error().Err(err).Str("patient_id", patientID).Msg("failed to flag tasks_generated")
	}

	p.logAction(ctx, patientID, AgentTaskGenerator, "tasks_generated",
		fmt.Sprintf("Generated %d discharge tasks", persisted),
		map[string]interface{}{
			"task_count":       persisted,
			"source":           source,
			"discharge_status": status,
		}, "")
}

// synthesizeTasks runs the strategy chain. The model's output is kept
// only when it yields enough tasks; otherwise the rule-based set tops
// it up.
func (p *Pipeline) synthesizeTasks(ctx context.Context, pt *patient.Patient, ext *extraction.ExtractedData) ([]*task.Task, string) {
	tasks, err := p.modelTasks(ctx, pt, ext)
	if err != nil {
		p.log.Warn().Err(err).Str("patient_id", pt.ID).Msg("model task generation failed")
	}
	if err == nil && len(tasks) >= minModelTasks {
		return tasks, "model"
	}
	return appendMissing(tasks, ruleTasks(ext)), "rule_fallback"
}

func (p *Pipeline) modelTasks(ctx context.Context, pt *patient.Patient, ext *extraction.ExtractedData) ([]*task.Task, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	raw, err := p.model.GenerateTasks(callCtx,
		"You are a hospital discharge coordinator. Generate specific, actionable discharge tasks in JSON format.",
		buildSynthesisPrompt(pt, ext))
	if err != nil {
		return nil, err
	}

	body, ok := extractJSONArray(stripCodeFences(raw))
	if !ok {
		return nil, fmt.Errorf("no JSON array found in model response")
	}

	var drafts []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Priority    string `json:"priority"`
	}
	if err := json.Unmarshal([]byte(body), &drafts); err != nil {
		return nil, fmt.Errorf("model response is not a task array: %w", err)
	}

	var tasks []*task.Task
	for _, d := range drafts {
		if d.Title == "" {
			continue
		}
		tasks = append(tasks, &task.Task{
			Title:       d.Title,
			Description: d.Description,
			Category:    normalizeCategory(d.Category),
			Priority:    normalizePriority(d.Priority),
		})
	}
	return tasks, nil
}

func buildSynthesisPrompt(pt *patient.Patient, ext *extraction.ExtractedData) string {
	diagnosis := "N/A"
	if pt.Diagnosis != nil {
		diagnosis = *pt.Diagnosis
	}
	pharmacy, _ := json.Marshal(ext.PharmacyPending)
	radiology, _ := json.Marshal(ext.RadiologyPending)
	billing, _ := json.Marshal(ext.BillingPending)
	blockers, _ := json.Marshal(ext.DischargeBlockers)

	return fmt.Sprintf(`Analyze the following patient discharge data and generate specific, actionable tasks.

Patient: %s (MRN %s)
Diagnosis: %s
Pending pharmacy items: %s
Pending radiology items: %s
Billing status: %s
Discharge blockers: %s

Each task must be categorized (medical/operational/financial) and
prioritized (critical/high/medium/low).

Return ONLY a valid JSON array of tasks. Each task must have:
- title: brief, clear task name
- description: what needs to be done and why
- category: one of: medical, operational, financial
- priority: one of: critical, high, medium, low

Generate tasks now:`, pt.Name, pt.MRN, diagnosis, pharmacy, radiology, billing, blockers)
}

// ruleTasks derives a deterministic task set from the snapshot. Doctor
// clearance and the nursing checklist are always present; the rest
// depend on what is still pending.
func ruleTasks(ext *extraction.ExtractedData) []*task.Task {
	tasks := []*task.Task{
		{
			Title:       "Doctor Discharge Clearance",
			Description: "Obtain final discharge clearance from the attending physician.",
			Category:    task.CategoryMedical,
			Priority:    task.PriorityCritical,
		},
		{
			Title:       "Nursing Discharge Checklist",
			Description: "Complete the nursing discharge checklist and final observations.",
			Category:    task.CategoryOperational,
			Priority:    task.PriorityMedium,
		},
	}
	if len(ext.PharmacyPending) > 0 {
		tasks = append(tasks, &task.Task{
			Title:       "Resolve Pending Pharmacy Orders",
			Description: fmt.Sprintf("Fill and deliver %d pending pharmacy item(s) before discharge.", len(ext.PharmacyPending)),
			Category:    task.CategoryOperational,
			Priority:    task.PriorityHigh,
		})
	}
	if len(ext.RadiologyPending) > 0 {
		tasks = append(tasks, &task.Task{
			Title:       "Complete Pending Radiology",
			Description: fmt.Sprintf("Complete and review %d pending radiology order(s).", len(ext.RadiologyPending)),
			Category:    task.CategoryMedical,
			Priority:    task.PriorityHigh,
		})
	}
	if ext.BillingAmount() > 0 {
		tasks = append(tasks, &task.Task{
			Title:       "Clear Outstanding Billing",
			Description: fmt.Sprintf("Resolve outstanding billing amount of %.2f before discharge.", ext.BillingAmount()),
			Category:    task.CategoryFinancial,
			Priority:    task.PriorityHigh,
		})
	}
	for _, blocker := range ext.Blockers() {
		tasks = append(tasks, &task.Task{
			Title:       "Resolve Blocker: " + truncate(blocker, 80),
			Description: blocker,
			Category:    task.CategoryOperational,
			Priority:    task.PriorityHigh,
		})
	}
	return tasks
}

// appendMissing adds candidates whose titles are not already present.
func appendMissing(tasks []*task.Task, candidates []*task.Task) []*task.Task {
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		seen[strings.ToLower(t.Title)] = true
	}
	for _, c := range candidates {
		if seen[strings.ToLower(c.Title)] {
			continue
		}
		seen[strings.ToLower(c.Title)] = true
		tasks = append(tasks, c)
	}
	return tasks
}

// ensureEssentialTasks guarantees exactly one education and one
// transportation task, checked by title so repeated runs never
// duplicate them.
func ensureEssentialTasks(patientID string, tasks []*task.Task) []*task.Task {
	return appendMissing(tasks, []*task.Task{
		{
			PatientID:   patientID,
			Title:       essentialEducationTitle,
			Description: "Educate the patient and family on medications, warning signs and follow-up care.",
			Category:    task.CategoryOperational,
			Priority:    task.PriorityHigh,
		},
		{
			PatientID:   patientID,
			Title:       essentialTransportTitle,
			Description: "Confirm transportation home is arranged for the discharge date.",
			Category:    task.CategoryOperational,
			Priority:    task.PriorityMedium,
		},
	})
}

// hardFallback is the independent recovery path: a fixed five-item task
// list written when synthesis cannot run at all. It keeps the board
// populated and leaves the patient pending for manual review.
func (p *Pipeline) hardFallback(ctx context.Context, patientID, cause string) {
	p.log.Error().Str("patient_id", patientID).Str("cause", cause).Msg("task synthesis hard fallback")

	fixed := []*task.Task{
		{Title: "Doctor Discharge Clearance", Description: "Obtain final discharge clearance from the attending physician.", Category: task.CategoryMedical, Priority: task.PriorityCritical},
		{Title: "Complete Discharge Documentation", Description: "Prepare and sign the discharge summary and documentation.", Category: task.CategoryOperational, Priority: task.PriorityHigh},
		{Title: essentialEducationTitle, Description: "Educate the patient and family on medications, warning signs and follow-up care.", Category: task.CategoryOperational, Priority: task.PriorityHigh},
		{Title: essentialTransportTitle, Description: "Confirm transportation home is arranged for the discharge date.", Category: task.CategoryOperational, Priority: task.PriorityMedium},
		{Title: "Verify Insurance and Billing", Description: "Verify insurance coverage and clear any outstanding billing items.", Category: task.CategoryFinancial, Priority: task.PriorityHigh},
	}

	persisted := 0
	for _, t := range fixed {
		t.PatientID = patientID
		t.Status = task.StatusPending
		if err := p.tasks.Create(ctx, t); err != nil {
			p.log.Error().Err(err).Str("patient_id", patientID).Str("title", t.Title).Msg("failed to persist fallback task")
			continue
		}
		persisted++
	}

	if err := p.patients.FinishTaskGeneration(ctx, patientID, patient.StatusPending); err != nil {
		p.log.Error().Err(err).Str("patient_id", patientID).Msg("failed to flag tasks_generated")
	}

	p.logAction(ctx, patientID, AgentTaskGenerator, "task_generation_failed",
		"Primary synthesis failed, inserted fixed fallback task list",
		map[string]interface{}{
			"task_count": persisted,
			"source":     "hard_fallback",
		}, cause)
}

func normalizeCategory(c string) string {
	switch strings.ToLower(strings.TrimSpace(c)) {
	case task.CategoryMedical:
		return task.CategoryMedical
	case task.CategoryFinancial:
		return task.CategoryFinancial
	default:
		return task.CategoryOperational
	}
}

func normalizePriority(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case task.PriorityCritical:
		return task.PriorityCritical
	case task.PriorityHigh:
		return task.PriorityHigh
	case task.PriorityLow:
		return task.PriorityLow
	default:
		return task.PriorityMedium
	}
}
