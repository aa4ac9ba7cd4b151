package pipeline

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Job kinds dispatched to the worker pool.
const (
	JobExtraction    = "extraction"
	JobTaskSynthesis = "task_synthesis"
)

type Job struct {
	Kind      string
	PatientID string
}

// Runner dispatches pipeline work fire-and-forget. Triggers only report
// whether the job was accepted into the queue; completion is observable
// through patient state and the action log.
type Runner struct {
	pipeline *Pipeline
	jobs     chan Job
	workers  int
	log      zerolog.Logger

	mu      sync.Mutex
	wg      sync.WaitGroup
	started bool
	stopped bool
}

func NewRunner(p *Pipeline, workers, queueSize int, log zerolog.Logger) *Runner {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Runner{
		pipeline: p,
		jobs:     make(chan Job, queueSize),
		workers:  workers,
		log:      log,
	}
}

func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
	r.log.Info().Int("workers", r.workers).Msg("pipeline runner started")
}

// Stop closes the queue and waits for in-flight jobs. Jobs already
// queued still run to completion; new triggers are rejected.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	close(r.jobs)
	r.mu.Unlock()

	r.wg.Wait()
	r.log.Info().Msg("pipeline runner stopped")
}

func (r *Runner) TriggerExtraction(patientID string) bool {
	return r.enqueue(Job{Kind: JobExtraction, PatientID: patientID})
}

func (r *Runner) TriggerTaskSynthesis(patientID string) bool {
	return r.enqueue(Job{Kind: JobTaskSynthesis, PatientID: patientID})
}

func (r *Runner) enqueue(j Job) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return false
	}
	select {
	case r.jobs <- j:
		return true
	default:
		r.log.Warn().Str("kind", j.Kind).Str("patient_id", j.PatientID).Msg("pipeline queue full, job dropped")
		return false
	}
}

func (r *Runner) worker() {
	defer r.wg.Done()
	for j := range r.jobs {
		ctx := context.Background()
		switch j.Kind {
		case JobExtraction:
			if err := r.pipeline.RunExtraction(ctx, j.PatientID); err != nil {
				r.log.Error().Err(err).Str("patient_id", j.PatientID).Msg("extraction run failed")
			}
		case JobTaskSynthesis:
			r.pipeline.RunTaskSynthesis(ctx, j.PatientID)
		default:
			r.log.Error().Str("kind", j.Kind).Msg("unknown pipeline job kind")
		}
	}
}
