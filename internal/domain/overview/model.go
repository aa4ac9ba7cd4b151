package overview

import "time"

// Snapshot is the full analytics payload for the discharge board. It is
// recomputed from current patient and task state on every request and
// never persisted.
type Snapshot struct {
	GeneratedAt   time.Time          `json:"generated_at"`
	KPIs          KPIBlock           `json:"kpis"`
	Throughput    []ThroughputPoint  `json:"throughput"`
	TaskTrend     []TaskTrendPoint   `json:"task_trend"`
	DelayReasons  []DelayReasonStat  `json:"delay_reasons"`
	WardOccupancy []WardOccupancyRow `json:"ward_occupancy"`
	Patients      []PatientSummary   `json:"patients"`
}

type KPIBlock struct {
	ActivePatients    int     `json:"active_patients"`
	InProgress        int     `json:"in_progress"`
	AvgReadinessScore float64 `json:"avg_readiness_score"`
	AvgLengthOfStay   float64 `json:"avg_length_of_stay_days"`
	DischargesNext24h int     `json:"discharges_next_24h"`
	HighRiskPatients  int     `json:"high_risk_patients"`
}

// ThroughputPoint is one day of completed discharges against the fixed
// daily target, with a trailing 7-day moving average.
type ThroughputPoint struct {
	Date      string  `json:"date"`
	Actual    int     `json:"actual"`
	MovingAvg float64 `json:"moving_avg"`
	Target    int     `json:"target"`
}

type TaskTrendPoint struct {
	Date      string `json:"date"`
	Completed int    `json:"completed"`
	Pending   int    `json:"pending"`
}

type DelayReasonStat struct {
	Reason        string  `json:"reason"`
	Count         int     `json:"count"`
	AvgDelayHours float64 `json:"avg_delay_hours"`
}

// WardOccupancyRow reports a ward's load relative to the busiest ward,
// not against physical capacity.
type WardOccupancyRow struct {
	Ward            string  `json:"ward"`
	PatientCount    int     `json:"patient_count"`
	OccupancyPct    float64 `json:"occupancy_pct"`
	DischargingSoon int     `json:"discharging_soon"`
}

type PatientSummary struct {
	ID               string   `json:"id"`
	MRN              string   `json:"mrn"`
	Name             string   `json:"name"`
	Ward             *string  `json:"ward,omitempty"`
	Bed              *string  `json:"bed,omitempty"`
	DischargeStatus  string   `json:"discharge_status"`
	DelayReason      *string  `json:"delay_reason,omitempty"`
	RiskLevel        *string  `json:"risk_level,omitempty"`
	ReadinessScore   *float64 `json:"readiness_score,omitempty"`
	PendingTasks     int      `json:"pending_tasks"`
	LengthOfStayDays float64  `json:"length_of_stay_days"`
}
