// Package overview computes the discharge board analytics as a pure
// function of current patient and task state. Nothing here touches the
// store; the handler feeds it repository reads.
package overview

import (
	"sort"
	"time"

	"github.com/dischargeflow/dischargeflow/internal/domain/patient"
	"github.com/dischargeflow/dischargeflow/internal/domain/task"
)

const (
	throughputDays = 30
	movingAvgDays  = 7
	taskTrendDays  = 14
	dayFormat      = "2006-01-02"
)

// Build computes a full snapshot. Patients with unusable timestamps are
// skipped per computation rather than failing the whole aggregation, so
// one bad record never blanks the board.
func Build(now time.Time, patients []*patient.Patient, tasks []*task.Task, dailyTarget int) *Snapshot {
	now = now.UTC()
	return &Snapshot{
		GeneratedAt:   now,
		KPIs:          buildKPIs(now, patients),
		Throughput:    buildThroughput(now, patients, dailyTarget),
		TaskTrend:     buildTaskTrend(now, tasks),
		DelayReasons:  buildDelayReasons(now, patients),
		WardOccupancy: buildWardOccupancy(now, patients),
		Patients:      buildPatientRows(now, patients, tasks),
	}
}

func buildKPIs(now time.Time, patients []*patient.Patient) KPIBlock {
	var k KPIBlock
	var scoreSum float64
	var scoreCount int
	var staySum float64
	var stayCount int

	for _, p := range patients {
		if p.DischargeStatus != patient.StatusCompleted {
			k.ActivePatients++
		}
		if p.DischargeStatus == patient.StatusInProgress || p.DischargeStatus == patient.StatusReady {
			k.InProgress++
		}
		if p.ReadinessScore != nil {
			scoreSum += *p.ReadinessScore
			scoreCount++
		}
		if !p.CreatedAt.IsZero() {
			staySum += now.Sub(p.CreatedAt.UTC()).Hours() / 24
			stayCount++
		}
		if p.ExpectedDischargeAt != nil {
			d := p.ExpectedDischargeAt.UTC().Sub(now)
			if d >= 0 && d <= 24*time.Hour {
				k.DischargesNext24h++
			}
		}
		if p.IsHighRisk() {
			k.HighRiskPatients++
		}
	}
	if scoreCount > 0 {
		k.AvgReadinessScore = scoreSum / float64(scoreCount)
	}
	if stayCount > 0 {
		k.AvgLengthOfStay = staySum / float64(stayCount)
	}
	return k
}

func buildThroughput(now time.Time, patients []*patient.Patient, dailyTarget int) []ThroughputPoint {
	completedByDay := make(map[string]int)
	for _, p := range patients {
		if p.DischargeStatus != patient.StatusCompleted || p.UpdatedAt.IsZero() {
			continue
		}
		completedByDay[p.UpdatedAt.UTC().Format(dayFormat)]++
	}

	actuals := make([]int, throughputDays)
	points := make([]ThroughputPoint, throughputDays)
	for i := 0; i < throughputDays; i++ {
		day := now.AddDate(0, 0, i-throughputDays+1).Format(dayFormat)
		actuals[i] = completedByDay[day]

		// trailing window over the series computed so far
		start := i - movingAvgDays + 1
		if start < 0 {
			start = 0
		}
		sum := 0
		for j := start; j <= i; j++ {
			sum += actuals[j]
		}
		points[i] = ThroughputPoint{
			Date:      day,
			Actual:    actuals[i],
			MovingAvg: float64(sum) / float64(i-start+1),
			Target:    dailyTarget,
		}
	}
	return points
}

func buildTaskTrend(now time.Time, tasks []*task.Task) []TaskTrendPoint {
	type counts struct{ completed, pending int }
	byDay := make(map[string]*counts)
	for _, t := range tasks {
		if t.CreatedAt.IsZero() {
			continue
		}
		day := t.CreatedAt.UTC().Format(dayFormat)
		c, ok := byDay[day]
		if !ok {
			c = &counts{}
			byDay[day] = c
		}
		if t.IsCompleted() {
			c.completed++
		} else {
			c.pending++
		}
	}

	points := make([]TaskTrendPoint, taskTrendDays)
	for i := 0; i < taskTrendDays; i++ {
		day := now.AddDate(0, 0, i-taskTrendDays+1).Format(dayFormat)
		p := TaskTrendPoint{Date: day}
		if c, ok := byDay[day]; ok {
			p.Completed = c.completed
			p.Pending = c.pending
		}
		points[i] = p
	}
	return points
}

func buildDelayReasons(now time.Time, patients []*patient.Patient) []DelayReasonStat {
	type agg struct {
		count int
		hours float64
	}
	byReason := make(map[string]*agg)
	for _, p := range patients {
		if p.DelayReason == nil || *p.DelayReason == "" || p.CreatedAt.IsZero() {
			continue
		}
		a, ok := byReason[*p.DelayReason]
		if !ok {
			a = &agg{}
			byReason[*p.DelayReason] = a
		}
		a.count++
		a.hours += now.Sub(p.CreatedAt.UTC()).Hours()
	}

	stats := make([]DelayReasonStat, 0, len(byReason))
	for reason, a := range byReason {
		stats = append(stats, DelayReasonStat{
			Reason:        reason,
			Count:         a.count,
			AvgDelayHours: a.hours / float64(a.count),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Reason < stats[j].Reason
	})
	return stats
}

func buildWardOccupancy(now time.Time, patients []*patient.Patient) []WardOccupancyRow {
	type agg struct {
		count int
		soon  int
	}
	byWard := make(map[string]*agg)
	largest := 0
	for _, p := range patients {
		if p.Ward == nil || *p.Ward == "" {
			continue
		}
		a, ok := byWard[*p.Ward]
		if !ok {
			a = &agg{}
			byWard[*p.Ward] = a
		}
		a.count++
		if a.count > largest {
			largest = a.count
		}
		if p.ExpectedDischargeAt != nil {
			d := p.ExpectedDischargeAt.UTC().Sub(now)
			if d >= 0 && d <= 24*time.Hour {
				a.soon++
			}
		}
	}

	rows := make([]WardOccupancyRow, 0, len(byWard))
	for ward, a := range byWard {
		pct := 0.0
		if largest > 0 {
			pct = float64(a.count) / float64(largest) * 100
		}
		rows = append(rows, WardOccupancyRow{
			Ward:            ward,
			PatientCount:    a.count,
			OccupancyPct:    pct,
			DischargingSoon: a.soon,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Ward < rows[j].Ward })
	return rows
}

func buildPatientRows(now time.Time, patients []*patient.Patient, tasks []*task.Task) []PatientSummary {
	pendingByPatient := make(map[string]int)
	for _, t := range tasks {
		if !t.IsCompleted() {
			pendingByPatient[t.PatientID]++
		}
	}

	rows := make([]PatientSummary, 0, len(patients))
	for _, p := range patients {
		los := 0.0
		if !p.CreatedAt.IsZero() {
			los = now.Sub(p.CreatedAt.UTC()).Hours() / 24
		}
		rows = append(rows, PatientSummary{
			ID:               p.ID,
			MRN:              p.MRN,
			Name:             p.Name,
			Ward:             p.Ward,
			Bed:              p.Bed,
			DischargeStatus:  p.DischargeStatus,
			DelayReason:      p.DelayReason,
			RiskLevel:        p.RiskLevel,
			ReadinessScore:   p.ReadinessScore,
			PendingTasks:     pendingByPatient[p.ID],
			LengthOfStayDays: los,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].MRN < rows[j].MRN })
	return rows
}
