package overview

import (
	"reflect"
	"testing"
	"time"

	"github.com/dischargeflow/dischargeflow/internal/domain/patient"
	"github.com/dischargeflow/dischargeflow/internal/domain/task"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func strptr(s string) *string        { return &s }
func f64ptr(f float64) *float64      { return &f }
func timeptr(t time.Time) *time.Time { return &t }

func makePatient(id, mrn, status string, createdDaysAgo int) *patient.Patient {
	return &patient.Patient{
		ID:              id,
		MRN:             mrn,
		Name:            "Patient " + mrn,
		DischargeStatus: status,
		CreatedAt:       testNow.AddDate(0, 0, -createdDaysAgo),
		UpdatedAt:       testNow.AddDate(0, 0, -createdDaysAgo),
	}
}

func TestBuild_Deterministic(t *testing.T) {
	patients := []*patient.Patient{
		makePatient("p1", "MRN-1", patient.StatusInProgress, 3),
		makePatient("p2", "MRN-2", patient.StatusReady, 1),
	}
	patients[0].Ward = strptr("A")
	patients[1].Ward = strptr("B")
	tasks := []*task.Task{
		{ID: "t1", PatientID: "p1", Status: task.StatusPending, CreatedAt: testNow},
	}

	a := Build(testNow, patients, tasks, 5)
	b := Build(testNow, patients, tasks, 5)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("two builds over the same snapshot must be identical")
	}
}

func TestBuild_KPIs(t *testing.T) {
	risk := 0.8
	patients := []*patient.Patient{
		makePatient("p1", "MRN-1", patient.StatusInProgress, 4),
		makePatient("p2", "MRN-2", patient.StatusReady, 2),
		makePatient("p3", "MRN-3", patient.StatusCompleted, 10),
		makePatient("p4", "MRN-4", patient.StatusPending, 1),
	}
	patients[0].ReadinessScore = f64ptr(80)
	patients[1].ReadinessScore = f64ptr(60)
	patients[1].ReadmissionRisk = &risk
	patients[3].ExpectedDischargeAt = timeptr(testNow.Add(6 * time.Hour))

	k := Build(testNow, patients, nil, 5).KPIs

	if k.ActivePatients != 3 {
		t.Errorf("expected 3 active patients, got %d", k.ActivePatients)
	}
	if k.InProgress != 2 {
		t.Errorf("expected 2 in progress, got %d", k.InProgress)
	}
	if k.AvgReadinessScore != 70 {
		t.Errorf("expected avg readiness 70, got %v", k.AvgReadinessScore)
	}
	if k.DischargesNext24h != 1 {
		t.Errorf("expected 1 discharge in next 24h, got %d", k.DischargesNext24h)
	}
	if k.HighRiskPatients != 1 {
		t.Errorf("expected 1 high risk patient, got %d", k.HighRiskPatients)
	}
}

func TestBuild_Throughput_SingleCompletion(t *testing.T) {
	p := makePatient("p1", "MRN-1", patient.StatusCompleted, 3)

	series := Build(testNow, []*patient.Patient{p}, nil, 5).Throughput

	if len(series) != throughputDays {
		t.Fatalf("expected %d points, got %d", throughputDays, len(series))
	}
	wantDay := testNow.AddDate(0, 0, -3).Format(dayFormat)
	nonZero := 0
	for _, pt := range series {
		if pt.Target != 5 {
			t.Fatalf("expected target 5 on every point, got %d", pt.Target)
		}
		if pt.Actual != 0 {
			nonZero++
			if pt.Date != wantDay {
				t.Errorf("expected completion on %s, got %s", wantDay, pt.Date)
			}
			if pt.Actual != 1 {
				t.Errorf("expected actual 1, got %d", pt.Actual)
			}
			if pt.MovingAvg != 1.0/float64(movingAvgDays) {
				t.Errorf("expected moving avg %v, got %v", 1.0/float64(movingAvgDays), pt.MovingAvg)
			}
		}
	}
	if nonZero != 1 {
		t.Errorf("expected exactly one non-zero day, got %d", nonZero)
	}
}

func TestBuild_TaskTrend(t *testing.T) {
	done := testNow.Add(-time.Hour)
	tasks := []*task.Task{
		{ID: "t1", PatientID: "p1", Status: task.StatusCompleted, CreatedAt: testNow.AddDate(0, 0, -1), CompletedAt: &done},
		{ID: "t2", PatientID: "p1", Status: task.StatusPending, CreatedAt: testNow.AddDate(0, 0, -1)},
		{ID: "t3", PatientID: "p1", Status: task.StatusPending, CreatedAt: testNow.AddDate(0, 0, -100)},
	}

	trend := Build(testNow, nil, tasks, 5).TaskTrend
	if len(trend) != taskTrendDays {
		t.Fatalf("expected %d points, got %d", taskTrendDays, len(trend))
	}
	wantDay := testNow.AddDate(0, 0, -1).Format(dayFormat)
	for _, pt := range trend {
		if pt.Date == wantDay {
			if pt.Completed != 1 || pt.Pending != 1 {
				t.Errorf("day %s: expected 1 completed / 1 pending, got %d/%d", pt.Date, pt.Completed, pt.Pending)
			}
		} else if pt.Completed != 0 || pt.Pending != 0 {
			t.Errorf("day %s: expected empty, got %d/%d", pt.Date, pt.Completed, pt.Pending)
		}
	}
}

func TestBuild_DelayReasons(t *testing.T) {
	p1 := makePatient("p1", "MRN-1", patient.StatusBlocked, 2)
	p1.DelayReason = strptr("Insurance pending")
	p2 := makePatient("p2", "MRN-2", patient.StatusBlocked, 4)
	p2.DelayReason = strptr("Insurance pending")
	p3 := makePatient("p3", "MRN-3", patient.StatusInProgress, 1)

	stats := Build(testNow, []*patient.Patient{p1, p2, p3}, nil, 5).DelayReasons
	if len(stats) != 1 {
		t.Fatalf("expected 1 delay reason, got %d", len(stats))
	}
	if stats[0].Reason != "Insurance pending" || stats[0].Count != 2 {
		t.Errorf("unexpected stat: %+v", stats[0])
	}
	if stats[0].AvgDelayHours != float64(3*24) {
		t.Errorf("expected avg delay 72h, got %v", stats[0].AvgDelayHours)
	}
}

func TestBuild_WardOccupancy(t *testing.T) {
	var patients []*patient.Patient
	for i := 0; i < 4; i++ {
		p := makePatient("a", "MRN-A", patient.StatusInProgress, 1)
		p.Ward = strptr("A")
		patients = append(patients, p)
	}
	for i := 0; i < 2; i++ {
		p := makePatient("b", "MRN-B", patient.StatusInProgress, 1)
		p.Ward = strptr("B")
		patients = append(patients, p)
	}

	rows := Build(testNow, patients, nil, 5).WardOccupancy
	if len(rows) != 2 {
		t.Fatalf("expected 2 wards, got %d", len(rows))
	}
	if rows[0].Ward != "A" || rows[0].OccupancyPct != 100 {
		t.Errorf("ward A: expected 100%%, got %+v", rows[0])
	}
	if rows[1].Ward != "B" || rows[1].OccupancyPct != 50 {
		t.Errorf("ward B: expected 50%%, got %+v", rows[1])
	}
}

func TestBuild_PatientRow_ZeroTasks(t *testing.T) {
	p := makePatient("p1", "MRN-1", patient.StatusInProgress, 2)

	rows := Build(testNow, []*patient.Patient{p}, nil, 5).Patients
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].PendingTasks != 0 {
		t.Errorf("expected 0 pending tasks, got %d", rows[0].PendingTasks)
	}
	if rows[0].LengthOfStayDays != 2 {
		t.Errorf("expected 2 day stay, got %v", rows[0].LengthOfStayDays)
	}
}

func TestBuild_PatientRow_PendingTaskCount(t *testing.T) {
	p := makePatient("p1", "MRN-1", patient.StatusBlocked, 1)
	done := testNow
	tasks := []*task.Task{
		{ID: "t1", PatientID: "p1", Status: task.StatusPending, CreatedAt: testNow},
		{ID: "t2", PatientID: "p1", Status: task.StatusInProgress, CreatedAt: testNow},
		{ID: "t3", PatientID: "p1", Status: task.StatusCompleted, CreatedAt: testNow, CompletedAt: &done},
	}

	rows := Build(testNow, []*patient.Patient{p}, tasks, 5).Patients
	if rows[0].PendingTasks != 2 {
		t.Errorf("expected 2 pending tasks, got %d", rows[0].PendingTasks)
	}
}

func TestBuild_SkipsZeroTimestamps(t *testing.T) {
	p := &patient.Patient{
		ID:              "p1",
		MRN:             "MRN-1",
		Name:            "No Timestamps",
		DischargeStatus: patient.StatusCompleted,
	}
	snap := Build(testNow, []*patient.Patient{p}, nil, 5)

	if snap.KPIs.AvgLengthOfStay != 0 {
		t.Errorf("expected zero avg stay, got %v", snap.KPIs.AvgLengthOfStay)
	}
	for _, pt := range snap.Throughput {
		if pt.Actual != 0 {
			t.Errorf("completion with zero updated_at must not be bucketed (day %s)", pt.Date)
		}
	}
	if snap.Patients[0].LengthOfStayDays != 0 {
		t.Errorf("expected zero stay in row, got %v", snap.Patients[0].LengthOfStayDays)
	}
}
