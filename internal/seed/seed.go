// Package seed loads a small set of demo discharge patients for local
// development and UI demos. Seeding is idempotent: patients are keyed by
// MRN and skipped when already present.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/dischargeflow/dischargeflow/internal/domain/patient"
)

type demoPatient struct {
	mrn         string
	name        string
	age         int
	admissionID string
	diagnosis   string
	ward        string
	bed         string
	readiness   float64
	risk        float64
	delayReason string
	status      string
	expectedIn  time.Duration
}

var demoPatients = []demoPatient{
	{
		mrn: "MRN-1001", name: "Rajesh Kumar", age: 58, admissionID: "ADM-2025-0147",
		diagnosis: "Acute appendicitis, post appendectomy", ward: "General Surgery", bed: "GS-12",
		readiness: 82, risk: 0.25, status: patient.StatusInProgress, expectedIn: 18 * time.Hour,
	},
	{
		mrn: "MRN-1002", name: "Priya Sharma", age: 67, admissionID: "ADM-2025-0153",
		diagnosis: "Congestive heart failure exacerbation", ward: "Cardiology", bed: "CD-04",
		readiness: 55, risk: 0.78, delayReason: "Awaiting cardiology clearance",
		status: patient.StatusBlocked, expectedIn: 72 * time.Hour,
	},
	{
		mrn: "MRN-1003", name: "Arjun Mehta", age: 42, admissionID: "ADM-2025-0160",
		diagnosis: "Community acquired pneumonia", ward: "General Medicine", bed: "GM-21",
		readiness: 90, risk: 0.15, status: patient.StatusReady, expectedIn: 8 * time.Hour,
	},
	{
		mrn: "MRN-1004", name: "Lakshmi Nair", age: 74, admissionID: "ADM-2025-0161",
		diagnosis: "Hip replacement, post-operative", ward: "Orthopedics", bed: "OR-07",
		readiness: 48, risk: 0.62, delayReason: "Physiotherapy incomplete",
		status: patient.StatusBlocked, expectedIn: 96 * time.Hour,
	},
	{
		mrn: "MRN-1005", name: "Vikram Singh", age: 35, admissionID: "ADM-2025-0168",
		diagnosis: "Diabetic ketoacidosis, resolved", ward: "General Medicine", bed: "GM-08",
		readiness: 75, risk: 0.44, delayReason: "Insurance pending",
		status: patient.StatusInProgress, expectedIn: 30 * time.Hour,
	},
	{
		mrn: "MRN-1006", name: "Ananya Iyer", age: 29, admissionID: "ADM-2025-0171",
		diagnosis: "Cholecystectomy, post-operative", ward: "General Surgery", bed: "GS-03",
		readiness: 95, risk: 0.08, status: patient.StatusPending, expectedIn: 20 * time.Hour,
	},
}

// Run inserts the demo patients that are not already present. Returns
// the number of patients inserted.
func Run(ctx context.Context, pool *pgxpool.Pool, patients patient.Repository, log zerolog.Logger) (int, error) {
	inserted := 0
	for _, d := range demoPatients {
		var exists bool
		if err := pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM patients WHERE mrn = $1)`, d.mrn).Scan(&exists); err != nil {
			return inserted, fmt.Errorf("check existing patient %s: %w", d.mrn, err)
		}
		if exists {
			log.Debug().Str("mrn", d.mrn).Msg("patient already seeded, skipping")
			continue
		}

		age := d.age
		diagnosis := d.diagnosis
		ward := d.ward
		bed := d.bed
		readiness := d.readiness
		risk := d.risk
		expected := time.Now().UTC().Add(d.expectedIn)

		p := &patient.Patient{
			MRN:                 d.mrn,
			Name:                d.name,
			Age:                 &age,
			AdmissionID:         d.admissionID,
			Diagnosis:           &diagnosis,
			Ward:                &ward,
			Bed:                 &bed,
			ReadinessScore:      &readiness,
			ReadmissionRisk:     &risk,
			RiskLevel:           patient.DeriveRiskLevel(&risk),
			ExpectedDischargeAt: &expected,
			DischargeStatus:     d.status,
		}
		if d.delayReason != "" {
			reason := d.delayReason
			p.DelayReason = &reason
		}

		if err := patients.Create(ctx, p); err != nil {
			return inserted, fmt.Errorf("seed patient %s: %w", d.mrn, err)
		}
		inserted++
		log.Info().Str("mrn", d.mrn).Str("name", d.name).Msg("seeded patient")
	}
	return inserted, nil
}
