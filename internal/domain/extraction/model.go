package extraction

import "time"

// Provenance values recorded on every snapshot. A snapshot always says
// how it was produced, including the fallback paths.
const (
	ProvenanceAutomation      = "automation_success"
	ProvenanceErrorFallback   = "error_fallback"
	ProvenanceInvalidFallback = "invalid_response_fallback"
)

// ExtractedData is one clinical snapshot for a patient. Open-ended
// sections (labs, vitals, notes) stay schemaless so upstream systems can
// add fields without a migration.
type ExtractedData struct {
	ID                string                 `db:"id" json:"id"`
	PatientID         string                 `db:"patient_id" json:"patient_id"`
	Labs              map[string]interface{} `db:"labs" json:"labs"`
	Vitals            map[string]interface{} `db:"vitals" json:"vitals"`
	PharmacyPending   []interface{}          `db:"pharmacy_pending" json:"pharmacy_pending"`
	RadiologyPending  []interface{}          `db:"radiology_pending" json:"radiology_pending"`
	BillingPending    map[string]interface{} `db:"billing_pending" json:"billing_pending"`
	DoctorNotes       []interface{}          `db:"doctor_notes" json:"doctor_notes"`
	Procedures        []interface{}          `db:"procedures" json:"procedures"`
	NursingNotes      []interface{}          `db:"nursing_notes" json:"nursing_notes"`
	DischargeBlockers []interface{}          `db:"discharge_blockers" json:"discharge_blockers"`
	RawData           map[string]interface{} `db:"raw_data" json:"raw_data"`
	ExtractedAt       time.Time              `db:"extracted_at" json:"extracted_at"`
}

// Normalize replaces nil sections with empty containers so consumers
// never branch on null.
func (e *ExtractedData) Normalize() {
	if e.Labs == nil {
		e.Labs = map[string]interface{}{}
	}
	if e.Vitals == nil {
		e.Vitals = map[string]interface{}{}
	}
	if e.PharmacyPending == nil {
		e.PharmacyPending = []interface{}{}
	}
	if e.RadiologyPending == nil {
		e.RadiologyPending = []interface{}{}
	}
	if e.BillingPending == nil {
		e.BillingPending = map[string]interface{}{}
	}
	if e.DoctorNotes == nil {
		e.DoctorNotes = []interface{}{}
	}
	if e.Procedures == nil {
		e.Procedures = []interface{}{}
	}
	if e.NursingNotes == nil {
		e.NursingNotes = []interface{}{}
	}
	if e.DischargeBlockers == nil {
		e.DischargeBlockers = []interface{}{}
	}
	if e.RawData == nil {
		e.RawData = map[string]interface{}{}
	}
}

// Method reports how the snapshot was produced, from the raw_data
// extraction_method field.
func (e *ExtractedData) Method() string {
	if e.RawData == nil {
		return ""
	}
	m, _ := e.RawData["extraction_method"].(string)
	return m
}

// BillingAmount returns the pending billing amount, tolerating both
// float and int encodings of the field.
func (e *ExtractedData) BillingAmount() float64 {
	if e.BillingPending == nil {
		return 0
	}
	switch v := e.BillingPending["amount"].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// Blockers returns the discharge blockers as strings, skipping
// anything that is not a string.
func (e *ExtractedData) Blockers() []string {
	out := make([]string, 0, len(e.DischargeBlockers))
	for _, b := range e.DischargeBlockers {
		if s, ok := b.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
