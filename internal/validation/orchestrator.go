package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/murillous/agronomia-API/internal/models"
)

// StageStatus is the per-stage outcome recorded in a Report.
type StageStatus string

const (
	StatusPending StageStatus = "pending"
	StatusPassed  StageStatus = "passed"
	StatusFailed  StageStatus = "failed"
)

// Report records the outcome of each validation stage for one reading. It
// is produced per request and never persisted.
type Report struct {
	CriticalFields     StageStatus `json:"criticalFields"`
	SensorAvailability StageStatus `json:"sensorAvailability"`
	FieldValidations   StageStatus `json:"fieldValidations"`
	Timestamp          StageStatus `json:"timestamp"`
}

func newReport() Report {
	return Report{
		CriticalFields:     StatusPending,
		SensorAvailability: StatusPending,
		FieldValidations:   StatusPending,
		Timestamp:          StatusPending,
	}
}

// Outcome is the aggregate verdict for one reading.
type Outcome struct {
	Report         Report
	Warnings       []string
	WorkingSensors []string
}

// Validate runs the full pipeline against a reading: critical fields,
// sensor availability, timestamp, then per-field checks. The first three
// stages short-circuit with a rejection; field-level problems are collected
// into a single aggregated warning and never block ingestion. The returned
// *Error is nil when the reading is accepted; the Outcome (including the
// stage report) is populated either way.
func Validate(r models.Reading, now time.Time) (Outcome, error) {
	out := Outcome{Report: newReport()}

	critical := CheckCriticalFields(r)
	out.Report.CriticalFields = statusOf(critical.IsValid)
	if !critical.IsValid {
		return out, &Error{Stage: StageCriticalFields, Message: critical.Message}
	}

	sensors := CheckSensorAvailability(r)
	out.Report.SensorAvailability = statusOf(sensors.IsValid)
	if !sensors.IsValid {
		return out, &Error{Stage: StageSensorAvailability, Message: sensors.Message}
	}
	out.WorkingSensors = sensors.WorkingSensors
	if sensors.Message != "" {
		out.Warnings = append(out.Warnings, sensors.Message)
	}

	tsResult := ValidateTimestamp(r[models.FieldTimestamp], now)
	out.Report.Timestamp = statusOf(tsResult.IsValid)
	if !tsResult.IsValid {
		return out, &Error{Stage: StageTimestamp, Message: tsResult.Message}
	}

	// Field order in the wire payload is not observable after JSON decode;
	// sorted iteration keeps the aggregated warning deterministic.
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)

	var fieldErrors []string
	for _, name := range names {
		result := ValidateField(name, r[name])
		if !result.IsValid {
			fieldErrors = append(fieldErrors, result.Message)
		}
		if result.Warning != "" {
			out.Warnings = append(out.Warnings, result.Warning)
		}
	}

	out.Report.FieldValidations = statusOf(len(fieldErrors) == 0)

	// Field problems are recorded but do not reject: a partially wrong
	// reading is worth more than a dropped transmission.
	if len(fieldErrors) > 0 {
		out.Warnings = append(out.Warnings,
			fmt.Sprintf("problems in %d field(s): %s", len(fieldErrors), strings.Join(fieldErrors, "; ")))
	}

	return out, nil
}

func statusOf(passed bool) StageStatus {
	if passed {
		return StatusPassed
	}
	return StatusFailed
}
