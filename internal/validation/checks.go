package validation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/murillous/agronomia-API/internal/models"
)

// Stage identifies which validation stage rejected a reading.
type Stage string

const (
	StageCriticalFields     Stage = "critical_fields"
	StageSensorAvailability Stage = "sensor_availability"
	StageTimestamp          Stage = "timestamp"
	StageFieldValidations   Stage = "field_validations"
)

// Error is a validation rejection. It carries the failing stage so the HTTP
// layer can map it to a 400 with a stage-specific message.
type Error struct {
	Stage   Stage
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// IsTransient returns false; a rejected reading stays rejected.
func (e *Error) IsTransient() bool {
	return false
}

// CriticalResult is the outcome of the critical-field check.
type CriticalResult struct {
	IsValid      bool
	MissingField string
	Message      string
}

// CheckCriticalFields verifies that every identification field is present
// and non-null. The first missing field is reported.
//
// The original station firmware contract enforced only the first critical
// field due to an early loop return; all critical fields are checked here,
// which rejects the same payloads with a more precise message.
func CheckCriticalFields(r models.Reading) CriticalResult {
	if r == nil {
		return CriticalResult{
			IsValid: false,
			Message: "payload must be a valid JSON object",
		}
	}

	for _, field := range models.CriticalFields {
		v, ok := r[field]
		if !ok || v.IsNull() {
			return CriticalResult{
				IsValid:      false,
				MissingField: field,
				Message:      fmt.Sprintf("missing critical field: %s", field),
			}
		}
	}

	return CriticalResult{IsValid: true}
}

// SensorResult is the outcome of the sensor-availability check.
type SensorResult struct {
	IsValid        bool
	WorkingSensors []string
	Message        string
}

// CheckSensorAvailability collects the sensor fields that carry a usable
// value. A sensor counts when its field is present and non-null. An empty
// set fails; otherwise the count and names are returned as an informational
// message to be surfaced as a warning upstream.
func CheckSensorAvailability(r models.Reading) SensorResult {
	working := make([]string, 0, len(models.SensorFields))

	for _, field := range models.SensorFields {
		if v, ok := r[field]; ok && !v.IsNull() {
			working = append(working, field)
		}
	}

	if len(working) == 0 {
		return SensorResult{
			IsValid: false,
			Message: "no sensor is reporting valid data",
		}
	}

	return SensorResult{
		IsValid:        true,
		WorkingSensors: working,
		Message:        fmt.Sprintf("%d sensor(s) reporting: %s", len(working), strings.Join(working, ", ")),
	}
}

// TimestampResult is the outcome of the timestamp check.
type TimestampResult struct {
	IsValid bool
	Message string
}

// Freshness window for station timestamps relative to server time.
const (
	maxTimestampAge    = 7 * 24 * time.Hour
	maxTimestampFuture = time.Hour
)

// ValidateTimestamp checks the station-reported ts value: present, string
// typed, numeric, exactly 13 digits (millisecond epoch), and inside the
// [now - 7 days, now + 1 hour] freshness window.
func ValidateTimestamp(v models.Value, now time.Time) TimestampResult {
	if v.IsNull() {
		return TimestampResult{IsValid: false, Message: "timestamp (ts) is required"}
	}

	if v.Kind != models.KindString {
		return TimestampResult{IsValid: false, Message: "timestamp (ts) must be a string"}
	}

	ts, err := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 64)
	if err != nil {
		return TimestampResult{
			IsValid: false,
			Message: "timestamp (ts) must be a valid number in epoch ms format",
		}
	}

	if len(strconv.FormatInt(ts, 10)) != 13 {
		return TimestampResult{
			IsValid: false,
			Message: "timestamp (ts) must be in epoch milliseconds format (13 digits)",
		}
	}

	oldest := now.Add(-maxTimestampAge).UnixMilli()
	newest := now.Add(maxTimestampFuture).UnixMilli()

	if ts < oldest {
		return TimestampResult{
			IsValid: false,
			Message: fmt.Sprintf("timestamp too old: %s", time.UnixMilli(ts).UTC().Format(time.RFC3339)),
		}
	}

	if ts > newest {
		return TimestampResult{
			IsValid: false,
			Message: fmt.Sprintf("timestamp too far in the future: %s", time.UnixMilli(ts).UTC().Format(time.RFC3339)),
		}
	}

	return TimestampResult{IsValid: true}
}

// FieldResult is the outcome of a single-field check.
type FieldResult struct {
	IsValid bool
	Message string
	Warning string
}

// ValidateField checks one field against its specification. Unknown fields
// are valid with a warning; null values are always valid (sensor dropout).
// Numeric fields must carry a number inside the declared bounds; string
// fields must carry a string.
func ValidateField(name string, v models.Value) FieldResult {
	spec, ok := models.FieldSpecs[name]
	if !ok {
		return FieldResult{
			IsValid: true,
			Warning: fmt.Sprintf("unrecognized field: %s", name),
		}
	}

	if v.IsNull() {
		return FieldResult{IsValid: true}
	}

	switch spec.Type {
	case models.FieldFloat, models.FieldInteger:
		if v.Kind != models.KindNumber {
			return FieldResult{
				IsValid: false,
				Message: fmt.Sprintf("field '%s' must be a number, received: %s", name, v.Kind.TypeName()),
			}
		}

		if spec.Min != nil && v.Num < *spec.Min {
			return FieldResult{
				IsValid: false,
				Message: boundsMessage(name, v.Num, "<", *spec.Min, spec.Unit),
			}
		}
		if spec.Max != nil && v.Num > *spec.Max {
			return FieldResult{
				IsValid: false,
				Message: boundsMessage(name, v.Num, ">", *spec.Max, spec.Unit),
			}
		}

	case models.FieldString:
		if v.Kind != models.KindString {
			return FieldResult{
				IsValid: false,
				Message: fmt.Sprintf("field '%s' must be a string, received: %s", name, v.Kind.TypeName()),
			}
		}
	}

	return FieldResult{IsValid: true}
}

func boundsMessage(name string, value float64, op string, bound float64, unit string) string {
	msg := fmt.Sprintf("field '%s' out of bounds: %v %s %v", name, value, op, bound)
	if unit != "" {
		msg += " " + unit
	}
	return msg
}
