package validation

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/murillous/agronomia-API/internal/models"
)

func msTimestamp(t time.Time) models.Value {
	return models.StringValue(strconv.FormatInt(t.UnixMilli(), 10))
}

func TestCheckCriticalFields(t *testing.T) {
	tests := []struct {
		name        string
		reading     models.Reading
		wantValid   bool
		wantMissing string
	}{
		{
			name: "both critical fields present",
			reading: models.Reading{
				"IdEstacao": models.NumberValue(42),
				"ts":        models.StringValue("1746466087000"),
			},
			wantValid: true,
		},
		{
			name:        "nil reading",
			reading:     nil,
			wantValid:   false,
			wantMissing: "",
		},
		{
			name: "station id missing",
			reading: models.Reading{
				"ts": models.StringValue("1746466087000"),
			},
			wantValid:   false,
			wantMissing: "IdEstacao",
		},
		{
			name: "station id null",
			reading: models.Reading{
				"IdEstacao": models.NullValue(),
				"ts":        models.StringValue("1746466087000"),
			},
			wantValid:   false,
			wantMissing: "IdEstacao",
		},
		{
			name: "timestamp missing",
			reading: models.Reading{
				"IdEstacao": models.NumberValue(42),
			},
			wantValid:   false,
			wantMissing: "ts",
		},
		{
			name: "timestamp null",
			reading: models.Reading{
				"IdEstacao": models.NumberValue(42),
				"ts":        models.NullValue(),
			},
			wantValid:   false,
			wantMissing: "ts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckCriticalFields(tt.reading)

			if result.IsValid != tt.wantValid {
				t.Fatalf("IsValid = %v, want %v (message: %s)", result.IsValid, tt.wantValid, result.Message)
			}
			if result.MissingField != tt.wantMissing {
				t.Errorf("MissingField = %q, want %q", result.MissingField, tt.wantMissing)
			}
			if !tt.wantValid && result.Message == "" {
				t.Error("failed check should carry a message")
			}
		})
	}
}

func TestCheckSensorAvailability(t *testing.T) {
	tests := []struct {
		name        string
		reading     models.Reading
		wantValid   bool
		wantSensors []string
	}{
		{
			name: "two sensors reporting",
			reading: models.Reading{
				"IdEstacao":   models.NumberValue(42),
				"Temperatura": models.NumberValue(25.3),
				"Umidade":     models.NumberValue(60),
			},
			wantValid:   true,
			wantSensors: []string{"Temperatura", "Umidade"},
		},
		{
			name: "no sensor fields at all",
			reading: models.Reading{
				"IdEstacao": models.NumberValue(42),
				"ts":        models.StringValue("1746466087000"),
			},
			wantValid: false,
		},
		{
			name: "all sensors null",
			reading: models.Reading{
				"Temperatura": models.NullValue(),
				"Umidade":     models.NullValue(),
				"Pressao":     models.NullValue(),
			},
			wantValid: false,
		},
		{
			name: "single sensor with zero value counts",
			reading: models.Reading{
				"PluviometroH": models.NumberValue(0),
			},
			wantValid:   true,
			wantSensors: []string{"PluviometroH"},
		},
		{
			name: "non-sensor fields do not count",
			reading: models.Reading{
				"Bateria": models.NumberValue(80),
				"RSSI":    models.NumberValue(-70),
			},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckSensorAvailability(tt.reading)

			if result.IsValid != tt.wantValid {
				t.Fatalf("IsValid = %v, want %v (message: %s)", result.IsValid, tt.wantValid, result.Message)
			}

			if len(result.WorkingSensors) != len(tt.wantSensors) {
				t.Fatalf("WorkingSensors = %v, want %v", result.WorkingSensors, tt.wantSensors)
			}
			for i, sensor := range tt.wantSensors {
				if result.WorkingSensors[i] != sensor {
					t.Errorf("WorkingSensors[%d] = %s, want %s", i, result.WorkingSensors[i], sensor)
				}
			}

			if tt.wantValid && !strings.Contains(result.Message, "sensor(s) reporting") {
				t.Errorf("informational message %q should list working sensors", result.Message)
			}
		})
	}
}

func TestValidateTimestamp(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		value       models.Value
		wantValid   bool
		wantMessage string
	}{
		{
			name:      "exactly now",
			value:     msTimestamp(now),
			wantValid: true,
		},
		{
			name:        "missing",
			value:       models.NullValue(),
			wantValid:   false,
			wantMessage: "required",
		},
		{
			name:        "not a string",
			value:       models.NumberValue(1746466087000),
			wantValid:   false,
			wantMessage: "must be a string",
		},
		{
			name:        "not numeric",
			value:       models.StringValue("yesterday"),
			wantValid:   false,
			wantMessage: "valid number",
		},
		{
			name:        "too few digits",
			value:       models.StringValue("1746466087"),
			wantValid:   false,
			wantMessage: "13 digits",
		},
		{
			name:        "too many digits",
			value:       models.StringValue("17464660870001"),
			wantValid:   false,
			wantMessage: "13 digits",
		},
		{
			name:        "leading zeros shrink the parsed value",
			value:       models.StringValue("0174646608700"),
			wantValid:   false,
			wantMessage: "13 digits",
		},
		{
			name:      "six days old",
			value:     msTimestamp(now.Add(-6 * 24 * time.Hour)),
			wantValid: true,
		},
		{
			name:      "exactly seven days old",
			value:     msTimestamp(now.Add(-7 * 24 * time.Hour)),
			wantValid: true,
		},
		{
			name:        "more than seven days old",
			value:       msTimestamp(now.Add(-7*24*time.Hour - time.Millisecond)),
			wantValid:   false,
			wantMessage: "too old",
		},
		{
			name:      "fifty-nine minutes ahead",
			value:     msTimestamp(now.Add(59 * time.Minute)),
			wantValid: true,
		},
		{
			name:      "exactly one hour ahead",
			value:     msTimestamp(now.Add(time.Hour)),
			wantValid: true,
		},
		{
			name:        "more than one hour ahead",
			value:       msTimestamp(now.Add(time.Hour + time.Millisecond)),
			wantValid:   false,
			wantMessage: "too far in the future",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateTimestamp(tt.value, now)

			if result.IsValid != tt.wantValid {
				t.Fatalf("IsValid = %v, want %v (message: %s)", result.IsValid, tt.wantValid, result.Message)
			}
			if tt.wantMessage != "" && !strings.Contains(result.Message, tt.wantMessage) {
				t.Errorf("Message = %q, want it to contain %q", result.Message, tt.wantMessage)
			}
		})
	}
}

func TestValidateTimestampMessageCarriesInstant(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	old := now.Add(-30 * 24 * time.Hour)

	result := ValidateTimestamp(msTimestamp(old), now)
	if result.IsValid {
		t.Fatal("a month-old timestamp should fail")
	}
	if !strings.Contains(result.Message, old.Format(time.RFC3339)) {
		t.Errorf("Message = %q, want it to contain %s", result.Message, old.Format(time.RFC3339))
	}
}

func TestValidateField(t *testing.T) {
	tests := []struct {
		name        string
		field       string
		value       models.Value
		wantValid   bool
		wantMessage string
		wantWarning string
	}{
		{
			name:      "float in range",
			field:     "Temperatura",
			value:     models.NumberValue(25.3),
			wantValid: true,
		},
		{
			name:        "unrecognized field",
			field:       "Ventilador",
			value:       models.NumberValue(1),
			wantValid:   true,
			wantWarning: "unrecognized field: Ventilador",
		},
		{
			name:      "null is always valid",
			field:     "Temperatura",
			value:     models.NullValue(),
			wantValid: true,
		},
		{
			name:        "numeric field with string value",
			field:       "Umidade",
			value:       models.StringValue("60"),
			wantValid:   false,
			wantMessage: "must be a number, received: string",
		},
		{
			name:        "numeric field with bool value",
			field:       "Umidade",
			value:       models.Value{Kind: models.KindBool, Bool: true},
			wantValid:   false,
			wantMessage: "must be a number, received: boolean",
		},
		{
			name:        "below minimum",
			field:       "Temperatura",
			value:       models.NumberValue(-80),
			wantValid:   false,
			wantMessage: "out of bounds: -80 < -50 °C",
		},
		{
			name:        "above maximum",
			field:       "Temperatura",
			value:       models.NumberValue(999),
			wantValid:   false,
			wantMessage: "out of bounds: 999 > 70 °C",
		},
		{
			name:      "exactly at minimum",
			field:     "Temperatura",
			value:     models.NumberValue(-50),
			wantValid: true,
		},
		{
			name:      "exactly at maximum",
			field:     "Temperatura",
			value:     models.NumberValue(70),
			wantValid: true,
		},
		{
			name:        "string field with number value",
			field:       "VersaoSw",
			value:       models.NumberValue(2),
			wantValid:   false,
			wantMessage: "must be a string, received: number",
		},
		{
			name:      "string field with string value",
			field:     "VersaoSw",
			value:     models.StringValue("2.1.0"),
			wantValid: true,
		},
		{
			name:        "integer field out of bounds",
			field:       "RSSI",
			value:       models.NumberValue(10),
			wantValid:   false,
			wantMessage: "out of bounds: 10 > 0 dBm",
		},
		{
			name:        "bounded field without unit",
			field:       "IdEstacao",
			value:       models.NumberValue(0),
			wantValid:   false,
			wantMessage: "out of bounds: 0 < 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateField(tt.field, tt.value)

			if result.IsValid != tt.wantValid {
				t.Fatalf("IsValid = %v, want %v (message: %s)", result.IsValid, tt.wantValid, result.Message)
			}
			if tt.wantMessage != "" && !strings.Contains(result.Message, tt.wantMessage) {
				t.Errorf("Message = %q, want it to contain %q", result.Message, tt.wantMessage)
			}
			if result.Warning != tt.wantWarning {
				t.Errorf("Warning = %q, want %q", result.Warning, tt.wantWarning)
			}
		})
	}
}
