package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Kind identifies the JSON type carried by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindString
	KindBool
	KindArray
	KindObject
)

// TypeName returns the JSON type name, used in validation messages.
func (k Kind) TypeName() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is one field of a station transmission: a JSON scalar kept as a
// tagged union so the validation pipeline can branch on the wire type
// without reflection. Arrays and objects are carried opaquely; they are
// never valid sensor values but must survive pass-through untouched.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
	Bool bool
	Raw  json.RawMessage // set only for KindArray / KindObject
}

// NumberValue builds a numeric Value.
func NumberValue(n float64) Value {
	return Value{Kind: KindNumber, Num: n}
}

// StringValue builds a string Value.
func StringValue(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// NullValue builds an explicit JSON null.
func NullValue() Value {
	return Value{Kind: KindNull}
}

// IsNull reports whether the value is an explicit null. An absent field is
// represented by a missing map key, not by a null Value.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// UnmarshalJSON decodes any JSON value into the tagged union.
func (v *Value) UnmarshalJSON(data []byte) error {
	i := 0
	for i < len(data) && (data[i] == ' ' || data[i] == '\t' || data[i] == '\n' || data[i] == '\r') {
		i++
	}
	if i >= len(data) {
		return fmt.Errorf("empty JSON value")
	}

	switch data[i] {
	case 'n':
		*v = Value{Kind: KindNull}
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value{Kind: KindString, Str: s}
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Value{Kind: KindBool, Bool: b}
		return nil
	case '[':
		*v = Value{Kind: KindArray, Raw: append(json.RawMessage(nil), data...)}
		return nil
	case '{':
		*v = Value{Kind: KindObject, Raw: append(json.RawMessage(nil), data...)}
		return nil
	default:
		n, err := strconv.ParseFloat(string(data[i:]), 64)
		if err != nil {
			return fmt.Errorf("invalid JSON value: %s", string(data))
		}
		*v = Value{Kind: KindNumber, Num: n}
		return nil
	}
}

// MarshalJSON encodes the union back to its original JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// Interface converts the value to the plain Go representation used in
// normalized records.
func (v Value) Interface() interface{} {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindString:
		return v.Str
	case KindBool:
		return v.Bool
	case KindArray, KindObject:
		return v.Raw
	default:
		return nil
	}
}

// Reading is one raw transmission from a weather station: field name to
// scalar value. It lives only for the duration of one request.
type Reading map[string]Value

// StationID returns the IdEstacao field as an integer, valid only after the
// reading passed critical-field validation.
func (r Reading) StationID() int64 {
	v, ok := r[FieldStationID]
	if !ok || v.Kind != KindNumber {
		return 0
	}
	return int64(v.Num)
}

// Timestamp returns the station-reported epoch-ms timestamp, valid only
// after the reading passed timestamp validation.
func (r Reading) Timestamp() int64 {
	v, ok := r[FieldTimestamp]
	if !ok || v.Kind != KindString {
		return 0
	}
	ts, _ := strconv.ParseInt(v.Str, 10, 64)
	return ts
}

// NormalizedRecord is a reading with every recognized field coerced to its
// declared type, unrecognized fields passed through unchanged, and the
// schema version stamped. This is what gets persisted.
type NormalizedRecord map[string]interface{}

// StoredRecord is a persisted reading together with the identity and the
// server-side processing timestamp the store assigned at write time.
type StoredRecord struct {
	ID          int64            `json:"id" db:"id"`
	StationID   int64            `json:"station_id" db:"station_id"`
	Ts          int64            `json:"ts" db:"ts"`
	Payload     NormalizedRecord `json:"payload" db:"-"`
	RawPayload  []byte           `json:"-" db:"payload"`
	ProcessedAt time.Time        `json:"processed_at" db:"processed_at"`
}

// DecodePayload unmarshals the raw JSONB column into Payload.
func (s *StoredRecord) DecodePayload() error {
	if len(s.RawPayload) == 0 {
		s.Payload = NormalizedRecord{}
		return nil
	}
	if err := json.Unmarshal(s.RawPayload, &s.Payload); err != nil {
		return fmt.Errorf("failed to decode stored payload: %w", err)
	}
	return nil
}

// StationSummary aggregates stored readings per station.
type StationSummary struct {
	StationID    int64 `json:"station_id" db:"station_id"`
	ReadingCount int   `json:"reading_count" db:"reading_count"`
	FirstTs      int64 `json:"first_ts" db:"first_ts"`
	LastTs       int64 `json:"last_ts" db:"last_ts"`
}
