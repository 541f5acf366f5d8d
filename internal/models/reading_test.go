package models

import (
	"encoding/json"
	"testing"
)

func TestValueUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Value
		wantErr bool
	}{
		{name: "number", input: `23.5`, want: Value{Kind: KindNumber, Num: 23.5}},
		{name: "integer number", input: `42`, want: Value{Kind: KindNumber, Num: 42}},
		{name: "negative number", input: `-50`, want: Value{Kind: KindNumber, Num: -50}},
		{name: "string", input: `"1746466087000"`, want: Value{Kind: KindString, Str: "1746466087000"}},
		{name: "null", input: `null`, want: Value{Kind: KindNull}},
		{name: "bool", input: `true`, want: Value{Kind: KindBool, Bool: true}},
		{name: "leading whitespace", input: ` 7`, want: Value{Kind: KindNumber, Num: 7}},
		{name: "garbage", input: `not-json`, wantErr: true},
		{name: "empty", input: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Value
			err := json.Unmarshal([]byte(tt.input), &v)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			if v.Kind != tt.want.Kind || v.Num != tt.want.Num || v.Str != tt.want.Str || v.Bool != tt.want.Bool {
				t.Errorf("Unmarshal(%q) = %+v, want %+v", tt.input, v, tt.want)
			}
		})
	}
}

func TestValueUnmarshalJSONComposite(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`[1,2,3]`), &v); err != nil {
		t.Fatalf("Unmarshal(array) error = %v", err)
	}
	if v.Kind != KindArray {
		t.Errorf("Kind = %v, want KindArray", v.Kind)
	}
	if string(v.Raw) != `[1,2,3]` {
		t.Errorf("Raw = %s, want original bytes", v.Raw)
	}

	if err := json.Unmarshal([]byte(`{"a":1}`), &v); err != nil {
		t.Fatalf("Unmarshal(object) error = %v", err)
	}
	if v.Kind != KindObject {
		t.Errorf("Kind = %v, want KindObject", v.Kind)
	}
}

func TestReadingDecode(t *testing.T) {
	payload := `{"IdEstacao": 42, "ts": "1746466087000", "Temperatura": 25.3, "Umidade": null, "VersaoSw": "2.1.0"}`

	var r Reading
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		t.Fatalf("Unmarshal reading: %v", err)
	}

	if got := r.StationID(); got != 42 {
		t.Errorf("StationID() = %d, want 42", got)
	}
	if got := r.Timestamp(); got != 1746466087000 {
		t.Errorf("Timestamp() = %d, want 1746466087000", got)
	}

	if v := r["Temperatura"]; v.Kind != KindNumber || v.Num != 25.3 {
		t.Errorf("Temperatura = %+v, want number 25.3", v)
	}
	if v := r["Umidade"]; !v.IsNull() {
		t.Errorf("Umidade should be null, got %+v", v)
	}
	if v := r["VersaoSw"]; v.Kind != KindString || v.Str != "2.1.0" {
		t.Errorf("VersaoSw = %+v, want string 2.1.0", v)
	}
	if _, ok := r["Pressao"]; ok {
		t.Error("absent field should not appear in the map")
	}
}

func TestFieldSpecsTable(t *testing.T) {
	// Every critical and sensor field must have a spec entry.
	for _, field := range CriticalFields {
		if _, ok := FieldSpecs[field]; !ok {
			t.Errorf("critical field %s missing from FieldSpecs", field)
		}
	}
	for _, field := range SensorFields {
		if _, ok := FieldSpecs[field]; !ok {
			t.Errorf("sensor field %s missing from FieldSpecs", field)
		}
	}

	temp, ok := FieldSpecs["Temperatura"]
	if !ok {
		t.Fatal("Temperatura missing from FieldSpecs")
	}
	if temp.Type != FieldFloat {
		t.Errorf("Temperatura.Type = %v, want float", temp.Type)
	}
	if temp.Min == nil || *temp.Min != -50 || temp.Max == nil || *temp.Max != 70 {
		t.Errorf("Temperatura bounds = [%v, %v], want [-50, 70]", temp.Min, temp.Max)
	}
	if temp.Unit != "°C" {
		t.Errorf("Temperatura.Unit = %q, want °C", temp.Unit)
	}

	ts := FieldSpecs[FieldTimestamp]
	if ts.Type != FieldString {
		t.Errorf("ts.Type = %v, want string", ts.Type)
	}
}

func TestStoredRecordDecodePayload(t *testing.T) {
	record := &StoredRecord{
		RawPayload: []byte(`{"Temperatura": 25.3, "apiVersion": "1.2.0"}`),
	}

	if err := record.DecodePayload(); err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if record.Payload["Temperatura"] != 25.3 {
		t.Errorf("Payload[Temperatura] = %v, want 25.3", record.Payload["Temperatura"])
	}

	empty := &StoredRecord{}
	if err := empty.DecodePayload(); err != nil {
		t.Fatalf("DecodePayload on empty: %v", err)
	}
	if empty.Payload == nil {
		t.Error("DecodePayload on empty should produce an empty map")
	}
}
