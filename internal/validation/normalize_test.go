package validation

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/murillous/agronomia-API/internal/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value models.Value
		want  interface{}
	}{
		{
			name:  "float stays float",
			field: "Temperatura",
			value: models.NumberValue(25.3),
			want:  25.3,
		},
		{
			name:  "float from string",
			field: "Temperatura",
			value: models.StringValue("23.5"),
			want:  23.5,
		},
		{
			name:  "float from padded string",
			field: "Umidade",
			value: models.StringValue(" 60.2 "),
			want:  60.2,
		},
		{
			name:  "integer rounds half up",
			field: "Solarizacao",
			value: models.NumberValue(10.7),
			want:  int64(11),
		},
		{
			name:  "integer rounds down",
			field: "PluviometroH",
			value: models.NumberValue(3.2),
			want:  int64(3),
		},
		{
			name:  "integer from string",
			field: "Bateria",
			value: models.StringValue("80"),
			want:  int64(80),
		},
		{
			name:  "string stays string",
			field: "VersaoSw",
			value: models.StringValue("2.1.0"),
			want:  "2.1.0",
		},
		{
			name:  "string from number",
			field: "VersaoSw",
			value: models.NumberValue(2),
			want:  "2",
		},
		{
			name:  "null passes through",
			field: "Temperatura",
			value: models.NullValue(),
			want:  nil,
		},
		{
			name:  "unparseable string kept as-is",
			field: "Temperatura",
			value: models.StringValue("quente"),
			want:  "quente",
		},
		{
			name:  "bool coerces to numeric",
			field: "Bateria",
			value: models.Value{Kind: models.KindBool, Bool: true},
			want:  int64(1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaned := Normalize(models.Reading{tt.field: tt.value})

			got, ok := cleaned[tt.field]
			if !ok {
				t.Fatalf("field %s missing from normalized record", tt.field)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("%s = %v (%T), want %v (%T)", tt.field, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestNormalizeStampsVersion(t *testing.T) {
	cleaned := Normalize(models.Reading{})
	if cleaned["apiVersion"] != models.SchemaVersion {
		t.Errorf("apiVersion = %v, want %s", cleaned["apiVersion"], models.SchemaVersion)
	}
}

func TestNormalizeUnknownFieldPassthrough(t *testing.T) {
	var r models.Reading
	payload := []byte(`{"Ventilador": {"rpm": 1200}, "Etiquetas": ["a", "b"]}`)
	if err := json.Unmarshal(payload, &r); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	cleaned := Normalize(r)

	// Unknown composite fields survive re-encoding untouched.
	encoded, err := json.Marshal(cleaned["Ventilador"])
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(encoded) != `{"rpm": 1200}` && string(encoded) != `{"rpm":1200}` {
		t.Errorf("Ventilador round-trip = %s", encoded)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	r := models.Reading{
		"IdEstacao":   models.NumberValue(42),
		"ts":          models.StringValue("1746466087000"),
		"Temperatura": models.StringValue("23.5"),
		"Umidade":     models.NumberValue(60),
	}

	first := Normalize(r)

	// Feed the normalized record back through the wire representation.
	encoded, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var again models.Reading
	if err := json.Unmarshal(encoded, &again); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	second := Normalize(again)

	for _, field := range []string{"IdEstacao", "ts", "Temperatura", "Umidade", "apiVersion"} {
		a, _ := json.Marshal(first[field])
		b, _ := json.Marshal(second[field])
		if string(a) != string(b) {
			t.Errorf("%s changed on second pass: %s vs %s", field, a, b)
		}
	}
}
