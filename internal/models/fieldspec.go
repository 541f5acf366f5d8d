package models

// FieldType is the declared type of a station field.
type FieldType string

const (
	FieldFloat   FieldType = "float"
	FieldInteger FieldType = "integer"
	FieldString  FieldType = "string"
)

// FieldSpec describes one station field: declared type, optional inclusive
// numeric bounds, and unit label. Fields with no entry in FieldSpecs are
// treated as unknown pass-through.
type FieldSpec struct {
	Type FieldType
	Min  *float64
	Max  *float64
	Unit string
}

// SchemaVersion is stamped on every normalized record under "apiVersion".
const SchemaVersion = "1.2.0"

// Identification field names. Both are mandatory on every transmission.
const (
	FieldStationID = "IdEstacao"
	FieldTimestamp = "ts"
)

// CriticalFields must be present on every reading; a missing one means the
// station itself is not working correctly.
var CriticalFields = []string{FieldStationID, FieldTimestamp}

// SensorFields is the telemetry set: at least one of these must carry a
// usable value for the reading to be accepted.
var SensorFields = []string{
	"Temperatura",
	"Umidade",
	"Pressao",
	"PluviometroH",
	"PluviometroD",
	"VelocidadeMedia",
	"UmidadeSolo",
	"Solarizacao",
}

// FieldSpecs is the per-field specification table, taken from the station
// documentation. Defined once at process start and never mutated.
var FieldSpecs = map[string]FieldSpec{
	// Primary sensors
	"Temperatura":     bounded(FieldFloat, -50, 70, "°C"),
	"Umidade":         bounded(FieldFloat, 0, 100, "%"),
	"PluviometroH":    bounded(FieldInteger, 0, 1000, "mm"),
	"PluviometroD":    bounded(FieldInteger, 0, 5000, "mm"),
	"Pressao":         bounded(FieldFloat, 800, 1200, "hPa"),
	"pontoOrvalho":    bounded(FieldFloat, -50, 70, "°C"),
	"sensacaoTermica": bounded(FieldFloat, -50, 70, "°C"),

	// Wind
	"VelocidadeMedia": bounded(FieldFloat, 0, 200, "m/s"),
	"VelocidadeMax":   bounded(FieldFloat, 0, 200, "m/s"),
	"DirecaoVento":    bounded(FieldInteger, 0, 360, "graus"),

	// Soil, default depth
	"UmidadeSolo":     bounded(FieldFloat, 0, 100, "%"),
	"TemperaturaSolo": bounded(FieldFloat, -20, 60, "°C"),

	// Soil, depth 2
	"UmidadeSolo_2":     bounded(FieldFloat, 0, 100, "%"),
	"TemperaturaSolo_2": bounded(FieldFloat, -20, 60, "°C"),

	// Soil, depth 3
	"UmidadeSolo_3":     bounded(FieldFloat, 0, 100, "%"),
	"TemperaturaSolo_3": bounded(FieldFloat, -20, 60, "°C"),

	// Foliar
	"UmidadeFolear":     bounded(FieldFloat, 0, 100, "%"),
	"TemperaturaFolear": bounded(FieldFloat, -20, 60, "°C"),

	// Radiation
	"Solarizacao": bounded(FieldInteger, 0, 2000, "W/m²"),

	// Air quality
	"pmc10":  bounded(FieldFloat, 0, 1000, "μg/m³"),
	"pmc25":  bounded(FieldFloat, 0, 1000, "μg/m³"),
	"pmc100": bounded(FieldFloat, 0, 1000, "μg/m³"),

	// System
	"RSSI":               bounded(FieldInteger, -120, 0, "dBm"),
	"Bateria":            bounded(FieldInteger, 0, 100, "%"),
	"Boot":               bounded(FieldInteger, 0, 999999, "count"),
	"VersaoSw":           {Type: FieldString},
	"VersaoPcb":          {Type: FieldString},
	"MacId":              bounded(FieldFloat, 0, 999999, ""),
	"TemperaturaInterna": bounded(FieldFloat, -40, 85, "°C"),

	// Identification
	FieldStationID: bounded(FieldInteger, 1, 9999999999, ""),
	FieldTimestamp: {Type: FieldString}, // epoch ms UTC
}

func bounded(t FieldType, min, max float64, unit string) FieldSpec {
	return FieldSpec{Type: t, Min: &min, Max: &max, Unit: unit}
}
