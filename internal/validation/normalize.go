package validation

import (
	"math"
	"strconv"
	"strings"

	"github.com/murillous/agronomia-API/internal/models"
)

// Normalize coerces every recognized field of an already-accepted reading
// to its declared type: floats via numeric conversion, integers via numeric
// conversion rounded to the nearest whole number, strings via string
// conversion. Nulls pass through as nil and unrecognized fields pass
// through unchanged. The schema version is stamped under "apiVersion".
//
// Normalize performs no validation; it assumes Validate already accepted
// the reading. It is idempotent on its own output.
func Normalize(r models.Reading) models.NormalizedRecord {
	cleaned := make(models.NormalizedRecord, len(r)+1)

	for name, v := range r {
		spec, known := models.FieldSpecs[name]
		if !known {
			cleaned[name] = v.Interface()
			continue
		}

		if v.IsNull() {
			cleaned[name] = nil
			continue
		}

		switch spec.Type {
		case models.FieldFloat:
			if n, ok := toNumber(v); ok {
				cleaned[name] = n
			} else {
				cleaned[name] = v.Interface()
			}
		case models.FieldInteger:
			if n, ok := toNumber(v); ok {
				cleaned[name] = int64(math.Round(n))
			} else {
				cleaned[name] = v.Interface()
			}
		case models.FieldString:
			cleaned[name] = toString(v)
		default:
			cleaned[name] = v.Interface()
		}
	}

	cleaned["apiVersion"] = models.SchemaVersion

	return cleaned
}

// toNumber converts a scalar to float64. A string that does not parse as a
// number reports ok=false and the caller keeps the original value; the
// field validator already flagged it as a warning.
func toNumber(v models.Value) (float64, bool) {
	switch v.Kind {
	case models.KindNumber:
		return v.Num, true
	case models.KindString:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	case models.KindBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func toString(v models.Value) string {
	switch v.Kind {
	case models.KindString:
		return v.Str
	case models.KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case models.KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return string(v.Raw)
	}
}
