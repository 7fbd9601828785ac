package form

import (
	"fmt"
	"strings"
)

// Field names one entry of the input record. The string value doubles as the
// JSON key sent to the prediction service.
type Field string

const (
	FieldClay         Field = "Clay"
	FieldSilt         Field = "Silt"
	FieldLL           Field = "LL"
	FieldPL           Field = "PL"
	FieldPI           Field = "PI"
	FieldDryDensity   Field = "DryDensity"
	FieldSiO2         Field = "SiO2"
	FieldAl2O3        Field = "Al2O3"
	FieldCaOlime      Field = "CaOlime"
	FieldMixing       Field = "Mixing"
	FieldCuringDays   Field = "CuringDays"
	FieldWaterContent Field = "WaterContent"
)

// MixingMax is the inclusive upper bound applied to Mixing on input.
const MixingMax = 12

// ClaySiltMin is the minimum Clay + Silt sum accepted at submit time.
const ClaySiltMin = 50

const fieldCount = 12

// fieldOrder is the enumeration order used for required-field checks, so the
// first missing field reported is always the same one.
var fieldOrder = [fieldCount]Field{
	FieldClay,
	FieldSilt,
	FieldLL,
	FieldPL,
	FieldPI,
	FieldDryDensity,
	FieldSiO2,
	FieldAl2O3,
	FieldCaOlime,
	FieldMixing,
	FieldCuringDays,
	FieldWaterContent,
}

// Fields returns every field in enumeration order.
func Fields() []Field {
	out := make([]Field, 0, fieldCount)
	out = append(out, fieldOrder[:]...)
	return out
}

// EditableFields returns the fields a user can type into (PI excluded).
func EditableFields() []Field {
	out := make([]Field, 0, fieldCount-1)
	for _, f := range fieldOrder {
		if f.Derived() {
			continue
		}
		out = append(out, f)
	}
	return out
}

// ParseField resolves a field by name. Matching is exact after trimming.
func ParseField(name string) (Field, error) {
	trimmed := strings.TrimSpace(name)
	for _, f := range fieldOrder {
		if string(f) == trimmed {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Derived reports whether the field is computed from other fields.
func (f Field) Derived() bool {
	return f == FieldPI
}

// Required reports whether the field must be non-empty before submission.
func (f Field) Required() bool {
	return !f.Derived()
}

func (f Field) index() int {
	for i, candidate := range fieldOrder {
		if candidate == f {
			return i
		}
	}
	return -1
}
