package form

import (
	"encoding/json"
	"fmt"
	"math"
)

// State is the input record as the user typed it. Values are kept as text;
// numeric interpretation happens on derivation and at submit time.
type State struct {
	values [fieldCount]string
}

// Initial returns the all-empty record.
func Initial() State {
	return State{}
}

// Get returns the stored text for f, or "" for unknown fields.
func (s State) Get(f Field) string {
	idx := f.index()
	if idx < 0 {
		return ""
	}
	return s.values[idx]
}

// Values returns a copy of the record keyed by field.
func (s State) Values() map[Field]string {
	out := make(map[Field]string, fieldCount)
	for i, f := range fieldOrder {
		out[f] = s.values[i]
	}
	return out
}

// Update stores raw under f and reapplies the derived-field rules:
// editing LL or PL recomputes PI, editing Mixing clamps it to MixingMax.
// Unparseable numeric text is not an error here; it surfaces at submit.
func (s State) Update(f Field, raw string) (State, error) {
	idx := f.index()
	if idx < 0 {
		return s, fmt.Errorf("%w: %q", ErrUnknownField, string(f))
	}
	if f.Derived() {
		return s, fmt.Errorf("%w: %s", ErrReadOnlyField, f)
	}

	next := s
	switch f {
	case FieldMixing:
		next.values[idx] = clampMixing(raw)
	case FieldLL, FieldPL:
		next.values[idx] = raw
		next.values[FieldPI.index()] = derivePI(next.Get(FieldLL), next.Get(FieldPL))
	default:
		next.values[idx] = raw
	}
	return next, nil
}

// Validate runs the submit preconditions in order and returns the first
// failure: the Clay + Silt threshold (non-numeric values fail it), then the
// required fields in enumeration order.
func (s State) Validate() error {
	clay, okClay := ParseNumber(s.Get(FieldClay))
	silt, okSilt := ParseNumber(s.Get(FieldSilt))
	if !okClay || !okSilt || clay+silt < ClaySiltMin {
		return &ValidationError{Message: MessageClaySilt}
	}

	for i, f := range fieldOrder {
		if !f.Required() {
			continue
		}
		if s.values[i] == "" {
			return requiredError(f)
		}
	}
	return nil
}

// Payload converts every field, PI included, to a number. Text that does not
// parse becomes NaN and is sent as JSON null.
func (s State) Payload() Payload {
	var p Payload
	for i := range fieldOrder {
		if v, ok := ParseNumber(s.values[i]); ok {
			p.values[i] = Number(v)
		} else {
			p.values[i] = Number(math.NaN())
		}
	}
	return p
}

func derivePI(ll, pl string) string {
	l, okL := ParseNumber(ll)
	p, okP := ParseNumber(pl)
	if !okL || !okP {
		return ""
	}
	return FormatNumber(l - p)
}

func clampMixing(raw string) string {
	v, ok := ParseNumber(raw)
	if !ok {
		return ""
	}
	return FormatNumber(math.Min(v, MixingMax))
}

// Number is a float64 that encodes NaN and infinities as JSON null.
type Number float64

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// Payload is the numeric record posted to the prediction service. It
// marshals to an object whose keys follow the field enumeration order.
type Payload struct {
	values [fieldCount]Number
}

// Get returns the numeric value for f (NaN when unset or unknown).
func (p Payload) Get(f Field) float64 {
	idx := f.index()
	if idx < 0 {
		return math.NaN()
	}
	return float64(p.values[idx])
}

// MarshalJSON implements json.Marshaler.
func (p Payload) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 256)
	buf = append(buf, '{')
	for i, f := range fieldOrder {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(string(f))
		if err != nil {
			return nil, err
		}
		val, err := p.values[i].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	buf = append(buf, '}')
	return buf, nil
}
