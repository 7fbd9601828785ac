// Package form holds the UCS prediction form: the fixed field enumeration,
// the pure State transitions applied on every edit (derived Plasticity Index,
// capped Mixing), submit-time validation, and the Controller that owns the
// submit lifecycle.
//
// State is a value type. Every mutation returns a new State, so the rules can
// be exercised without a rendered interface:
//
//	st, _ := form.Initial().Update(form.FieldLL, "40")
//	st, _ = st.Update(form.FieldPL, "20")
//	st.Get(form.FieldPI) // "20"
//
// The Controller wraps a State together with a Predictor and guards against a
// second submission while one is in flight.
package form
