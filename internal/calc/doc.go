// Package calc contains the diving gas calculators: maximum operating depth,
// surface air consumption, fill pricing, gas planning and isobaric
// counterdiffusion checks.
//
// Every function is pure. Degenerate input (a cleared form field, zero oxygen,
// an empty cylinder) produces zero-valued results instead of errors, so the
// calculators can be re-run on every keystroke. Input validation belongs to
// the caller.
package calc
