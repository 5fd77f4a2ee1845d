// Package draft holds the in-progress submission aggregate and the step
// controller that owns it.
//
// A Controller walks the draft through three steps (identity, work metadata,
// media and consent). Every mutation goes through the controller, re-runs the
// validator of the touched field and of the fields that depend on it, and
// leaves every other validation result untouched. Advancing requires the
// current step to validate cleanly.
package draft
