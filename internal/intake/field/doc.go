// Package field holds the per-field validation rules of a submission.
//
// Every validator is a pure function that returns an empty string when the
// value is acceptable and a human readable message otherwise. Validators
// expect values that already went through the normalize package; they never
// mutate their input and never panic.
package field
