package draft

import "errors"

var (
	ErrUnknownField        = errors.New("unknown field")
	ErrNoNextStep          = errors.New("no step after the current one")
	ErrNoPreviousStep      = errors.New("no step before the current one")
	ErrNotOnFinalStep      = errors.New("submission is only possible from the final step")
	ErrAlreadySubmitted    = errors.New("draft already submitted")
	ErrSubmissionInFlight  = errors.New("a submission is already in progress")
	ErrVerificationMissing = errors.New("please complete the human verification")
	ErrVerificationExpired = errors.New("human verification expired, please verify again")
	ErrEditorRequired      = errors.New("use the collection editor to enable this field")
	ErrNoSuchEntry         = errors.New("no such entry")
	ErrClosed              = errors.New("draft controller closed")
)
