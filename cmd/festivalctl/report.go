package main

import (
	"errors"
	"fmt"
	"io"
	"sort"

	apperrors "github.com/consensuslabs/festival/backend/internal/errors"
	"github.com/consensuslabs/festival/backend/internal/intake/draft"
)

// reportFailure prints the field errors held by c, or carried by err, and
// returns err for the exit status.
func reportFailure(w io.Writer, c *draft.Controller, err error) error {
	fields := c.Errors()
	var verrs apperrors.ValidationErrors
	if errors.As(err, &verrs) {
		for k, v := range verrs.Map() {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		return err
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %s\n", k, fields[k])
	}
	if verrs != nil {
		return fmt.Errorf("draft has %d invalid fields", len(fields))
	}
	return err
}

func printReceipt(w io.Writer, r *draft.Receipt) {
	fmt.Fprintf(w, "submission %s %s\n", r.ID, r.Status)
}
