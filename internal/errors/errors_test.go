package errors

import (
	stderrors "errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrors_FirstPrefersField(t *testing.T) {
	errs := ValidationErrors{
		{Field: "titleEN", Message: "English title is required"},
		{Field: "video", Message: "video exceeds the maximum duration of 150 seconds"},
	}

	first, ok := errs.First("video")
	assert.True(t, ok)
	assert.Equal(t, "video", first.Field)

	first, ok = errs.First("cover")
	assert.True(t, ok)
	assert.Equal(t, "titleEN", first.Field)

	_, ok = ValidationErrors{}.First("")
	assert.False(t, ok)
}

func TestValidationErrors_MapAndFromMap(t *testing.T) {
	errs := FromMap(map[string]string{
		"mobileNumber":   "mobile number is required",
		"address.street": "street is required",
	})
	assert.Equal(t, "address.street", errs[0].Field)
	assert.Equal(t, map[string]string{
		"mobileNumber":   "mobile number is required",
		"address.street": "street is required",
	}, errs.Map())
	assert.Contains(t, errs.Error(), "mobileNumber: mobile number is required")
}

func TestStorageError_Unwraps(t *testing.T) {
	err := NewStorageError("failed to store cover", io.ErrUnexpectedEOF)
	assert.True(t, stderrors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, "failed to store cover: unexpected EOF", err.Error())
}
