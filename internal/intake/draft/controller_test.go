package draft

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/consensuslabs/festival/backend/internal/errors"
	"github.com/consensuslabs/festival/backend/internal/intake/field"
	"github.com/consensuslabs/festival/backend/internal/intake/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextReportsOnlyOffendingFields(t *testing.T) {
	env := newEnv(t)
	values := validIdentity()
	delete(values, field.MobileNumber)
	set(t, env.c, values)
	require.NoError(t, env.c.SetFlag(field.AgeVerified, true))

	err := env.c.Next()
	var verrs apperrors.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, map[string]string{field.MobileNumber: "mobile number is required"}, verrs.Map())
	assert.Equal(t, Step1, env.c.Step())
	assert.Equal(t, "Varda", env.c.Draft().Identity.LastName, "entered data is kept")

	require.NoError(t, env.c.SetField(field.MobileNumber, "0612345678"))
	require.NoError(t, env.c.Next())
	assert.Equal(t, Step2, env.c.Step())
	assert.Empty(t, env.c.Errors())
}

func TestNextReportsDottedAddressPaths(t *testing.T) {
	env := newEnv(t)
	values := validIdentity()
	delete(values, field.AddressCity)
	delete(values, field.AddressZipcode)
	set(t, env.c, values)
	require.NoError(t, env.c.SetFlag(field.AgeVerified, true))

	err := env.c.Next()
	var verrs apperrors.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.ElementsMatch(t, []string{"address.city", "address.zipcode"}, keys(verrs.Map()))
}

func TestEmptyStepReportsRequiredFields(t *testing.T) {
	env := newEnv(t)
	err := env.c.Next()
	var verrs apperrors.ValidationErrors
	require.True(t, errors.As(err, &verrs))

	m := verrs.Map()
	for _, path := range []string{field.Gender, field.FirstName, field.Email, field.MobileNumber, field.AcquisitionSource, field.AgeVerified} {
		assert.Contains(t, m, path)
	}
	for _, path := range []string{field.PhoneNumber, field.AddressStreet2, field.AcquisitionSourceSocial, field.Contributors} {
		assert.NotContains(t, m, path)
	}
}

func TestBackNeverValidates(t *testing.T) {
	env := newEnv(t)
	completeStep1(t, env.c)
	require.NoError(t, env.c.SetField(field.TitleEN, "<b>x</b>"))

	require.NoError(t, env.c.Back())
	assert.Equal(t, Step1, env.c.Step())
	assert.Contains(t, env.c.Errors(), field.TitleEN, "feedback from the update is kept")
	assert.ErrorIs(t, env.c.Back(), ErrNoPreviousStep)
}

func TestSetFieldTouchesOnlyItsValidator(t *testing.T) {
	env := newEnv(t)
	require.NoError(t, env.c.SetField(field.FirstName, "A"))
	assert.Equal(t, []string{field.FirstName}, keys(env.c.Errors()))

	require.NoError(t, env.c.SetField(field.Email, "nope"))
	assert.ElementsMatch(t, []string{field.FirstName, field.Email}, keys(env.c.Errors()))

	require.NoError(t, env.c.SetField(field.FirstName, "Anna"))
	assert.Equal(t, []string{field.Email}, keys(env.c.Errors()))

	assert.ErrorIs(t, env.c.SetField("favouriteColour", "blue"), ErrUnknownField)
	assert.ErrorIs(t, env.c.SetField(field.AgeVerified, "true"), ErrUnknownField)
}

func TestInvalidTextIsPreserved(t *testing.T) {
	env := newEnv(t)
	require.NoError(t, env.c.SetField(field.SynopsisEN, "<script>alert(1)</script>"))
	assert.Equal(t, "<script>alert(1)</script>", env.c.Draft().Work.SynopsisEN)
	assert.Contains(t, env.c.Errors(), field.SynopsisEN)
}

func TestAcquisitionDependentFields(t *testing.T) {
	env := newEnv(t)

	require.NoError(t, env.c.SetField(field.AcquisitionSource, "social_networks"))
	errs := env.c.Errors()
	assert.Contains(t, errs, field.AcquisitionSourceSocial)
	assert.NotContains(t, errs, field.AcquisitionSource)

	require.NoError(t, env.c.SetField(field.AcquisitionSourceSocial, "TikTok"))
	assert.NotContains(t, env.c.Errors(), field.AcquisitionSourceSocial)

	require.NoError(t, env.c.SetField(field.AcquisitionSource, "other"))
	errs = env.c.Errors()
	assert.NotContains(t, errs, field.AcquisitionSourceSocial)
	assert.Contains(t, errs, field.AcquisitionSourceOther)

	require.NoError(t, env.c.SetField(field.AcquisitionSourceOther, "a poster"))
	assert.Empty(t, env.c.Errors())

	require.NoError(t, env.c.SetField(field.AcquisitionSource, "social_networks:instagram"))
	d := env.c.Draft().Normalized()
	assert.Equal(t, normalize.AcquisitionSocialNetworks, d.Identity.Acquisition.Main)
	assert.Equal(t, "instagram", d.Identity.Acquisition.Social)
}

func TestSetAcquisitionKeepsLegacyValue(t *testing.T) {
	env := newEnv(t)
	src := normalize.DecodeAcquisition("saw it on a tram", "")
	require.NoError(t, env.c.SetAcquisition(src))
	assert.Empty(t, env.c.Errors())

	value, other := normalize.EncodeAcquisition(env.c.Draft().Normalized().Identity.Acquisition)
	assert.Equal(t, "saw it on a tram", value)
	assert.Empty(t, other)
}

func TestTags(t *testing.T) {
	env := newEnv(t)

	require.NoError(t, env.c.AddTag("Sci-Fi"))
	err := env.c.AddTag("sci-fi")
	require.Error(t, err)
	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "tag already added", verr.Message)
	assert.Equal(t, []string{"sci-fi"}, env.c.Draft().Work.Tags)

	require.NoError(t, env.c.AddTag("  Film   Noir "))
	assert.Equal(t, []string{"sci-fi", "film-noir"}, env.c.Draft().Work.Tags)

	for _, tag := range []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8"} {
		require.NoError(t, env.c.AddTag(tag))
	}
	require.Len(t, env.c.Draft().Work.Tags, field.MaxTags)

	before := env.c.Draft().Work.Tags
	assert.Error(t, env.c.AddTag("eleventh"))
	assert.Equal(t, before, env.c.Draft().Work.Tags)

	require.NoError(t, env.c.RemoveTag("FILM noir"))
	assert.NotContains(t, env.c.Draft().Work.Tags, "film-noir")
	assert.NotContains(t, env.c.Errors(), field.Tags)
	assert.ErrorIs(t, env.c.RemoveTag("missing"), ErrNoSuchEntry)

	assert.Error(t, env.c.AddTag("   "))
	assert.Error(t, env.c.AddTag("this-tag-is-far-too-long"))
}

func TestSubmitSuccess(t *testing.T) {
	env := newEnv(t)
	readyToSubmit(t, env)

	sub := &fakeSubmitter{receipt: &Receipt{ID: "sub-1", Status: "pending"}}
	receipt, err := env.c.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, "sub-1", receipt.ID)
	assert.Equal(t, Submitted, env.c.Step())
	assert.Equal(t, receipt, env.c.Receipt())

	require.Len(t, sub.got, 1)
	sent := sub.got[0]
	assert.Equal(t, "agnes@example.com", sent.Identity.Email)
	assert.Equal(t, "Agnès", sent.Identity.FirstName)
	assert.Equal(t, 120.0, sent.Media.DurationSeconds())

	_, err = env.c.Submit(context.Background(), sub)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.ErrorIs(t, env.c.SetField(field.TitleEN, "x"), ErrAlreadySubmitted)
}

func TestSubmitRequiresFinalStep(t *testing.T) {
	env := newEnv(t)
	_, err := env.c.Submit(context.Background(), &fakeSubmitter{})
	assert.ErrorIs(t, err, ErrNotOnFinalStep)
}

func TestSubmitValidatesFinalStep(t *testing.T) {
	env := newEnv(t)
	completeStep1(t, env.c)
	completeStep2(t, env.c)
	require.NoError(t, env.c.SetVerificationToken("tok"))

	sub := &fakeSubmitter{}
	_, err := env.c.Submit(context.Background(), sub)
	var verrs apperrors.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.ElementsMatch(t, []string{field.Video, field.Cover, field.RightsAccepted}, keys(verrs.Map()))
	assert.Empty(t, sub.got)
	assert.ErrorIs(t, env.c.Next(), ErrNoNextStep)
}

func TestSubmitVerificationGate(t *testing.T) {
	env := newEnv(t)
	completeStep1(t, env.c)
	completeStep2(t, env.c)
	attachRequiredMedia(t, env.c)

	sub := &fakeSubmitter{receipt: &Receipt{ID: "x"}}
	_, err := env.c.Submit(context.Background(), sub)
	assert.ErrorIs(t, err, ErrVerificationMissing)
	assert.Equal(t, ErrVerificationMissing.Error(), env.c.Banner())

	require.NoError(t, env.c.SetVerificationToken("tok"))
	env.now = env.now.Add(DefaultTokenTTL + time.Second)
	_, err = env.c.Submit(context.Background(), sub)
	assert.ErrorIs(t, err, ErrVerificationExpired)
	assert.Empty(t, sub.got, "no network call without a valid token")
	assert.Equal(t, Step3, env.c.Step())

	require.NoError(t, env.c.SetVerificationToken("fresh"))
	_, err = env.c.Submit(context.Background(), sub)
	require.NoError(t, err)
}

func TestSubmitServerValidationErrors(t *testing.T) {
	env := newEnv(t)
	readyToSubmit(t, env)

	serverErrs := apperrors.ValidationErrors{
		{Field: field.Email, Message: "email address is invalid"},
		{Field: field.Video, Message: "video is 151.20 seconds long, the maximum is 150 seconds"},
	}
	_, err := env.c.Submit(context.Background(), &fakeSubmitter{err: serverErrs})
	require.Error(t, err)

	assert.Equal(t, Step3, env.c.Step())
	assert.Equal(t, "video is 151.20 seconds long, the maximum is 150 seconds", env.c.Banner())
	errs := env.c.Errors()
	assert.Equal(t, "email address is invalid", errs[field.Email])
	assert.False(t, env.c.InFlight())
	assert.ErrorIs(t, env.c.Draft().Consent.Verification.Check(env.now), ErrVerificationMissing)
}

func TestSubmitTransportErrorIsRetryable(t *testing.T) {
	env := newEnv(t)
	readyToSubmit(t, env)

	_, err := env.c.Submit(context.Background(), &fakeSubmitter{err: errors.New("connection refused")})
	require.Error(t, err)
	assert.Equal(t, "connection refused", env.c.Banner())
	assert.Equal(t, Step3, env.c.Step())

	receipt, err := env.c.Submit(context.Background(), &fakeSubmitter{receipt: &Receipt{ID: "sub-2"}})
	require.NoError(t, err)
	assert.Equal(t, "sub-2", receipt.ID)
	assert.Empty(t, env.c.Banner())
}

func TestSubmitAtMostOneInFlight(t *testing.T) {
	env := newEnv(t)
	readyToSubmit(t, env)

	sub := &fakeSubmitter{
		receipt: &Receipt{ID: "sub-3"},
		block:   make(chan struct{}),
		entered: make(chan struct{}),
	}
	done := make(chan error, 1)
	go func() {
		_, err := env.c.Submit(context.Background(), sub)
		done <- err
	}()
	<-sub.entered

	assert.True(t, env.c.InFlight())
	_, err := env.c.Submit(context.Background(), &fakeSubmitter{})
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
	assert.ErrorIs(t, env.c.SetField(field.TitleEN, "changed"), ErrSubmissionInFlight)

	close(sub.block)
	require.NoError(t, <-done)
	assert.Equal(t, Submitted, env.c.Step())
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
