package draft

import (
	"errors"
	"testing"

	apperrors "github.com/consensuslabs/festival/backend/internal/errors"
	"github.com/consensuslabs/festival/backend/internal/intake/field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contributor(email string) Contributor {
	return Contributor{
		Gender:         "male",
		FirstName:      "Chris",
		LastName:       "Marker",
		Email:          email,
		ProductionRole: "Editor",
	}
}

func TestContributorDuplicateEmail(t *testing.T) {
	env := newEnv(t)
	editor, err := env.c.OpenContributors()
	require.NoError(t, err)

	require.NoError(t, editor.Add(contributor("chris@example.com")))
	err = editor.Add(contributor("  CHRIS@Example.COM "))
	var verrs apperrors.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	msg, ok := verrs.Map()["contributors.email"]
	require.True(t, ok)
	assert.Contains(t, msg, "already added")
	assert.Len(t, editor.Items(), 1)
}

func TestContributorValidatedBeforeInsert(t *testing.T) {
	env := newEnv(t)
	editor, err := env.c.OpenContributors()
	require.NoError(t, err)

	bad := contributor("not-an-email")
	bad.ProductionRole = "x"
	err = editor.Add(bad)
	var verrs apperrors.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.ElementsMatch(t, []string{"contributors.email", "contributors.productionRole"}, keys(verrs.Map()))
	assert.Empty(t, editor.Items())
}

func TestContributorEditorRevertsWhenEmpty(t *testing.T) {
	env := newEnv(t)

	editor, err := env.c.OpenContributors()
	require.NoError(t, err)
	assert.True(t, env.c.Draft().Identity.Contributors.Enabled())
	editor.Close()
	assert.False(t, env.c.Draft().Identity.Contributors.Enabled(), "closing without data reverts the toggle")

	editor, err = env.c.OpenContributors()
	require.NoError(t, err)
	require.NoError(t, editor.Add(contributor("a@example.com")))
	require.NoError(t, editor.Add(contributor("b@example.com")))
	editor.Close()
	assert.Equal(t, 2, env.c.Draft().Identity.Contributors.Len())

	require.NoError(t, editor.Remove(0))
	assert.True(t, env.c.Draft().Identity.Contributors.Enabled())
	require.NoError(t, editor.Remove(0))
	assert.False(t, env.c.Draft().Identity.Contributors.Enabled(), "removing the last entry reverts the toggle")
	assert.ErrorIs(t, editor.Remove(0), ErrNoSuchEntry)
	assert.NotContains(t, env.c.Errors(), field.Contributors)
}

func TestContributorToggle(t *testing.T) {
	env := newEnv(t)
	assert.ErrorIs(t, env.c.SetFlag(field.HasContributors, true), ErrEditorRequired)

	editor, err := env.c.OpenContributors()
	require.NoError(t, err)
	require.NoError(t, editor.Add(contributor("a@example.com")))

	require.NoError(t, env.c.SetFlag(field.HasContributors, false))
	c := env.c.Draft().Identity.Contributors
	assert.False(t, c.Enabled())
	assert.Zero(t, c.Len())
}

func TestOpenEditorBlocksStep(t *testing.T) {
	env := newEnv(t)
	set(t, env.c, validIdentity())
	require.NoError(t, env.c.SetFlag(field.AgeVerified, true))

	_, err := env.c.OpenContributors()
	require.NoError(t, err)
	err = env.c.Next()
	var verrs apperrors.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, []string{field.Contributors}, keys(verrs.Map()))
}

func TestSocialEditor(t *testing.T) {
	env := newEnv(t)
	editor, err := env.c.OpenSocialNetworks()
	require.NoError(t, err)

	err = editor.Set(field.PlatformVimeo, "vimeo.com/me")
	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "socialNetworks.vimeo", verr.Field)
	assert.Empty(t, editor.URL(field.PlatformVimeo))

	assert.Error(t, editor.Set("myspace", "https://myspace.com/me"))

	require.NoError(t, editor.Set(field.PlatformVimeo, " https://vimeo.com/me "))
	require.NoError(t, editor.Set(field.PlatformInstagram, "https://instagram.com/me"))
	editor.Close()

	s := env.c.Draft().Identity.SocialNetworks
	assert.True(t, s.Enabled())
	assert.Equal(t, map[string]string{
		"vimeo":     "https://vimeo.com/me",
		"instagram": "https://instagram.com/me",
	}, s.Map())

	require.NoError(t, editor.Set(field.PlatformVimeo, ""))
	require.NoError(t, editor.Set(field.PlatformInstagram, ""))
	assert.False(t, env.c.Draft().Identity.SocialNetworks.Enabled())
}

func TestSocialEditorCloseEmpty(t *testing.T) {
	env := newEnv(t)
	editor, err := env.c.OpenSocialNetworks()
	require.NoError(t, err)
	editor.Close()
	assert.False(t, env.c.Draft().Identity.SocialNetworks.Enabled())
	assert.ErrorIs(t, env.c.SetFlag(field.HasSocialNetworks, true), ErrEditorRequired)
}
