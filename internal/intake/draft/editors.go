package draft

import (
	"fmt"

	apperrors "github.com/consensuslabs/festival/backend/internal/errors"
	"github.com/consensuslabs/festival/backend/internal/intake/field"
	"github.com/consensuslabs/festival/backend/internal/intake/normalize"
)

// ContributorEditor edits the contributor collection. Opening it enables
// the collection; closing it while empty disables it again.
type ContributorEditor struct {
	c *Controller
}

// OpenContributors enables the contributor collection and returns its editor.
func (c *Controller) OpenContributors() (*ContributorEditor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return nil, err
	}
	c.draft.Identity.Contributors.enabled = true
	return &ContributorEditor{c: c}, nil
}

// Items returns the current entries.
func (e *ContributorEditor) Items() []Contributor {
	e.c.mu.Lock()
	defer e.c.mu.Unlock()
	return e.c.draft.Identity.Contributors.Items()
}

// Add validates ct and appends it. Field failures come back as
// apperrors.ValidationErrors keyed "contributors.<field>"; nothing is added.
func (e *ContributorEditor) Add(ct Contributor) error {
	c := e.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return err
	}

	n := ct.Normalized()
	failed := make(map[string]string)
	for key, msg := range n.Validate() {
		failed[field.Contributors+"."+key] = msg
	}
	if _, bad := failed[field.Contributors+"."+field.Email]; !bad {
		for _, existing := range c.draft.Identity.Contributors.items {
			if normalize.Email(existing.Email) == n.Email {
				failed[field.Contributors+"."+field.Email] = "a contributor with this email is already added"
				break
			}
		}
	}
	if len(failed) > 0 {
		return apperrors.FromMap(failed)
	}

	list := &c.draft.Identity.Contributors
	list.enabled = true
	list.items = append(list.items, ct)
	c.revalidate(field.Contributors)
	return nil
}

// Remove deletes the entry at index. Removing the last entry disables the
// collection.
func (e *ContributorEditor) Remove(index int) error {
	c := e.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return err
	}

	list := &c.draft.Identity.Contributors
	if index < 0 || index >= len(list.items) {
		return fmt.Errorf("%w: contributor %d", ErrNoSuchEntry, index)
	}
	list.items = append(list.items[:index:index], list.items[index+1:]...)
	if len(list.items) == 0 {
		*list = Contributors{}
	}
	c.revalidate(field.Contributors)
	return nil
}

// Close ends the editing session, disabling the collection when empty.
func (e *ContributorEditor) Close() {
	c := e.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft.Identity.Contributors.Len() == 0 {
		c.draft.Identity.Contributors = Contributors{}
	}
	c.revalidate(field.Contributors)
}

// SocialEditor edits the platform URL slots.
type SocialEditor struct {
	c *Controller
}

// OpenSocialNetworks enables the social network collection and returns its
// editor.
func (c *Controller) OpenSocialNetworks() (*SocialEditor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return nil, err
	}
	s := &c.draft.Identity.SocialNetworks
	s.enabled = true
	if s.urls == nil {
		s.urls = make(map[field.Platform]string)
	}
	return &SocialEditor{c: c}, nil
}

// URL returns the URL stored for p.
func (e *SocialEditor) URL(p field.Platform) string {
	e.c.mu.Lock()
	defer e.c.mu.Unlock()
	return e.c.draft.Identity.SocialNetworks.URL(p)
}

// Set stores url for platform p. An empty url clears the slot; clearing the
// last slot disables the collection. An invalid url is rejected and the
// slot keeps its previous value.
func (e *SocialEditor) Set(p field.Platform, url string) error {
	c := e.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return err
	}

	key := field.SocialNetworks + "." + string(p)
	if !p.IsValid() {
		return apperrors.NewValidationError(key, "unknown social network")
	}

	url = normalize.Text(url)
	if msg := field.URLRule(url); msg != "" {
		return apperrors.NewValidationError(key, msg)
	}

	s := &c.draft.Identity.SocialNetworks
	if url == "" {
		delete(s.urls, p)
		if len(s.urls) == 0 {
			*s = SocialNetworks{}
		}
	} else {
		if s.urls == nil {
			s.urls = make(map[field.Platform]string)
		}
		s.enabled = true
		s.urls[p] = url
	}
	c.revalidate(field.SocialNetworks)
	return nil
}

// Close ends the editing session, disabling the collection when empty.
func (e *SocialEditor) Close() {
	c := e.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft.Identity.SocialNetworks.Len() == 0 {
		c.draft.Identity.SocialNetworks = SocialNetworks{}
	}
	c.revalidate(field.SocialNetworks)
}
