package draft

import (
	"context"
	"errors"
	"fmt"

	"github.com/consensuslabs/festival/backend/internal/intake/field"
	"github.com/consensuslabs/festival/backend/internal/intake/media"
)

var fileRoles = map[string]media.Role{
	field.Video:    media.RoleVideo,
	field.Cover:    media.RoleCover,
	field.Stills:   media.RoleStill,
	field.Subtitle: media.RoleSubtitle,
}

// AttachFile checks f against the constraints of the slot at path and, when
// accepted, stores it with a fresh preview. Stills are appended; the other
// slots are replaced and their previous preview released. A rejected file
// leaves the slot as it was and has its preview released.
func (c *Controller) AttachFile(ctx context.Context, path string, f media.File) error {
	role, ok := fileRoles[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, path)
	}

	c.mu.Lock()
	if err := c.editable(); err != nil {
		c.mu.Unlock()
		return err
	}
	if role == media.RoleStill {
		if err := c.checker.CheckStillCount(len(c.draft.Media.Stills)); err != nil {
			c.recordFileError(path, err)
			c.mu.Unlock()
			return err
		}
	}
	c.mu.Unlock()

	preview, err := c.previews.Create(f)
	if err != nil {
		return fmt.Errorf("create preview for %s: %w", f.Name(), err)
	}

	res, checkErr := c.checker.Check(ctx, role, f)

	c.mu.Lock()
	defer c.mu.Unlock()

	if checkErr == nil {
		checkErr = c.editable()
	}
	if checkErr == nil && role == media.RoleStill {
		checkErr = c.checker.CheckStillCount(len(c.draft.Media.Stills))
	}
	if checkErr != nil {
		preview.Release()
		c.recordFileError(path, checkErr)
		return checkErr
	}

	att := &Attachment{File: f, Preview: preview, Duration: res.Duration}
	m := &c.draft.Media
	switch role {
	case media.RoleVideo:
		release(m.Video)
		m.Video = att
	case media.RoleCover:
		release(m.Cover)
		m.Cover = att
	case media.RoleSubtitle:
		release(m.Subtitle)
		m.Subtitle = att
	case media.RoleStill:
		m.Stills = append(m.Stills, att)
	}
	c.revalidate(path)
	return nil
}

// ClearFile empties the slot at path, releasing its preview. index selects
// the still to remove and is ignored for the other slots.
func (c *Controller) ClearFile(path string, index int) error {
	role, ok := fileRoles[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, path)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return err
	}

	m := &c.draft.Media
	switch role {
	case media.RoleVideo:
		release(m.Video)
		m.Video = nil
	case media.RoleCover:
		release(m.Cover)
		m.Cover = nil
	case media.RoleSubtitle:
		release(m.Subtitle)
		m.Subtitle = nil
	case media.RoleStill:
		if index < 0 || index >= len(m.Stills) {
			return fmt.Errorf("%w: still %d", ErrNoSuchEntry, index)
		}
		release(m.Stills[index])
		m.Stills = append(m.Stills[:index:index], m.Stills[index+1:]...)
	}
	c.revalidate(path)
	return nil
}

func (c *Controller) recordFileError(path string, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}
	var ce *media.ConstraintError
	if errors.As(err, &ce) {
		c.errors[path] = ce.Message
		return
	}
	c.errors[path] = err.Error()
}
