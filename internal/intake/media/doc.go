// Package media implements the advisory media checks run before a file is
// accepted into a draft: extension and content type allow-lists, per-role
// size ceilings, the stills count and a video duration estimate.
//
// The same allow-lists back the server's re-check of every uploaded part, but
// nothing computed here is trusted by the server; the authoritative duration
// check lives in the video package.
package media
