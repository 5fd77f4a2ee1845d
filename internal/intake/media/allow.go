package media

import (
	"mime"
	"path/filepath"
	"sort"
	"strings"
)

type allowList struct {
	extensions map[string]string
	types      map[string]struct{}
}

func newAllowList(extensions map[string]string, extraTypes ...string) allowList {
	types := make(map[string]struct{}, len(extensions)+len(extraTypes))
	for _, t := range extensions {
		types[t] = struct{}{}
	}
	for _, t := range extraTypes {
		types[t] = struct{}{}
	}
	return allowList{extensions: extensions, types: types}
}

var (
	videoTypes = map[string]string{
		".mov":   "video/quicktime",
		".mp4":   "video/mp4",
		".mpeg4": "video/mp4",
		".webm":  "video/webm",
		".mkv":   "video/x-matroska",
	}
	imageTypes = map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
	}
	subtitleTypes = map[string]string{
		".srt": "application/x-subrip",
	}

	allowLists = map[Role]allowList{
		RoleVideo:    newAllowList(videoTypes, "video/mpeg4", "video/x-m4v", "video/matroska"),
		RoleCover:    newAllowList(imageTypes, "image/jpg", "image/pjpeg"),
		RoleStill:    newAllowList(imageTypes, "image/jpg", "image/pjpeg"),
		RoleSubtitle: newAllowList(subtitleTypes, "application/x-srt", "text/x-srt", "text/srt", "text/plain", "application/octet-stream"),
	}
)

// Extension returns the lower-cased extension of name, including the dot.
func Extension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// BaseType strips parameters from a content type and lower-cases it.
func BaseType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		return mediaType
	}
	base, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

// AllowedExtension reports whether name has an extension accepted for role.
func AllowedExtension(role Role, name string) bool {
	list, ok := allowLists[role]
	if !ok {
		return false
	}
	_, ok = list.extensions[Extension(name)]
	return ok
}

// AllowedType reports whether contentType is accepted for role.
func AllowedType(role Role, contentType string) bool {
	list, ok := allowLists[role]
	if !ok {
		return false
	}
	_, ok = list.types[BaseType(contentType)]
	return ok
}

// CanonicalType maps a file name to the content type sent on the wire,
// falling back to declared when the extension is unknown.
func CanonicalType(name, declared string) string {
	ext := Extension(name)
	for _, table := range []map[string]string{videoTypes, imageTypes, subtitleTypes} {
		if t, ok := table[ext]; ok {
			return t
		}
	}
	if declared = BaseType(declared); declared != "" {
		return declared
	}
	return "application/octet-stream"
}

// Extensions lists the accepted extensions of role, for messages.
func Extensions(role Role) []string {
	list := allowLists[role]
	out := make([]string, 0, len(list.extensions))
	for ext := range list.extensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
