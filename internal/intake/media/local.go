package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// LocalFile is a file on disk whose content type is sniffed from its bytes.
type LocalFile struct {
	path        string
	size        int64
	contentType string
}

// OpenLocal stats path and detects its content type.
func OpenLocal(path string) (*LocalFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("detect content type of %s: %w", path, err)
	}

	return &LocalFile{
		path:        path,
		size:        info.Size(),
		contentType: sniffed(mtype),
	}, nil
}

func sniffed(mtype *mimetype.MIME) string {
	if mtype.Is("application/x-subrip") {
		return "application/x-subrip"
	}
	return BaseType(mtype.String())
}

// Path returns the file's location on disk.
func (f *LocalFile) Path() string { return f.path }

func (f *LocalFile) Name() string { return filepath.Base(f.path) }

func (f *LocalFile) Size() int64 { return f.size }

func (f *LocalFile) ContentType() string { return f.contentType }

func (f *LocalFile) Open() (io.ReadCloser, error) { return os.Open(f.path) }
