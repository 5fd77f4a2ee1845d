package media

import (
	"bytes"
	"io"
)

// MemoryFile is an in-memory File.
type MemoryFile struct {
	name        string
	contentType string
	data        []byte
	size        int64
}

// NewMemoryFile wraps data as a File.
func NewMemoryFile(name, contentType string, data []byte) *MemoryFile {
	return &MemoryFile{name: name, contentType: contentType, data: data, size: int64(len(data))}
}

// WithSize overrides the reported size without allocating it.
func (f *MemoryFile) WithSize(size int64) *MemoryFile {
	f.size = size
	return f
}

func (f *MemoryFile) Name() string { return f.name }

func (f *MemoryFile) Size() int64 { return f.size }

func (f *MemoryFile) ContentType() string { return f.contentType }

func (f *MemoryFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}
