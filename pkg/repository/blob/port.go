package blob

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/m-mizutani/goerr/v2"
)

// ErrNoDocument indicates the port holds no document yet (first run)
var ErrNoDocument = goerr.New("no document")

// Port is the injected persistence boundary of the blob repository: it reads
// and writes one opaque document. Implementations need no locking beyond
// atomicity of a single read or write; the repository is the only writer.
type Port interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// FilePort persists the document as a single file on disk
type FilePort struct {
	path string
}

// NewFilePort creates a file-backed port at the given path
func NewFilePort(path string) *FilePort {
	return &FilePort{path: path}
}

func (p *FilePort) Read(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrNoDocument, "document file does not exist", goerr.V("path", p.path))
		}
		return nil, goerr.Wrap(err, "failed to read document file", goerr.V("path", p.path))
	}
	return data, nil
}

func (p *FilePort) Write(ctx context.Context, data []byte) error {
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return goerr.Wrap(err, "failed to create document directory", goerr.V("dir", dir))
	}

	// Write-then-rename so a crash mid-write never leaves a torn document
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return goerr.Wrap(err, "failed to write document file", goerr.V("path", tmp))
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return goerr.Wrap(err, "failed to replace document file", goerr.V("path", p.path))
	}
	return nil
}

// MemPort holds the document in memory, for tests and ephemeral runs
type MemPort struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemPort creates an empty in-memory port
func NewMemPort() *MemPort {
	return &MemPort{}
}

func (p *MemPort) Read(ctx context.Context) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.data == nil {
		return nil, goerr.Wrap(ErrNoDocument, "memory port is empty")
	}
	copied := make([]byte, len(p.data))
	copy(copied, p.data)
	return copied, nil
}

func (p *MemPort) Write(ctx context.Context, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.data = make([]byte, len(data))
	copy(p.data, data)
	return nil
}
