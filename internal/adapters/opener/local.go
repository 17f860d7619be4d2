package opener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"ledger_import/internal/ports"
)

// LocalOpener reads files from disk, optionally confined to Root.
type LocalOpener struct {
	Root string
}

func NewLocalOpener(root string) *LocalOpener { return &LocalOpener{Root: root} }

func (l *LocalOpener) Open(_ context.Context, name string) (io.ReadCloser, ports.Meta, error) {
	p := filepath.Clean(name)
	if l.Root != "" {
		root, err := filepath.EvalSymlinks(l.Root)
		if err != nil {
			return nil, ports.Meta{}, err
		}
		// resolve links so one inside root cannot point outside it
		if p, err = filepath.EvalSymlinks(p); err != nil {
			return nil, ports.Meta{}, err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, ports.Meta{}, fmt.Errorf("path %q is outside %q", name, root)
		}
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, ports.Meta{}, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ports.Meta{}, err
	}
	if st.IsDir() {
		f.Close()
		return nil, ports.Meta{}, errors.New("path is a directory")
	}

	return f, ports.Meta{
		Source:      "file",
		ContentType: mime.TypeByExtension(filepath.Ext(p)),
		Size:        st.Size(),
	}, nil
}
