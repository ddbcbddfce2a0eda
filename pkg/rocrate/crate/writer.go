package crate

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/diwise/ro-crate/pkg/rocrate/types"
	"github.com/diwise/ro-crate/pkg/rocrate/types/entities"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Writer persists crates as folders or zip archives. The metadata document is
// written first, followed by the content of every data entity at the path
// given by its id and finally the untracked files.
type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

type target interface {
	create(name string) (io.WriteCloser, error)
	mkdir(name string) error
}

func (w *Writer) WriteFolder(ctx context.Context, c *Crate, dir string) (err error) {
	ctx, span := tracer.Start(ctx, "write-folder", trace.WithAttributes(attribute.String("dir", dir)))
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if err = os.MkdirAll(dir, 0755); err != nil {
		return
	}

	err = w.write(ctx, c, folder(dir))
	return
}

func (w *Writer) WriteZip(ctx context.Context, c *Crate, out io.Writer) (err error) {
	ctx, span := tracer.Start(ctx, "write-zip")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	zw := zip.NewWriter(out)

	if err = w.write(ctx, c, archive{zw}); err != nil {
		zw.Close()
		return
	}

	err = zw.Close()
	return
}

func (w *Writer) write(ctx context.Context, c *Crate, t target) error {
	log := logging.GetFromContext(ctx)

	metadata, err := t.create(types.DescriptorID)
	if err != nil {
		return err
	}
	if err = c.Encode(metadata, true); err != nil {
		metadata.Close()
		return err
	}
	if err = metadata.Close(); err != nil {
		return err
	}

	for _, e := range c.DataEntities() {
		name, ok := destination(e.ID())
		if !ok {
			continue
		}

		content := e.Content()
		if content == nil {
			if strings.HasSuffix(e.ID(), "/") {
				if err := t.mkdir(name); err != nil {
					return err
				}
			}
			continue
		}

		if err := copyContent(t, *content, name); err != nil {
			return fmt.Errorf("failed to write %s: %w", e.ID(), err)
		}
	}

	for _, f := range c.UntrackedFiles() {
		name, ok := destination(f.Path)
		if !ok {
			log.Warn("skipping untracked file", "path", f.Path)
			continue
		}

		if err := copyContent(t, f, name); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.Path, err)
		}
	}

	return nil
}

// destination maps an id to a relative path inside the crate. Remote ids,
// paths escaping the crate and reserved names have no destination.
func destination(id string) (string, bool) {
	if u, err := url.Parse(id); err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}

	if unescaped, err := url.PathUnescape(id); err == nil {
		id = unescaped
	}

	name := path.Clean(strings.TrimPrefix(id, "./"))
	if !fs.ValidPath(name) || name == "." || types.IsReserved(name) {
		return "", false
	}

	return name, true
}

func copyContent(t target, content entities.Content, name string) error {
	if !content.IsDir() {
		return copyFile(t, content.FS, content.Path, name)
	}

	return fs.WalkDir(content.FS, content.Path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relative := strings.TrimPrefix(strings.TrimPrefix(p, content.Path), "/")
		dest := path.Join(name, relative)

		if types.IsReserved(dest) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return t.mkdir(dest)
		}

		if d.Type().IsRegular() {
			return copyFile(t, content.FS, p, dest)
		}

		return nil
	})
}

func copyFile(t target, fsys fs.FS, source, name string) error {
	in, err := fsys.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := t.create(name)
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}

type folder string

func (f folder) create(name string) (io.WriteCloser, error) {
	p := filepath.Join(string(f), filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return nil, err
	}
	return os.Create(p)
}

func (f folder) mkdir(name string) error {
	return os.MkdirAll(filepath.Join(string(f), filepath.FromSlash(name)), 0755)
}

type archive struct {
	zw *zip.Writer
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func (a archive) create(name string) (io.WriteCloser, error) {
	w, err := a.zw.Create(name)
	if err != nil {
		return nil, err
	}
	return nopCloser{w}, nil
}

func (a archive) mkdir(name string) error {
	_, err := a.zw.Create(strings.TrimSuffix(name, "/") + "/")
	return err
}
