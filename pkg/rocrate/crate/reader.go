package crate

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"slices"
	"strings"

	rcerrors "github.com/diwise/ro-crate/pkg/rocrate/errors"
	"github.com/diwise/ro-crate/pkg/rocrate/jsonldcontext"
	"github.com/diwise/ro-crate/pkg/rocrate/types"
	"github.com/diwise/ro-crate/pkg/rocrate/types/entities"
	"github.com/diwise/ro-crate/pkg/rocrate/types/properties"
	"github.com/diwise/ro-crate/pkg/rocrate/validation"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("ro-crate/crate")

// Reader builds crates from metadata documents and the files next to them
type Reader struct {
	loader    *jsonldcontext.Loader
	validator validation.Validator
}

type ReaderOption func(*Reader)

func WithLoader(l *jsonldcontext.Loader) ReaderOption {
	return func(r *Reader) {
		if l != nil {
			r.loader = l
		}
	}
}

// WithValidator replaces the structural validator run after reading. A nil
// validator turns validation off.
func WithValidator(v validation.Validator) ReaderOption {
	return func(r *Reader) {
		r.validator = v
	}
}

func NewReader(options ...ReaderOption) *Reader {
	r := &Reader{
		loader:    jsonldcontext.NewLoader(),
		validator: validation.NewStructuralValidator(),
	}

	for _, option := range options {
		option(r)
	}

	return r
}

// ReadFolder reads the crate stored in dir
func (r *Reader) ReadFolder(ctx context.Context, dir string) (*Crate, error) {
	return r.Read(ctx, os.DirFS(dir))
}

// ReadZip reads a zipped crate. The archive is kept in memory so that the
// returned crate can still reach its content.
func (r *Reader) ReadZip(ctx context.Context, zipPath string) (*Crate, error) {
	b, err := os.ReadFile(zipPath)
	if err != nil {
		return nil, err
	}

	archive, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", zipPath, err)
	}

	return r.Read(ctx, archive)
}

// Read reads a crate from fsys. The metadata document is expected at the top
// level, or inside the single top level folder some zip tools add.
func (r *Reader) Read(ctx context.Context, fsys fs.FS) (*Crate, error) {
	root, err := crateRoot(fsys)
	if err != nil {
		return nil, err
	}

	document, err := fs.ReadFile(root, types.DescriptorID)
	if err != nil {
		return nil, rcerrors.NewMalformedCrateError(fmt.Sprintf("failed to read %s: %s", types.DescriptorID, err.Error()))
	}

	return r.read(ctx, document, root)
}

// ReadJSON reads a detached metadata document. Data entities get no content.
func (r *Reader) ReadJSON(ctx context.Context, document []byte) (*Crate, error) {
	return r.read(ctx, document, nil)
}

func crateRoot(fsys fs.FS) (fs.FS, error) {
	if _, err := fs.Stat(fsys, types.DescriptorID); err == nil {
		return fsys, nil
	}

	dirEntries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	if len(dirEntries) == 1 && dirEntries[0].IsDir() {
		if _, err := fs.Stat(fsys, path.Join(dirEntries[0].Name(), types.DescriptorID)); err == nil {
			return fs.Sub(fsys, dirEntries[0].Name())
		}
	}

	return nil, rcerrors.NewMalformedCrateError(types.DescriptorID + " not found")
}

type node struct {
	raw    json.RawMessage
	fields *properties.Map
	id     string
}

func (r *Reader) read(ctx context.Context, document []byte, fsys fs.FS) (c *Crate, err error) {
	ctx, span := tracer.Start(ctx, "read-crate",
		trace.WithAttributes(attribute.Int("document-size", len(document))),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	log := logging.GetFromContext(ctx)

	doc := struct {
		Context json.RawMessage `json:"@context"`
		Graph   json.RawMessage `json:"@graph"`
	}{}

	if err = json.Unmarshal(document, &doc); err != nil {
		err = rcerrors.NewMalformedCrateError(err.Error())
		return
	}

	rawNodes := []json.RawMessage{}
	if len(doc.Graph) == 0 || json.Unmarshal(doc.Graph, &rawNodes) != nil {
		err = rcerrors.NewMalformedCrateError("no " + types.KeywordGraph + " array")
		return
	}

	nodes := make([]node, 0, len(rawNodes))
	for i, raw := range rawNodes {
		fields, decodeErr := properties.DecodeMap(raw)
		if decodeErr != nil {
			err = rcerrors.NewMalformedCrateError(fmt.Sprintf("node %d: %s", i, decodeErr.Error()))
			return
		}
		id := ""
		if s, ok := fields.Get(types.KeywordID).(properties.Scalar); ok {
			id, _ = s.Text()
		}
		nodes = append(nodes, node{raw: raw, fields: fields, id: id})
	}

	descriptorIdx := findDescriptor(nodes)
	if descriptorIdx < 0 {
		err = rcerrors.NewMalformedCrateError("no metadata descriptor conforms to the RO-Crate profile")
		return
	}

	descriptor, err := entities.NewFromJSON(nodes[descriptorIdx].raw)
	if err != nil {
		err = rcerrors.NewMalformedCrateError(err.Error())
		return
	}
	nodes = slices.Delete(nodes, descriptorIdx, descriptorIdx+1)

	rootID := ""
	if about := properties.ReferencedIDs(descriptor.Property(properties.About)); len(about) > 0 {
		rootID = about[0]
	}

	rootIdx := slices.IndexFunc(nodes, func(n node) bool { return rootID != "" && n.id == rootID })
	if rootIdx < 0 {
		err = rcerrors.NewMalformedCrateError(fmt.Sprintf("root data entity %q not found", rootID))
		return
	}

	rootNode := nodes[rootIdx]
	parts := properties.ReferencedIDs(rootNode.fields.Get(types.PropertyHasPart))
	rootNode.fields.Delete(types.PropertyHasPart)

	rootJSON, err := rootNode.fields.MarshalJSON()
	if err != nil {
		return
	}

	root, err := entities.NewFromJSON(rootJSON, entities.DataEntity(), entities.HasPart(parts...))
	if err != nil {
		err = rcerrors.NewMalformedCrateError(err.Error())
		return
	}
	nodes = slices.Delete(nodes, rootIdx, rootIdx+1)

	c, err = New(root, WithDescriptor(descriptor), WithContext(r.context(ctx, doc.Context)))
	if err != nil {
		return
	}

	used := map[string]bool{}

	for _, n := range nodes {
		decorators := []entities.EntityDecoratorFunc{}

		if slices.Contains(parts, n.id) {
			decorators = append(decorators, entities.DataEntity())
			if contentPath, ok := locate(fsys, n.id); ok {
				decorators = append(decorators, entities.ContentFrom(fsys, contentPath))
				used[contentPath] = true
			} else {
				log.Debug("data entity has no local content", "id", n.id)
			}
		}

		e, buildErr := entities.NewFromJSON(n.raw, decorators...)
		if buildErr != nil {
			err = rcerrors.NewMalformedCrateError(buildErr.Error())
			c = nil
			return
		}

		c.payload.AddEntity(e)
	}

	if fsys != nil {
		var untracked []string
		untracked, err = untrackedFiles(fsys, used)
		if err != nil {
			c = nil
			return
		}
		for _, p := range untracked {
			c.AddUntrackedFile(fsys, p)
		}
	}

	if unknown := c.CheckContext(); len(unknown) > 0 {
		log.Debug("entities use terms unknown to the context", "count", len(unknown))
	}

	if r.validator != nil {
		if validationErr := r.validator.Validate(ctx, document); validationErr != nil {
			if errors.Is(validationErr, rcerrors.ErrValidationFailed) {
				log.Info("crate does not validate", "err", validationErr.Error())
				return c, validationErr
			}
			log.Warn("failed to validate crate", "err", validationErr.Error())
		}
	}

	return c, nil
}

func (r *Reader) context(ctx context.Context, raw json.RawMessage) *jsonldcontext.Context {
	if len(raw) == 0 {
		logging.GetFromContext(ctx).Warn("document has no context, using the default")
		return r.loader.Default()
	}

	c, err := r.loader.FromJSON(ctx, raw)
	if err != nil {
		logging.GetFromContext(ctx).Warn("unusable context, using the default", "err", err.Error())
		return r.loader.Default()
	}

	return c
}

// findDescriptor returns the index of the node conforming to the RO-Crate
// profile, preferring the one named ro-crate-metadata.json
func findDescriptor(nodes []node) int {
	found := -1

	for i, n := range nodes {
		conforms := slices.ContainsFunc(
			properties.ReferencedIDs(n.fields.Get(types.PropertyConformsTo)),
			types.IsProfile,
		)

		if conforms {
			if n.id == types.DescriptorID {
				return i
			}
			if found < 0 {
				found = i
			}
		}
	}

	return found
}

// locate finds the file or directory backing a data entity id
func locate(fsys fs.FS, id string) (string, bool) {
	if fsys == nil {
		return "", false
	}

	if u, err := url.Parse(id); err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}

	candidates := []string{id}
	if unescaped, err := url.PathUnescape(id); err == nil && unescaped != id {
		candidates = append(candidates, unescaped)
	}

	for _, candidate := range candidates {
		p := path.Clean(strings.TrimPrefix(candidate, "./"))
		if !fs.ValidPath(p) || p == "." || types.IsReserved(p) {
			continue
		}

		info, err := fs.Stat(fsys, p)
		if err != nil {
			continue
		}

		if strings.HasSuffix(candidate, "/") && !info.IsDir() {
			continue
		}
		return p, true
	}

	return "", false
}

// untrackedFiles lists the regular files that no data entity is bound to.
// Everything below a bound directory counts as used.
func untrackedFiles(fsys fs.FS, used map[string]bool) ([]string, error) {
	untracked := []string{}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if p == "." {
			return nil
		}

		if types.IsReserved(p) || used[p] {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.Type().IsRegular() {
			untracked = append(untracked, p)
		}

		return nil
	})

	return untracked, err
}
