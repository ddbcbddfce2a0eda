package cratestore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/diwise/ro-crate/pkg/rocrate/crate"
	rcerrors "github.com/diwise/ro-crate/pkg/rocrate/errors"
	"github.com/diwise/ro-crate/pkg/rocrate/graph"
	"github.com/diwise/ro-crate/pkg/rocrate/jsonldcontext"
	"github.com/diwise/ro-crate/pkg/rocrate/types/entities"
	"github.com/diwise/ro-crate/pkg/rocrate/validation"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

//go:generate moq -rm -out cratestore_mock.go . CrateStore

var tracer = otel.Tracer("ro-crate/cratestore")

type CrateInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Loaded bool   `json:"loaded"`
}

type ValidationReport struct {
	Valid        bool     `json:"valid"`
	Violations   []string `json:"violations"`
	UnknownTerms []string `json:"unknownTerms"`
}

type CrateStore interface {
	ListCrates(ctx context.Context) []CrateInfo
	RetrieveMetadata(ctx context.Context, crateID string) ([]byte, error)
	RetrieveEntity(ctx context.Context, crateID, entityID string) (*entities.Entity, error)
	RetrieveExpandedGraph(ctx context.Context, crateID string) ([]byte, error)
	ValidateCrate(ctx context.Context, crateID string) (*ValidationReport, error)
}

type StoreOption func(*crateStore)

// WithValidator replaces the bundled validation rules used by ValidateCrate
func WithValidator(v validation.Validator) StoreOption {
	return func(s *crateStore) {
		s.validator = v
	}
}

type crateStore struct {
	reader    *crate.Reader
	validator validation.Validator

	sources map[string]CrateSource
	order   []string

	mu     sync.Mutex
	loaded map[string]*crate.Crate
}

// New returns a store serving the crates listed in cfg. Crates are read the
// first time they are requested and kept in memory after that.
func New(ctx context.Context, cfg Config, options ...StoreOption) (CrateStore, error) {
	loaderOptions := []jsonldcontext.LoaderOption{jsonldcontext.Offline(cfg.Vocabulary.Offline)}
	if cfg.Vocabulary.Timeout > 0 {
		loaderOptions = append(loaderOptions, jsonldcontext.WithTimeout(cfg.Vocabulary.Timeout))
	}

	s := &crateStore{
		reader: crate.NewReader(
			crate.WithLoader(jsonldcontext.NewLoader(loaderOptions...)),
			crate.WithValidator(nil),
		),
		sources: map[string]CrateSource{},
		loaded:  map[string]*crate.Crate{},
	}

	for _, src := range cfg.Crates {
		if src.ID == "" || src.Path == "" {
			return nil, fmt.Errorf("crate configuration needs both id and path (id: %q)", src.ID)
		}
		if _, ok := s.sources[src.ID]; ok {
			return nil, fmt.Errorf("crate %s is configured more than once", src.ID)
		}

		s.sources[src.ID] = src
		s.order = append(s.order, src.ID)
	}

	for _, option := range options {
		option(s)
	}

	if s.validator == nil {
		v, err := validation.Default(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create validator: %w", err)
		}
		s.validator = v
	}

	return s, nil
}

func (s *crateStore) ListCrates(ctx context.Context) []CrateInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]CrateInfo, 0, len(s.order))
	for _, id := range s.order {
		_, loaded := s.loaded[id]
		result = append(result, CrateInfo{
			ID:     id,
			Name:   s.sources[id].Name,
			Loaded: loaded,
		})
	}

	return result
}

func (s *crateStore) RetrieveMetadata(ctx context.Context, crateID string) ([]byte, error) {
	c, err := s.crate(ctx, crateID)
	if err != nil {
		return nil, err
	}

	return c.MarshalJSON()
}

func (s *crateStore) RetrieveEntity(ctx context.Context, crateID, entityID string) (*entities.Entity, error) {
	c, err := s.crate(ctx, crateID)
	if err != nil {
		return nil, err
	}

	e := c.EntityByID(entityID)
	if e == nil {
		return nil, rcerrors.NewNotFoundError(fmt.Sprintf("no entity with id %s in crate %s", entityID, crateID))
	}

	return e, nil
}

func (s *crateStore) RetrieveExpandedGraph(ctx context.Context, crateID string) ([]byte, error) {
	metadata, err := s.RetrieveMetadata(ctx, crateID)
	if err != nil {
		return nil, err
	}

	return graph.ExpandDocument(metadata)
}

func (s *crateStore) ValidateCrate(ctx context.Context, crateID string) (*ValidationReport, error) {
	c, err := s.crate(ctx, crateID)
	if err != nil {
		return nil, err
	}

	report := &ValidationReport{
		Valid:        true,
		Violations:   []string{},
		UnknownTerms: c.CheckContext(),
	}

	err = c.Validate(ctx, s.validator)
	if err != nil {
		var validationErr *rcerrors.ValidationError
		if !errors.As(err, &validationErr) {
			return nil, err
		}

		report.Valid = false
		report.Violations = append(report.Violations, validationErr.Violations...)
	}

	return report, nil
}

func (s *crateStore) crate(ctx context.Context, crateID string) (c *crate.Crate, err error) {
	src, ok := s.sources[crateID]
	if !ok {
		return nil, rcerrors.NewNotFoundError(fmt.Sprintf("no crate with id %s", crateID))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok = s.loaded[crateID]; ok {
		return c, nil
	}

	ctx, span := tracer.Start(ctx, "load-crate", trace.WithAttributes(attribute.String("crate", crateID)))
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	log := logging.GetFromContext(ctx)

	if src.IsZip() {
		c, err = s.reader.ReadZip(ctx, src.Path)
	} else {
		c, err = s.reader.ReadFolder(ctx, src.Path)
	}

	if err != nil {
		log.Error("failed to load crate", "crate", crateID, "path", src.Path, "err", err.Error())
		return nil, err
	}

	log.Info("crate loaded", "crate", crateID, "entities", len(c.DataEntities())+len(c.ContextualEntities()))
	s.loaded[crateID] = c

	return c, nil
}
