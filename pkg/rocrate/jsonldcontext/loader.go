package jsonldcontext

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/diwise/ro-crate/pkg/rocrate/errors"
	"github.com/diwise/ro-crate/pkg/rocrate/types"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

//go:embed assets/ro-crate-1.1-context.jsonld
var defaultContextDocument []byte

var tracer = otel.Tracer("ro-crate/jsonld-context")

const DefaultTimeout time.Duration = 10 * time.Second

// DefaultDocument returns a copy of the bundled RO-Crate 1.1 context document
func DefaultDocument() []byte {
	return append([]byte{}, defaultContextDocument...)
}

// Loader resolves vocabulary sources into contexts. The bundled default
// vocabulary is parsed once per loader, and remote sources are fetched at most
// once per loader as long as the fetch succeeds.
type Loader struct {
	httpClient *http.Client
	timeout    time.Duration
	offline    bool

	mu            sync.Mutex
	defaultTerms  map[string]string
	defaultLoaded bool
	fetched       map[string]map[string]string
}

type LoaderOption func(*Loader)

func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) {
		l.httpClient = c
	}
}

// WithTimeout limits the time spent fetching a single remote source
func WithTimeout(timeout time.Duration) LoaderOption {
	return func(l *Loader) {
		if timeout > 0 {
			l.timeout = timeout
		}
	}
}

// Offline makes the loader skip every remote source except the default one,
// which is always served from the bundled copy
func Offline(offline bool) LoaderOption {
	return func(l *Loader) {
		l.offline = offline
	}
}

func NewLoader(options ...LoaderOption) *Loader {
	l := &Loader{
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		timeout: DefaultTimeout,
		fetched: map[string]map[string]string{},
	}

	for _, option := range options {
		option(l)
	}

	return l
}

// Default returns a context holding only the bundled RO-Crate vocabulary
func (l *Loader) Default() *Context {
	c := newContext(l)
	c.appendSource(types.DefaultContextURL, l.bundledTerms(), nil)
	return c
}

// FromURLs fetches and merges every url in order. Sources that cannot be
// fetched or parsed are logged and contribute no terms.
func (l *Loader) FromURLs(ctx context.Context, urls []string) *Context {
	c := newContext(l)
	for _, u := range urls {
		c.AddURL(ctx, u)
	}
	return c
}

// FromInline builds a context from a JSON object of term to IRI pairs
func (l *Loader) FromInline(raw []byte) (*Context, error) {
	c := newContext(l)
	if err := c.mergeInline(raw); err != nil {
		return nil, err
	}
	return c, nil
}

// FromJSON builds a context from an @context value: a url string, an inline
// object or an array mixing both, processed in document order.
func (l *Loader) FromJSON(ctx context.Context, raw json.RawMessage) (*Context, error) {
	c := newContext(l)

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", types.KeywordContext, err)
	}

	var elements []json.RawMessage
	switch value.(type) {
	case []any:
		if err := json.Unmarshal(raw, &elements); err != nil {
			return nil, err
		}
	default:
		elements = []json.RawMessage{raw}
	}

	for _, element := range elements {
		var u string
		if json.Unmarshal(element, &u) == nil {
			c.AddURL(ctx, u)
			continue
		}

		if err := c.mergeInline(element); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (l *Loader) bundledTerms() map[string]string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.defaultLoaded {
		terms, err := parseContextDocument(defaultContextDocument)
		if err != nil {
			panic(fmt.Sprintf("bundled context is broken: %s", err.Error()))
		}
		l.defaultTerms = terms
		l.defaultLoaded = true
	}

	return l.defaultTerms
}

func (l *Loader) resolve(ctx context.Context, source string) (map[string]string, error) {
	if source == types.DefaultContextURL {
		return l.bundledTerms(), nil
	}

	l.mu.Lock()
	terms, ok := l.fetched[source]
	l.mu.Unlock()

	if ok {
		return terms, nil
	}

	if l.offline {
		return nil, errors.NewContextUnavailableError(source, fmt.Errorf("loader is offline"))
	}

	terms, err := l.fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.fetched[source] = terms
	l.mu.Unlock()

	return terms, nil
}

func (l *Loader) fetch(ctx context.Context, source string) (terms map[string]string, err error) {
	ctx, span := tracer.Start(ctx, "fetch-context",
		trace.WithAttributes(attribute.String("context-url", source)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		err = errors.NewContextUnavailableError(source, err)
		return
	}
	req.Header.Add("Accept", "application/ld+json, application/json;q=0.9")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		err = errors.NewContextUnavailableError(source, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = errors.NewContextUnavailableError(source, fmt.Errorf("unexpected response code %d", resp.StatusCode))
		return
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		err = errors.NewContextUnavailableError(source, err)
		return
	}

	terms, err = parseContextDocument(body)
	if err != nil {
		err = errors.NewContextUnavailableError(source, err)
		return
	}

	logging.GetFromContext(ctx).Debug("fetched context", "url", source, "terms", len(terms))

	return terms, nil
}

// parseContextDocument extracts the term definitions of a JSON-LD context
// document. Nested references to further remote contexts are not followed.
func parseContextDocument(body []byte) (map[string]string, error) {
	document := struct {
		Context json.RawMessage `json:"@context"`
	}{}

	if err := json.Unmarshal(body, &document); err != nil {
		return nil, err
	}

	if len(document.Context) == 0 {
		return nil, fmt.Errorf("document has no %s", types.KeywordContext)
	}

	terms := map[string]string{}

	var elements []json.RawMessage
	if err := json.Unmarshal(document.Context, &elements); err != nil {
		elements = []json.RawMessage{document.Context}
	}

	for _, element := range elements {
		definitions := map[string]json.RawMessage{}
		if json.Unmarshal(element, &definitions) != nil {
			continue
		}

		for term, definition := range definitions {
			if iri, ok := termIRI(definition); ok {
				terms[term] = iri
			}
		}
	}

	return terms, nil
}

// termIRI accepts both the simple "term": "iri" form and the expanded
// "term": {"@id": "iri"} form
func termIRI(definition json.RawMessage) (string, bool) {
	var iri string
	if json.Unmarshal(definition, &iri) == nil {
		return iri, true
	}

	expanded := struct {
		ID string `json:"@id"`
	}{}
	if json.Unmarshal(definition, &expanded) == nil && expanded.ID != "" {
		return expanded.ID, true
	}

	return "", false
}
