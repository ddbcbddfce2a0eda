// Package providers looks up persons and organizations in public registries
// and returns them as ready built contextual entities.
package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/diwise/ro-crate/pkg/rocrate/errors"
	"github.com/diwise/ro-crate/pkg/rocrate/types/entities"
	"github.com/diwise/ro-crate/pkg/rocrate/types/properties"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("ro-crate/providers")

// Provider fetches an entity by a registry specific identifier. Unknown
// identifiers yield an error matching errors.ErrNotFound.
type Provider interface {
	Fetch(ctx context.Context, identifier string) (*entities.Entity, error)
}

type config struct {
	baseURL    string
	httpClient *http.Client
}

type ProviderOption func(*config)

func BaseURL(u string) ProviderOption {
	return func(c *config) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

func HTTPClient(client *http.Client) ProviderOption {
	return func(c *config) {
		c.httpClient = client
	}
}

func newConfig(defaultBaseURL string, options []ProviderOption) config {
	c := config{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	for _, option := range options {
		option(&c)
	}

	return c
}

func (c config) get(ctx context.Context, spanName, requestURL, accept string) (body []byte, err error) {
	ctx, span := tracer.Start(ctx, spanName, trace.WithAttributes(attribute.String("url", requestURL)))
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return
	}
	req.Header.Add("Accept", accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return
	}

	if resp.StatusCode == http.StatusNotFound {
		err = errors.NewNotFoundError(fmt.Sprintf("%s not found", requestURL))
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("request to %s failed with status code %d", requestURL, resp.StatusCode)
		return nil, err
	}

	return body, nil
}

func optionalText(name, value string) entities.EntityDecoratorFunc {
	return func(e *entities.Entity) {
		if value != "" {
			e.AddProperty(name, properties.NewText(value))
		}
	}
}
