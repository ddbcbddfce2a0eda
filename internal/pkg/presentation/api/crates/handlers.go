package crates

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/diwise/ro-crate/internal/pkg/application/cratestore"
	"github.com/diwise/ro-crate/internal/pkg/presentation/api/crates/auth"
	apierrors "github.com/diwise/ro-crate/internal/pkg/presentation/api/crates/errors"
	rcerrors "github.com/diwise/ro-crate/pkg/rocrate/errors"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("ro-crate/api/crates")

func RegisterHandlers(ctx context.Context, r chi.Router, policies io.Reader, store cratestore.CrateStore) error {

	authenticator, err := auth.NewAuthenticator(ctx, policies)
	if err != nil {
		return fmt.Errorf("failed to create api authenticator: %w", err)
	}

	r.Group(func(r chi.Router) {
		r.Use(Logger(logging.GetFromContext(ctx)))

		r.Route("/crates", func(r chi.Router) {
			r.Get("/", NewListCratesHandler(store, authenticator))

			r.Route("/{crateId}", func(r chi.Router) {
				r.Get("/ro-crate-metadata.json", NewRetrieveMetadataHandler(store, authenticator))
				r.Get("/entities/{entityId}", NewRetrieveEntityHandler(store, authenticator))
				r.Get("/expanded", NewRetrieveExpandedGraphHandler(store, authenticator))
				r.Get("/validation", NewValidateCrateHandler(store, authenticator))
			})
		})

		r.Get("/jsonldContexts/{contextId}", NewServeContextHandler())
	})

	return nil
}

func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			_, ctx, _ = o11y.AddTraceIDToLoggerAndStoreInContext(
				trace.SpanFromContext(ctx),
				logger,
				ctx)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func pathParam(r *http.Request, name string) string {
	value := chi.URLParam(r, name)
	if unescaped, err := url.PathUnescape(value); err == nil {
		return unescaped
	}
	return value
}

func traceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

func mapStoreToAPIError(w http.ResponseWriter, err error, traceID string) {
	switch {
	case errors.Is(err, rcerrors.ErrNotFound):
		apierrors.ReportNotFoundError(w, err.Error(), traceID)
	case errors.Is(err, rcerrors.ErrMalformedCrate):
		apierrors.ReportMalformedCrate(w, err.Error(), traceID)
	case errors.Is(err, rcerrors.ErrInvalidIdentifier):
		apierrors.ReportNewBadRequestData(w, err.Error(), traceID)
	default:
		apierrors.ReportNewInternalError(w, err.Error(), traceID)
	}
}
