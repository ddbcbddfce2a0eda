package crates

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/diwise/ro-crate/internal/pkg/application/cratestore"
	"github.com/diwise/ro-crate/internal/pkg/presentation/api/crates/auth"
	apierrors "github.com/diwise/ro-crate/internal/pkg/presentation/api/crates/errors"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	TraceAttributeCrateID  string = "rocrate-crate-id"
	TraceAttributeEntityID string = "rocrate-entity-id"

	messageToSendToNonAuthenticatedClients string = "not found"
)

// NewListCratesHandler lists the crates this service is configured to serve
func NewListCratesHandler(store cratestore.CrateStore, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "list-crates")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		log := logging.GetFromContext(ctx)

		err = authenticator.CheckAccess(ctx, r, "")
		if err != nil {
			log.Warn("access not granted", "err", err.Error())
			apierrors.ReportUnauthorizedRequest(w, "access denied", traceID(ctx))
			return
		}

		crates := store.ListCrates(ctx)

		responseBody, err := json.Marshal(crates)
		if err != nil {
			log.Error("failed to marshal crate list", "err", err.Error())
			apierrors.ReportNewInternalError(w, err.Error(), traceID(ctx))
			return
		}

		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(responseBody)
	})
}

// NewRetrieveMetadataHandler serves the metadata document of a crate
func NewRetrieveMetadataHandler(store cratestore.CrateStore, authenticator auth.Enticator) http.HandlerFunc {
	return crateDocumentHandler("retrieve-metadata", authenticator, store.RetrieveMetadata)
}

// NewRetrieveExpandedGraphHandler serves the metadata document of a crate with
// references replaced by the entities they point at
func NewRetrieveExpandedGraphHandler(store cratestore.CrateStore, authenticator auth.Enticator) http.HandlerFunc {
	return crateDocumentHandler("retrieve-expanded-graph", authenticator, store.RetrieveExpandedGraph)
}

func NewRetrieveEntityHandler(store cratestore.CrateStore, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		crateID := pathParam(r, "crateId")
		entityID := pathParam(r, "entityId")

		ctx, span := tracer.Start(r.Context(), "retrieve-entity",
			trace.WithAttributes(
				attribute.String(TraceAttributeCrateID, crateID),
				attribute.String(TraceAttributeEntityID, entityID),
			),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		log := logging.GetFromContext(ctx)

		err = authenticator.CheckAccess(ctx, r, crateID)
		if err != nil {
			log.Warn("access not granted", "err", err.Error())
			apierrors.ReportNotFoundError(w, messageToSendToNonAuthenticatedClients, traceID(ctx))
			return
		}

		entity, err := store.RetrieveEntity(ctx, crateID, entityID)
		if err != nil {
			log.Info("failed to retrieve entity", "crate", crateID, "entity", entityID, "err", err.Error())
			mapStoreToAPIError(w, err, traceID(ctx))
			return
		}

		responseBody, err := json.Marshal(entity)
		if err != nil {
			log.Error("failed to marshal entity", "err", err.Error())
			apierrors.ReportNewInternalError(w, err.Error(), traceID(ctx))
			return
		}

		w.Header().Add("Content-Type", "application/ld+json")
		w.WriteHeader(http.StatusOK)
		w.Write(responseBody)
	})
}

func NewValidateCrateHandler(store cratestore.CrateStore, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		crateID := pathParam(r, "crateId")

		ctx, span := tracer.Start(r.Context(), "validate-crate",
			trace.WithAttributes(attribute.String(TraceAttributeCrateID, crateID)),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		log := logging.GetFromContext(ctx)

		err = authenticator.CheckAccess(ctx, r, crateID)
		if err != nil {
			log.Warn("access not granted", "err", err.Error())
			apierrors.ReportNotFoundError(w, messageToSendToNonAuthenticatedClients, traceID(ctx))
			return
		}

		report, err := store.ValidateCrate(ctx, crateID)
		if err != nil {
			log.Info("failed to validate crate", "crate", crateID, "err", err.Error())
			mapStoreToAPIError(w, err, traceID(ctx))
			return
		}

		responseBody, err := json.Marshal(report)
		if err != nil {
			apierrors.ReportNewInternalError(w, err.Error(), traceID(ctx))
			return
		}

		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(responseBody)
	})
}

type documentRetriever func(ctx context.Context, crateID string) ([]byte, error)

func crateDocumentHandler(spanName string, authenticator auth.Enticator, retrieve documentRetriever) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		crateID := pathParam(r, "crateId")

		ctx, span := tracer.Start(r.Context(), spanName,
			trace.WithAttributes(attribute.String(TraceAttributeCrateID, crateID)),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		log := logging.GetFromContext(ctx)

		err = authenticator.CheckAccess(ctx, r, crateID)
		if err != nil {
			log.Warn("access not granted", "err", err.Error())
			apierrors.ReportNotFoundError(w, messageToSendToNonAuthenticatedClients, traceID(ctx))
			return
		}

		document, err := retrieve(ctx, crateID)
		if err != nil {
			log.Info("failed to retrieve crate document", "crate", crateID, "err", err.Error())
			mapStoreToAPIError(w, err, traceID(ctx))
			return
		}

		w.Header().Add("Content-Type", "application/ld+json")
		w.WriteHeader(http.StatusOK)
		w.Write(document)
	})
}
