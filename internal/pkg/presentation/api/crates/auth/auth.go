package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/open-policy-agent/opa/rego"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("ro-crate/api/authz")

var ErrAccessDenied = errors.New("authorization failed")

type Enticator interface {
	CheckAccess(ctx context.Context, r *http.Request, crateID string) error
}

type enticatorImpl struct {
	preparedQuery rego.PreparedEvalQuery
}

// NewAuthenticator prepares the rego policies in policies. They are queried
// for data.rocrate.authz.allow with the method, path segments, bearer token
// and crate id of every request.
func NewAuthenticator(ctx context.Context, policies io.Reader) (Enticator, error) {

	module, err := io.ReadAll(policies)
	if err != nil {
		return nil, fmt.Errorf("unable to read authz policies: %s", err.Error())
	}

	impl := &enticatorImpl{}

	impl.preparedQuery, err = rego.New(
		rego.Query("x = data.rocrate.authz.allow"),
		rego.Module("rocrate.rego", string(module)),
	).PrepareForEval(ctx)

	if err != nil {
		return nil, err
	}

	return impl, nil
}

func (e *enticatorImpl) CheckAccess(ctx context.Context, r *http.Request, crateID string) error {
	var err error

	_, span := tracer.Start(ctx, "check-auth")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	token := r.Header.Get("Authorization")
	token, _ = strings.CutPrefix(token, "Bearer ")

	path := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	input := map[string]any{
		"method": r.Method,
		"path":   path,
		"token":  token,
		"crate":  crateID,
	}

	results, err := e.preparedQuery.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		err = fmt.Errorf("opa eval failed: %w", err)
		return err
	}

	if len(results) == 0 {
		err = fmt.Errorf("auth failed: opa query could not be satisfied")
		return err
	}

	binding := results[0].Bindings["x"]

	// a denied request binds a single false
	allowed, ok := binding.(bool)
	if ok && !allowed {
		err = ErrAccessDenied
		return err
	}

	if ok {
		return nil
	}

	_, ok = binding.(map[string]any)
	if !ok {
		err = errors.New("opa error: unexpected result type")
		return err
	}

	return nil
}
