package validation

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	rcerrors "github.com/diwise/ro-crate/pkg/rocrate/errors"
	"github.com/diwise/ro-crate/pkg/rocrate/types"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/open-policy-agent/opa/rego"
	"go.opentelemetry.io/otel"
)

//go:embed policies/rocrate.rego
var defaultPolicy []byte

var tracer = otel.Tracer("ro-crate/validation")

// Validator checks a serialized crate metadata document. A document that does
// not validate yields an error matching errors.ErrValidationFailed, usually a
// *errors.ValidationError listing the violations.
type Validator interface {
	Validate(ctx context.Context, document []byte) error
}

type ValidatorFunc func(ctx context.Context, document []byte) error

func (f ValidatorFunc) Validate(ctx context.Context, document []byte) error {
	return f(ctx, document)
}

// Predicate adapts a plain yes or no check into a validator reporting
// violation when the check fails
func Predicate(check func(document []byte) bool, violation string) Validator {
	return ValidatorFunc(func(_ context.Context, document []byte) error {
		if !check(document) {
			return rcerrors.NewValidationError(violation)
		}
		return nil
	})
}

// Default returns the structural checks followed by the bundled policy
func Default(ctx context.Context) (Validator, error) {
	policy, err := NewPolicyValidator(ctx, bytes.NewReader(defaultPolicy))
	if err != nil {
		return nil, err
	}

	return Chain(NewStructuralValidator(), policy), nil
}

type chain []Validator

// Chain runs every validator and merges their violations. Errors that are
// not validation failures abort the chain.
func Chain(validators ...Validator) Validator {
	return chain(validators)
}

func (c chain) Validate(ctx context.Context, document []byte) error {
	violations := []string{}

	for _, v := range c {
		err := v.Validate(ctx, document)
		if err == nil {
			continue
		}

		var validationErr *rcerrors.ValidationError
		if errors.As(err, &validationErr) {
			for _, violation := range validationErr.Violations {
				if !slices.Contains(violations, violation) {
					violations = append(violations, violation)
				}
			}
			continue
		}

		if errors.Is(err, rcerrors.ErrValidationFailed) {
			violations = append(violations, err.Error())
			continue
		}

		return err
	}

	if len(violations) > 0 {
		return rcerrors.NewValidationError(violations...)
	}

	return nil
}

type policyValidator struct {
	preparedQuery rego.PreparedEvalQuery
}

// NewPolicyValidator compiles a rego module in package rocrate.validation.
// Every message in its deny set is reported as a violation.
func NewPolicyValidator(ctx context.Context, policy io.Reader) (Validator, error) {
	module, err := io.ReadAll(policy)
	if err != nil {
		return nil, fmt.Errorf("unable to read validation policy: %s", err.Error())
	}

	pv := &policyValidator{}

	pv.preparedQuery, err = rego.New(
		rego.Query("x = data.rocrate.validation.deny"),
		rego.Module("rocrate.rego", string(module)),
	).PrepareForEval(ctx)

	if err != nil {
		return nil, err
	}

	return pv, nil
}

func (pv *policyValidator) Validate(ctx context.Context, document []byte) (err error) {
	ctx, span := tracer.Start(ctx, "evaluate-policy")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	decoder := json.NewDecoder(bytes.NewReader(document))
	decoder.UseNumber()

	var input any
	if err = decoder.Decode(&input); err != nil {
		err = fmt.Errorf("failed to parse document: %w", err)
		return
	}

	results, err := pv.preparedQuery.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		err = fmt.Errorf("opa eval failed: %w", err)
		return
	}

	if len(results) == 0 {
		err = fmt.Errorf("validation policy could not be evaluated")
		return
	}

	denied, ok := results[0].Bindings["x"].([]any)
	if !ok {
		err = fmt.Errorf("opa error: unexpected result type")
		return
	}

	violations := []string{}
	for _, d := range denied {
		violations = append(violations, fmt.Sprintf("%v", d))
	}
	slices.Sort(violations)

	if len(violations) > 0 {
		return rcerrors.NewValidationError(violations...)
	}

	return nil
}

type structuralValidator struct{}

// NewStructuralValidator checks the graph shape every crate must have: unique
// node ids, a descriptor conforming to the RO-Crate profile and a root dataset.
func NewStructuralValidator() Validator {
	return structuralValidator{}
}

func (structuralValidator) Validate(_ context.Context, document []byte) error {
	doc := struct {
		Context json.RawMessage   `json:"@context"`
		Graph   []json.RawMessage `json:"@graph"`
	}{}

	if err := json.Unmarshal(document, &doc); err != nil {
		return rcerrors.NewValidationError("document is not a json object with a " + types.KeywordGraph + " array")
	}

	violations := []string{}
	if len(doc.Context) == 0 {
		violations = append(violations, "document has no "+types.KeywordContext)
	}
	if doc.Graph == nil {
		violations = append(violations, "document has no "+types.KeywordGraph)
		return rcerrors.NewValidationError(violations...)
	}

	nodes := map[string]node{}
	rootID := ""

	for i, raw := range doc.Graph {
		n := node{}
		if err := json.Unmarshal(raw, &n); err != nil || n.ID == "" {
			violations = append(violations, fmt.Sprintf("node %d has no %s", i, types.KeywordID))
			continue
		}

		if _, ok := nodes[n.ID]; ok {
			violations = append(violations, fmt.Sprintf("%s is defined more than once", n.ID))
		}
		nodes[n.ID] = n

		if len(n.Types()) == 0 {
			violations = append(violations, fmt.Sprintf("%s has no %s", n.ID, types.KeywordType))
		}

		if n.conformsToProfile() && (rootID == "" || n.ID == types.DescriptorID) {
			rootID = n.about()
		}
	}

	if rootID == "" {
		violations = append(violations, "no metadata descriptor conforms to the RO-Crate profile")
	} else if root, ok := nodes[rootID]; !ok {
		violations = append(violations, fmt.Sprintf("root data entity %s is missing", rootID))
	} else if !slices.Contains(root.Types(), types.DatasetTypeName) {
		violations = append(violations, fmt.Sprintf("root data entity %s is not a %s", rootID, types.DatasetTypeName))
	}

	if len(violations) > 0 {
		return rcerrors.NewValidationError(violations...)
	}

	return nil
}

type reference struct {
	ID string `json:"@id"`
}

// node holds the parts of a graph node the structural checks look at
type node struct {
	ID         string
	Type       json.RawMessage
	ConformsTo []reference
	About      []reference
}

func (n *node) UnmarshalJSON(b []byte) error {
	raw := struct {
		ID         json.RawMessage `json:"@id"`
		Type       json.RawMessage `json:"@type"`
		ConformsTo json.RawMessage `json:"conformsTo"`
		About      json.RawMessage `json:"about"`
	}{}

	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	_ = json.Unmarshal(raw.ID, &n.ID)
	n.Type = raw.Type
	n.ConformsTo = references(raw.ConformsTo)
	n.About = references(raw.About)

	return nil
}

func (n node) conformsToProfile() bool {
	return slices.ContainsFunc(n.ConformsTo, func(r reference) bool { return types.IsProfile(r.ID) })
}

func (n node) about() string {
	if len(n.About) == 0 {
		return ""
	}
	return n.About[0].ID
}

func references(raw json.RawMessage) []reference {
	if len(raw) == 0 {
		return nil
	}

	refs := []reference{}
	if json.Unmarshal(raw, &refs) == nil {
		return refs
	}

	ref := reference{}
	if json.Unmarshal(raw, &ref) == nil {
		return []reference{ref}
	}

	return nil
}

func (n node) Types() []string {
	var single string
	if json.Unmarshal(n.Type, &single) == nil {
		if single == "" {
			return []string{}
		}
		return []string{single}
	}

	list := []string{}
	_ = json.Unmarshal(n.Type, &list)
	return list
}
