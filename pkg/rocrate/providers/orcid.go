package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/diwise/ro-crate/pkg/rocrate/errors"
	"github.com/diwise/ro-crate/pkg/rocrate/types/entities"
	"github.com/diwise/ro-crate/pkg/rocrate/types/properties"
)

const ORCIDBaseURL string = "https://orcid.org"

var orcidPattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{4}-[0-9]{4}-[0-9]{3}[0-9X]$`)

type orcidProvider struct {
	config
}

// NewORCIDProvider returns a provider building Person entities from the
// JSON-LD that orcid.org serves for an ORCID iD
func NewORCIDProvider(options ...ProviderOption) Provider {
	return &orcidProvider{config: newConfig(ORCIDBaseURL, options)}
}

type orcidRecord struct {
	Name        string          `json:"name"`
	GivenName   string          `json:"givenName"`
	FamilyName  string          `json:"familyName"`
	Email       string          `json:"email"`
	Affiliation json.RawMessage `json:"affiliation"`
}

type orcidAffiliation struct {
	ID   string `json:"@id"`
	Name string `json:"name"`
}

func (p *orcidProvider) Fetch(ctx context.Context, identifier string) (*entities.Entity, error) {
	orcid := strings.TrimPrefix(strings.TrimPrefix(identifier, "https://orcid.org/"), "http://orcid.org/")
	if !orcidPattern.MatchString(orcid) {
		return nil, errors.NewInvalidIdentifierError(identifier)
	}

	body, err := p.get(ctx, "fetch-orcid", p.baseURL+"/"+orcid, "application/ld+json")
	if err != nil {
		return nil, err
	}

	record := orcidRecord{}
	if err = json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("failed to parse orcid record: %w", err)
	}

	name := record.Name
	if name == "" {
		name = strings.TrimSpace(record.GivenName + " " + record.FamilyName)
	}

	decorators := []entities.EntityDecoratorFunc{
		optionalText(properties.Name, name),
		optionalText("givenName", record.GivenName),
		optionalText("familyName", record.FamilyName),
		optionalText(properties.Email, record.Email),
	}

	organizations := properties.List{}
	for _, a := range affiliations(record.Affiliation) {
		if a.ID != "" {
			organizations = append(organizations, properties.Ref(a.ID))
		} else if a.Name != "" {
			fields := properties.NewMap()
			fields.Set("@type", properties.NewText("Organization"))
			fields.Set(properties.Name, properties.NewText(a.Name))
			organizations = append(organizations, properties.NewObject(fields))
		}
	}
	decorators = append(decorators, entities.P(properties.Affiliation, organizations))

	return entities.NewPerson("https://orcid.org/"+orcid, decorators...)
}

func affiliations(raw json.RawMessage) []orcidAffiliation {
	if len(raw) == 0 {
		return nil
	}

	list := []orcidAffiliation{}
	if json.Unmarshal(raw, &list) == nil {
		return list
	}

	single := orcidAffiliation{}
	if json.Unmarshal(raw, &single) == nil {
		return []orcidAffiliation{single}
	}

	return nil
}
