package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/diwise/ro-crate/pkg/rocrate/errors"
	"github.com/diwise/ro-crate/pkg/rocrate/types/entities"
	"github.com/diwise/ro-crate/pkg/rocrate/types/properties"
)

const RORBaseURL string = "https://api.ror.org"

var rorPattern = regexp.MustCompile(`^0[a-hj-km-np-tv-z0-9]{6}[0-9]{2}$`)

type rorProvider struct {
	config
}

// NewRORProvider returns a provider building Organization entities from the
// ROR v2 api
func NewRORProvider(options ...ProviderOption) Provider {
	return &rorProvider{config: newConfig(RORBaseURL, options)}
}

type rorRecord struct {
	ID    string `json:"id"`
	Names []struct {
		Value string   `json:"value"`
		Types []string `json:"types"`
	} `json:"names"`
	Links []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"links"`
	Locations []struct {
		GeonamesDetails struct {
			Name        string `json:"name"`
			CountryName string `json:"country_name"`
		} `json:"geonames_details"`
	} `json:"locations"`
}

func (p *rorProvider) Fetch(ctx context.Context, identifier string) (*entities.Entity, error) {
	ror := strings.TrimPrefix(strings.TrimPrefix(identifier, "https://ror.org/"), "http://ror.org/")
	if !rorPattern.MatchString(ror) {
		return nil, errors.NewInvalidIdentifierError(identifier)
	}

	body, err := p.get(ctx, "fetch-ror", p.baseURL+"/v2/organizations/"+ror, "application/json")
	if err != nil {
		return nil, err
	}

	record := rorRecord{}
	if err = json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("failed to parse ror record: %w", err)
	}

	name := ""
	alternateNames := properties.List{}
	for _, n := range record.Names {
		if slices.Contains(n.Types, "ror_display") {
			name = n.Value
		} else if slices.Contains(n.Types, "alias") || slices.Contains(n.Types, "acronym") {
			alternateNames = append(alternateNames, properties.NewText(n.Value))
		}
	}

	decorators := []entities.EntityDecoratorFunc{
		optionalText(properties.Name, name),
		entities.P("alternateName", alternateNames),
	}

	for _, l := range record.Links {
		if l.Type == "website" {
			decorators = append(decorators, optionalText(properties.URL, l.Value))
			break
		}
	}

	if len(record.Locations) > 0 {
		location := record.Locations[0].GeonamesDetails
		decorators = append(decorators, optionalText("address", strings.Trim(location.Name+", "+location.CountryName, ", ")))
	}

	return entities.NewOrganization("https://ror.org/"+ror, decorators...)
}
