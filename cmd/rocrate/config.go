package main

import (
	"context"
	_ "embed"

	"github.com/diwise/ro-crate/pkg/rocrate/providers"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
)

type FlagType int
type FlagMap map[FlagType]string

const (
	servicePort FlagType = iota
	configPath
	opaPath

	policyPath
	outputPath
	orcidURL
	rorURL
)

//go:embed policies/authz.rego
var defaultAuthzPolicies []byte

func defaultFlags(ctx context.Context) FlagMap {
	return FlagMap{
		servicePort: env.GetVariableOrDefault(ctx, "SERVICE_PORT", "8080"),
		configPath:  env.GetVariableOrDefault(ctx, "RO_CRATE_CONFIG", "/opt/diwise/config/crates.yaml"),
		opaPath:     env.GetVariableOrDefault(ctx, "RO_CRATE_POLICIES", ""),
		orcidURL:    env.GetVariableOrDefault(ctx, "ORCID_URL", providers.ORCIDBaseURL),
		rorURL:      env.GetVariableOrDefault(ctx, "ROR_URL", providers.RORBaseURL),
	}
}
