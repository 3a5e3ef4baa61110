package models

// AliasName is the closed set of public capability tier names.
type AliasName string

const (
	AliasOrbit   AliasName = "orbit"
	AliasCodemax AliasName = "codemax"
	AliasEcho    AliasName = "echo"
	AliasVision  AliasName = "vision"
)

// IsValid checks if the alias name is part of the public enumeration
func (n AliasName) IsValid() bool {
	switch n {
	case AliasOrbit, AliasCodemax, AliasEcho, AliasVision:
		return true
	default:
		return false
	}
}

// AliasStatus reflects the advertised health of an alias tier.
type AliasStatus string

const (
	StatusHealthy  AliasStatus = "healthy"
	StatusDegraded AliasStatus = "degraded"
)

// Limits holds the advertised throughput and context limits for an alias.
type Limits struct {
	MaxContext      int     `json:"max_context" db:"max_context"`
	TokensPerSecond float64 `json:"tokens_per_second" db:"tokens_per_second"`
	MaxOutput       int     `json:"max_output" db:"max_output"`
}

// PublicAlias is the client-visible record for an alias. It carries no
// provider, model, endpoint or key information and is safe to serialize to
// any caller. Records are defined at process start and read-only thereafter.
type PublicAlias struct {
	AliasID            string      `json:"alias_id" db:"alias_id"`
	AliasName          AliasName   `json:"alias_name" db:"alias_name"`
	AliasVersion       string      `json:"alias_version" db:"alias_version"`
	Capabilities       []string    `json:"capabilities"`
	Limits             Limits      `json:"limits"`
	DefaultTemperature float64     `json:"default_temperature" db:"default_temperature"`
	Status             AliasStatus `json:"status" db:"status"`
}

// RoutingPolicy describes how traffic for an alias is spread across routes.
type RoutingPolicy struct {
	Primary   string
	Fallbacks []string
	Weights   map[string]int
}

// PrivateResolution maps an alias to its confidential backend configuration.
// The reference fields are opaque handles, not raw secrets; the actual
// secret material is looked up separately by reference. This struct is used
// server-side only to select endpoints and routes. It must never be
// serialized into a client response or an unredacted log line.
type PrivateResolution struct {
	AliasName       AliasName
	AliasVersion    string
	ProviderID      string
	ProviderModelID string
	EndpointRef     string
	KeyRef          string
	RoutingPolicy   RoutingPolicy
}
