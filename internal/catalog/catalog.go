// Package catalog holds the public alias catalog and the private resolution
// table. The public side is safe to expose to any caller; the private side
// is the confidential alias -> provider mapping and never leaves the
// process unredacted.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"alias_gateway/internal/models"
	"alias_gateway/internal/utils"
)

// builtinCatalog is the static public catalog, in declaration order.
var builtinCatalog = []models.PublicAlias{
	{
		AliasID:      "orbit-v3.2",
		AliasName:    models.AliasOrbit,
		AliasVersion: "v3.2",
		Capabilities: []string{
			"Reasoning: long-context",
			"Reasoning: tool use",
			"Reasoning: structured output",
		},
		Limits:             models.Limits{MaxContext: 128000, TokensPerSecond: 70, MaxOutput: 8192},
		DefaultTemperature: 0.2,
		Status:             models.StatusHealthy,
	},
	{
		AliasID:      "codemax-v2.4",
		AliasName:    models.AliasCodemax,
		AliasVersion: "v2.4",
		Capabilities: []string{
			"Code: repo-aware edits",
			"Code: patch generation",
			"Code: refactor support",
		},
		Limits:             models.Limits{MaxContext: 256000, TokensPerSecond: 50, MaxOutput: 8192},
		DefaultTemperature: 0.1,
		Status:             models.StatusHealthy,
	},
	{
		AliasID:      "vision-v1.1",
		AliasName:    models.AliasVision,
		AliasVersion: "v1.1",
		Capabilities: []string{
			"Vision: image understanding",
			"Vision: OCR-like extraction",
			"Vision: chart reading",
		},
		Limits:             models.Limits{MaxContext: 64000, TokensPerSecond: 40, MaxOutput: 4096},
		DefaultTemperature: 0.2,
		Status:             models.StatusHealthy,
	},
	{
		AliasID:      "echo-v1.0",
		AliasName:    models.AliasEcho,
		AliasVersion: "v1.0",
		Capabilities: []string{
			"Audio: speech-to-text",
			"Audio: text-to-speech",
			"Audio: conversational turn-taking",
		},
		Limits:             models.Limits{MaxContext: 64000, TokensPerSecond: 35, MaxOutput: 4096},
		DefaultTemperature: 0.3,
		Status:             models.StatusHealthy,
	},
}

// resolutionSeed holds the static parts of a private resolution. Reference
// values come from the environment with development fallbacks; the routing
// policy is fixed.
type resolutionSeed struct {
	aliasID   string
	aliasName models.AliasName
	version   string
	modelRole string
	policy    models.RoutingPolicy
}

var resolutionSeeds = []resolutionSeed{
	{
		aliasID: "orbit-v3.2", aliasName: models.AliasOrbit, version: "v3.2", modelRole: "reasoning",
		policy: models.RoutingPolicy{
			Primary:   "orbit-primary-route",
			Fallbacks: []string{"orbit-fallback-route-a", "orbit-fallback-route-b"},
			Weights: map[string]int{
				"orbit-primary-route":    90,
				"orbit-fallback-route-a": 7,
				"orbit-fallback-route-b": 3,
			},
		},
	},
	{
		aliasID: "codemax-v2.4", aliasName: models.AliasCodemax, version: "v2.4", modelRole: "code",
		policy: models.RoutingPolicy{
			Primary:   "codemax-primary-route",
			Fallbacks: []string{"codemax-fallback-route-a"},
			Weights: map[string]int{
				"codemax-primary-route":    95,
				"codemax-fallback-route-a": 5,
			},
		},
	},
	{
		aliasID: "vision-v1.1", aliasName: models.AliasVision, version: "v1.1", modelRole: "image",
		policy: models.RoutingPolicy{
			Primary:   "vision-primary-route",
			Fallbacks: []string{"vision-fallback-route-a"},
			Weights: map[string]int{
				"vision-primary-route":    92,
				"vision-fallback-route-a": 8,
			},
		},
	},
	{
		aliasID: "echo-v1.0", aliasName: models.AliasEcho, version: "v1.0", modelRole: "audio",
		policy: models.RoutingPolicy{
			Primary:   "echo-primary-route",
			Fallbacks: []string{"echo-fallback-route-a"},
			Weights: map[string]int{
				"echo-primary-route":    90,
				"echo-fallback-route-a": 10,
			},
		},
	},
}

// Catalog exposes public lookups and private resolution. All tables are
// built once at construction and read-only thereafter, so handlers share a
// Catalog without locking.
type Catalog struct {
	public  []models.PublicAlias
	byID    map[string]int
	private map[string]models.PrivateResolution
	logger  *utils.Logger
}

type options struct {
	lookup  func(string) string
	records []models.PublicAlias
}

// Option configures catalog construction.
type Option func(*options)

// WithLookup overrides where resolution references are read from. The
// default is os.Getenv. Tests use this to inject deployment configuration.
func WithLookup(fn func(string) string) Option {
	return func(o *options) { o.lookup = fn }
}

// WithPublicRecords replaces the built-in public catalog, e.g. with rows
// loaded from Postgres at startup. Declaration order of the given slice is
// preserved.
func WithPublicRecords(records []models.PublicAlias) Option {
	return func(o *options) { o.records = records }
}

// New builds the catalog and resolution tables. Every public alias should
// have exactly one private resolution; an alias without one is logged and
// surfaced as absent at lookup time, never a crash.
func New(opts ...Option) (*Catalog, error) {
	o := options{lookup: os.Getenv, records: builtinCatalog}
	for _, opt := range opts {
		opt(&o)
	}

	if len(o.records) == 0 {
		return nil, fmt.Errorf("public alias catalog is empty")
	}

	c := &Catalog{
		public:  o.records,
		byID:    make(map[string]int, len(o.records)),
		private: make(map[string]models.PrivateResolution, len(resolutionSeeds)),
		logger:  utils.NewLogger("catalog"),
	}

	for i, rec := range c.public {
		c.byID[rec.AliasID] = i
	}

	for _, seed := range resolutionSeeds {
		c.private[seed.aliasID] = buildResolution(seed, o.lookup)
	}

	for _, rec := range c.public {
		res, ok := c.private[rec.AliasID]
		if !ok {
			c.logger.Error("Public alias has no private resolution", "alias_id", rec.AliasID)
			continue
		}
		if onFallbackRefs(rec.AliasName, res) {
			c.logger.Warn("Alias is using development fallback references", "alias_id", rec.AliasID)
		}
	}

	return c, nil
}

// buildResolution assembles a private resolution from its seed plus the
// deployment environment. The fallbacks keep every alias resolvable in
// development; production deployments must override every reference.
func buildResolution(seed resolutionSeed, lookup func(string) string) models.PrivateResolution {
	name := string(seed.aliasName)
	prefix := "EBURON_" + strings.ToUpper(name) + "_"

	get := func(suffix, fallback string) string {
		if v := lookup(prefix + suffix); v != "" {
			return v
		}
		return fallback
	}

	return models.PrivateResolution{
		AliasName:       seed.aliasName,
		AliasVersion:    seed.version,
		ProviderID:      get("PROVIDER_ID", "provider-"+name+"-primary"),
		ProviderModelID: get("PROVIDER_MODEL_ID", "model-"+name+"-"+seed.modelRole),
		EndpointRef:     get("ENDPOINT_REF", "endpoint://"+name+"-primary"),
		KeyRef:          get("KEY_REF", "secret://"+name+"-key"),
		RoutingPolicy:   seed.policy,
	}
}

func onFallbackRefs(name models.AliasName, res models.PrivateResolution) bool {
	n := string(name)
	return res.ProviderID == "provider-"+n+"-primary" ||
		res.EndpointRef == "endpoint://"+n+"-primary" ||
		res.KeyRef == "secret://"+n+"-key"
}

// ListPublicAliases returns the full public catalog in declaration order.
// Callers must treat the result as read-only.
func (c *Catalog) ListPublicAliases() []models.PublicAlias {
	return c.public
}

// GetPublicAlias looks up a public record by alias_id.
func (c *Catalog) GetPublicAlias(aliasID string) (*models.PublicAlias, bool) {
	i, ok := c.byID[aliasID]
	if !ok {
		return nil, false
	}
	return &c.public[i], true
}

// ResolvePrivateAlias looks up the private resolution for an alias_id. The
// result is server-side only; it selects the endpoint and route and is
// never included in a client response.
func (c *Catalog) ResolvePrivateAlias(aliasID string) (*models.PrivateResolution, bool) {
	res, ok := c.private[aliasID]
	if !ok {
		return nil, false
	}
	return &res, true
}
