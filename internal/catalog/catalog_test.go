package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alias_gateway/internal/models"
)

func emptyLookup(string) string { return "" }

func TestCatalog_EveryPublicAliasResolves(t *testing.T) {
	c, err := New(WithLookup(emptyLookup))
	require.NoError(t, err)

	records := c.ListPublicAliases()
	require.Len(t, records, 4)

	for _, rec := range records {
		res, ok := c.ResolvePrivateAlias(rec.AliasID)
		require.True(t, ok, "alias %s has no resolution", rec.AliasID)
		assert.Equal(t, rec.AliasName, res.AliasName)
		assert.NotEmpty(t, res.ProviderID)
		assert.NotEmpty(t, res.EndpointRef)
		assert.NotEmpty(t, res.KeyRef)
		assert.NotEmpty(t, res.RoutingPolicy.Primary)
	}
}

func TestCatalog_DeclarationOrder(t *testing.T) {
	c, err := New(WithLookup(emptyLookup))
	require.NoError(t, err)

	records := c.ListPublicAliases()
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.AliasID
	}
	assert.Equal(t, []string{"orbit-v3.2", "codemax-v2.4", "vision-v1.1", "echo-v1.0"}, ids)
}

func TestCatalog_GetPublicAlias(t *testing.T) {
	c, err := New(WithLookup(emptyLookup))
	require.NoError(t, err)

	rec, ok := c.GetPublicAlias("orbit-v3.2")
	require.True(t, ok)
	assert.Equal(t, models.AliasOrbit, rec.AliasName)
	assert.Equal(t, 128000, rec.Limits.MaxContext)
	assert.Equal(t, 70.0, rec.Limits.TokensPerSecond)
	assert.Equal(t, 0.2, rec.DefaultTemperature)
	assert.Equal(t, models.StatusHealthy, rec.Status)

	_, ok = c.GetPublicAlias("nebula-v9.9")
	assert.False(t, ok)
}

func TestCatalog_LookupOverridesReferences(t *testing.T) {
	overrides := map[string]string{
		"EBURON_ORBIT_PROVIDER_ID":  "prod-provider-7",
		"EBURON_ORBIT_ENDPOINT_REF": "endpoint://prod-orbit",
		"EBURON_ORBIT_KEY_REF":      "secret://prod-orbit-key",
	}
	c, err := New(WithLookup(func(key string) string { return overrides[key] }))
	require.NoError(t, err)

	res, ok := c.ResolvePrivateAlias("orbit-v3.2")
	require.True(t, ok)
	assert.Equal(t, "prod-provider-7", res.ProviderID)
	assert.Equal(t, "endpoint://prod-orbit", res.EndpointRef)
	assert.Equal(t, "secret://prod-orbit-key", res.KeyRef)
	// Unset references keep their development fallbacks.
	assert.Equal(t, "model-orbit-reasoning", res.ProviderModelID)

	// Aliases without overrides are unaffected.
	echo, ok := c.ResolvePrivateAlias("echo-v1.0")
	require.True(t, ok)
	assert.Equal(t, "provider-echo-primary", echo.ProviderID)
}

func TestCatalog_WithPublicRecords(t *testing.T) {
	rows := []models.PublicAlias{
		{
			AliasID:      "orbit-v4.0",
			AliasName:    models.AliasOrbit,
			AliasVersion: "v4.0",
			Status:       models.StatusDegraded,
		},
	}
	c, err := New(WithLookup(emptyLookup), WithPublicRecords(rows))
	require.NoError(t, err)

	records := c.ListPublicAliases()
	require.Len(t, records, 1)
	assert.Equal(t, "orbit-v4.0", records[0].AliasID)

	// A loaded record without a seed resolution is absent, not a crash.
	_, ok := c.ResolvePrivateAlias("orbit-v4.0")
	assert.False(t, ok)
}

func TestCatalog_EmptyRecordsRejected(t *testing.T) {
	_, err := New(WithLookup(emptyLookup), WithPublicRecords([]models.PublicAlias{}))
	require.Error(t, err)
}

func TestCatalog_PublicSerializationIsSafe(t *testing.T) {
	c, err := New(WithLookup(emptyLookup))
	require.NoError(t, err)

	data, err := json.Marshal(c.ListPublicAliases())
	require.NoError(t, err)

	body := string(data)
	assert.NotContains(t, body, "provider")
	assert.NotContains(t, body, "endpoint://")
	assert.NotContains(t, body, "secret://")
	assert.NotContains(t, body, "route")
}
