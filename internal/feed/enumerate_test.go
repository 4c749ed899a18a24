package feed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/rds-pricing-catalog/internal/catalog"
)

const base = "http://aws.amazon.com/rds/pricing/"

func defaultSources(t *testing.T) []Source {
	t.Helper()
	cfg, err := DefaultConfig()
	require.NoError(t, err)
	return Enumerate(cfg)
}

func sourceByURL(t *testing.T, sources []Source, url string) Source {
	t.Helper()
	for _, s := range sources {
		if s.URL == url {
			return s
		}
	}
	require.Failf(t, "source not enumerated", "%s", url)
	return Source{}
}

func TestEnumerate_URLsAreUnique(t *testing.T) {
	sources := defaultSources(t)
	seen := make(map[string]bool, len(sources))
	for _, s := range sources {
		assert.False(t, seen[s.URL], "URL enumerated twice: %s", s.URL)
		seen[s.URL] = true
		assert.True(t, strings.HasPrefix(s.URL, base), s.URL)
		assert.True(t, strings.HasSuffix(s.URL, ".min.js"), s.URL)
		assert.NotEmpty(t, s.Meta.Engines, s.URL)
	}
}

func TestEnumerate_MetadataMatchesTables(t *testing.T) {
	for _, s := range defaultSources(t) {
		for _, e := range s.Meta.Engines {
			assert.Equal(t, s.Meta.Family, e.Family(), "%s lists engine %s", s.URL, e)
		}
		// The license hint is derived from the deployment token.
		if strings.Contains(s.Meta.Deployment, "byol") {
			assert.Equal(t, catalog.BYOL, s.Meta.License, s.URL)
		} else {
			assert.Equal(t, catalog.LicenseIncluded, s.Meta.License, s.URL)
		}
		switch s.Shape {
		case ShapeReservedLegacy:
			assert.True(t, s.Meta.TopologyFromFeed, s.URL)
			assert.Equal(t, catalog.KindReservedLegacy, s.Meta.Utilization.Kind(), s.URL)
		default:
			assert.False(t, s.Meta.TopologyFromFeed, s.URL)
			assert.Equal(t, catalog.OnDemand, s.Meta.Utilization, s.URL)
		}
		if s.Meta.Topology == catalog.MultiAZ {
			assert.Contains(t, strings.ToLower(s.Meta.Deployment), "multiaz", s.URL)
		}
	}
}

func TestEnumerate_OnDemandURLs(t *testing.T) {
	sources := defaultSources(t)

	tests := []struct {
		name     string
		url      string
		engines  []catalog.Engine
		topology catalog.Topology
		license  catalog.License
		previous bool
	}{
		{
			name:     "mysql single-AZ",
			url:      base + "mysql/pricing-standard-deployments.min.js",
			engines:  []catalog.Engine{catalog.EngineMySQL},
			topology: catalog.SingleAZ,
			license:  catalog.LicenseIncluded,
		},
		{
			name:     "mysql multi-AZ previous generation",
			url:      base + "mysql/previous-generation/pricing-multiAZ-deployments.min.js",
			engines:  []catalog.Engine{catalog.EngineMySQL},
			topology: catalog.MultiAZ,
			license:  catalog.LicenseIncluded,
			previous: true,
		},
		{
			name:     "oracle SE BYOL multi-AZ",
			url:      base + "oracle/pricing-byol-multiAZ-deployments.min.js",
			engines:  []catalog.Engine{catalog.EngineOracleSE},
			topology: catalog.MultiAZ,
			license:  catalog.BYOL,
		},
		{
			name:     "sqlserver suffix stripped, topology kept",
			url:      base + "sqlserver/sqlserver-li-se-ondemand-maz.min.js",
			engines:  []catalog.Engine{catalog.EngineSQLServerSE},
			topology: catalog.MultiAZ,
			license:  catalog.LicenseIncluded,
		},
		{
			name:     "sqlserver BYOL shared by SE and EE",
			url:      base + "sqlserver/sqlserver-byol-ondemand.min.js",
			engines:  []catalog.Engine{catalog.EngineSQLServerSE, catalog.EngineSQLServerEE},
			topology: catalog.SingleAZ,
			license:  catalog.BYOL,
		},
		{
			name:     "aurora multi-AZ URL priced as single-AZ",
			url:      base + "aurora/pricing-multiAZ-deployments.min.js",
			engines:  []catalog.Engine{catalog.EngineAurora},
			topology: catalog.SingleAZ,
			license:  catalog.LicenseIncluded,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sourceByURL(t, sources, tt.url)
			assert.Equal(t, ShapeOnDemand, s.Shape)
			assert.Equal(t, tt.engines, s.Meta.Engines)
			assert.Equal(t, tt.topology, s.Meta.Topology)
			assert.Equal(t, tt.license, s.Meta.License)
			assert.Equal(t, tt.previous, s.Meta.PreviousGeneration)
		})
	}
}

func TestEnumerate_PreviousGenerationFollowsCurrent(t *testing.T) {
	sources := defaultSources(t)
	for i, s := range sources {
		if !s.Meta.PreviousGeneration {
			continue
		}
		require.Greater(t, i, 0)
		current := sources[i-1]
		assert.False(t, current.Meta.PreviousGeneration, s.URL)
		assert.Equal(t, strings.Replace(s.URL, "previous-generation/", "", 1), current.URL)
		assert.Equal(t, current.Meta.Engines, s.Meta.Engines)
		assert.Equal(t, current.Meta.Topology, s.Meta.Topology)
	}
}

func TestEnumerate_SQLServerEnterpriseLicenseIncludedHasNoPreviousGeneration(t *testing.T) {
	for _, s := range defaultSources(t) {
		if s.Meta.PreviousGeneration {
			assert.NotContains(t, s.URL, "sqlserver-li-ee", s.URL)
		}
	}
}

func TestEnumerate_NoLegacyReservedForAuroraAndMariaDB(t *testing.T) {
	var legacy int
	for _, s := range defaultSources(t) {
		if s.Shape != ShapeReservedLegacy {
			continue
		}
		legacy++
		assert.NotEqual(t, catalog.FamilyAurora, s.Meta.Family, s.URL)
		assert.NotEqual(t, catalog.FamilyMariaDB, s.Meta.Family, s.URL)
	}
	assert.Positive(t, legacy)
}

func TestEnumerate_LegacyUtilizations(t *testing.T) {
	sources := defaultSources(t)

	for _, util := range []string{"light", "medium", "heavy"} {
		s := sourceByURL(t, sources, base+"mysql/pricing-"+util+"-utilization-reserved-instances.min.js")
		assert.Equal(t, util, s.Meta.Utilization.String())
	}

	// PostgreSQL only publishes heavy utilization pricing.
	for _, s := range sources {
		if s.Shape == ShapeReservedLegacy && s.Meta.Family == catalog.FamilyPostgreSQL {
			assert.Equal(t, catalog.HeavyUtilization, s.Meta.Utilization, s.URL)
		}
	}

	byol := sourceByURL(t, sources, base+"oracle/pricing-byol-medium-utilization-reserved-instances.min.js")
	assert.Equal(t,
		[]catalog.Engine{catalog.EngineOracleSE1, catalog.EngineOracleSE, catalog.EngineOracleEE},
		byol.Meta.Engines)
	assert.Equal(t, catalog.BYOL, byol.Meta.License)

	ri := sourceByURL(t, sources, base+"sqlserver/previous-generation/sqlserver-li-web-heavy-ri.min.js")
	assert.True(t, ri.Meta.PreviousGeneration)
	assert.Equal(t, []catalog.Engine{catalog.EngineSQLServerWeb}, ri.Meta.Engines)
}

func TestEnumerate_ReservedTerm(t *testing.T) {
	sources := defaultSources(t)

	se := sourceByURL(t, sources, base+"reserved-instances/sql-server-se-byol-multiAZ.min.js")
	assert.Equal(t, ShapeReservedTerm, se.Shape)
	assert.Equal(t, []catalog.Engine{catalog.EngineSQLServerSE}, se.Meta.Engines)
	assert.Equal(t, catalog.MultiAZ, se.Meta.Topology)
	assert.Equal(t, catalog.BYOL, se.Meta.License)

	express := sourceByURL(t, sources, base+"reserved-instances/sql-server-express-license-included-standard.min.js")
	assert.Equal(t, []catalog.Engine{catalog.EngineSQLServerEX}, express.Meta.Engines)

	oracle := sourceByURL(t, sources, base+"reserved-instances/oracle-se-byol-standard.min.js")
	assert.Equal(t, []catalog.Engine{catalog.EngineOracleSE, catalog.EngineOracleEE}, oracle.Meta.Engines)

	se1 := sourceByURL(t, sources, base+"reserved-instances/oracle-se1-license-included-multiAZ.min.js")
	assert.Equal(t, catalog.LicenseIncluded, se1.Meta.License)
	assert.Equal(t, catalog.MultiAZ, se1.Meta.Topology)

	aurora := sourceByURL(t, sources, base+"reserved-instances/aurora-multiAZ.min.js")
	assert.Equal(t, catalog.SingleAZ, aurora.Meta.Topology)
}

func TestEnumerate_GroupOrder(t *testing.T) {
	sources := defaultSources(t)
	order := map[Shape]int{ShapeOnDemand: 0, ShapeReservedTerm: 1, ShapeReservedLegacy: 2}
	for i := 1; i < len(sources); i++ {
		assert.LessOrEqual(t, order[sources[i-1].Shape], order[sources[i].Shape],
			"%s before %s", sources[i-1].URL, sources[i].URL)
	}
	assert.Equal(t, base+"mysql/pricing-standard-deployments.min.js", sources[0].URL)
}
