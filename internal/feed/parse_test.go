package feed

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/rds-pricing-catalog/internal/catalog"
)

func testParser(t *testing.T) *Parser {
	t.Helper()
	cfg, err := DefaultConfig()
	require.NoError(t, err)
	return NewParser(cfg)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertPrice(t *testing.T, want, got catalog.Price) {
	t.Helper()
	assert.True(t, want.Equal(got), "want %+v, got %+v", want, got)
}

const onDemandFeed = `{"vers":0.01,"config":{"currencies":["USD"],"regions":[
 {"region":"us-east","types":[
  {"name":"dbInstClass","tiers":[
   {"name":"smDBInst","prices":{"USD":"0.100"}},
   {"name":"hugeDBInst","prices":{"USD":"9.99"}},
   {"name":"lgDBInst","prices":{"USD":"N/A"}}
  ]}
 ]},
 {"region":"eu-west-1","types":[
  {"name":"gen-current","tiers":[
   {"name":"db.m4.large","prices":{"USD":"0.175"}}
  ]}
 ]}
]}}`

func TestParser_OnDemand(t *testing.T) {
	res, err := testParser(t).OnDemand([]byte(onDemandFeed))
	require.NoError(t, err)

	require.Len(t, res.Observations, 2)
	first := res.Observations[0]
	assert.Equal(t, "us-east", first.Region)
	assert.Equal(t, "db.m1.small", first.APIName)
	assert.Equal(t, "Standard Small", first.DisplayName)
	assert.Equal(t, catalog.OnDemand, first.Reservation)
	assert.Equal(t, catalog.TermNone, first.Term)
	assert.False(t, first.HasTopology)
	assertPrice(t, catalog.Price{Hourly: dec("0.100")}, first.Price)

	assert.Equal(t, "db.m4.large", res.Observations[1].APIName)
	assert.Equal(t, "eu-west-1", res.Observations[1].Region)

	require.Len(t, res.Unknown, 1)
	assert.Equal(t, "dbInstClass/hugeDBInst", res.Unknown[0].Label())

	require.Len(t, res.Malformed, 1)
	assert.Equal(t, "db.m1.large", res.Malformed[0].Label)
	assert.Contains(t, res.Malformed[0].Reason, "USD")
}

const legacyFeed = `{"config":{"currencies":["USD"],"regions":[
 {"region":"us-east","instanceTypes":[
  {"type":"stdDeployRes","tiers":[
   {"size":"sm","valueColumns":[
    {"name":"yrTerm1","prices":{"USD":"227.50"}},
    {"name":"yrTerm1Hourly","prices":{"USD":"0.046"}},
    {"name":"yrTerm3","prices":{"USD":"350"}},
    {"name":"yrTerm3Hourly","prices":{"USD":"0.035"}}
   ]},
   {"size":"gigantic","valueColumns":[]}
  ]},
  {"type":"multiAZdeployRes","tiers":[
   {"size":"sm","valueColumns":[
    {"name":"yrTerm1","prices":{"USD":"455"}},
    {"name":"yrTerm1Hourly","prices":{"USD":"0.092"}},
    {"name":"yrTerm3","prices":{"USD":"N/A"}},
    {"name":"yrTerm3Hourly","prices":{"USD":"N/A"}},
    {"name":"yrTerm5","prices":{"USD":"1"}}
   ]}
  ]}
 ]}
]}}`

func TestParser_ReservedLegacy(t *testing.T) {
	res, err := testParser(t).ReservedLegacy([]byte(legacyFeed))
	require.NoError(t, err)

	tests := []struct {
		name     string
		term     catalog.Term
		topology catalog.Topology
		price    catalog.Price
	}{
		{name: "single-AZ 1yr", term: catalog.Term1Yr, topology: catalog.SingleAZ, price: catalog.Price{Upfront: dec("227.50"), Hourly: dec("0.046")}},
		{name: "single-AZ 3yr", term: catalog.Term3Yr, topology: catalog.SingleAZ, price: catalog.Price{Upfront: dec("350"), Hourly: dec("0.035")}},
		{name: "multi-AZ 1yr", term: catalog.Term1Yr, topology: catalog.MultiAZ, price: catalog.Price{Upfront: dec("455"), Hourly: dec("0.092")}},
	}
	// A term whose columns are all absent yields no observation.
	require.Len(t, res.Observations, len(tests))
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := res.Observations[i]
			assert.Equal(t, "db.m1.small", obs.APIName)
			assert.Equal(t, tt.term, obs.Term)
			assert.True(t, obs.HasTopology)
			assert.Equal(t, tt.topology, obs.Topology)
			assertPrice(t, tt.price, obs.Price)
		})
	}

	require.Len(t, res.Unknown, 1)
	assert.Equal(t, "stdDeployRes/gigantic", res.Unknown[0].Label())

	require.Len(t, res.Malformed, 1)
	assert.Contains(t, res.Malformed[0].Reason, "yrTerm5")
}

const termFeed = `{"config":{"regions":[
 {"region":"us-east-1","instanceTypes":[
  {"type":"db.m4.large","terms":[
   {"term":"yrTerm1Standard","purchaseOptions":[
    {"purchaseOption":"noUpfront","valueColumns":[
     {"name":"upfront","prices":{"USD":"0"}},
     {"name":"monthlyStar","prices":{"USD":"86.87"}},
     {"name":"effectiveHourly","prices":{"USD":"0.119"}}
    ]},
    {"purchaseOption":"allUpfront","valueColumns":[
     {"name":"upfront","prices":{"USD":"980"}},
     {"name":"monthlyStar","prices":{"USD":"0"}},
     {"name":"effectiveHourly","prices":{"USD":"0.112"}}
    ]},
    {"purchaseOption":"sometimesUpfront","valueColumns":[]}
   ]},
   {"term":"yrTerm3Standard","purchaseOptions":[
    {"purchaseOption":"partialUpfront","valueColumns":[
     {"name":"upfront","prices":{"USD":"1005"}},
     {"name":"monthlyStar","prices":{"USD":"27.74"}},
     {"name":"effectiveHourly","prices":{"USD":"0.076"}}
    ]}
   ]},
   {"term":"yrTerm5Standard","purchaseOptions":[]}
  ]},
  {"type":"db.q9.mega","terms":[]}
 ]}
]}}`

func TestParser_ReservedTerm(t *testing.T) {
	res, err := testParser(t).ReservedTerm([]byte(termFeed))
	require.NoError(t, err)

	tests := []struct {
		reservation catalog.Reservation
		term        catalog.Term
		price       catalog.Price
	}{
		{catalog.NoUpfront, catalog.Term1Yr, catalog.Price{Monthly: dec("86.87"), EffectiveHourly: dec("0.119")}},
		{catalog.AllUpfront, catalog.Term1Yr, catalog.Price{Upfront: dec("980"), EffectiveHourly: dec("0.112")}},
		{catalog.PartialUpfront, catalog.Term3Yr, catalog.Price{Upfront: dec("1005"), Monthly: dec("27.74"), EffectiveHourly: dec("0.076")}},
	}
	require.Len(t, res.Observations, len(tests))
	for i, tt := range tests {
		t.Run(tt.reservation.String(), func(t *testing.T) {
			obs := res.Observations[i]
			assert.Equal(t, "us-east-1", obs.Region)
			assert.Equal(t, "db.m4.large", obs.APIName)
			assert.Equal(t, tt.reservation, obs.Reservation)
			assert.Equal(t, tt.term, obs.Term)
			assert.False(t, obs.HasTopology)
			assertPrice(t, tt.price, obs.Price)
		})
	}

	require.Len(t, res.Unknown, 1)
	assert.Equal(t, "db.q9.mega", res.Unknown[0].Label())

	require.Len(t, res.Malformed, 2)
	assert.Contains(t, res.Malformed[0].Reason, "sometimesUpfront")
	assert.Contains(t, res.Malformed[1].Reason, "yrTerm5Standard")
}

func TestParser_Parse(t *testing.T) {
	p := testParser(t)

	res, err := p.Parse(ShapeOnDemand, []byte(onDemandFeed))
	require.NoError(t, err)
	assert.Len(t, res.Observations, 2)

	_, err = p.Parse(ShapeReservedTerm, []byte(`{"config":`))
	assert.Error(t, err)

	_, err = p.Parse(Shape(42), []byte(`{}`))
	assert.ErrorContains(t, err, "unsupported feed shape")
}

func TestParser_EmptyDocument(t *testing.T) {
	res, err := testParser(t).ReservedLegacy([]byte(`{"config":{"regions":[]}}`))
	require.NoError(t, err)
	assert.Empty(t, res.Observations)
	assert.Empty(t, res.Unknown)
	assert.Empty(t, res.Malformed)
}

func TestParser_ReservedWithoutPrices(t *testing.T) {
	legacy := `{"config":{"regions":[{"region":"us-east","instanceTypes":[
 {"type":"stdDeployRes","tiers":[{"size":"sm","valueColumns":[
  {"name":"yrTerm1","prices":{"USD":"N/A"}},
  {"name":"yrTerm1Hourly","prices":{"USD":""}},
  {"name":"yrTerm3","prices":{"USD":"N/A"}}
 ]}]}]}]}}`
	term := `{"config":{"regions":[{"region":"us-east-1","instanceTypes":[
 {"type":"db.m4.large","terms":[{"term":"yrTerm1Standard","purchaseOptions":[
  {"purchaseOption":"noUpfront","valueColumns":[
   {"name":"upfront","prices":{"USD":"N/A"}},
   {"name":"monthlyStar","prices":{"USD":"N/A"}},
   {"name":"effectiveHourly","prices":{"EUR":"0.1"}}
  ]}]}]}]}]}}`

	tests := []struct {
		name  string
		shape Shape
		doc   string
		label string
	}{
		{name: "legacy", shape: ShapeReservedLegacy, doc: legacy, label: "db.m1.small"},
		{name: "term", shape: ShapeReservedTerm, doc: term, label: "db.m4.large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := testParser(t).Parse(tt.shape, []byte(tt.doc))
			require.NoError(t, err)
			assert.Empty(t, res.Observations)
			assert.Empty(t, res.Unknown)
			require.Len(t, res.Malformed, 1)
			assert.Equal(t, tt.label, res.Malformed[0].Label)
			assert.Equal(t, "no USD price", res.Malformed[0].Reason)
		})
	}
}

func TestParser_ReservedZeroPriceIsKept(t *testing.T) {
	legacy := `{"config":{"regions":[{"region":"us-east","instanceTypes":[
 {"type":"stdDeployRes","tiers":[{"size":"sm","valueColumns":[
  {"name":"yrTerm1","prices":{"USD":"0"}},
  {"name":"yrTerm1Hourly","prices":{"USD":"0.00"}}
 ]}]}]}]}}`
	term := `{"config":{"regions":[{"region":"us-east-1","instanceTypes":[
 {"type":"db.m4.large","terms":[{"term":"yrTerm1Standard","purchaseOptions":[
  {"purchaseOption":"allUpfront","valueColumns":[
   {"name":"upfront","prices":{"USD":"0"}}
  ]}]}]}]}]}}`

	p := testParser(t)
	for shape, doc := range map[Shape]string{ShapeReservedLegacy: legacy, ShapeReservedTerm: term} {
		res, err := p.Parse(shape, []byte(doc))
		require.NoError(t, err)
		require.Len(t, res.Observations, 1, shape.String())
		assert.True(t, res.Observations[0].Price.IsZero(), shape.String())
		assert.Empty(t, res.Malformed, shape.String())
	}
}
