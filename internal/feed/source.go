package feed

import (
	"fmt"
	"slices"

	"github.com/rshade/rds-pricing-catalog/internal/catalog"
)

// Shape identifies which of the three feed layouts a URL serves.
type Shape int

const (
	ShapeOnDemand Shape = iota
	ShapeReservedLegacy
	ShapeReservedTerm
)

func (s Shape) String() string {
	switch s {
	case ShapeOnDemand:
		return "on_demand"
	case ShapeReservedLegacy:
		return "reserved_legacy"
	case ShapeReservedTerm:
		return "reserved_term"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// Meta carries the pricing dimensions derivable from how a URL was built.
type Meta struct {
	Family catalog.EngineFamily
	// Engines receives every observation of the feed. It holds more than one
	// engine for reserved-term alias groups and for URLs shared by editions.
	Engines []catalog.Engine
	// Utilization is the legacy utilization tier; OnDemand for other shapes.
	Utilization catalog.Reservation
	Topology    catalog.Topology
	// TopologyFromFeed is set for legacy reserved feeds, whose topology is
	// given per instance-type group inside the document.
	TopologyFromFeed   bool
	License            catalog.License
	PreviousGeneration bool
	// Deployment is the deployment token as listed in the feed tables.
	Deployment string
}

// sameFacts reports whether two metas agree on everything but Engines.
func (m Meta) sameFacts(o Meta) bool {
	return m.Family == o.Family &&
		m.Utilization == o.Utilization &&
		m.Topology == o.Topology &&
		m.TopologyFromFeed == o.TopologyFromFeed &&
		m.License == o.License &&
		m.PreviousGeneration == o.PreviousGeneration
}

func (m *Meta) addEngines(engines []catalog.Engine) {
	for _, e := range engines {
		if !slices.Contains(m.Engines, e) {
			m.Engines = append(m.Engines, e)
		}
	}
}

// Source is one feed URL to fetch.
type Source struct {
	URL   string
	Shape Shape
	Meta  Meta
}
