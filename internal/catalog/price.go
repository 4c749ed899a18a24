package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PriceKey identifies one price within an InstanceType's pricing table.
// Legacy reservations carry their utilization tier in Reservation and the
// 1yr/3yr duration in Term; current-format reservations carry the purchase
// option in Reservation.
type PriceKey struct {
	Engine      Engine
	Reservation Reservation
	Term        Term
	Topology    Topology
	License     License
}

// OnDemandKey builds the key for an on-demand price.
func OnDemandKey(engine Engine, topology Topology, license License) PriceKey {
	return PriceKey{
		Engine:      engine,
		Reservation: OnDemand,
		Term:        TermNone,
		Topology:    topology,
		License:     license,
	}
}

// String renders the key as "engine/reservation/term/topology/license",
// e.g. "mysql/on_demand/-/single_az/included".
func (k PriceKey) String() string {
	return strings.Join([]string{
		k.Engine.String(),
		k.Reservation.String(),
		k.Term.String(),
		k.Topology.String(),
		k.License.String(),
	}, "/")
}

// Validate rejects keys whose reservation and term disagree.
func (k PriceKey) Validate() error {
	if k.Reservation.Kind() == KindOnDemand && k.Term != TermNone {
		return fmt.Errorf("price key %s: on-demand price cannot have a term", k)
	}
	if k.Reservation.Kind() != KindOnDemand && k.Term == TermNone {
		return fmt.Errorf("price key %s: reserved price requires a term", k)
	}
	return nil
}

// ParsePriceKey is the inverse of PriceKey.String.
func ParsePriceKey(s string) (PriceKey, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 5 {
		return PriceKey{}, fmt.Errorf("price key %q: want 5 components, got %d", s, len(parts))
	}
	var (
		k   PriceKey
		err error
	)
	if k.Engine, err = ParseEngine(parts[0]); err != nil {
		return PriceKey{}, err
	}
	if k.Reservation, err = ParseReservation(parts[1]); err != nil {
		return PriceKey{}, err
	}
	if k.Term, err = ParseTerm(parts[2]); err != nil {
		return PriceKey{}, err
	}
	if k.Topology, err = ParseTopology(parts[3]); err != nil {
		return PriceKey{}, err
	}
	if k.License, err = ParseLicense(parts[4]); err != nil {
		return PriceKey{}, err
	}
	return k, k.Validate()
}

// Price is one observed price. Which fields are set depends on the feed:
// on-demand feeds fill Hourly, legacy reserved feeds fill Upfront and
// Hourly, current reserved feeds fill Upfront, Monthly and EffectiveHourly.
type Price struct {
	Upfront         decimal.Decimal `json:"upfront"`
	Hourly          decimal.Decimal `json:"hourly"`
	Monthly         decimal.Decimal `json:"monthly"`
	EffectiveHourly decimal.Decimal `json:"effective_hourly"`
}

// IsZero reports whether no price component is set.
func (p Price) IsZero() bool {
	return p.Upfront.IsZero() && p.Hourly.IsZero() && p.Monthly.IsZero() && p.EffectiveHourly.IsZero()
}

// Equal compares prices numerically, so "0.1" equals "0.100".
func (p Price) Equal(o Price) bool {
	return p.Upfront.Equal(o.Upfront) &&
		p.Hourly.Equal(o.Hourly) &&
		p.Monthly.Equal(o.Monthly) &&
		p.EffectiveHourly.Equal(o.EffectiveHourly)
}
