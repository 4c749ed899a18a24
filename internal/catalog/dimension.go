// Package catalog holds the normalized RDS pricing data model: regions,
// instance types, and the pricing-dimension keys their prices are stored under.
package catalog

import (
	"fmt"
	"strings"
)

// EngineFamily is the database technology a feed belongs to.
type EngineFamily int

// Engine families in the order feeds are enumerated.
const (
	FamilyMySQL EngineFamily = iota
	FamilyPostgreSQL
	FamilyOracle
	FamilySQLServer
	FamilyAurora
	FamilyMariaDB
)

var familyNames = [...]string{
	FamilyMySQL:      "mysql",
	FamilyPostgreSQL: "postgresql",
	FamilyOracle:     "oracle",
	FamilySQLServer:  "sqlserver",
	FamilyAurora:     "aurora",
	FamilyMariaDB:    "mariadb",
}

func (f EngineFamily) String() string {
	if f < 0 || int(f) >= len(familyNames) {
		return fmt.Sprintf("EngineFamily(%d)", int(f))
	}
	return familyNames[f]
}

// ParseEngineFamily converts a family token such as "sqlserver".
func ParseEngineFamily(s string) (EngineFamily, error) {
	for i, name := range familyNames {
		if name == s {
			return EngineFamily(i), nil
		}
	}
	return 0, fmt.Errorf("unknown engine family %q", s)
}

// Engine is the database_engine component of a PriceKey. Oracle and SQL
// Server are priced per edition, so Engine is finer than EngineFamily.
type Engine int

const (
	EngineMySQL Engine = iota
	EnginePostgreSQL
	EngineOracleSE
	EngineOracleSE1
	EngineOracleSE2
	EngineOracleEE
	EngineSQLServerEX
	EngineSQLServerWeb
	EngineSQLServerSE
	EngineSQLServerEE
	EngineAurora
	EngineMariaDB
)

var engineNames = [...]string{
	EngineMySQL:        "mysql",
	EnginePostgreSQL:   "postgresql",
	EngineOracleSE:     "oracle_se",
	EngineOracleSE1:    "oracle_se1",
	EngineOracleSE2:    "oracle_se2",
	EngineOracleEE:     "oracle_ee",
	EngineSQLServerEX:  "sqlserver_ex",
	EngineSQLServerWeb: "sqlserver_web",
	EngineSQLServerSE:  "sqlserver_se",
	EngineSQLServerEE:  "sqlserver_ee",
	EngineAurora:       "aurora",
	EngineMariaDB:      "mariadb",
}

func (e Engine) String() string {
	if e < 0 || int(e) >= len(engineNames) {
		return fmt.Sprintf("Engine(%d)", int(e))
	}
	return engineNames[e]
}

// Family returns the engine family the edition belongs to.
func (e Engine) Family() EngineFamily {
	switch e {
	case EngineMySQL:
		return FamilyMySQL
	case EnginePostgreSQL:
		return FamilyPostgreSQL
	case EngineOracleSE, EngineOracleSE1, EngineOracleSE2, EngineOracleEE:
		return FamilyOracle
	case EngineSQLServerEX, EngineSQLServerWeb, EngineSQLServerSE, EngineSQLServerEE:
		return FamilySQLServer
	case EngineAurora:
		return FamilyAurora
	case EngineMariaDB:
		return FamilyMariaDB
	}
	panic(fmt.Sprintf("catalog: engine %d has no family", int(e)))
}

// ParseEngine converts an engine token such as "oracle_se1".
func ParseEngine(s string) (Engine, error) {
	for i, name := range engineNames {
		if name == s {
			return Engine(i), nil
		}
	}
	return 0, fmt.Errorf("unknown engine %q", s)
}

// ReservationKind groups reservations by the feed format that produces them.
type ReservationKind int

const (
	KindOnDemand ReservationKind = iota
	KindReservedLegacy
	KindReservedTerm
)

func (k ReservationKind) String() string {
	switch k {
	case KindOnDemand:
		return "on_demand"
	case KindReservedLegacy:
		return "reserved_legacy"
	case KindReservedTerm:
		return "reserved_term"
	}
	return fmt.Sprintf("ReservationKind(%d)", int(k))
}

// Reservation is the reservation_kind component of a PriceKey.
type Reservation int

const (
	OnDemand Reservation = iota
	// Legacy utilization tiers.
	LightUtilization
	MediumUtilization
	HeavyUtilization
	// Current-format purchase options.
	NoUpfront
	AllUpfront
	PartialUpfront
)

var reservationNames = [...]string{
	OnDemand:          "on_demand",
	LightUtilization:  "light",
	MediumUtilization: "medium",
	HeavyUtilization:  "heavy",
	NoUpfront:         "no_upfront",
	AllUpfront:        "all_upfront",
	PartialUpfront:    "partial_upfront",
}

func (r Reservation) String() string {
	if r < 0 || int(r) >= len(reservationNames) {
		return fmt.Sprintf("Reservation(%d)", int(r))
	}
	return reservationNames[r]
}

// Kind reports which feed format the reservation comes from.
func (r Reservation) Kind() ReservationKind {
	switch r {
	case LightUtilization, MediumUtilization, HeavyUtilization:
		return KindReservedLegacy
	case NoUpfront, AllUpfront, PartialUpfront:
		return KindReservedTerm
	}
	return KindOnDemand
}

// ParseReservation converts a reservation token such as "heavy" or "no_upfront".
func ParseReservation(s string) (Reservation, error) {
	for i, name := range reservationNames {
		if name == s {
			return Reservation(i), nil
		}
	}
	return 0, fmt.Errorf("unknown reservation %q", s)
}

// ParseUtilization converts a legacy utilization level ("light", "medium", "heavy").
func ParseUtilization(s string) (Reservation, error) {
	r, err := ParseReservation(s)
	if err != nil || r.Kind() != KindReservedLegacy {
		return 0, fmt.Errorf("unknown utilization %q", s)
	}
	return r, nil
}

// ParsePurchaseOption converts the vendor purchaseOption token of
// current-format reserved feeds ("noUpfront", "allUpfront", "partialUpfront").
func ParsePurchaseOption(s string) (Reservation, error) {
	switch s {
	case "noUpfront":
		return NoUpfront, nil
	case "allUpfront":
		return AllUpfront, nil
	case "partialUpfront":
		return PartialUpfront, nil
	}
	return 0, fmt.Errorf("unknown purchase option %q", s)
}

// Term is the reservation duration. On-demand prices have TermNone.
type Term int

const (
	TermNone Term = iota
	Term1Yr
	Term3Yr
)

func (t Term) String() string {
	switch t {
	case TermNone:
		return "-"
	case Term1Yr:
		return "1yr"
	case Term3Yr:
		return "3yr"
	}
	return fmt.Sprintf("Term(%d)", int(t))
}

// ParseTerm accepts the normalized form ("1yr") and the vendor forms
// ("yrTerm1", "yrTerm3Standard").
func ParseTerm(s string) (Term, error) {
	switch {
	case s == "1yr" || strings.HasPrefix(s, "yrTerm1"):
		return Term1Yr, nil
	case s == "3yr" || strings.HasPrefix(s, "yrTerm3"):
		return Term3Yr, nil
	case s == "-" || s == "":
		return TermNone, nil
	}
	return 0, fmt.Errorf("unknown term %q", s)
}

// Topology is the deployment_topology component of a PriceKey.
type Topology int

const (
	SingleAZ Topology = iota
	MultiAZ
)

func (t Topology) String() string {
	if t == MultiAZ {
		return "multi_az"
	}
	return "single_az"
}

// ParseTopology converts "single_az" or "multi_az".
func ParseTopology(s string) (Topology, error) {
	switch s {
	case "single_az":
		return SingleAZ, nil
	case "multi_az":
		return MultiAZ, nil
	}
	return 0, fmt.Errorf("unknown topology %q", s)
}

// License is the license_model component of a PriceKey.
type License int

const (
	LicenseIncluded License = iota
	BYOL
)

func (l License) String() string {
	if l == BYOL {
		return "byol"
	}
	return "included"
}

// ParseLicense converts "included" or "byol".
func ParseLicense(s string) (License, error) {
	switch s {
	case "included":
		return LicenseIncluded, nil
	case "byol":
		return BYOL, nil
	}
	return 0, fmt.Errorf("unknown license model %q", s)
}
