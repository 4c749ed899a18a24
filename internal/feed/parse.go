package feed

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/rshade/rds-pricing-catalog/internal/catalog"
)

// Observation is one price read from a feed, before region resolution.
type Observation struct {
	Region      string
	APIName     string
	DisplayName string
	// Reservation is the purchase option for reserved-term feeds and
	// OnDemand otherwise; legacy utilization comes from the source Meta.
	Reservation catalog.Reservation
	Term        catalog.Term
	// Topology is only meaningful when HasTopology is set (legacy feeds).
	Topology    catalog.Topology
	HasTopology bool
	Price       catalog.Price
}

// UnknownType records a label pair missing from the instance-name table.
type UnknownType struct {
	Region    string
	TypeLabel string
	TierLabel string
}

// Label renders the vendor label pair.
func (u UnknownType) Label() string {
	if u.TierLabel == "" {
		return u.TypeLabel
	}
	return u.TypeLabel + "/" + u.TierLabel
}

// MalformedItem records an item skipped because a token or price could not
// be interpreted.
type MalformedItem struct {
	Region string
	Label  string
	Reason string
}

// Result is the outcome of parsing one feed document. Unknown and Malformed
// items are recoverable; they are reported and the rest of the document is
// still parsed.
type Result struct {
	Observations []Observation
	Unknown      []UnknownType
	Malformed    []MalformedItem
}

// Parser turns fetched feed documents into observations.
type Parser struct {
	Names    *NameTable
	Currency string
}

// NewParser returns a parser using cfg's instance names and currency.
func NewParser(cfg *Config) *Parser {
	return &Parser{Names: cfg.Names(), Currency: cfg.Currency}
}

// Parse dispatches on shape. An error means the document itself could not
// be decoded.
func (p *Parser) Parse(shape Shape, data []byte) (Result, error) {
	switch shape {
	case ShapeOnDemand:
		return p.OnDemand(data)
	case ShapeReservedLegacy:
		return p.ReservedLegacy(data)
	case ShapeReservedTerm:
		return p.ReservedTerm(data)
	}
	return Result{}, fmt.Errorf("unsupported feed shape %s", shape)
}

// OnDemand parses an on-demand feed. Each tier yields one hourly price.
func (p *Parser) OnDemand(data []byte) (Result, error) {
	var doc onDemandDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return Result{}, fmt.Errorf("failed to decode on-demand feed: %w", err)
	}

	var res Result
	for _, reg := range doc.Config.Regions {
		for _, typ := range reg.Types {
			for _, tier := range typ.Tiers {
				name, ok := p.Names.Resolve(typ.Name, tier.Name, false)
				if !ok {
					res.Unknown = append(res.Unknown, UnknownType{Region: reg.Region, TypeLabel: typ.Name, TierLabel: tier.Name})
					continue
				}
				hourly, ok := p.amount(tier.Prices)
				if !ok {
					res.Malformed = append(res.Malformed, p.noPrice(reg.Region, name.APIName))
					continue
				}
				res.Observations = append(res.Observations, Observation{
					Region:      reg.Region,
					APIName:     name.APIName,
					DisplayName: name.DisplayName,
					Reservation: catalog.OnDemand,
					Term:        catalog.TermNone,
					Price:       catalog.Price{Hourly: hourly},
				})
			}
		}
	}
	return res, nil
}

// ReservedLegacy parses a light/medium/heavy utilization feed. Each tier
// yields one observation per term, combining the yrTermN upfront column
// with the yrTermNHourly column.
func (p *Parser) ReservedLegacy(data []byte) (Result, error) {
	var doc legacyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return Result{}, fmt.Errorf("failed to decode legacy reserved feed: %w", err)
	}

	var res Result
	for _, reg := range doc.Config.Regions {
		for _, typ := range reg.InstanceTypes {
			topology := catalog.SingleAZ
			if isMultiAZLabel(typ.Type) {
				topology = catalog.MultiAZ
			}
			for _, tier := range typ.Tiers {
				name, ok := p.Names.Resolve(typ.Type, tier.Size, true)
				if !ok {
					res.Unknown = append(res.Unknown, UnknownType{Region: reg.Region, TypeLabel: typ.Type, TierLabel: tier.Size})
					continue
				}

				var prices [3]catalog.Price
				var priced [3]bool
				for _, col := range tier.ValueColumns {
					base, isHourly := strings.CutSuffix(col.Name, "Hourly")
					term, ok := legacyTerms[base]
					if !ok {
						res.Malformed = append(res.Malformed, MalformedItem{
							Region: reg.Region,
							Label:  name.APIName,
							Reason: fmt.Sprintf("unknown value column %q", col.Name),
						})
						continue
					}
					amount, ok := p.amount(col.Prices)
					if !ok {
						continue
					}
					priced[term] = true
					if isHourly {
						prices[term].Hourly = amount
					} else {
						prices[term].Upfront = amount
					}
				}

				if !priced[catalog.Term1Yr] && !priced[catalog.Term3Yr] {
					res.Malformed = append(res.Malformed, p.noPrice(reg.Region, name.APIName))
					continue
				}
				for _, term := range []catalog.Term{catalog.Term1Yr, catalog.Term3Yr} {
					if !priced[term] {
						continue
					}
					res.Observations = append(res.Observations, Observation{
						Region:      reg.Region,
						APIName:     name.APIName,
						DisplayName: name.DisplayName,
						Reservation: catalog.OnDemand,
						Term:        term,
						Topology:    topology,
						HasTopology: true,
						Price:       prices[term],
					})
				}
			}
		}
	}
	return res, nil
}

// ReservedTerm parses a current-format reserved feed. Each purchase option
// of each term yields one observation.
func (p *Parser) ReservedTerm(data []byte) (Result, error) {
	var doc termDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return Result{}, fmt.Errorf("failed to decode reserved term feed: %w", err)
	}

	var res Result
	for _, reg := range doc.Config.Regions {
		for _, typ := range reg.InstanceTypes {
			name, ok := p.Names.Resolve(typ.Type, "", true)
			if !ok {
				res.Unknown = append(res.Unknown, UnknownType{Region: reg.Region, TypeLabel: typ.Type})
				continue
			}
			for _, t := range typ.Terms {
				term, err := catalog.ParseTerm(t.Term)
				if err != nil || term == catalog.TermNone {
					res.Malformed = append(res.Malformed, MalformedItem{
						Region: reg.Region,
						Label:  name.APIName,
						Reason: fmt.Sprintf("unknown term %q", t.Term),
					})
					continue
				}
				for _, opt := range t.PurchaseOptions {
					reservation, err := catalog.ParsePurchaseOption(opt.PurchaseOption)
					if err != nil {
						res.Malformed = append(res.Malformed, MalformedItem{
							Region: reg.Region,
							Label:  name.APIName,
							Reason: err.Error(),
						})
						continue
					}
					price, ok := p.termPrice(opt.ValueColumns)
					if !ok {
						res.Malformed = append(res.Malformed, p.noPrice(reg.Region, name.APIName))
						continue
					}
					res.Observations = append(res.Observations, Observation{
						Region:      reg.Region,
						APIName:     name.APIName,
						DisplayName: name.DisplayName,
						Reservation: reservation,
						Term:        term,
						Price:       price,
					})
				}
			}
		}
	}
	return res, nil
}

// termPrice collects the price columns of one purchase option. ok is false
// when no known column carries a price in the configured currency.
func (p *Parser) termPrice(cols []valueColumn) (price catalog.Price, ok bool) {
	for _, col := range cols {
		amount, found := p.amount(col.Prices)
		if !found {
			continue
		}
		switch col.Name {
		case "upfront":
			price.Upfront = amount
		case "monthlyStar":
			price.Monthly = amount
		case "effectiveHourly":
			price.EffectiveHourly = amount
		default:
			continue
		}
		ok = true
	}
	return price, ok
}

func (p *Parser) noPrice(region, label string) MalformedItem {
	return MalformedItem{
		Region: region,
		Label:  label,
		Reason: fmt.Sprintf("no %s price", p.Currency),
	}
}

// amount reads the price in the configured currency. Vendor placeholders
// such as "N/A" or "" are reported as absent.
func (p *Parser) amount(prices map[string]string) (decimal.Decimal, bool) {
	raw, ok := prices[p.Currency]
	if !ok {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// legacyTerms maps the value-column names of legacy reserved feeds, with any
// "Hourly" suffix removed.
var legacyTerms = map[string]catalog.Term{
	"yrTerm1": catalog.Term1Yr,
	"yrTerm3": catalog.Term3Yr,
}

func isMultiAZLabel(label string) bool {
	l := strings.ToLower(label)
	return strings.Contains(l, "multiaz") || strings.Contains(l, "multi-az")
}
