package catalog

import (
	"github.com/goccy/go-json"
)

// Snapshot is a plain, deterministically ordered copy of a catalog.
type Snapshot struct {
	Regions []RegionSnapshot `json:"regions"`
}

// RegionSnapshot is one region of a Snapshot.
type RegionSnapshot struct {
	Name          string                 `json:"name"`
	InstanceTypes []InstanceTypeSnapshot `json:"instance_types"`
}

// InstanceTypeSnapshot is one instance type of a RegionSnapshot.
type InstanceTypeSnapshot struct {
	APIName     string          `json:"api_name"`
	DisplayName string          `json:"display_name"`
	Prices      []PriceSnapshot `json:"prices"`
}

// PriceSnapshot is one price of an InstanceTypeSnapshot.
type PriceSnapshot struct {
	Key   string `json:"key"`
	Price Price  `json:"price"`
}

// Snapshot copies the catalog. Regions, instance types and prices are sorted
// so identical catalogs produce identical snapshots.
func (c *Catalog) Snapshot() Snapshot {
	regions := c.Regions()
	snap := Snapshot{Regions: make([]RegionSnapshot, 0, len(regions))}
	for _, r := range regions {
		rs := RegionSnapshot{Name: r.Name()}
		for _, it := range r.InstanceTypes() {
			its := InstanceTypeSnapshot{APIName: it.APIName(), DisplayName: it.DisplayName()}
			for _, pk := range it.Prices() {
				its.Prices = append(its.Prices, PriceSnapshot{Key: pk.Key.String(), Price: pk.Price})
			}
			rs.InstanceTypes = append(rs.InstanceTypes, its)
		}
		snap.Regions = append(snap.Regions, rs)
	}
	return snap
}

// MarshalJSON encodes the catalog's Snapshot.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Snapshot())
}
