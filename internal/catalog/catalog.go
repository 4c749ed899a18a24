package catalog

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// notFoundTemplate is the standard message for missing catalog entries.
// Example: fmt.Sprintf(notFoundTemplate, "region", "moon-1")
// Result: "region \"moon-1\" not found in pricing catalog"
const notFoundTemplate = "%s %q not found in pricing catalog"

var (
	// ErrRegionNotFound is returned when a region identifier is neither a
	// canonical name nor a known vendor alias, or has not been populated.
	ErrRegionNotFound = errors.New("region not found")

	// ErrInstanceTypeNotFound is returned when a region has no entry for an API name.
	ErrInstanceTypeNotFound = errors.New("instance type not found")
)

// Catalog owns the regions of an ingestion run, keyed by canonical name.
// All methods are safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	table   RegionTable
	regions map[string]*Region
}

// New returns an empty catalog that accepts the regions in table.
func New(table RegionTable) *Catalog {
	return &Catalog{
		table:   table,
		regions: make(map[string]*Region),
	}
}

// Canonical resolves a canonical name or vendor alias to the canonical name.
func (c *Catalog) Canonical(name string) (string, bool) {
	canonical, ok := c.table[name]
	return canonical, ok
}

// GetRegion returns the populated region for name, resolving vendor aliases.
func (c *Catalog) GetRegion(name string) (*Region, bool) {
	canonical, ok := c.Canonical(name)
	if !ok {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.regions[canonical]
	return r, ok
}

// FindOrCreateRegion returns the region for name, creating it on first use.
// Names outside the region table yield ErrRegionNotFound and create nothing.
func (c *Catalog) FindOrCreateRegion(name string) (*Region, error) {
	canonical, ok := c.Canonical(name)
	if !ok {
		return nil, fmt.Errorf(notFoundTemplate+": %w", "region", name, ErrRegionNotFound)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.regions[canonical]; ok {
		return r, nil
	}
	r := newRegion(canonical)
	c.regions[canonical] = r
	return r, nil
}

// GetInstanceType looks up apiName in the named region.
func (c *Catalog) GetInstanceType(regionName, apiName string) (*InstanceType, error) {
	r, ok := c.GetRegion(regionName)
	if !ok {
		return nil, fmt.Errorf(notFoundTemplate+": %w", "region", regionName, ErrRegionNotFound)
	}
	it, ok := r.InstanceType(apiName)
	if !ok {
		return nil, fmt.Errorf(notFoundTemplate+": %w", "instance type", apiName, ErrInstanceTypeNotFound)
	}
	return it, nil
}

// Regions returns the populated regions sorted by name.
func (c *Catalog) Regions() []*Region {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Region, 0, len(c.regions))
	for _, r := range c.regions {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Region owns the instance types priced in one canonical region.
type Region struct {
	name string

	mu    sync.RWMutex
	types map[string]*InstanceType
}

func newRegion(name string) *Region {
	return &Region{name: name, types: make(map[string]*InstanceType)}
}

// Name returns the canonical region identifier.
func (r *Region) Name() string { return r.name }

// InstanceType returns the entry for apiName, if any.
func (r *Region) InstanceType(apiName string) (*InstanceType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.types[apiName]
	return it, ok
}

// AddOrUpdateInstanceType returns the existing entry for apiName or creates
// one. A repeat call keeps the display name from the first call.
func (r *Region) AddOrUpdateInstanceType(apiName, displayName string) *InstanceType {
	r.mu.Lock()
	defer r.mu.Unlock()
	if it, ok := r.types[apiName]; ok {
		return it
	}
	it := newInstanceType(apiName, displayName)
	r.types[apiName] = it
	return it
}

// InstanceTypes returns the region's entries sorted by API name.
func (r *Region) InstanceTypes() []*InstanceType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*InstanceType, 0, len(r.types))
	for _, it := range r.types {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].apiName < out[j].apiName })
	return out
}
