package catalog

import (
	"sort"
	"strings"
	"sync"
)

// InstanceType is one RDS instance class within a region together with
// every price observed for it.
type InstanceType struct {
	apiName     string
	displayName string

	mu     sync.RWMutex
	prices map[PriceKey]Price
}

func newInstanceType(apiName, displayName string) *InstanceType {
	return &InstanceType{
		apiName:     apiName,
		displayName: displayName,
		prices:      make(map[PriceKey]Price),
	}
}

// APIName returns the API-visible name, e.g. "db.m4.large".
func (it *InstanceType) APIName() string { return it.apiName }

// DisplayName returns the human-readable name recorded on creation.
func (it *InstanceType) DisplayName() string { return it.displayName }

// Family returns the instance family, e.g. "db.m4" for "db.m4.large".
func (it *InstanceType) Family() string {
	family, _ := splitInstanceType(it.apiName)
	return family
}

// Size returns the instance size, e.g. "large" for "db.m4.large".
func (it *InstanceType) Size() string {
	_, size := splitInstanceType(it.apiName)
	return size
}

// UpdatePricing stores price under key, replacing any earlier value.
func (it *InstanceType) UpdatePricing(key PriceKey, price Price) {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.prices[key] = price
}

// Price returns the price stored under key.
func (it *InstanceType) Price(key PriceKey) (Price, bool) {
	it.mu.RLock()
	defer it.mu.RUnlock()
	p, ok := it.prices[key]
	return p, ok
}

// PricedKey pairs a key with its price.
type PricedKey struct {
	Key   PriceKey
	Price Price
}

// Prices returns every stored price ordered by key string.
func (it *InstanceType) Prices() []PricedKey {
	it.mu.RLock()
	defer it.mu.RUnlock()
	out := make([]PricedKey, 0, len(it.prices))
	for k, p := range it.prices {
		out = append(out, PricedKey{Key: k, Price: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.String() < out[j].Key.String() })
	return out
}

// splitInstanceType splits an RDS instance type into family and size.
// Example: "db.t3.medium" → ("db.t3", "medium")
// Returns empty strings if the format is invalid.
func splitInstanceType(instanceType string) (family, size string) {
	if !strings.HasPrefix(instanceType, "db.") {
		return "", ""
	}
	trimmed := strings.TrimPrefix(instanceType, "db.")
	parts := strings.SplitN(trimmed, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", ""
	}
	return "db." + parts[0], parts[1]
}
