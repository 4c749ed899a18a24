package feed

// The RDS pricing feeds share an outer {"config": {"regions": [...]}}
// envelope; the per-region layout differs by shape.

// onDemandDocument is the on-demand feed layout:
// regions[] -> types[] -> tiers[] -> prices.
type onDemandDocument struct {
	Config struct {
		Currencies []string         `json:"currencies"`
		Regions    []onDemandRegion `json:"regions"`
	} `json:"config"`
}

type onDemandRegion struct {
	Region string         `json:"region"`
	Types  []onDemandType `json:"types"`
}

type onDemandType struct {
	Name  string         `json:"name"`
	Tiers []onDemandTier `json:"tiers"`
}

type onDemandTier struct {
	Name   string            `json:"name"`
	Prices map[string]string `json:"prices"` // Currency -> Amount (string)
}

// legacyDocument is the light/medium/heavy utilization reserved layout:
// regions[] -> instanceTypes[] -> tiers[] -> valueColumns[].
type legacyDocument struct {
	Config struct {
		Regions []legacyRegion `json:"regions"`
	} `json:"config"`
}

type legacyRegion struct {
	Region        string               `json:"region"`
	InstanceTypes []legacyInstanceType `json:"instanceTypes"`
}

// legacyInstanceType groups tiers by deployment, e.g. "stdDeployRes" or
// "multiAZdeployRes".
type legacyInstanceType struct {
	Type  string       `json:"type"`
	Tiers []legacyTier `json:"tiers"`
}

type legacyTier struct {
	Size         string        `json:"size"`
	ValueColumns []valueColumn `json:"valueColumns"`
}

// termDocument is the current reserved layout:
// regions[] -> instanceTypes[] -> terms[] -> purchaseOptions[] -> valueColumns[].
type termDocument struct {
	Config struct {
		Regions []termRegion `json:"regions"`
	} `json:"config"`
}

type termRegion struct {
	Region        string             `json:"region"`
	InstanceTypes []termInstanceType `json:"instanceTypes"`
}

type termInstanceType struct {
	Type  string         `json:"type"`
	Terms []reservedTerm `json:"terms"`
}

type reservedTerm struct {
	Term            string           `json:"term"`
	PurchaseOptions []purchaseOption `json:"purchaseOptions"`
}

type purchaseOption struct {
	PurchaseOption string        `json:"purchaseOption"`
	ValueColumns   []valueColumn `json:"valueColumns"`
}

type valueColumn struct {
	Name   string            `json:"name"`
	Prices map[string]string `json:"prices"`
}
