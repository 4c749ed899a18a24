package catalog

// RegionTable maps every accepted region identifier to its canonical name.
// Canonical names map to themselves.
type RegionTable map[string]string

// vendorRegionAliases maps the short codes embedded in the legacy pricing
// feeds to AWS API region names.
var vendorRegionAliases = map[string]string{
	"us-east":    "us-east-1",
	"us-west":    "us-west-1",
	"eu-ireland": "eu-west-1",
	"eu-central": "eu-central-1",
	"apac-sin":   "ap-southeast-1",
	"apac-syd":   "ap-southeast-2",
	"apac-tokyo": "ap-northeast-1",
	"apac-seoul": "ap-northeast-2",
	"sa-east":    "sa-east-1",
}

var canonicalRegions = []string{
	"us-east-1",
	"us-east-2",
	"us-west-1",
	"us-west-2",
	"us-gov-west-1",
	"ca-central-1",
	"eu-west-1",
	"eu-west-2",
	"eu-central-1",
	"ap-southeast-1",
	"ap-southeast-2",
	"ap-northeast-1",
	"ap-northeast-2",
	"ap-south-1",
	"sa-east-1",
}

// DefaultRegionTable returns the canonical RDS regions plus the vendor
// aliases used by the pricing feeds.
func DefaultRegionTable() RegionTable {
	t := make(RegionTable, len(canonicalRegions)+len(vendorRegionAliases))
	for _, r := range canonicalRegions {
		t[r] = r
	}
	for alias, canonical := range vendorRegionAliases {
		t[alias] = canonical
	}
	return t
}
