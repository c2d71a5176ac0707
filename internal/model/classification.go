package model

// Tier is one of the administrative classification buckets.
type Tier string

// Administrative tiers, in the order they are reported.
const (
	// TierRegion is a departamento landing page such as /lima or /lima/.
	TierRegion Tier = "region"

	// TierProvince is a province listing or detail page.
	TierProvince Tier = "province"

	// TierDistrict is a district detail page.
	TierDistrict Tier = "district"

	// TierOther is an administrative page that fits none of the tiers above.
	TierOther Tier = "other"
)

// Tiers lists every tier in report order.
var Tiers = []Tier{TierRegion, TierProvince, TierDistrict, TierOther}

// ClassificationResult holds four disjoint, sorted URL lists.
// Every administrative URL of a crawl appears in exactly one of them.
type ClassificationResult struct {
	// Regions are departamento landing pages.
	Regions []CanonicalURL `json:"regions"`

	// Provinces are province pages.
	Provinces []CanonicalURL `json:"provinces"`

	// Districts are district pages.
	Districts []CanonicalURL `json:"districts"`

	// Others are administrative pages outside the three named tiers.
	Others []CanonicalURL `json:"others"`
}

// ByTier returns the URL list for the given tier.
func (c *ClassificationResult) ByTier(t Tier) []CanonicalURL {
	if c == nil {
		return nil
	}
	switch t {
	case TierRegion:
		return c.Regions
	case TierProvince:
		return c.Provinces
	case TierDistrict:
		return c.Districts
	case TierOther:
		return c.Others
	default:
		return nil
	}
}

// Total returns the number of classified URLs across all tiers.
func (c *ClassificationResult) Total() int {
	if c == nil {
		return 0
	}
	return len(c.Regions) + len(c.Provinces) + len(c.Districts) + len(c.Others)
}
