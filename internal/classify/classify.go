package classify

import (
	"regexp"
	"strings"

	"github.com/nao1215/urlextract/internal/model"
)

var (
	// regionPattern matches a path ending at a region slug.
	regionPattern = regexp.MustCompile(`/` + regionGroup + `/?$`)

	// membershipPatterns decide whether a URL is administrative at all.
	membershipPatterns = []*regexp.Regexp{
		regionPattern,
		regexp.MustCompile(`/` + regionGroup + `/provincias?-`),
		regexp.MustCompile(`/` + regionGroup + `/provincias/`),
		regexp.MustCompile(`/` + regionGroup + `/informacion-[a-z]+/distrito`),
		regexp.MustCompile(`/` + regionGroup + `/distrito`),
	}

	districtPatterns = []*regexp.Regexp{
		regexp.MustCompile(`/informacion-[a-z]+/distrito`),
		regexp.MustCompile(`/` + regionGroup + `/distrito`),
	}

	provincePattern = regexp.MustCompile(`/provincia`)
)

// IsAdministrative reports whether url names a region, province or district page.
func IsAdministrative(url model.CanonicalURL) bool {
	lower := strings.ToLower(url.String())
	for _, p := range membershipPatterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}

// TierOf returns the tier of url. It reports false when url is not
// administrative.
//
// Tiers are tried in the order region, district, province, other; the first
// match wins.
func TierOf(url model.CanonicalURL) (model.Tier, bool) {
	if !IsAdministrative(url) {
		return "", false
	}

	lower := strings.ToLower(url.String())
	if regionPattern.MatchString(lower) {
		return model.TierRegion, true
	}
	for _, p := range districtPatterns {
		if p.MatchString(lower) {
			return model.TierDistrict, true
		}
	}
	if provincePattern.MatchString(lower) {
		return model.TierProvince, true
	}
	return model.TierOther, true
}

// FilterAdministrative returns the distinct administrative URLs of urls, sorted.
func FilterAdministrative(urls []model.CanonicalURL) []model.CanonicalURL {
	set := model.NewURLSet()
	for _, u := range urls {
		if IsAdministrative(u) {
			set.Add(u)
		}
	}
	return set.Sorted()
}

// Classify partitions the administrative URLs of urls into tiers.
// Non-administrative URLs are ignored and duplicates collapse. Each tier is
// sorted lexicographically.
func Classify(urls []model.CanonicalURL) *model.ClassificationResult {
	result := &model.ClassificationResult{
		Regions:   make([]model.CanonicalURL, 0),
		Provinces: make([]model.CanonicalURL, 0),
		Districts: make([]model.CanonicalURL, 0),
		Others:    make([]model.CanonicalURL, 0),
	}

	for _, u := range FilterAdministrative(urls) {
		tier, _ := TierOf(u)
		switch tier {
		case model.TierRegion:
			result.Regions = append(result.Regions, u)
		case model.TierDistrict:
			result.Districts = append(result.Districts, u)
		case model.TierProvince:
			result.Provinces = append(result.Provinces, u)
		default:
			result.Others = append(result.Others, u)
		}
	}
	return result
}

// RegionOf returns the gazetteer slug that made url administrative.
func RegionOf(url model.CanonicalURL) (string, bool) {
	lower := strings.ToLower(url.String())
	for _, p := range membershipPatterns {
		if m := p.FindStringSubmatch(lower); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// GroupByRegion groups administrative URLs by region slug.
// URLs that are not administrative are dropped.
func GroupByRegion(urls []model.CanonicalURL) map[string][]model.CanonicalURL {
	groups := make(map[string][]model.CanonicalURL)
	for _, u := range FilterAdministrative(urls) {
		region, ok := RegionOf(u)
		if !ok {
			continue
		}
		groups[region] = append(groups[region], u)
	}
	return groups
}

// IsAdministrativeSite reports whether the crawl of base should be
// classified: base mentions enperu.org, or "peru" in any case.
func IsAdministrativeSite(base string) bool {
	return strings.Contains(base, "enperu.org") || strings.Contains(strings.ToLower(base), "peru")
}
