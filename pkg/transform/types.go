package transform

import "regroup-hq/regroup/pkg/classify"

// Document is a decoded configuration document.
type Document map[string]any

// Required top-level keys.
const (
	KeyProxies     = "proxies"
	KeyProxyGroups = "proxy-groups"
	KeyRules       = "rules"
)

// Proxy group types produced by the transformer.
const (
	GroupTypeURLTest = "url-test"
	GroupTypeSelect  = "select"
)

// Defaults for synthesized url-test groups.
const (
	DefaultHealthCheckURL = "http://www.gstatic.com/generate_204"
	DefaultInterval       = 300
	DefaultTolerance      = 100
)

// HasRequiredKeys reports whether d carries proxies, proxy-groups and rules.
func (d Document) HasRequiredKeys() bool {
	for _, k := range []string{KeyProxies, KeyProxyGroups, KeyRules} {
		if _, ok := d[k]; !ok {
			return false
		}
	}
	return true
}

// ProxyGroup is a group synthesized by the transformer.
type ProxyGroup struct {
	Name    string
	Type    string
	Proxies []string

	// URL, Interval and Tolerance only apply to url-test groups.
	URL       string
	Interval  int
	Tolerance int
}

// Map renders g in document form.
func (g ProxyGroup) Map() map[string]any {
	m := map[string]any{
		"name":    g.Name,
		"type":    g.Type,
		"proxies": stringsToAny(g.Proxies),
	}
	if g.Type == GroupTypeURLTest {
		m["url"] = g.URL
		m["interval"] = g.Interval
		m["tolerance"] = g.Tolerance
	}
	return m
}

// RegionBucket holds the classified names of one region in sorted order.
type RegionBucket struct {
	Label string
	Names []classify.ClassifiedName
}

// FullNames returns the proxy names of the bucket.
func (b RegionBucket) FullNames() []string {
	out := make([]string, len(b.Names))
	for i, n := range b.Names {
		out[i] = n.FullName
	}
	return out
}

// Bucket groups names by region, creating buckets in first-seen order.
// Given input sorted with classify.Compare, buckets come out in label order.
func Bucket(names []classify.ClassifiedName) []RegionBucket {
	var buckets []RegionBucket
	index := make(map[string]int)
	for _, n := range names {
		i, ok := index[n.Region]
		if !ok {
			i = len(buckets)
			index[n.Region] = i
			buckets = append(buckets, RegionBucket{Label: n.Region})
		}
		buckets[i].Names = append(buckets[i].Names, n)
	}
	return buckets
}

// RegionCount is the number of proxies placed in a region.
type RegionCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summary describes what a conversion did.
type Summary struct {
	// PassThrough is set when the document lacked a required key.
	PassThrough bool `json:"pass_through"`

	Proxies        int           `json:"proxies"`
	Regions        []RegionCount `json:"regions"`
	ExistingGroups int           `json:"existing_groups"`
	SelectorGroups int           `json:"selector_groups"`
	RulesAdded     int           `json:"rules_added"`
}

func stringsToAny(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

func sequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case nil:
		return nil, true
	case []any:
		return s, true
	case []string:
		return stringsToAny(s), true
	case []map[string]any:
		out := make([]any, len(s))
		for i, m := range s {
			out[i] = m
		}
		return out, true
	default:
		return nil, false
	}
}

func mapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Document:
		return m, true
	default:
		return nil, false
	}
}
