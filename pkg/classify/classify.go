package classify

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

const (
	// DefaultRatePattern captures the decimal after the rate marker.
	DefaultRatePattern = `倍率:([\d.]+)`

	// DefaultFallbackRegion is used when no region in the table matches.
	DefaultFallbackRegion = "其他"
)

// Region is one entry of the ordered region table.
type Region struct {
	// Label names the region bucket and fixes its display order.
	Label string `yaml:"label" json:"label"`

	// Markers are substrings that identify the region inside a proxy name.
	// An empty marker matches every name.
	Markers []string `yaml:"markers" json:"markers"`
}

// Matches reports whether any marker is contained in name.
func (r Region) Matches(name string) bool {
	for _, m := range r.Markers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// DefaultRegions returns the built-in region table. Hong Kong is tested after
// the one-character markers of the other regions since its marker also shows
// up inside unrelated names.
func DefaultRegions() []Region {
	return []Region{
		{Label: "02台", Markers: []string{"台"}},
		{Label: "03日", Markers: []string{"日"}},
		{Label: "04韩", Markers: []string{"韩"}},
		{Label: "05新", Markers: []string{"新"}},
		{Label: "06美", Markers: []string{"美"}},
		{Label: "07德", Markers: []string{"德"}},
		{Label: "08法", Markers: []string{"法"}},
		{Label: "01港", Markers: []string{"港"}},
		{Label: "09其他", Markers: []string{""}},
	}
}

// ClassifiedName is the sortable view of a proxy name.
type ClassifiedName struct {
	Region   string
	Rate     float64
	FullName string
}

// Compare orders by region ascending, rate descending, then full name.
func Compare(a, b ClassifiedName) int {
	if c := strings.Compare(a.Region, b.Region); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Rate, a.Rate); c != 0 {
		return c
	}
	return strings.Compare(a.FullName, b.FullName)
}

// Less reports whether n sorts before other.
func (n ClassifiedName) Less(other ClassifiedName) bool {
	return Compare(n, other) < 0
}

// Options configures a Classifier. Zero values select the defaults.
type Options struct {
	Regions        []Region
	FallbackRegion string
	RatePattern    string
}

// Classifier parses proxy names. It is immutable and safe for concurrent use.
type Classifier struct {
	regions  []Region
	fallback string
	rate     *regexp.Regexp
}

// New builds a Classifier from opts.
func New(opts Options) (*Classifier, error) {
	regions := opts.Regions
	if len(regions) == 0 {
		regions = DefaultRegions()
	}
	for i, r := range regions {
		if r.Label == "" {
			return nil, fmt.Errorf("region %d: label is required", i)
		}
	}

	fallback := opts.FallbackRegion
	if fallback == "" {
		fallback = DefaultFallbackRegion
	}

	pattern := opts.RatePattern
	if pattern == "" {
		pattern = DefaultRatePattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid rate pattern %q: %w", pattern, err)
	}
	if re.NumSubexp() != 1 {
		return nil, fmt.Errorf("rate pattern %q must have exactly one capture group, has %d", pattern, re.NumSubexp())
	}

	return &Classifier{
		regions:  cloneRegions(regions),
		fallback: fallback,
		rate:     re,
	}, nil
}

var defaultClassifier = mustNew(Options{})

// Default returns the classifier built from the default table and pattern.
func Default() *Classifier {
	return defaultClassifier
}

func mustNew(opts Options) *Classifier {
	c, err := New(opts)
	if err != nil {
		panic(err)
	}
	return c
}

// Regions returns a copy of the region table in match order.
func (c *Classifier) Regions() []Region {
	return cloneRegions(c.regions)
}

// Region returns the label of the first region matching name.
func (c *Classifier) Region(name string) string {
	for _, r := range c.regions {
		if r.Matches(name) {
			return r.Label
		}
	}
	return c.fallback
}

// Rate extracts the rate embedded in name.
func (c *Classifier) Rate(name string) (float64, error) {
	m := c.rate.FindStringSubmatch(name)
	if m == nil {
		return 0, &RateMarkerMissingError{Name: name, Pattern: c.rate.String()}
	}
	rate, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, &RateParseError{Name: name, Value: m[1], Err: err}
	}
	return rate, nil
}

// Classify parses name into a ClassifiedName.
func (c *Classifier) Classify(name string) (ClassifiedName, error) {
	rate, err := c.Rate(name)
	if err != nil {
		return ClassifiedName{}, err
	}
	return ClassifiedName{
		Region:   c.Region(name),
		Rate:     rate,
		FullName: name,
	}, nil
}

func cloneRegions(regions []Region) []Region {
	out := make([]Region, len(regions))
	for i, r := range regions {
		out[i] = Region{Label: r.Label, Markers: slices.Clone(r.Markers)}
	}
	return out
}
