package transform

import (
	"fmt"
	"maps"
	"slices"

	"regroup-hq/regroup/pkg/classify"
)

// URLTestOptions configures the health check of synthesized region groups.
type URLTestOptions struct {
	URL       string
	Interval  int
	Tolerance int
}

// Options configures a Transformer. Zero values select the defaults.
type Options struct {
	Classifier *classify.Classifier
	URLTest    URLTestOptions
}

// Transformer rewrites documents. It is immutable and safe for concurrent use.
type Transformer struct {
	classifier *classify.Classifier
	urlTest    URLTestOptions
}

// New creates a Transformer.
func New(opts Options) *Transformer {
	c := opts.Classifier
	if c == nil {
		c = classify.Default()
	}
	ut := opts.URLTest
	if ut.URL == "" {
		ut.URL = DefaultHealthCheckURL
	}
	if ut.Interval <= 0 {
		ut.Interval = DefaultInterval
	}
	if ut.Tolerance <= 0 {
		ut.Tolerance = DefaultTolerance
	}
	return &Transformer{classifier: c, urlTest: ut}
}

var defaultTransformer = New(Options{})

// Convert rewrites doc with the default classifier and url-test settings.
func Convert(doc Document, groupNames, ruleLines []string) (Document, error) {
	return defaultTransformer.Convert(doc, groupNames, ruleLines)
}

// Classifier returns the classifier used to order proxies.
func (t *Transformer) Classifier() *classify.Classifier {
	return t.classifier
}

// Convert rewrites doc in place and returns it. See ConvertWithSummary.
func (t *Transformer) Convert(doc Document, groupNames, ruleLines []string) (Document, error) {
	out, _, err := t.ConvertWithSummary(doc, groupNames, ruleLines)
	return out, err
}

// ConvertWithSummary sorts the proxies, extends every existing group with the
// region labels, appends one url-test group per region followed by one select
// group per entry of groupNames, and prepends ruleLines to the rules.
//
// A document without all required keys is returned as is. On error doc is
// not modified.
func (t *Transformer) ConvertWithSummary(doc Document, groupNames, ruleLines []string) (Document, Summary, error) {
	if !doc.HasRequiredKeys() {
		return doc, Summary{PassThrough: true}, nil
	}

	proxies, ok := sequence(doc[KeyProxies])
	if !ok {
		return nil, Summary{}, &ShapeError{Field: KeyProxies, Want: "list", Got: doc[KeyProxies]}
	}
	groups, ok := sequence(doc[KeyProxyGroups])
	if !ok {
		return nil, Summary{}, &ShapeError{Field: KeyProxyGroups, Want: "list", Got: doc[KeyProxyGroups]}
	}
	rules, ok := sequence(doc[KeyRules])
	if !ok {
		return nil, Summary{}, &ShapeError{Field: KeyRules, Want: "list", Got: doc[KeyRules]}
	}

	sortedProxies, names, err := t.sortProxies(proxies)
	if err != nil {
		return nil, Summary{}, err
	}

	buckets := Bucket(names)
	labels := make([]string, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Label
	}

	outGroups, groupNamesSoFar, err := extendGroups(groups, labels)
	if err != nil {
		return nil, Summary{}, err
	}

	for _, b := range buckets {
		outGroups = append(outGroups, t.regionGroup(b).Map())
	}
	groupNamesSoFar = append(groupNamesSoFar, labels...)

	for _, name := range groupNames {
		g := ProxyGroup{
			Name:    name,
			Type:    GroupTypeSelect,
			Proxies: slices.Clone(groupNamesSoFar),
		}
		outGroups = append(outGroups, g.Map())
	}

	outRules := make([]any, 0, len(ruleLines)+len(rules))
	for _, line := range ruleLines {
		outRules = append(outRules, line)
	}
	outRules = append(outRules, rules...)

	doc[KeyProxies] = sortedProxies
	doc[KeyProxyGroups] = outGroups
	doc[KeyRules] = outRules

	summary := Summary{
		Proxies:        len(sortedProxies),
		Regions:        make([]RegionCount, len(buckets)),
		ExistingGroups: len(groups),
		SelectorGroups: len(groupNames),
		RulesAdded:     len(ruleLines),
	}
	for i, b := range buckets {
		summary.Regions[i] = RegionCount{Label: b.Label, Count: len(b.Names)}
	}

	return doc, summary, nil
}

type classifiedProxy struct {
	entry any
	name  classify.ClassifiedName
}

// sortProxies classifies every proxy and returns them in stable sorted order
// together with their classified names.
func (t *Transformer) sortProxies(proxies []any) ([]any, []classify.ClassifiedName, error) {
	items := make([]classifiedProxy, len(proxies))
	for i, p := range proxies {
		m, ok := mapping(p)
		if !ok {
			return nil, nil, &ShapeError{Field: fmt.Sprintf("%s[%d]", KeyProxies, i), Want: "mapping", Got: p}
		}
		name, ok := m["name"].(string)
		if !ok {
			return nil, nil, &ShapeError{Field: fmt.Sprintf("%s[%d].name", KeyProxies, i), Want: "string", Got: m["name"]}
		}
		cn, err := t.classifier.Classify(name)
		if err != nil {
			return nil, nil, &ProxyError{Index: i, Name: name, Err: err}
		}
		items[i] = classifiedProxy{entry: p, name: cn}
	}

	slices.SortStableFunc(items, func(a, b classifiedProxy) int {
		return classify.Compare(a.name, b.name)
	})

	sorted := make([]any, len(items))
	names := make([]classify.ClassifiedName, len(items))
	for i, it := range items {
		sorted[i] = it.entry
		names[i] = it.name
	}
	return sorted, names, nil
}

// extendGroups copies every group and appends labels to its proxies. A group
// without proxies gets the labels alone. The group names are returned in
// document order.
func extendGroups(groups []any, labels []string) ([]any, []string, error) {
	out := make([]any, 0, len(groups))
	names := make([]string, 0, len(groups))
	for i, g := range groups {
		m, ok := mapping(g)
		if !ok {
			return nil, nil, &ShapeError{Field: fmt.Sprintf("%s[%d]", KeyProxyGroups, i), Want: "mapping", Got: g}
		}
		name, ok := m["name"].(string)
		if !ok {
			return nil, nil, &ShapeError{Field: fmt.Sprintf("%s[%d].name", KeyProxyGroups, i), Want: "string", Got: m["name"]}
		}
		existing, ok := sequence(m["proxies"])
		if !ok {
			return nil, nil, &ShapeError{Field: fmt.Sprintf("%s[%d].proxies", KeyProxyGroups, i), Want: "list", Got: m["proxies"]}
		}

		proxies := make([]any, 0, len(existing)+len(labels))
		proxies = append(proxies, existing...)
		for _, l := range labels {
			proxies = append(proxies, l)
		}

		ext := maps.Clone(m)
		ext["proxies"] = proxies
		out = append(out, ext)
		names = append(names, name)
	}
	return out, names, nil
}

func (t *Transformer) regionGroup(b RegionBucket) ProxyGroup {
	return ProxyGroup{
		Name:      b.Label,
		Type:      GroupTypeURLTest,
		Proxies:   b.FullNames(),
		URL:       t.urlTest.URL,
		Interval:  t.urlTest.Interval,
		Tolerance: t.urlTest.Tolerance,
	}
}
