// Package classify turns free-text proxy names into sortable records.
//
// A proxy name such as "江苏联通转日本TE4[M][Trojan][倍率:0.8]" carries two
// pieces of information the rewriter cares about: the region the exit node
// lives in and the billing rate of the node. The classifier extracts both and
// returns a ClassifiedName that orders naturally by (region, rate desc, name).
//
// # Region Table
//
// Regions are matched against an ordered table. The first region whose marker
// list contains a substring of the name wins, so narrower regions must appear
// before broader ones:
//
//	regions := []classify.Region{
//	    {Label: "02台", Markers: []string{"台"}},
//	    {Label: "01港", Markers: []string{"港"}},
//	    {Label: "09其他", Markers: []string{""}},
//	}
//
// Labels carry a numeric prefix so that byte-wise ordering of the label equals
// the intended display order. An empty marker matches every name and acts as
// the catch-all bucket; if a table has no catch-all, names that match nothing
// fall back to Options.FallbackRegion.
//
// # Rates
//
// The rate is captured by a regular expression with exactly one group
// (default `倍率:([\d.]+)`). A missing marker or an unparseable capture is a
// hard error because silently defaulting the rate would corrupt ordering.
//
//	c := classify.Default()
//	n, err := c.Classify("日本01[倍率:1.5]")
//	// n.Region == "03日", n.Rate == 1.5
package classify
