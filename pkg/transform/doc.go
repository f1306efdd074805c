// Package transform rewrites proxy-routing configuration documents.
//
// A Document is the decoded form of a Clash-style configuration: a mapping
// with at least the keys "proxies", "proxy-groups" and "rules". Convert
// reorders the proxies by region and rate, adds one url-test group per region,
// adds the requested select groups and prepends the extra rule lines.
//
//	doc := transform.Document{
//	    "proxies":      []any{map[string]any{"name": "香港01[倍率:1]"}},
//	    "proxy-groups": []any{},
//	    "rules":        []any{"MATCH,DIRECT"},
//	}
//	out, err := transform.Convert(doc, []string{"OpenAI"}, []string{"DOMAIN-SUFFIX,openai.com,OpenAI"})
//
// Documents missing any of the three keys are returned unchanged. Every other
// top-level key, and every field of an existing group except "proxies", is
// left as supplied.
//
// # Errors
//
// A proxy whose name carries no parseable rate aborts the conversion with a
// *ProxyError wrapping the classifier error. Structurally malformed values
// (a "proxies" value that is not a list, a proxy without a string name)
// produce a *ShapeError. In both cases the input document is left untouched.
//
// Convert does not hold state between calls; concurrent calls on distinct
// documents need no coordination.
package transform
