package types

import "regroup-hq/regroup/pkg/transform"

// ConvertRequest is the JSON body accepted by the convert endpoint.
//
//	{"content": {"proxies": [...], "proxy-groups": [...], "rules": [...]}}
type ConvertRequest struct {
	Content transform.Document `json:"content"`
}

// ConvertResponse wraps the rewritten document in the same envelope.
type ConvertResponse struct {
	Content transform.Document `json:"content"`
}

// Content types understood by the convert endpoint.
const (
	ContentTypeJSON     = "application/json"
	ContentTypeYAML     = "application/yaml"
	ContentTypeTextYAML = "text/yaml"
	ContentTypeXYAML    = "application/x-yaml"
)

// Summary headers set on successful conversions.
const (
	HeaderProxies = "X-Regroup-Proxies"
	HeaderRegions = "X-Regroup-Regions"
	HeaderRules   = "X-Regroup-Rules"
)
