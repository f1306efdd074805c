// Package types defines the request, response and error bodies of the
// regroup HTTP API.
//
// Conversions use the envelope the service has always accepted:
//
//	POST / HTTP/1.1
//	Content-Type: application/json
//
//	{"content": {"proxies": [...], "proxy-groups": [...], "rules": [...]}}
//
// Errors share a single shape:
//
//	{
//	  "error": {
//	    "message": "proxies[3]: rate marker \"倍率:([\\d.]+)\" not found in proxy name \"HK 01\"",
//	    "type": "invalid_request_error",
//	    "param": "proxies[3].name",
//	    "code": "invalid_proxy_name"
//	  }
//	}
package types
