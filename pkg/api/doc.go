// Package api holds the request decoding, response encoding and error
// mapping shared by the regroup HTTP handlers and middleware.
//
// Errors are mapped centrally:
//
//	*RequestError             400, 413 or 415 with the error's code
//	*transform.ShapeError     400 invalid_document
//	*transform.ProxyError     422 invalid_proxy_name, param proxies[i].name
//	ruleset.ErrNotLoaded      503 ruleset_unavailable
//	context.DeadlineExceeded  504 request_timeout
//	anything else             500 internal_error
package api
