// Package handlers implements the HTTP handlers of the regroup API.
//
// ConvertHandler serves "/" for GET and POST. It reads the configuration
// from the request body, rewrites it with the active rule set and answers
// in the format of the request:
//
//	Content-Type: application/json   {"content": {...}} in, {"content": {...}} out
//	Content-Type: application/yaml   YAML document in, YAML document out
//
// A proxy whose name has no readable rate fails the request with 422 and
// the document path of the name in the error param.
package handlers
