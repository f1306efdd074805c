package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"regroup-hq/regroup/pkg/api/types"
	"regroup-hq/regroup/pkg/transform"

	"gopkg.in/yaml.v3"
)

// DefaultMaxBodyBytes bounds the request body when no limit is configured.
const DefaultMaxBodyBytes = 10 * 1024 * 1024

// Format is the wire format of a conversion request and its response.
type Format int

const (
	// FormatJSON is the {"content": ...} envelope.
	FormatJSON Format = iota

	// FormatYAML is a bare YAML configuration.
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// ConvertRequest is a parsed conversion request.
type ConvertRequest struct {
	Document transform.Document
	Format   Format
}

// RequestError represents a request parsing or validation error.
type RequestError struct {
	Message string
	Code    string
	Param   string

	// Status overrides the default 400.
	Status int
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return e.Message
}

// ToErrorResponse converts a RequestError to an error response.
func (e *RequestError) ToErrorResponse() *types.ErrorResponse {
	resp := types.NewInvalidRequestError(e.Message, e.Param, e.Code)
	if e.Status != 0 {
		resp.Status = e.Status
	}
	return resp
}

// FormatForContentType picks the request format from a Content-Type header.
// An empty header means JSON.
func FormatForContentType(header string) (Format, error) {
	if header == "" {
		return FormatJSON, nil
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return 0, &RequestError{
			Message: fmt.Sprintf("invalid Content-Type %q", header),
			Code:    types.CodeUnsupportedMedia,
			Param:   "Content-Type",
			Status:  http.StatusUnsupportedMediaType,
		}
	}

	switch {
	case mediaType == types.ContentTypeJSON, strings.HasSuffix(mediaType, "+json"):
		return FormatJSON, nil
	case mediaType == types.ContentTypeYAML,
		mediaType == types.ContentTypeTextYAML,
		mediaType == types.ContentTypeXYAML:
		return FormatYAML, nil
	default:
		return 0, &RequestError{
			Message: fmt.Sprintf("unsupported Content-Type %q: use application/json or application/yaml", mediaType),
			Code:    types.CodeUnsupportedMedia,
			Param:   "Content-Type",
			Status:  http.StatusUnsupportedMediaType,
		}
	}
}

// ParseConvertRequest reads and decodes the body of r. The body is limited
// to maxBytes; zero means DefaultMaxBodyBytes.
func ParseConvertRequest(r *http.Request, maxBytes int64) (*ConvertRequest, error) {
	format, err := FormatForContentType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}

	var body []byte
	if r.Body != nil {
		body, err = io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return nil, tooLarge(maxErr.Limit)
			}
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
	}
	if int64(len(body)) > maxBytes {
		return nil, tooLarge(maxBytes)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &RequestError{
			Message: "request body is empty",
			Code:    types.CodeMissingField,
			Param:   "content",
		}
	}

	var doc transform.Document
	switch format {
	case FormatYAML:
		doc, err = decodeYAML(body)
	default:
		doc, err = decodeJSON(body)
	}
	if err != nil {
		return nil, err
	}

	return &ConvertRequest{Document: doc, Format: format}, nil
}

func decodeJSON(body []byte) (transform.Document, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &RequestError{
			Message: fmt.Sprintf("invalid JSON: %v", err),
			Code:    types.CodeInvalidJSON,
			Param:   "body",
		}
	}

	raw, ok := envelope["content"]
	if !ok || string(bytes.TrimSpace(raw)) == "null" {
		return nil, &RequestError{
			Message: "content is required",
			Code:    types.CodeMissingField,
			Param:   "content",
		}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc transform.Document
	if err := dec.Decode(&doc); err != nil {
		return nil, &RequestError{
			Message: fmt.Sprintf("content must be an object: %v", err),
			Code:    types.CodeInvalidValue,
			Param:   "content",
		}
	}
	return doc, nil
}

func decodeYAML(body []byte) (transform.Document, error) {
	var doc transform.Document
	if err := yaml.Unmarshal(body, &doc); err != nil {
		return nil, &RequestError{
			Message: fmt.Sprintf("invalid YAML: %v", err),
			Code:    types.CodeInvalidYAML,
			Param:   "body",
		}
	}
	if doc == nil {
		return nil, &RequestError{
			Message: "YAML document must be a mapping",
			Code:    types.CodeInvalidValue,
			Param:   "body",
		}
	}
	return doc, nil
}

func tooLarge(limit int64) *RequestError {
	return &RequestError{
		Message: fmt.Sprintf("request body exceeds maximum size of %d bytes", limit),
		Code:    types.CodeRequestTooLarge,
		Param:   "body",
		Status:  http.StatusRequestEntityTooLarge,
	}
}
