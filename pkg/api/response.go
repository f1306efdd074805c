package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"regroup-hq/regroup/pkg/api/types"
	"regroup-hq/regroup/pkg/transform"

	"gopkg.in/yaml.v3"
)

// WriteJSONResponse writes data as JSON with the given status code.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}
	return nil
}

// WriteYAMLResponse writes doc as a YAML document.
func WriteYAMLResponse(w http.ResponseWriter, statusCode int, doc transform.Document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode YAML response: %w", err)
	}
	w.Header().Set("Content-Type", types.ContentTypeYAML+"; charset=utf-8")
	w.WriteHeader(statusCode)
	_, err = w.Write(data)
	return err
}

// WriteDocument writes doc in format f. JSON documents are wrapped in the
// content envelope.
func WriteDocument(w http.ResponseWriter, f Format, doc transform.Document) error {
	if f == FormatYAML {
		return WriteYAMLResponse(w, http.StatusOK, doc)
	}
	return WriteJSONResponse(w, http.StatusOK, types.ConvertResponse{Content: doc})
}

// WriteErrorResponse writes errResp with its HTTP status code.
func WriteErrorResponse(w http.ResponseWriter, errResp *types.ErrorResponse) error {
	return WriteJSONResponse(w, errResp.HTTPStatusCode(), errResp)
}
