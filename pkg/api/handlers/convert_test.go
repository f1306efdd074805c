package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"regroup-hq/regroup/pkg/api/types"
	"regroup-hq/regroup/pkg/ruleset"
	"regroup-hq/regroup/pkg/telemetry/logging"
	"regroup-hq/regroup/pkg/telemetry/metrics"
	"regroup-hq/regroup/pkg/transform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const configJSON = `{
  "content": {
    "port": 7890,
    "proxies": [
      {"name": "美国 01 倍率:1.0", "type": "ss", "server": "us.example.com", "port": 443, "password": "hunter2"},
      {"name": "香港 01 倍率:1.0", "type": "ss", "server": "hk.example.com", "port": 443, "password": "hunter2"},
      {"name": "香港 02 倍率:2.0", "type": "ss", "server": "hk.example.com", "port": 444, "password": "hunter2"}
    ],
    "proxy-groups": [
      {"name": "Proxy", "type": "select", "proxies": ["DIRECT"]}
    ],
    "rules": ["MATCH,Proxy"]
  }
}`

type fakeRecorder struct {
	mu       sync.Mutex
	statuses []string
}

func (f *fakeRecorder) RecordConversion(status string, _ time.Duration, _ transform.Summary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
}

type nilSource struct{}

func (nilSource) Current() *ruleset.Set { return nil }

func newTestHandler(t *testing.T, rec ConversionRecorder) *ConvertHandler {
	t.Helper()
	set, err := ruleset.NewSet("OpenAI", []string{"OpenAI"}, []string{
		"DOMAIN-SUFFIX,openai.com,OpenAI",
		"DOMAIN-KEYWORD,openai,OpenAI",
	})
	require.NoError(t, err)

	h, err := NewConvertHandler(ConvertOptions{
		Rules:   ruleset.NewStaticStore(set),
		Metrics: rec,
	})
	require.NoError(t, err)
	return h
}

func decodeEnvelope(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	content, ok := resp["content"].(map[string]any)
	require.True(t, ok, "response has no content object: %v", resp)
	return content
}

func decodeError(t *testing.T, body io.Reader) types.ErrorResponse {
	t.Helper()
	var resp types.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}

func names(t *testing.T, list any) []string {
	t.Helper()
	items, ok := list.([]any)
	require.True(t, ok)
	out := make([]string, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case map[string]any:
			out[i], _ = v["name"].(string)
		case string:
			out[i] = v
		}
	}
	return out
}

func TestConvertHandler_JSON(t *testing.T) {
	rec := &fakeRecorder{}
	h := newTestHandler(t, rec)

	for _, method := range []string{http.MethodPost, http.MethodGet} {
		t.Run(method, func(t *testing.T) {
			req := httptest.NewRequest(method, "/", strings.NewReader(configJSON))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, "3", w.Header().Get(types.HeaderProxies))
			assert.Equal(t, "2", w.Header().Get(types.HeaderRegions))
			assert.Equal(t, "2", w.Header().Get(types.HeaderRules))

			content := decodeEnvelope(t, w.Body)
			assert.Equal(t, []string{"香港 02 倍率:2.0", "香港 01 倍率:1.0", "美国 01 倍率:1.0"}, names(t, content["proxies"]))
			assert.Equal(t, []string{"Proxy", "01港", "06美", "OpenAI"}, names(t, content["proxy-groups"]))
			assert.Equal(t, []string{"DOMAIN-SUFFIX,openai.com,OpenAI", "DOMAIN-KEYWORD,openai,OpenAI", "MATCH,Proxy"}, names(t, content["rules"]))
			assert.EqualValues(t, 7890, content["port"])

			groups := content["proxy-groups"].([]any)
			proxyGroup := groups[0].(map[string]any)
			assert.Equal(t, []any{"DIRECT", "01港", "06美"}, proxyGroup["proxies"])
			openai := groups[3].(map[string]any)
			assert.Equal(t, []any{"Proxy", "01港", "06美"}, openai["proxies"])
		})
	}

	assert.Equal(t, []string{metrics.StatusSuccess, metrics.StatusSuccess}, rec.statuses)
}

func TestConvertHandler_YAML(t *testing.T) {
	h := newTestHandler(t, nil)

	body := `
proxies:
  - {name: "日本 01 倍率:1.5", type: trojan, server: jp.example.com, port: 443}
  - {name: "Other 倍率:0.5", type: trojan, server: x.example.com, port: 443}
proxy-groups: []
rules:
  - MATCH,DIRECT
`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/yaml")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "application/yaml"))

	var out map[string]any
	require.NoError(t, yaml.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, []string{"日本 01 倍率:1.5", "Other 倍率:0.5"}, names(t, out["proxies"]))
	assert.Equal(t, []string{"03日", "09其他", "OpenAI"}, names(t, out["proxy-groups"]))
}

func TestConvertHandler_PassThrough(t *testing.T) {
	rec := &fakeRecorder{}
	h := newTestHandler(t, rec)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content": {"proxies": [], "mode": "rule"}}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get(types.HeaderProxies))
	assert.Equal(t, map[string]any{"proxies": []any{}, "mode": "rule"}, decodeEnvelope(t, w.Body))
	assert.Equal(t, []string{metrics.StatusPassThrough}, rec.statuses)
}

func TestConvertHandler_InvalidProxyName(t *testing.T) {
	rec := &fakeRecorder{}
	h := newTestHandler(t, rec)

	var logs bytes.Buffer
	logger, err := logging.New(logging.Config{Level: "debug", Format: "json", Writer: &logs})
	require.NoError(t, err)

	body := `{"content": {
	  "proxies": [
	    {"name": "香港 01 倍率:1.0", "password": "hunter2"},
	    {"name": "香港 02", "password": "hunter2"}
	  ],
	  "proxy-groups": [],
	  "rules": []
	}}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req = req.WithContext(logging.WithLogger(req.Context(), logger))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeError(t, w.Body)
	assert.Equal(t, types.ErrorTypeInvalidRequest, resp.Error.Type)
	assert.Equal(t, types.CodeInvalidProxyName, resp.Error.Code)
	assert.Equal(t, "proxies[1].name", resp.Error.Param)
	assert.Contains(t, resp.Error.Message, "香港 02")

	assert.Equal(t, []string{metrics.StatusInvalidName}, rec.statuses)
	assert.Contains(t, logs.String(), "proxy name rejected")
	assert.NotContains(t, logs.String(), "hunter2")
}

func TestConvertHandler_BadRequests(t *testing.T) {
	h := newTestHandler(t, nil)

	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		status      int
		code        string
		param       string
	}{
		{
			name:   "empty body",
			method: http.MethodGet,
			status: http.StatusBadRequest,
			code:   types.CodeMissingField,
			param:  "content",
		},
		{
			name:   "invalid JSON",
			method: http.MethodPost,
			body:   `{"content":`,
			status: http.StatusBadRequest,
			code:   types.CodeInvalidJSON,
		},
		{
			name:   "missing content",
			method: http.MethodPost,
			body:   `{"config": {}}`,
			status: http.StatusBadRequest,
			code:   types.CodeMissingField,
			param:  "content",
		},
		{
			name:   "content not an object",
			method: http.MethodPost,
			body:   `{"content": [1, 2]}`,
			status: http.StatusBadRequest,
			code:   types.CodeInvalidValue,
			param:  "content",
		},
		{
			name:   "proxies not a list",
			method: http.MethodPost,
			body:   `{"content": {"proxies": "none", "proxy-groups": [], "rules": []}}`,
			status: http.StatusBadRequest,
			code:   types.CodeInvalidDocument,
			param:  "proxies",
		},
		{
			name:        "invalid YAML",
			method:      http.MethodPost,
			contentType: "application/yaml",
			body:        "proxies: [",
			status:      http.StatusBadRequest,
			code:        types.CodeInvalidYAML,
		},
		{
			name:        "unsupported media type",
			method:      http.MethodPost,
			contentType: "text/html",
			body:        "<html/>",
			status:      http.StatusUnsupportedMediaType,
			code:        types.CodeUnsupportedMedia,
		},
		{
			name:   "method not allowed",
			method: http.MethodPut,
			body:   `{"content": {}}`,
			status: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			require.Equal(t, tt.status, w.Code, w.Body.String())
			resp := decodeError(t, w.Body)
			assert.Equal(t, tt.code, resp.Error.Code)
			if tt.param != "" {
				assert.Equal(t, tt.param, resp.Error.Param)
			}
		})
	}
}

func TestConvertHandler_RulesetNotLoaded(t *testing.T) {
	h, err := NewConvertHandler(ConvertOptions{Rules: nilSource{}})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(configJSON)))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, types.CodeRulesetUnavailable, decodeError(t, w.Body).Error.Code)
}

func TestNewConvertHandler_RequiresRules(t *testing.T) {
	_, err := NewConvertHandler(ConvertOptions{})
	assert.Error(t, err)
}
