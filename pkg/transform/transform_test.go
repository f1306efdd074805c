package transform

import (
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"regroup-hq/regroup/pkg/classify"
)

func proxy(name string) map[string]any {
	return map[string]any{
		"name":   name,
		"type":   "trojan",
		"server": "edge.example.com",
		"port":   443,
	}
}

func proxies(names ...string) []any {
	out := make([]any, len(names))
	for i, n := range names {
		out[i] = proxy(n)
	}
	return out
}

func urlTestGroup(name string, members ...string) map[string]any {
	return map[string]any{
		"name":      name,
		"type":      GroupTypeURLTest,
		"proxies":   stringsToAny(members),
		"url":       DefaultHealthCheckURL,
		"interval":  DefaultInterval,
		"tolerance": DefaultTolerance,
	}
}

func selectGroup(name string, members ...string) map[string]any {
	return map[string]any{
		"name":    name,
		"type":    GroupTypeSelect,
		"proxies": stringsToAny(members),
	}
}

// asciiTransformer classifies "HK"/"US" markers with a "rate:" marker.
func asciiTransformer(t *testing.T) *Transformer {
	t.Helper()
	c, err := classify.New(classify.Options{
		Regions: []classify.Region{
			{Label: "06美", Markers: []string{"US"}},
			{Label: "01港", Markers: []string{"HK"}},
		},
		RatePattern: `rate:([\d.]+)`,
	})
	if err != nil {
		t.Fatalf("classify.New() error = %v", err)
	}
	return New(Options{Classifier: c})
}

func TestConvert_MissingKeysPassThrough(t *testing.T) {
	full := func() Document {
		return Document{
			KeyProxies:     proxies("香港01[倍率:1]"),
			KeyProxyGroups: []any{selectGroup("Proxy", "DIRECT")},
			KeyRules:       []any{"MATCH,Proxy"},
			"port":         7890,
		}
	}

	for _, missing := range []string{KeyProxies, KeyProxyGroups, KeyRules} {
		t.Run(missing, func(t *testing.T) {
			doc := full()
			delete(doc, missing)
			want := full()
			delete(want, missing)

			out, summary, err := New(Options{}).ConvertWithSummary(doc, []string{"OpenAI"}, []string{"DOMAIN,openai.com,OpenAI"})
			if err != nil {
				t.Fatalf("ConvertWithSummary() error = %v", err)
			}
			if !summary.PassThrough {
				t.Error("summary.PassThrough = false, want true")
			}
			if diff := cmp.Diff(want, out); diff != "" {
				t.Errorf("document changed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConvert_Example(t *testing.T) {
	doc := Document{
		KeyProxies:     proxies("US-2[rate:0.9]", "HK-1[rate:0.5]", "US-1[rate:0.9]"),
		KeyProxyGroups: []any{},
		KeyRules:       []any{"MATCH,DIRECT"},
	}

	out, err := asciiTransformer(t).Convert(doc, []string{"Test"}, []string{"DOMAIN,example.com,Test"})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	want := Document{
		KeyProxies: proxies("HK-1[rate:0.5]", "US-1[rate:0.9]", "US-2[rate:0.9]"),
		KeyProxyGroups: []any{
			urlTestGroup("01港", "HK-1[rate:0.5]"),
			urlTestGroup("06美", "US-1[rate:0.9]", "US-2[rate:0.9]"),
			selectGroup("Test", "01港", "06美"),
		},
		KeyRules: []any{"DOMAIN,example.com,Test", "MATCH,DIRECT"},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("Convert() mismatch (-want +got):\n%s", diff)
	}
}

func TestConvert_ExtendsExistingGroups(t *testing.T) {
	original := map[string]any{
		"name":     "Proxy",
		"type":     "select",
		"proxies":  []any{"DIRECT", "REJECT"},
		"disabled": false,
	}
	doc := Document{
		KeyProxies: proxies(
			"美国01[倍率:1]",
			"香港01[倍率:0.5]",
			"日本01[倍率:2]",
			"香港02[倍率:1]",
		),
		KeyProxyGroups: []any{original, selectGroup("Fallback")},
		KeyRules:       []any{"GEOIP,CN,DIRECT", "MATCH,Proxy"},
		"mixed-port":   7890,
		"dns":          map[string]any{"enable": true},
	}

	out, err := Convert(doc, []string{"OpenAI", "Stream"}, []string{"DOMAIN-SUFFIX,openai.com,OpenAI"})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	want := Document{
		KeyProxies: proxies(
			"香港02[倍率:1]",
			"香港01[倍率:0.5]",
			"日本01[倍率:2]",
			"美国01[倍率:1]",
		),
		KeyProxyGroups: []any{
			map[string]any{
				"name":     "Proxy",
				"type":     "select",
				"proxies":  []any{"DIRECT", "REJECT", "01港", "03日", "06美"},
				"disabled": false,
			},
			selectGroup("Fallback", "01港", "03日", "06美"),
			urlTestGroup("01港", "香港02[倍率:1]", "香港01[倍率:0.5]"),
			urlTestGroup("03日", "日本01[倍率:2]"),
			urlTestGroup("06美", "美国01[倍率:1]"),
			selectGroup("OpenAI", "Proxy", "Fallback", "01港", "03日", "06美"),
			selectGroup("Stream", "Proxy", "Fallback", "01港", "03日", "06美"),
		},
		KeyRules:     []any{"DOMAIN-SUFFIX,openai.com,OpenAI", "GEOIP,CN,DIRECT", "MATCH,Proxy"},
		"mixed-port": 7890,
		"dns":        map[string]any{"enable": true},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("Convert() mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]any{"DIRECT", "REJECT"}, original["proxies"]); diff != "" {
		t.Errorf("input group was mutated (-want +got):\n%s", diff)
	}
}

func TestConvert_SelectorGroupsAreIndependent(t *testing.T) {
	doc := Document{
		KeyProxies:     proxies("香港01[倍率:1]"),
		KeyProxyGroups: []any{},
		KeyRules:       []any{},
	}
	out, err := Convert(doc, []string{"A", "B"}, nil)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	groups := out[KeyProxyGroups].([]any)
	a := groups[1].(map[string]any)["proxies"].([]any)
	b := groups[2].(map[string]any)["proxies"].([]any)
	a[0] = "changed"
	if b[0] != "01港" {
		t.Errorf("selector groups share their proxies list")
	}
}

func TestConvert_OrderingProperties(t *testing.T) {
	names := []string{
		"法国[倍率:1]", "香港A[倍率:0.2]", "台湾[倍率:3]", "美国B[倍率:1]",
		"未知[倍率:1]", "美国A[倍率:1]", "香港B[倍率:2]", "新加坡[倍率:1.5]",
		"日本[倍率:0.1]", "韩国[倍率:1]", "德国[倍率:1]", "香港C[倍率:2]",
		"美国C[倍率:5]", "未知[倍率:1]",
	}
	doc := Document{
		KeyProxies:     proxies(names...),
		KeyProxyGroups: []any{selectGroup("Proxy", "DIRECT")},
		KeyRules:       []any{"MATCH,Proxy"},
	}

	out, summary, err := New(Options{}).ConvertWithSummary(doc, []string{"OpenAI"}, []string{"r1", "r2"})
	if err != nil {
		t.Fatalf("ConvertWithSummary() error = %v", err)
	}

	c := classify.Default()
	var got []string
	var prev classify.ClassifiedName
	for i, p := range out[KeyProxies].([]any) {
		name := p.(map[string]any)["name"].(string)
		got = append(got, name)
		cur, err := c.Classify(name)
		if err != nil {
			t.Fatalf("Classify(%q) error = %v", name, err)
		}
		if i > 0 {
			if cur.Region < prev.Region {
				t.Errorf("region order broken at %d: %q after %q", i, cur.Region, prev.Region)
			}
			if cur.Region == prev.Region && cur.Rate > prev.Rate {
				t.Errorf("rate order broken at %d: %v after %v", i, cur.Rate, prev.Rate)
			}
		}
		prev = cur
	}

	sortedIn := slices.Clone(names)
	slices.Sort(sortedIn)
	sortedOut := slices.Clone(got)
	slices.Sort(sortedOut)
	if diff := cmp.Diff(sortedIn, sortedOut); diff != "" {
		t.Errorf("output proxies are not a permutation of the input (-want +got):\n%s", diff)
	}

	wantRegions := []RegionCount{
		{"01港", 3}, {"02台", 1}, {"03日", 1}, {"04韩", 1}, {"05新", 1},
		{"06美", 3}, {"07德", 1}, {"08法", 1}, {"09其他", 2},
	}
	if diff := cmp.Diff(wantRegions, summary.Regions); diff != "" {
		t.Errorf("summary regions mismatch (-want +got):\n%s", diff)
	}

	groups := out[KeyProxyGroups].([]any)
	if len(groups) != 1+len(wantRegions)+1 {
		t.Fatalf("len(groups) = %d, want %d", len(groups), 1+len(wantRegions)+1)
	}
	for i, rc := range wantRegions {
		g := groups[1+i].(map[string]any)
		if g["name"] != rc.Label || g["type"] != GroupTypeURLTest {
			t.Errorf("group %d = %v/%v, want %s/url-test", 1+i, g["name"], g["type"], rc.Label)
		}
		if n := len(g["proxies"].([]any)); n != rc.Count {
			t.Errorf("group %s has %d proxies, want %d", rc.Label, n, rc.Count)
		}
	}

	rules := out[KeyRules].([]any)
	if diff := cmp.Diff([]any{"r1", "r2", "MATCH,Proxy"}, rules); diff != "" {
		t.Errorf("rules mismatch (-want +got):\n%s", diff)
	}

	if summary.Proxies != len(names) || summary.ExistingGroups != 1 || summary.SelectorGroups != 1 || summary.RulesAdded != 2 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestConvert_StableForEqualKeys(t *testing.T) {
	first := proxy("香港01[倍率:1]")
	first["server"] = "a.example.com"
	second := proxy("香港01[倍率:1]")
	second["server"] = "b.example.com"

	doc := Document{
		KeyProxies:     []any{first, second},
		KeyProxyGroups: []any{},
		KeyRules:       []any{},
	}
	out, err := Convert(doc, nil, nil)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	got := out[KeyProxies].([]any)
	if got[0].(map[string]any)["server"] != "a.example.com" {
		t.Error("stable sort did not keep original relative order")
	}
}

func TestConvert_RateErrorLeavesDocumentUntouched(t *testing.T) {
	build := func() Document {
		return Document{
			KeyProxies:     proxies("香港01[倍率:1]", "美国01"),
			KeyProxyGroups: []any{selectGroup("Proxy", "DIRECT")},
			KeyRules:       []any{"MATCH,Proxy"},
		}
	}
	doc := build()

	out, err := Convert(doc, []string{"OpenAI"}, []string{"DOMAIN,openai.com,OpenAI"})
	if err == nil {
		t.Fatal("Convert() error = nil, want error")
	}
	if out != nil {
		t.Errorf("Convert() returned a document on error")
	}

	var proxyErr *ProxyError
	if !errors.As(err, &proxyErr) {
		t.Fatalf("error %v is not *ProxyError", err)
	}
	if proxyErr.Index != 1 || proxyErr.Name != "美国01" {
		t.Errorf("ProxyError = %+v, want index 1 name 美国01", proxyErr)
	}
	if proxyErr.Field() != "proxies[1].name" {
		t.Errorf("Field() = %q", proxyErr.Field())
	}
	var missing *classify.RateMarkerMissingError
	if !errors.As(err, &missing) {
		t.Errorf("error %v does not wrap *RateMarkerMissingError", err)
	}

	if diff := cmp.Diff(build(), doc); diff != "" {
		t.Errorf("document modified on error (-want +got):\n%s", diff)
	}
}

func TestConvert_ShapeErrors(t *testing.T) {
	tests := []struct {
		name  string
		doc   Document
		field string
	}{
		{
			name:  "proxies not a list",
			doc:   Document{KeyProxies: "x", KeyProxyGroups: []any{}, KeyRules: []any{}},
			field: "proxies",
		},
		{
			name:  "proxy not a mapping",
			doc:   Document{KeyProxies: []any{"x"}, KeyProxyGroups: []any{}, KeyRules: []any{}},
			field: "proxies[0]",
		},
		{
			name:  "proxy name not a string",
			doc:   Document{KeyProxies: []any{map[string]any{"name": 12}}, KeyProxyGroups: []any{}, KeyRules: []any{}},
			field: "proxies[0].name",
		},
		{
			name:  "group not a mapping",
			doc:   Document{KeyProxies: []any{}, KeyProxyGroups: []any{1}, KeyRules: []any{}},
			field: "proxy-groups[0]",
		},
		{
			name:  "group without name",
			doc:   Document{KeyProxies: []any{}, KeyProxyGroups: []any{map[string]any{"proxies": []any{}}}, KeyRules: []any{}},
			field: "proxy-groups[0].name",
		},
		{
			name:  "group proxies not a list",
			doc:   Document{KeyProxies: []any{}, KeyProxyGroups: []any{map[string]any{"name": "g", "proxies": "DIRECT"}}, KeyRules: []any{}},
			field: "proxy-groups[0].proxies",
		},
		{
			name:  "rules not a list",
			doc:   Document{KeyProxies: []any{}, KeyProxyGroups: []any{}, KeyRules: map[string]any{}},
			field: "rules",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Convert(tt.doc, nil, nil)
			var shapeErr *ShapeError
			if !errors.As(err, &shapeErr) {
				t.Fatalf("error = %v, want *ShapeError", err)
			}
			if shapeErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", shapeErr.Field, tt.field)
			}
		})
	}
}

func TestConvert_NullSequencesAndGroupWithoutProxies(t *testing.T) {
	doc := Document{
		KeyProxies:     proxies("日本01[倍率:1]"),
		KeyProxyGroups: []any{map[string]any{"name": "Auto", "type": "select", "use": []any{"provider"}}},
		KeyRules:       nil,
	}
	out, err := Convert(doc, nil, []string{"MATCH,Auto"})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	want := Document{
		KeyProxies: proxies("日本01[倍率:1]"),
		KeyProxyGroups: []any{
			map[string]any{"name": "Auto", "type": "select", "use": []any{"provider"}, "proxies": []any{"03日"}},
			urlTestGroup("03日", "日本01[倍率:1]"),
		},
		KeyRules: []any{"MATCH,Auto"},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("Convert() mismatch (-want +got):\n%s", diff)
	}
}

func TestConvert_SecondPassCompounds(t *testing.T) {
	doc := Document{
		KeyProxies:     proxies("香港01[倍率:1]", "美国01[倍率:1]"),
		KeyProxyGroups: []any{selectGroup("Proxy", "DIRECT")},
		KeyRules:       []any{"MATCH,Proxy"},
	}

	once, err := Convert(doc, []string{"OpenAI"}, []string{"DOMAIN,openai.com,OpenAI"})
	if err != nil {
		t.Fatalf("first Convert() error = %v", err)
	}
	onceGroups := len(once[KeyProxyGroups].([]any))

	twice, err := Convert(once, []string{"OpenAI"}, []string{"DOMAIN,openai.com,OpenAI"})
	if err != nil {
		t.Fatalf("second Convert() error = %v", err)
	}
	groups := twice[KeyProxyGroups].([]any)

	if len(groups) != onceGroups+2+1 {
		t.Errorf("len(groups) after second pass = %d, want %d", len(groups), onceGroups+3)
	}

	members := groups[0].(map[string]any)["proxies"].([]any)
	if diff := cmp.Diff([]any{"DIRECT", "01港", "06美", "01港", "06美"}, members); diff != "" {
		t.Errorf("region labels should be appended again (-want +got):\n%s", diff)
	}

	var openAI int
	for _, g := range groups {
		if g.(map[string]any)["name"] == "OpenAI" {
			openAI++
		}
	}
	if openAI != 2 {
		t.Errorf("found %d OpenAI groups after second pass, want 2", openAI)
	}

	rules := twice[KeyRules].([]any)
	if diff := cmp.Diff([]any{"DOMAIN,openai.com,OpenAI", "DOMAIN,openai.com,OpenAI", "MATCH,Proxy"}, rules); diff != "" {
		t.Errorf("rules mismatch (-want +got):\n%s", diff)
	}
}

func TestConvert_YAMLDocument(t *testing.T) {
	const src = `
port: 7890
proxies:
  - {name: "美国01[倍率:1]", type: ss, server: us.example.com, port: 443}
  - {name: "香港01[倍率:1]", type: ss, server: hk.example.com, port: 443}
proxy-groups:
  - name: Proxy
    type: select
    proxies: [DIRECT]
rules:
  - MATCH,Proxy
`
	var doc Document
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}

	out, err := Convert(doc, []string{"OpenAI"}, nil)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	first := out[KeyProxies].([]any)[0].(Document)
	if first["server"] != "hk.example.com" {
		t.Errorf("first proxy server = %v, want hk.example.com", first["server"])
	}
	if out["port"] != 7890 {
		t.Errorf("port = %v, want 7890", out["port"])
	}

	if _, err := yaml.Marshal(out); err != nil {
		t.Errorf("yaml.Marshal() error = %v", err)
	}
}

func TestConvert_Concurrent(t *testing.T) {
	tr := New(Options{})
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc := Document{
				KeyProxies:     proxies("美国01[倍率:1]", "香港01[倍率:1]", "日本01[倍率:1]"),
				KeyProxyGroups: []any{selectGroup("Proxy", "DIRECT")},
				KeyRules:       []any{"MATCH,Proxy"},
			}
			out, err := tr.Convert(doc, []string{"OpenAI"}, []string{"DOMAIN,openai.com,OpenAI"})
			if err != nil {
				errs <- err
				return
			}
			if n := len(out[KeyProxyGroups].([]any)); n != 5 {
				errs <- errors.New("unexpected group count")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestBucket(t *testing.T) {
	names := []classify.ClassifiedName{
		{Region: "01港", Rate: 2, FullName: "a"},
		{Region: "01港", Rate: 1, FullName: "b"},
		{Region: "06美", Rate: 1, FullName: "c"},
	}
	buckets := Bucket(names)
	if len(buckets) != 2 {
		t.Fatalf("len(buckets) = %d, want 2", len(buckets))
	}
	if diff := cmp.Diff([]string{"a", "b"}, buckets[0].FullNames()); diff != "" {
		t.Errorf("bucket 0 mismatch (-want +got):\n%s", diff)
	}
	if buckets[1].Label != "06美" {
		t.Errorf("bucket 1 label = %q", buckets[1].Label)
	}
	if Bucket(nil) != nil {
		t.Error("Bucket(nil) should be nil")
	}
}
