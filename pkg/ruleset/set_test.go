package ruleset

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseList_Embedded(t *testing.T) {
	data, err := EmbeddedSource{}.Load(context.Background())
	require.NoError(t, err)

	rules, err := ParseList(data, "OpenAI")
	require.NoError(t, err)
	require.NotEmpty(t, rules)

	for _, r := range rules {
		assert.Equal(t, "OpenAI", r.Target, r.String())
	}
	assert.Contains(t, lines(rules), "DOMAIN-SUFFIX,openai.com,OpenAI")
	assert.Contains(t, lines(rules), "IP-CIDR,24.199.123.28/32,OpenAI,no-resolve")
}

func TestParseList_SkipsCommentsAndBlanks(t *testing.T) {
	data := []byte(strings.Join([]string{
		"# header",
		"",
		"// note",
		"   ",
		"DOMAIN,a.example",
		"DOMAIN-SUFFIX,b.example",
	}, "\n"))

	rules, err := ParseList(data, "AI")
	require.NoError(t, err)
	assert.Equal(t, []string{"DOMAIN,a.example,AI", "DOMAIN-SUFFIX,b.example,AI"}, lines(rules))
}

func TestParseList_ReportsLineNumbers(t *testing.T) {
	data := []byte("DOMAIN,ok.example\n# comment\nBOGUS,value\nIP-CIDR,nope\n")

	_, err := ParseList(data, "AI")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), "line 4")

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 3, pe.Line)
}

func TestNewSet(t *testing.T) {
	set, err := NewSet("AI", []string{"AI"}, []string{"DOMAIN,a.example,AI", "MATCH,DIRECT"})
	require.NoError(t, err)

	assert.Equal(t, []string{"DOMAIN,a.example,AI", "MATCH,DIRECT"}, set.Lines())

	groups := set.GroupNames()
	groups[0] = "changed"
	assert.Equal(t, []string{"AI"}, set.Groups)

	_, err = NewSet("AI", nil, []string{"DOMAIN,a.example"})
	assert.Error(t, err)
}

func TestSet_Nil(t *testing.T) {
	var set *Set
	assert.Nil(t, set.Lines())
	assert.Nil(t, set.GroupNames())
}

func lines(rules []Rule) []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.String()
	}
	return out
}
