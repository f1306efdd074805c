package ruleset

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// Type is a rule match type.
type Type string

// Supported rule types.
const (
	TypeDomain        Type = "DOMAIN"
	TypeDomainSuffix  Type = "DOMAIN-SUFFIX"
	TypeDomainKeyword Type = "DOMAIN-KEYWORD"
	TypeDomainRegex   Type = "DOMAIN-REGEX"
	TypeIPCIDR        Type = "IP-CIDR"
	TypeIPCIDR6       Type = "IP-CIDR6"
	TypeSrcIPCIDR     Type = "SRC-IP-CIDR"
	TypeGeoIP         Type = "GEOIP"
	TypeDstPort       Type = "DST-PORT"
	TypeSrcPort       Type = "SRC-PORT"
	TypeProcessName   Type = "PROCESS-NAME"
	TypeMatch         Type = "MATCH"
)

var knownTypes = map[Type]struct{}{
	TypeDomain:        {},
	TypeDomainSuffix:  {},
	TypeDomainKeyword: {},
	TypeDomainRegex:   {},
	TypeIPCIDR:        {},
	TypeIPCIDR6:       {},
	TypeSrcIPCIDR:     {},
	TypeGeoIP:         {},
	TypeDstPort:       {},
	TypeSrcPort:       {},
	TypeProcessName:   {},
	TypeMatch:         {},
}

// Options that may trail the target of a rule.
const (
	OptionNoResolve = "no-resolve"
	OptionSrc       = "src"
)

func isOption(s string) bool {
	return s == OptionNoResolve || s == OptionSrc
}

// Rule is a single routing directive: TYPE,VALUE,TARGET[,OPTION...].
type Rule struct {
	Type    Type
	Value   string
	Target  string
	Options []string
}

// String renders the rule in its textual form.
func (r Rule) String() string {
	var sb strings.Builder
	sb.WriteString(string(r.Type))
	if r.Type != TypeMatch {
		sb.WriteByte(',')
		sb.WriteString(r.Value)
	}
	sb.WriteByte(',')
	sb.WriteString(r.Target)
	for _, o := range r.Options {
		sb.WriteByte(',')
		sb.WriteString(o)
	}
	return sb.String()
}

// ParseError describes a rule line that could not be parsed.
type ParseError struct {
	Line    int
	Text    string
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %q", e.Line, e.Message, e.Text)
	}
	return fmt.Sprintf("%s: %q", e.Message, e.Text)
}

// Parse parses a complete rule line such as "DOMAIN-SUFFIX,openai.com,OpenAI"
// or "MATCH,DIRECT".
func Parse(line string) (Rule, error) {
	fields := splitFields(line)
	if len(fields) < 2 {
		return Rule{}, &ParseError{Text: line, Message: "too few fields"}
	}

	typ := Type(strings.ToUpper(fields[0]))
	if typ == TypeMatch {
		r := Rule{Type: TypeMatch, Target: fields[1], Options: fields[2:]}
		return r, r.validate(line)
	}
	if len(fields) < 3 {
		return Rule{}, &ParseError{Text: line, Message: "missing target"}
	}

	r := Rule{Type: typ, Value: fields[1], Target: fields[2], Options: fields[3:]}
	return r, r.validate(line)
}

// parseListLine parses a line of a rule list. List lines normally omit the
// target ("IP-CIDR,1.2.3.4/32,no-resolve"); target is inserted after the
// value when the third field is absent or is an option.
func parseListLine(line, target string) (Rule, error) {
	fields := splitFields(line)
	if len(fields) == 0 {
		return Rule{}, &ParseError{Text: line, Message: "empty rule"}
	}

	typ := Type(strings.ToUpper(fields[0]))
	if typ == TypeMatch {
		if len(fields) == 1 {
			fields = append(fields, target)
		}
		return Parse(strings.Join(fields, ","))
	}
	if len(fields) < 2 {
		return Rule{}, &ParseError{Text: line, Message: "missing value"}
	}
	if len(fields) == 2 || isOption(fields[2]) {
		withTarget := make([]string, 0, len(fields)+1)
		withTarget = append(withTarget, fields[:2]...)
		withTarget = append(withTarget, target)
		withTarget = append(withTarget, fields[2:]...)
		fields = withTarget
	}
	return Parse(strings.Join(fields, ","))
}

func (r Rule) validate(line string) error {
	if _, ok := knownTypes[r.Type]; !ok {
		return &ParseError{Text: line, Message: fmt.Sprintf("unknown rule type %s", r.Type)}
	}
	if r.Type != TypeMatch && r.Value == "" {
		return &ParseError{Text: line, Message: "empty value"}
	}
	if r.Target == "" {
		return &ParseError{Text: line, Message: "empty target"}
	}
	for _, o := range r.Options {
		if !isOption(o) {
			return &ParseError{Text: line, Message: fmt.Sprintf("unknown option %s", o)}
		}
	}

	switch r.Type {
	case TypeIPCIDR, TypeIPCIDR6, TypeSrcIPCIDR:
		if _, err := netip.ParsePrefix(r.Value); err != nil {
			return &ParseError{Text: line, Message: fmt.Sprintf("invalid CIDR: %v", err)}
		}
	case TypeDstPort, TypeSrcPort:
		if p, err := strconv.Atoi(r.Value); err != nil || p < 1 || p > 65535 {
			return &ParseError{Text: line, Message: "invalid port"}
		}
	}
	return nil
}

func splitFields(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	parts := strings.Split(line, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
