package ruleset

import (
	"bufio"
	"bytes"
	"errors"
	"slices"
	"strings"
	"time"
)

// Set is a loaded rule set together with the selector groups it routes to.
type Set struct {
	// Name identifies the set in logs and metrics.
	Name string

	// Groups are the select groups added to every converted document.
	Groups []string

	// Rules are prepended to the document rules in this order.
	Rules []Rule

	// Source describes where the rules were loaded from.
	Source string

	// LoadedAt is when the set was built.
	LoadedAt time.Time
}

// Lines returns the rules in textual form.
func (s *Set) Lines() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.Rules))
	for i, r := range s.Rules {
		out[i] = r.String()
	}
	return out
}

// GroupNames returns a copy of the selector group names.
func (s *Set) GroupNames() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.Groups)
}

// NewSet builds a set from complete rule lines.
func NewSet(name string, groups, lines []string) (*Set, error) {
	rules := make([]Rule, 0, len(lines))
	var errs []error
	for i, line := range lines {
		r, err := Parse(line)
		if err != nil {
			errs = append(errs, withLine(err, i+1))
			continue
		}
		rules = append(rules, r)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &Set{
		Name:     name,
		Groups:   slices.Clone(groups),
		Rules:    rules,
		Source:   "inline",
		LoadedAt: time.Now(),
	}, nil
}

// ParseList parses a rule list. Blank lines and lines starting with '#' or
// "//" are skipped; rules without a target are routed to target.
func ParseList(data []byte, target string) ([]Rule, error) {
	var rules []Rule
	var errs []error

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		r, err := parseListLine(line, target)
		if err != nil {
			errs = append(errs, withLine(err, lineNo))
			continue
		}
		rules = append(rules, r)
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return rules, nil
}

func withLine(err error, line int) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		pe.Line = line
	}
	return err
}
