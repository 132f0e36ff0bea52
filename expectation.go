package main

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ExpectKind enumerates the supported expectation predicates.
type ExpectKind string

const (
	ExpectContains   ExpectKind = "contains"
	ExpectEquals     ExpectKind = "equals"
	ExpectMatches    ExpectKind = "matches"
	ExpectHasButtons ExpectKind = "has_buttons"
	ExpectNotEmpty   ExpectKind = "not_empty"
)

// Expectation is a single predicate over one inbound bot message. It is pure
// data so that loaded scenarios compare and round-trip cleanly; the "matches"
// pattern is syntax-checked at load time and compiled again on evaluation.
type Expectation struct {
	Kind          ExpectKind
	Text          string   // contains / equals / matches value
	CaseSensitive bool     // contains only
	ButtonTexts   []string // has_buttons only
	MinButtons    int      // has_buttons only
}

// Describe returns a short identity for the predicate, used in report lines
// to name which expectation failed.
func (e Expectation) Describe() string {
	switch e.Kind {
	case ExpectContains, ExpectEquals, ExpectMatches:
		return fmt.Sprintf("%s %q", e.Kind, e.Text)
	default:
		return string(e.Kind)
	}
}

// validate checks the predicate is well-formed.
func (e Expectation) validate() error {
	switch e.Kind {
	case ExpectContains, ExpectEquals:
		if e.Text == "" {
			return fmt.Errorf("%s requires a non-empty value", e.Kind)
		}
	case ExpectMatches:
		if _, err := regexp.Compile(e.Text); err != nil {
			return fmt.Errorf("invalid pattern: %v", err)
		}
	case ExpectHasButtons, ExpectNotEmpty:
		// nothing to check
	default:
		return fmt.Errorf("unknown expectation kind %q", e.Kind)
	}
	return nil
}

// Evaluate checks the predicate against an inbound message. It returns an
// empty string when the predicate holds, otherwise a failure description.
func (e Expectation) Evaluate(in Inbound) string {
	switch e.Kind {
	case ExpectContains:
		msg, want := in.Text, e.Text
		if !e.CaseSensitive {
			msg, want = strings.ToLower(msg), strings.ToLower(want)
		}
		if strings.Contains(msg, want) {
			return ""
		}
		return fmt.Sprintf("text %q not found in response %q", e.Text, preview(in.Text, 80))

	case ExpectEquals:
		if in.Text == e.Text {
			return ""
		}
		return fmt.Sprintf("response %q differs from expected %q", preview(in.Text, 80), e.Text)

	case ExpectMatches:
		re, err := regexp.Compile(e.Text)
		if err != nil {
			return fmt.Sprintf("invalid pattern %q: %v", e.Text, err)
		}
		if re.MatchString(in.Text) {
			return ""
		}
		return fmt.Sprintf("response %q does not match pattern", preview(in.Text, 80))

	case ExpectHasButtons:
		if !in.HasButtons() {
			return "response has no inline buttons"
		}
		if e.MinButtons > 0 && len(in.Buttons) < e.MinButtons {
			return fmt.Sprintf("expected at least %d buttons, got %d", e.MinButtons, len(in.Buttons))
		}
		for _, want := range e.ButtonTexts {
			if !hasButtonText(in.Buttons, want) {
				return fmt.Sprintf("button %q not present", want)
			}
		}
		return ""

	case ExpectNotEmpty:
		if strings.TrimSpace(in.Text) == "" && !in.HasButtons() {
			return "response is empty"
		}
		return ""
	}
	return fmt.Sprintf("unknown expectation kind %q", e.Kind)
}

func hasButtonText(buttons []Button, text string) bool {
	for _, b := range buttons {
		if b.Text == text {
			return true
		}
	}
	return false
}

// hasButtonsDetail is the mapping form of the has_buttons predicate.
type hasButtonsDetail struct {
	ButtonTexts []string `yaml:"button_texts,omitempty"`
	MinButtons  int      `yaml:"min_buttons,omitempty"`
}

// UnmarshalYAML decodes the scenario-file form of an expectation, e.g.
//
//	- contains: "Welcome"
//	- equals: "pong"
//	- matches: "^\\d+ items$"
//	- has_buttons:
//	    min_buttons: 2
//	    button_texts: ["Help"]
//	- not_empty: true
func (e *Expectation) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]yaml.Node
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("expectation must be a mapping: %v", err)
	}

	if v, ok := raw[string(ExpectContains)]; ok {
		e.Kind = ExpectContains
		if err := v.Decode(&e.Text); err != nil {
			return fmt.Errorf("contains: %v", err)
		}
		if cs, ok := raw["case_sensitive"]; ok {
			if err := cs.Decode(&e.CaseSensitive); err != nil {
				return fmt.Errorf("case_sensitive: %v", err)
			}
		}
		return nil
	}

	if v, ok := raw[string(ExpectEquals)]; ok {
		e.Kind = ExpectEquals
		if err := v.Decode(&e.Text); err != nil {
			return fmt.Errorf("equals: %v", err)
		}
		return nil
	}

	if v, ok := raw[string(ExpectMatches)]; ok {
		e.Kind = ExpectMatches
		if err := v.Decode(&e.Text); err != nil {
			return fmt.Errorf("matches: %v", err)
		}
		return nil
	}

	if v, ok := raw[string(ExpectHasButtons)]; ok {
		e.Kind = ExpectHasButtons
		// Both the bare `has_buttons: true` form and the detailed mapping
		// form are accepted.
		if v.Kind == yaml.MappingNode {
			var detail hasButtonsDetail
			if err := v.Decode(&detail); err != nil {
				return fmt.Errorf("has_buttons: %v", err)
			}
			e.ButtonTexts = detail.ButtonTexts
			e.MinButtons = detail.MinButtons
		}
		return nil
	}

	if _, ok := raw[string(ExpectNotEmpty)]; ok {
		e.Kind = ExpectNotEmpty
		return nil
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	return fmt.Errorf("unknown expectation %v", keys)
}

// MarshalYAML emits the same shape UnmarshalYAML accepts, so loaded
// scenarios round-trip to a semantically equivalent document.
func (e Expectation) MarshalYAML() (interface{}, error) {
	switch e.Kind {
	case ExpectContains:
		m := map[string]interface{}{string(ExpectContains): e.Text}
		if e.CaseSensitive {
			m["case_sensitive"] = true
		}
		return m, nil
	case ExpectEquals, ExpectMatches:
		return map[string]interface{}{string(e.Kind): e.Text}, nil
	case ExpectHasButtons:
		if len(e.ButtonTexts) == 0 && e.MinButtons == 0 {
			return map[string]interface{}{string(ExpectHasButtons): true}, nil
		}
		return map[string]interface{}{
			string(ExpectHasButtons): hasButtonsDetail{
				ButtonTexts: e.ButtonTexts,
				MinButtons:  e.MinButtons,
			},
		}, nil
	case ExpectNotEmpty:
		return map[string]interface{}{string(ExpectNotEmpty): true}, nil
	}
	return nil, fmt.Errorf("unknown expectation kind %q", e.Kind)
}
