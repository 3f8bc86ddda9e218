package models

import (
	"encoding/json"
	"strings"
)

// TextValue is the tagged union used at the boundary between the narrative
// collaborator and any renderer. Practitioner-authored content arrives either
// as a plain string or as a structured note; normalization to display text
// happens here, once, instead of ad hoc at every use site.
type TextValue struct {
	Text        string `json:"text,omitempty"`
	Condition   string `json:"condition,omitempty"`
	Description string `json:"description,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// PlainText builds a TextValue from a bare string.
func PlainText(s string) TextValue {
	return TextValue{Text: s}
}

// IsZero reports whether the value carries no content at all.
func (t TextValue) IsZero() bool {
	return t.Text == "" && t.Condition == "" && t.Description == "" && t.Notes == ""
}

// Display converts any variant to a single display string.
func (t TextValue) Display() string {
	if t.Text != "" {
		return t.Text
	}
	parts := make([]string, 0, 3)
	if t.Condition != "" {
		parts = append(parts, t.Condition)
	}
	if t.Description != "" {
		parts = append(parts, t.Description)
	}
	if t.Notes != "" {
		parts = append(parts, t.Notes)
	}
	return strings.Join(parts, " - ")
}

// UnmarshalJSON accepts either a JSON string or a structured note object.
func (t *TextValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = TextValue{Text: s}
		return nil
	}

	type structured struct {
		Text        string `json:"text"`
		Condition   string `json:"condition"`
		Description string `json:"description"`
		Notes       string `json:"notes"`
	}
	var v structured
	if err := json.Unmarshal(data, &v); err != nil {
		// Non-string, non-object content (numbers, arrays) is rendered
		// verbatim rather than rejected.
		*t = TextValue{Text: strings.Trim(string(data), `"`)}
		return nil
	}
	*t = TextValue{Text: v.Text, Condition: v.Condition, Description: v.Description, Notes: v.Notes}
	return nil
}

// MarshalJSON emits plain strings for plain values and objects otherwise.
func (t TextValue) MarshalJSON() ([]byte, error) {
	if t.Condition == "" && t.Description == "" && t.Notes == "" {
		return json.Marshal(t.Text)
	}
	type structured TextValue
	return json.Marshal(structured(t))
}
