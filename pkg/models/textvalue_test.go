package models

import (
	"encoding/json"
	"testing"
)

func TestTextValueUnmarshalString(t *testing.T) {
	var v TextValue
	if err := json.Unmarshal([]byte(`"white ring at the rim"`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.Text != "white ring at the rim" {
		t.Errorf("unexpected text %q", v.Text)
	}
	if v.Display() != "white ring at the rim" {
		t.Errorf("unexpected display %q", v.Display())
	}
}

func TestTextValueUnmarshalObject(t *testing.T) {
	raw := `{"condition": "congestion", "description": "beaded rim", "notes": "upper quadrant"}`
	var v TextValue
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.Condition != "congestion" || v.Description != "beaded rim" || v.Notes != "upper quadrant" {
		t.Errorf("unexpected value %+v", v)
	}
	if got := v.Display(); got != "congestion - beaded rim - upper quadrant" {
		t.Errorf("unexpected display %q", got)
	}
}

func TestTextValueUnmarshalNonString(t *testing.T) {
	var v TextValue
	if err := json.Unmarshal([]byte(`42`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.Text != "42" {
		t.Errorf("unexpected text %q", v.Text)
	}
}

func TestTextValueMarshal(t *testing.T) {
	plain, err := json.Marshal(PlainText("simple"))
	if err != nil {
		t.Fatalf("marshal plain: %v", err)
	}
	if string(plain) != `"simple"` {
		t.Errorf("plain values must marshal as strings, got %s", plain)
	}

	structured, err := json.Marshal(TextValue{Condition: "lacuna", Description: "closed"})
	if err != nil {
		t.Fatalf("marshal structured: %v", err)
	}
	var round TextValue
	if err := json.Unmarshal(structured, &round); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if round.Condition != "lacuna" || round.Description != "closed" {
		t.Errorf("round trip lost fields: %+v", round)
	}
}

func TestTextValueIsZero(t *testing.T) {
	if !(TextValue{}).IsZero() {
		t.Error("empty value must be zero")
	}
	if PlainText("x").IsZero() {
		t.Error("non-empty value must not be zero")
	}
	if (TextValue{Notes: "n"}).IsZero() {
		t.Error("notes-only value must not be zero")
	}
}
