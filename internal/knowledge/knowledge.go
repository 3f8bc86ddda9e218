// Package knowledge loads the methodology documents the practitioner agents
// build their system prompts from.
package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Base holds the loaded reference material.
type Base struct {
	Peczely     string
	Jensen      string
	Morse       string
	JensenChart string // pretty-printed JSON of the zone chart
}

// Load reads the methodology documents from dir. All three methodology files
// are required; the Jensen chart is optional and degrades to an empty string.
func Load(dir string) (*Base, error) {
	b := &Base{}

	var err error
	if b.Peczely, err = readDoc(dir, "peczely_methodology.md"); err != nil {
		return nil, err
	}
	if b.Jensen, err = readDoc(dir, "jensen_methodology.md"); err != nil {
		return nil, err
	}
	if b.Morse, err = readDoc(dir, "morse_methodology.md"); err != nil {
		return nil, err
	}

	chartPath := filepath.Join(dir, "jensen_iris_chart.json")
	if data, err := os.ReadFile(chartPath); err == nil {
		var chart any
		if err := json.Unmarshal(data, &chart); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", chartPath, err)
		}
		pretty, _ := json.MarshalIndent(chart, "", "  ")
		b.JensenChart = string(pretty)
	}
	return b, nil
}

func readDoc(dir, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("loading knowledge document %s: %w", name, err)
	}
	return string(data), nil
}
