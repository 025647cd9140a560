package colors

import (
	"fmt"
	"os"
	"strings"

	"github.com/color-game/contest/models"
	"gopkg.in/yaml.v3"
)

type paletteFile struct {
	Colors []models.PaletteColor `yaml:"colors"`
}

// LoadPalette reads a reference palette from a YAML or JSON file. The file
// holds either a list of {name, hex} or an object with a "colors" list.
// An empty path yields an empty palette.
func LoadPalette(path string) ([]models.PaletteColor, error) {
	if path == "" {
		return nil, nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading palette file: %w", err)
	}
	return ParsePalette(buf)
}

// ParsePalette decodes palette data; YAML is a superset of JSON so both work
func ParsePalette(buf []byte) ([]models.PaletteColor, error) {
	var palette []models.PaletteColor
	if err := yaml.Unmarshal(buf, &palette); err != nil {
		var wrapped paletteFile
		if err := yaml.Unmarshal(buf, &wrapped); err != nil {
			return nil, fmt.Errorf("error parsing palette: %w", err)
		}
		palette = wrapped.Colors
	}

	for i, item := range palette {
		if strings.TrimSpace(item.Name) == "" {
			return nil, fmt.Errorf("palette entry %d: name is required", i)
		}
		if _, _, _, err := ParseHex(item.Hex); err != nil {
			return nil, fmt.Errorf("palette entry %d: %w", i, err)
		}
	}
	return palette, nil
}
