package gridworld

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"gridworld/shared"
)

// Duration wraps time.Duration so layouts can spell intervals as "100ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// CellSpec overrides a single cell in a layout. Capacity 0 turns the cell
// into a wall; Occupants pre-places that many passive objects.
type CellSpec struct {
	X         int `yaml:"x"`
	Y         int `yaml:"y"`
	Capacity  int `yaml:"capacity"`
	Occupants int `yaml:"occupants"`
}

// AgentSpec describes one agent to start in a layout.
type AgentSpec struct {
	Name     string `yaml:"name"`
	X        int    `yaml:"x"`
	Y        int    `yaml:"y"`
	Explorer bool   `yaml:"explorer"`
}

// Layout is a world configuration file: dimensions, tick limits and pacing,
// per-cell capacity overrides, and starting agents.
type Layout struct {
	Width        int         `yaml:"width"`
	Height       int         `yaml:"height"`
	MaxTicks     int         `yaml:"max_ticks"`
	TickInterval Duration    `yaml:"tick_interval"`
	Cells        []CellSpec  `yaml:"cells"`
	Agents       []AgentSpec `yaml:"agents"`
}

// LoadLayout reads and validates a YAML layout file.
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout: %w", err)
	}
	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("parsing layout %s: %w", path, err)
	}
	if layout.Width <= 0 || layout.Height <= 0 {
		return nil, fmt.Errorf("layout %s: dimensions must be positive", path)
	}
	for _, c := range layout.Cells {
		if c.X < 0 || c.X >= layout.Width || c.Y < 0 || c.Y >= layout.Height {
			return nil, fmt.Errorf("layout %s: cell (%d,%d) out of bounds", path, c.X, c.Y)
		}
	}
	for _, a := range layout.Agents {
		if a.X < 0 || a.X >= layout.Width || a.Y < 0 || a.Y >= layout.Height {
			return nil, fmt.Errorf("layout %s: agent %s start (%d,%d) out of bounds", path, a.Name, a.X, a.Y)
		}
	}
	logrus.Infof("loaded layout %s (%dx%d, %d agents)", path, layout.Width, layout.Height, len(layout.Agents))
	return &layout, nil
}

// Options translates the layout into world construction options.
func (l *Layout) Options() []Option {
	capacities := make(map[shared.Position]int)
	occupants := make(map[shared.Position]int)
	for _, c := range l.Cells {
		capacities[shared.Position{X: c.X, Y: c.Y}] = c.Capacity
		if c.Occupants > 0 {
			occupants[shared.Position{X: c.X, Y: c.Y}] = c.Occupants
		}
	}
	opts := []Option{
		WithMaxTicks(l.MaxTicks),
		WithTickInterval(time.Duration(l.TickInterval)),
	}
	if len(capacities) > 0 {
		opts = append(opts, WithCapacities(capacities))
	}
	if len(occupants) > 0 {
		opts = append(opts, WithInitialOccupants(occupants))
	}
	return opts
}

// apiConfig is the optional credentials file for the Gemini policy.
type apiConfig struct {
	GeminiAPIKey string `yaml:"gemini_api_key"`
}

// ResolveGeminiKey looks the Gemini API key up in the given config file, then
// in the GEMINI_API_KEY environment variable. An empty result means no key is
// available and the caller should fall back to a local policy.
func ResolveGeminiKey(path string) string {
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			var cfg apiConfig
			if err := yaml.Unmarshal(data, &cfg); err == nil && cfg.GeminiAPIKey != "" {
				return cfg.GeminiAPIKey
			}
		} else if !os.IsNotExist(err) {
			logrus.Warnf("reading api config %s: %v", path, err)
		}
	}
	return os.Getenv("GEMINI_API_KEY")
}
