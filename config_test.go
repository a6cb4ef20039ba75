package gridworld

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridworld/shared"
)

func writeLayout(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadLayout(t *testing.T) {
	path := writeLayout(t, `
width: 10
height: 8
max_ticks: 700
tick_interval: 100ms
cells:
  - {x: 3, y: 4, capacity: 0}
  - {x: 5, y: 5, capacity: 2, occupants: 1}
agents:
  - {name: agent1, x: 0, y: 0, explorer: true}
  - {name: walker, x: 9, y: 7}
`)

	layout, err := LoadLayout(path)
	require.NoError(t, err)
	assert.Equal(t, 10, layout.Width)
	assert.Equal(t, 8, layout.Height)
	assert.Equal(t, 700, layout.MaxTicks)
	assert.Equal(t, 100*time.Millisecond, time.Duration(layout.TickInterval))
	require.Len(t, layout.Cells, 2)
	assert.Equal(t, CellSpec{X: 3, Y: 4}, layout.Cells[0])
	assert.Equal(t, CellSpec{X: 5, Y: 5, Capacity: 2, Occupants: 1}, layout.Cells[1])
	require.Len(t, layout.Agents, 2)
	assert.True(t, layout.Agents[0].Explorer)
	assert.False(t, layout.Agents[1].Explorer)
}

func TestLoadLayoutErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing dimensions", "max_ticks: 10\n"},
		{"negative width", "width: -1\nheight: 5\n"},
		{"cell out of bounds", "width: 3\nheight: 3\ncells:\n  - {x: 3, y: 0, capacity: 0}\n"},
		{"agent out of bounds", "width: 3\nheight: 3\nagents:\n  - {name: a, x: 0, y: 3}\n"},
		{"bad duration", "width: 3\nheight: 3\ntick_interval: fast\n"},
		{"not yaml", "width: [\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadLayout(writeLayout(t, tc.content))
			assert.Error(t, err)
		})
	}

	_, err := LoadLayout(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLayoutOptions(t *testing.T) {
	path := writeLayout(t, `
width: 4
height: 4
max_ticks: 5
cells:
  - {x: 1, y: 1, capacity: 0}
  - {x: 2, y: 2, capacity: 3, occupants: 2}
`)
	layout, err := LoadLayout(path)
	require.NoError(t, err)

	w, err := NewWorld(layout.Height, layout.Width, layout.Options()...)
	require.NoError(t, err)

	width, height := w.Boundary()
	assert.Equal(t, 4, width)
	assert.Equal(t, 4, height)
	assert.Equal(t, 5, w.MaxTicks())
	assert.Equal(t, 0, w.Location(1, 1).Capacity())
	assert.Equal(t, 3, w.Location(2, 2).Capacity())
	assert.Len(t, w.Location(2, 2).Occupants(), 2)
}

func TestResolveGeminiKey(t *testing.T) {
	t.Run("from file", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "env-key")
		path := writeLayout(t, "gemini_api_key: file-key\n")
		assert.Equal(t, "file-key", ResolveGeminiKey(path))
	})

	t.Run("env fallback", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "env-key")
		assert.Equal(t, "env-key", ResolveGeminiKey(""))
		assert.Equal(t, "env-key", ResolveGeminiKey(filepath.Join(t.TempDir(), "absent.yaml")))
	})

	t.Run("no key anywhere", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		assert.Empty(t, ResolveGeminiKey(""))
	})
}

func TestShippedLayoutsLoad(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("configs", "world*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	for _, path := range matches {
		layout, err := LoadLayout(path)
		require.NoError(t, err, path)

		w, err := NewWorld(layout.Height, layout.Width, layout.Options()...)
		require.NoError(t, err, path)
		for _, spec := range layout.Agents {
			cell := w.Location(spec.X, spec.Y)
			require.NotNil(t, cell, "%s: agent %s start", path, spec.Name)
			assert.False(t, cell.AtCapacity(), "%s: agent %s start is full", path, spec.Name)
		}
	}
}

func TestDirectionHelpers(t *testing.T) {
	origin := shared.Position{X: 2, Y: 2}
	assert.Equal(t, shared.Position{X: 2, Y: 1}, North.Offset(origin))
	assert.Equal(t, shared.Position{X: 3, Y: 2}, East.Offset(origin))
	assert.Equal(t, shared.Position{X: 2, Y: 3}, South.Offset(origin))
	assert.Equal(t, shared.Position{X: 1, Y: 2}, West.Offset(origin))
	assert.Equal(t, origin, Nowhere.Offset(origin))

	for _, d := range []Direction{North, East, South, West} {
		assert.Equal(t, d, DirectionTo(origin, d.Offset(origin)))
	}
	assert.Equal(t, Nowhere, DirectionTo(origin, origin))
	assert.Equal(t, Nowhere, DirectionTo(origin, shared.Position{X: 3, Y: 3}))
	assert.Equal(t, Nowhere, DirectionTo(origin, shared.Position{X: 5, Y: 2}))

	assert.False(t, Nowhere.Valid())
	assert.True(t, West.Valid())
	assert.Equal(t, "north", North.String())
	assert.Equal(t, "nowhere", Nowhere.String())
}

func TestActionDisplay(t *testing.T) {
	a := NewAgent("agent1")
	assert.Equal(t, "UP", NewAction(a, ActionMove, nil, North).Display())
	assert.Equal(t, "DW", NewAction(a, ActionMove, nil, South).Display())
	assert.Equal(t, "LT", NewAction(a, ActionMove, nil, West).Display())
	assert.Equal(t, "RT", NewAction(a, ActionMove, nil, East).Display())
	assert.Equal(t, "M?", NewAction(a, ActionMove, nil, Nowhere).Display())
	assert.Equal(t, "ST", NoAction(a).Display())
}
