package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/san-kum/forcegraph/internal/compute"
	"github.com/san-kum/forcegraph/internal/engine"
	"github.com/san-kum/forcegraph/internal/graph"
)

func newTestModel() Model {
	eng := engine.New(
		engine.WithLogger(log.NewWithOptions(&bytes.Buffer{}, log.Options{Level: log.FatalLevel})),
		engine.WithBackend(compute.NewSerialBackend()),
	)
	nodes := []graph.Node{{VX: 1, Mass: 1}, {X: 300, Mass: 1}}
	return NewModel(eng, "test", nodes, []graph.Edge{{A: 0, B: 1}}, graph.DefaultParams())
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelTicks(t *testing.T) {
	m := newTestModel()
	for i := 0; i < 3; i++ {
		m = update(t, m, TickMsg(time.Now()))
	}
	if m.steps != 3 {
		t.Errorf("expected 3 steps, got %d", m.steps)
	}
	if len(m.energyHistory) != 3 || len(m.stepHistory) != 3 {
		t.Errorf("history lengths %d %d", len(m.energyHistory), len(m.stepHistory))
	}
	if m.eng.Nodes()[0].X == 0 {
		t.Error("engine state did not advance")
	}
}

func TestModelPause(t *testing.T) {
	m := update(t, newTestModel(), key(" "))
	if m.running {
		t.Fatal("space should pause")
	}
	m = update(t, m, TickMsg(time.Now()))
	if m.steps != 0 {
		t.Error("paused model stepped on tick")
	}
	m = update(t, m, key("s"))
	if m.steps != 1 {
		t.Error("single step while paused did not run")
	}
}

func TestModelTuneAndReset(t *testing.T) {
	m := newTestModel()
	m = update(t, m, key("tab"))
	m = update(t, m, key("up"))
	m = update(t, m, key("up"))
	if m.params.Damping != 1 {
		t.Errorf("damping should clamp at 1, got %v", m.params.Damping)
	}
	m = update(t, m, key("tab"))
	m = update(t, m, key("up"))
	if m.params.SpringConstant <= graph.DefaultParams().SpringConstant {
		t.Error("spring constant not increased")
	}

	m = update(t, m, TickMsg(time.Now()))
	m = update(t, m, key("r"))
	if m.params != graph.DefaultParams() || m.steps != 0 {
		t.Error("reset did not restore parameters and counters")
	}
	if m.eng.Nodes()[0].X != 0 {
		t.Error("reset did not restore nodes")
	}
}

func TestModelView(t *testing.T) {
	m := newTestModel()
	m = update(t, m, TickMsg(time.Now()))
	m = update(t, m, TickMsg(time.Now()))

	view := m.View()
	for _, want := range []string{"TEST", "serial-brute", "2 / 16384", "damping"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := sparkline(nil, 5); got != "─────" {
		t.Errorf("empty sparkline = %q", got)
	}
	if got := sparkline([]float64{1, 2, 3}, 10); !strings.Contains(got, "█") {
		t.Errorf("sparkline missing peak glyph: %q", got)
	}
}
