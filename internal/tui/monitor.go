// Package tui is a terminal monitor for a running layout: step timing,
// kinetic energy and live parameter tuning. It does not draw the graph.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/forcegraph/internal/engine"
	"github.com/san-kum/forcegraph/internal/graph"
	"github.com/san-kum/forcegraph/internal/metrics"
)

const (
	historyCapacity = 300
	frameBudget     = time.Second / 60
)

type TickMsg time.Time

type param struct {
	name string
	ptr  func(p *graph.Params) *float64
}

var tunables = []param{
	{"dt", func(p *graph.Params) *float64 { return &p.DeltaTime }},
	{"damping", func(p *graph.Params) *float64 { return &p.Damping }},
	{"spring_k", func(p *graph.Params) *float64 { return &p.SpringConstant }},
	{"rest_length", func(p *graph.Params) *float64 { return &p.RestLength }},
	{"repulsion", func(p *graph.Params) *float64 { return &p.RepulsionStrength }},
	{"radius", func(p *graph.Params) *float64 { return &p.RepulsionRadius }},
}

type Model struct {
	eng           *engine.Engine
	title         string
	params        graph.Params
	initialParams graph.Params
	initialNodes  []graph.Node
	initialEdges  []graph.Edge
	selected      int
	running       bool
	showHelp      bool

	steps, skipped, abandoned int
	lastErr                   error
	energyHistory             []float64
	stepHistory               []float64
}

// NewModel loads nodes and edges into eng and monitors it. The engine's
// owned graph is replaced on reset.
func NewModel(eng *engine.Engine, title string, nodes []graph.Node, edges []graph.Edge, p graph.Params) Model {
	eng.Replace(nodes, edges)
	return Model{
		eng:           eng,
		title:         title,
		params:        p,
		initialParams: p,
		initialNodes:  graph.CloneNodes(nodes),
		initialEdges:  graph.CloneEdges(edges),
		running:       true,
		energyHistory: make([]float64, 0, historyCapacity),
		stepHistory:   make([]float64, 0, historyCapacity),
	}
}

func tick() tea.Cmd {
	return tea.Tick(frameBudget, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "s":
			if !m.running {
				m.step()
			}
		case "r":
			m.reset()
		case "tab":
			m.selected = (m.selected + 1) % len(tunables)
		case "up", "k":
			m.adjust(1.1)
		case "down", "j":
			m.adjust(1 / 1.1)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() {
	start := time.Now()
	err := m.eng.Tick(m.params)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		m.steps++
	case errors.Is(err, graph.ErrFrameSkipped):
		m.skipped++
		return
	default:
		m.abandoned++
		m.lastErr = err
		return
	}

	m.energyHistory = appendCapped(m.energyHistory, metrics.KineticEnergy(m.eng.Nodes()))
	m.stepHistory = appendCapped(m.stepHistory, float64(elapsed)/float64(time.Millisecond))
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

// adjust scales the selected parameter. Damping stays within (0, 1].
func (m *Model) adjust(factor float64) {
	v := tunables[m.selected].ptr(&m.params)
	*v *= factor
	if tunables[m.selected].name == "damping" && *v > 1 {
		*v = 1
	}
}

func (m *Model) reset() {
	m.eng.Replace(m.initialNodes, m.initialEdges)
	m.params = m.initialParams
	m.steps, m.skipped, m.abandoned = 0, 0, 0
	m.lastErr = nil
	m.energyHistory = m.energyHistory[:0]
	m.stepHistory = m.stepHistory[:0]
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")

	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(5), asciigraph.Width(40), asciigraph.Caption("Kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Backend", m.eng.Backend())
	row("Nodes", fmt.Sprintf("%d / %d", m.eng.NodeCount(), m.eng.MaxNodes()))
	row("Edges", fmt.Sprintf("%d / %d", m.eng.EdgeCount(), m.eng.MaxEdges()))
	row("Steps", fmt.Sprintf("%d  skipped %d  abandoned %d", m.steps, m.skipped, m.abandoned))

	last := 0.0
	if n := len(m.stepHistory); n > 0 {
		last = m.stepHistory[n-1]
	}
	budget := float64(frameBudget) / float64(time.Millisecond)
	row("Step", fmt.Sprintf("%6.2f ms %s", last, budgetBar(last, budget, 16)))
	s.WriteString(labelStyle.Render("") + sparkline(m.stepHistory, 30) + "\n")
	if m.lastErr != nil {
		s.WriteString(warnStyle.Render(m.lastErr.Error()) + "\n")
	}

	s.WriteString("\nPARAMETERS\n")
	for i, t := range tunables {
		p := m.params
		line := fmt.Sprintf("%-12s %10.4g", t.name, *t.ptr(&p))
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + valueStyle.Render(line) + "\n")
		}
	}

	if m.showHelp {
		s.WriteString(helpStyle.Render("SPACE pause/resume   S single step (paused)\nR reset   TAB next parameter   ↑/↓ tune ±10%\nQ quit   ? hide help"))
	} else {
		s.WriteString(helpStyle.Render("SP:Pause S:Step R:Reset Q:Quit ?:Help"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, statsStyle.Render(s.String()))
}
