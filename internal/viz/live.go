package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/odefit/internal/fit"
)

// StageMsg reports a completed fitting stage to the live view.
type StageMsg struct {
	Result fit.FitResult
}

// DoneMsg reports the end of the curriculum.
type DoneMsg struct {
	Result fit.FitResult
	Err    error
}

// LiveModel is a bubbletea model showing curriculum progress: completed
// stages, the running loss trend, and the current parameter estimate.
type LiveModel struct {
	modelName string
	schedule  []float64
	stages    []fit.FitResult
	done      bool
	err       error
}

func NewLive(modelName string, schedule []float64) LiveModel {
	return LiveModel{
		modelName: modelName,
		schedule:  schedule,
	}
}

func (m LiveModel) Init() tea.Cmd { return nil }

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case StageMsg:
		m.stages = append(m.stages, msg.Result)
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		if msg.Err == nil {
			// The final stage may already be recorded via StageMsg; keep
			// whichever view arrived last.
			if len(m.stages) == 0 || m.stages[len(m.stages)-1].Stage != msg.Result.Stage {
				m.stages = append(m.stages, msg.Result)
			}
		}
	}
	return m, nil
}

func (m LiveModel) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("odefit · %s · %d-stage curriculum", m.modelName, len(m.schedule))))
	b.WriteString("\n")

	for i, h := range m.schedule {
		marker := "  "
		line := fmt.Sprintf("stage %d  horizon %.4g", i, h)
		if i < len(m.stages) {
			r := m.stages[i]
			marker = stageStyle.Render("✓ ")
			line += fmt.Sprintf("  loss %.6g  iters %d", r.Loss, r.Iterations)
		} else if i == len(m.stages) && !m.done {
			marker = stageStyle.Render("▶ ")
		}
		b.WriteString(marker + valueStyle.Render(line) + "\n")
	}

	if len(m.stages) > 1 {
		losses := make([]float64, len(m.stages))
		for i, r := range m.stages {
			losses[i] = r.Loss
		}
		chart := asciigraph.Plot(losses, asciigraph.Height(5), asciigraph.Width(50), asciigraph.Caption("loss by stage"))
		b.WriteString(graphStyle.Render(chart))
		b.WriteString("\n")
	}

	if len(m.stages) > 0 {
		last := m.stages[len(m.stages)-1]
		b.WriteString(labelStyle.Render("params"))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%.5g", []float64(last.Params))))
		b.WriteString("\n")
	}

	if m.done {
		if m.err != nil {
			b.WriteString(errorStyle.Render("FAILED: " + m.err.Error()))
		} else {
			b.WriteString(stageStyle.Render("converged"))
		}
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("q: quit"))
	b.WriteString("\n")
	return b.String()
}
