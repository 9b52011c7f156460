package cli

import (
	"fmt"
	"strings"

	"capnproto.org/go/capnp/v3"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"pfeifer.dev/latmpc/cereal/lateral"
)

type outputModel struct {
	plan  lateral.LateralPlan
	valid bool
}

func (m outputModel) Update(msg tea.Msg, mm *uiModel) (outputModel, tea.Cmd) {
	plan, success := mm.planSub.Read()
	if success {
		m.valid = true
		m.plan = plan
	}

	return m, nil
}

func (m outputModel) View(diagnostics lateral.LateralMpcDiagnostics, diagnosticsValid bool) string {
	var b strings.Builder
	if m.valid {
		b.WriteString(planView(m.plan))
	} else {
		b.WriteString("waiting for lateralPlan...\n")
	}
	b.WriteString("\n")
	if diagnosticsValid {
		b.WriteString(diagnosticsView(diagnostics))
	} else {
		b.WriteString("waiting for lateralMpcDiagnostics...\n")
	}
	b.WriteString("\n(esc to return)")
	return docStyle.Render(b.String()) + "\n"
}

func planView(plan lateral.LateralPlan) string {
	header := fmt.Sprintf(
		"valid: %t\nstatus: %s\nqp iterations: %d\nsolver execution time: %.3f ms\ncurvature limit: %f\ndesired curvature: %f\n",
		plan.Valid(),
		plan.Status().String(),
		plan.QpIterations(),
		plan.SolverExecutionTime()*1000,
		plan.CurvatureLimit(),
		plan.DesiredCurvature(),
	)

	columns := []struct {
		name string
		list func() (capnp.Float32List, error)
	}{
		{"t", plan.TIdxs},
		{"x", plan.XSol},
		{"y", plan.YSol},
		{"psi", plan.PsiSol},
		{"curvature", plan.CurvatureSol},
		{"rate", plan.CurvatureRateSol},
	}
	values := make([][]float64, len(columns))
	headers := make([]string, len(columns))
	rows := 0
	for i, c := range columns {
		headers[i] = c.name
		l, err := c.list()
		if err != nil {
			continue
		}
		values[i] = lateral.Float64s(l)
		rows = max(rows, len(values[i]))
	}

	t := table.New().Border(lipgloss.NormalBorder()).Headers(headers...)
	for r := range rows {
		row := make([]string, len(columns))
		for i := range columns {
			if r < len(values[i]) {
				row[i] = fmt.Sprintf("%.4f", values[i][r])
			}
		}
		t.Row(row...)
	}
	t.StyleFunc(func(r, _ int) lipgloss.Style {
		if r == table.HeaderRow {
			return headerStyle
		}
		return cellStyle
	})
	return header + t.String() + "\n"
}

func diagnosticsView(d lateral.LateralMpcDiagnostics) string {
	return fmt.Sprintf(
		"average solve time: %.3f ms\naverage input interval: %.3f s\ninput stale: %t\nsolves: %d\nfailures: %d\nrejected inputs: %d\nlast status: %s\n",
		d.SolveTimeAvg()*1000,
		d.InputIntervalAvg(),
		d.InputStale(),
		d.SolveCount(),
		d.FailureCount(),
		d.RejectedCount(),
		d.LastStatus().String(),
	)
}
