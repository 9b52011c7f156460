package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pfeifer.dev/latmpc/cereal"
	"pfeifer.dev/latmpc/cereal/lateral"
	ms "pfeifer.dev/latmpc/settings"
	"pfeifer.dev/latmpc/utils"
)

type mainState int

const (
	showMenu mainState = iota
	showSettings
	showOutput
)

var docStyle = lipgloss.NewStyle().Margin(1, 2)

type TickMsg time.Time

func tickEvery() tea.Cmd {
	return tea.Every(ms.LOOP_DELAY, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

type uiModel struct {
	list     list.Model
	state    mainState
	settings settingsModel
	output   outputModel

	pub            *cereal.Publisher[lateral.LateralMpcCommand]
	planSub        *cereal.Subscriber[lateral.LateralPlan]
	diagnosticsSub *cereal.Subscriber[lateral.LateralMpcDiagnostics]

	diagnostics      lateral.LateralMpcDiagnostics
	diagnosticsValid bool
}

type item struct {
	title, desc string
	state       mainState
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title }

func initialModel(state mainState) uiModel {
	items := []list.Item{
		item{title: "Settings", desc: "Modify settings of an active lateral mpc instance", state: showSettings},
		item{title: "Watch", desc: "Watch the live plan and diagnostics of the lateral mpc", state: showOutput},
	}

	listDelegate := list.NewDefaultDelegate()
	pub := cereal.NewPublisher(cereal.LATERAL_MPC_COMMAND, cereal.LateralMpcCommandCreator)
	planSub := cereal.NewSubscriber(cereal.LATERAL_PLAN, cereal.LateralPlanReader, true)
	diagnosticsSub := cereal.NewSubscriber(cereal.LATERAL_MPC_DIAGNOSTICS, cereal.LateralMpcDiagnosticsReader, true)
	m := uiModel{
		list:           list.New(items, listDelegate, 0, 0),
		state:          state,
		settings:       getSettingsModel(),
		pub:            &pub,
		planSub:        &planSub,
		diagnosticsSub: &diagnosticsSub,
	}
	m.list.Title = "Lateral MPC Actions"
	return m
}

func (m uiModel) Init() tea.Cmd {
	return tickEvery()
}

// send publishes a command built by fill, errors are logged since the ui has no error view.
func (m *uiModel) send(typ lateral.CommandType, fill func(lateral.LateralMpcCommand) error) {
	msg, cmd := m.pub.NewMessage(true)
	cmd.SetType(typ)
	if fill != nil {
		if err := fill(cmd); err != nil {
			utils.Loge(err)
			return
		}
	}
	utils.Loge(m.pub.Send(msg))
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter && m.state == showMenu && m.list.FilterState() != list.Filtering {
			it := m.list.SelectedItem().(item)
			m.state = it.state
			return m, nil
		}
		if msg.Type == tea.KeyEsc && m.state == showOutput {
			m.state = showMenu
			return m, nil
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
		m.settings, _ = m.settings.Update(msg, &m)
		m.output, _ = m.output.Update(msg, &m)
	case TickMsg:
		diagnostics, success := m.diagnosticsSub.Read()
		if success {
			m.diagnostics = diagnostics
			settingsData, _ := diagnostics.Settings()
			utils.Logwe(ms.Settings.Unmarshal([]byte(settingsData)))
			m.diagnosticsValid = true
		}
		m.output, _ = m.output.Update(msg, &m)
		return m, tickEvery()
	}

	var cmd tea.Cmd
	switch m.state {
	case showSettings:
		m.settings, cmd = m.settings.Update(msg, &m)
	case showOutput:
		m.output, cmd = m.output.Update(msg, &m)
	default:
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

func (m uiModel) View() string {
	switch m.state {
	case showSettings:
		return m.settings.View()
	case showOutput:
		return m.output.View(m.diagnostics, m.diagnosticsValid)
	}
	return docStyle.Render(m.list.View())
}

func runUI(state mainState) {
	m := initialModel(state)
	defer m.planSub.Sub.Msgq.Close()
	defer m.diagnosticsSub.Sub.Msgq.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}

func resetWarmStart() {
	pub := cereal.NewPublisher(cereal.LATERAL_MPC_COMMAND, cereal.LateralMpcCommandCreator)
	msg, cmd := pub.NewMessage(true)
	cmd.SetType(lateral.CommandType_resetWarmStart)
	if err := pub.Send(msg); err != nil {
		fmt.Printf("Could not send reset: %v\n", err)
	}
}
