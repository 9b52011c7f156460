package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"pfeifer.dev/latmpc/cereal/lateral"
	ms "pfeifer.dev/latmpc/settings"
)

type SettingType int

const (
	String SettingType = iota
	Float
	Bool
	None
)

type settingsState int

const (
	showSettingsMenu settingsState = iota
	settingsExit
	settingsInput
	settingsSend
)

type settingsItem struct {
	title, desc string
	state       settingsState
	MessageType lateral.CommandType
	Type        SettingType
	current     func(s *ms.LateralSettings) string
}

func (i settingsItem) Title() string { return i.title }
func (i settingsItem) Description() string {
	if i.current == nil {
		return i.desc
	}
	return fmt.Sprintf("%s (current: %s)", i.desc, i.current(&ms.Settings))
}
func (i settingsItem) FilterValue() string { return i.title }

type settingsModel struct {
	list         list.Model
	state        settingsState
	textInput    textinput.Model
	selectedItem settingsItem
	prompt       string
	err          error
}

// parseInput checks the raw input against the value type of the item and returns a function
// that writes it into a command.
func parseInput(typ SettingType, value string) (func(lateral.LateralMpcCommand) error, error) {
	switch typ {
	case String:
		return func(cmd lateral.LateralMpcCommand) error { return cmd.SetStr(value) }, nil
	case Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, errors.Wrapf(err, "%q is not a bool", value)
		}
		return func(cmd lateral.LateralMpcCommand) error { cmd.SetBool(b); return nil }, nil
	case Float:
		f, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "%q is not a number", value)
		}
		return func(cmd lateral.LateralMpcCommand) error { cmd.SetFloat(float32(f)); return nil }, nil
	}
	return nil, nil
}

func (m settingsModel) Update(msg tea.Msg, mm *uiModel) (settingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEnter && m.state == showSettingsMenu && m.list.FilterState() != list.Filtering {
			it := m.list.SelectedItem().(settingsItem)
			m.selectedItem = it
			m.err = nil
			switch it.state {
			case settingsExit:
				mm.state = showMenu
			case settingsInput:
				m.state = settingsInput
				m.prompt = it.Title()
				m.textInput.Reset()
				return m, m.textInput.Focus()
			case settingsSend:
				mm.send(it.MessageType, nil)
			}
			return m, nil
		}
		if msg.Type == tea.KeyEsc && m.state == settingsInput {
			m.state = showSettingsMenu
			m.textInput.Blur()
			return m, nil
		}
		if msg.Type == tea.KeyEnter && m.state == settingsInput {
			fill, err := parseInput(m.selectedItem.Type, m.textInput.Value())
			if err != nil {
				m.err = err
				return m, nil
			}
			mm.send(m.selectedItem.MessageType, fill)
			m.state = showSettingsMenu
			m.textInput.Blur()
			return m, nil
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
		return m, nil
	}

	var cmd tea.Cmd
	if m.state == settingsInput {
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m settingsModel) View() string {
	switch m.state {
	case settingsInput:
		errLine := ""
		if m.err != nil {
			errLine = "\n\n" + failStyle.Render(m.err.Error())
		}
		return docStyle.Render(fmt.Sprintf(
			"%s\n\n%s%s\n\n%s",
			m.prompt,
			m.textInput.View(),
			errLine,
			"(esc to cancel)",
		) + "\n")
	default:
		return docStyle.Render(m.list.View())
	}
}

func floatSetting(title, desc string, typ lateral.CommandType, current func(s *ms.LateralSettings) float64) settingsItem {
	return settingsItem{
		title:       title,
		desc:        desc,
		MessageType: typ,
		Type:        Float,
		state:       settingsInput,
		current: func(s *ms.LateralSettings) string {
			return strconv.FormatFloat(current(s), 'g', -1, 64)
		},
	}
}

func settingsItems() []list.Item {
	return []list.Item{
		floatSetting("Path Weight", "Cost on the lateral offset from the reference path",
			lateral.CommandType_setPathWeight, func(s *ms.LateralSettings) float64 { return s.PathWeight }),
		floatSetting("Heading Weight", "Cost on the heading error against the reference heading",
			lateral.CommandType_setHeadingWeight, func(s *ms.LateralSettings) float64 { return s.HeadingWeight }),
		floatSetting("Curvature Rate Weight", "Cost on the commanded curvature rate, higher is smoother",
			lateral.CommandType_setCurvatureRateWeight, func(s *ms.LateralSettings) float64 { return s.CurvatureRateWeight }),
		floatSetting("Max Curvature", "Static steering limit in 1/m",
			lateral.CommandType_setMaxCurvature, func(s *ms.LateralSettings) float64 { return s.MaxCurvature }),
		floatSetting("Max Curvature Rate", "Limit on the commanded curvature rate in 1/(m*s)",
			lateral.CommandType_setMaxCurvatureRate, func(s *ms.LateralSettings) float64 { return s.MaxCurvatureRate }),
		floatSetting("Max Lateral Acceleration", "Comfort limit in m/s^2 that bounds curvature at speed",
			lateral.CommandType_setMaxLatAccel, func(s *ms.LateralSettings) float64 { return s.MaxLatAccel }),
		floatSetting("Horizon Time", "Planning horizon in seconds",
			lateral.CommandType_setHorizonTime, func(s *ms.LateralSettings) float64 { return s.HorizonTime }),
		floatSetting("Minimum Lookahead", "Shortest distance in meters the horizon covers at low speed",
			lateral.CommandType_setMinLookahead, func(s *ms.LateralSettings) float64 { return s.MinLookahead }),
		floatSetting("Minimum Speed", "Floor on the speed used by the vehicle model in m/s",
			lateral.CommandType_setMinSpeed, func(s *ms.LateralSettings) float64 { return s.MinSpeed }),
		floatSetting("QP Max Iterations", "Iteration budget of the quadratic program per solve",
			lateral.CommandType_setQpMaxIterations, func(s *ms.LateralSettings) float64 { return float64(s.QPMaxIterations) }),
		settingsItem{
			title:       "Set Log Level",
			desc:        "Modify how verbose logging will be for the lateral mpc",
			MessageType: lateral.CommandType_setLogLevel,
			Type:        String,
			state:       settingsInput,
			current:     func(s *ms.LateralSettings) string { return s.LogLevel },
		},
		settingsItem{
			title:       "Publish Diagnostics",
			desc:        "Whether the daemon publishes the diagnostics topic",
			MessageType: lateral.CommandType_setPublishDiagnostics,
			Type:        Bool,
			state:       settingsInput,
			current:     func(s *ms.LateralSettings) string { return strconv.FormatBool(s.PublishDiagnostics) },
		},
		settingsItem{
			title:       "Reset Warm Start",
			desc:        "Drop the previous trajectory so the next solve starts cold",
			MessageType: lateral.CommandType_resetWarmStart,
			Type:        None,
			state:       settingsSend,
		},
		settingsItem{
			title:       "Reload Settings",
			desc:        "Discard unsaved changes and reload the persisted settings",
			MessageType: lateral.CommandType_reloadSettings,
			Type:        None,
			state:       settingsSend,
		},
		settingsItem{
			title:       "Load Default Settings",
			desc:        "Replace the active settings with the defaults",
			MessageType: lateral.CommandType_loadDefaultSettings,
			Type:        None,
			state:       settingsSend,
		},
		settingsItem{
			title:       "Save Settings",
			desc:        "Persists any updates to the settings across reboots",
			MessageType: lateral.CommandType_saveSettings,
			Type:        None,
			state:       settingsSend,
		},
		settingsItem{
			title: "Return to Main Menu",
			desc:  "Exit settings configuration and return to the initial actions menu",
			state: settingsExit,
		},
	}
}

func getSettingsModel() settingsModel {
	listDelegate := list.NewDefaultDelegate()
	m := settingsModel{
		list:      list.New(settingsItems(), listDelegate, 0, 0),
		textInput: textinput.New(),
	}
	m.list.Title = "Lateral MPC Settings"
	m.textInput.CharLimit = 32
	return m
}
