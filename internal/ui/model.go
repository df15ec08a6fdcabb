package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"playtab/internal/domain"
	"playtab/internal/ports"
	"playtab/internal/services"
	"playtab/internal/syncer"
	"playtab/internal/theme"
)

// uiState tracks which screen the operator is on.
type uiState int

const (
	stateList uiState = iota
	stateCreating
	stateExtending
	stateConfirmDelete
	stateHelp
	stateSummary
)

const (
	repaintInterval = 500 * time.Millisecond
	errorClearDelay = 5 * time.Second
	actionTimeout   = 10 * time.Second
	quickAdjustMin  = 5
)

// Model is the root bubbletea model. It renders the live session list
// fed by the sync coordinator and dispatches operator actions to the
// session service.
type Model struct {
	state   uiState
	keys    KeyMap
	list    *SessionList
	dialog  *Dialog
	errors  *ErrorManager
	service *services.SessionService
	reports *services.ReportService
	coord   *syncer.Coordinator

	events      <-chan ports.Event
	unsubscribe func()

	defaultRate decimal.Decimal
	summary     *services.DailySummary
	confirmID   int64
	confirmName string

	width  int
	height int
}

// NewModel wires the TUI to a running coordinator and its bus.
func NewModel(service *services.SessionService, reports *services.ReportService, coord *syncer.Coordinator, bus ports.BroadcastBus, defaultRate decimal.Decimal) *Model {
	events, unsubscribe := bus.Subscribe()

	m := &Model{
		state:       stateList,
		keys:        NewKeyMap(),
		list:        NewSessionList(),
		errors:      NewErrorManager(errorClearDelay),
		service:     service,
		reports:     reports,
		coord:       coord,
		events:      events,
		unsubscribe: unsubscribe,
		defaultRate: defaultRate,
	}
	m.list.SetSessions(coord.Sessions())
	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.listenCmd(), repaintCmd())
}

// Close cancels the bus subscription. Closing the event channel also
// releases the pending listen command. Safe to call more than once;
// callers invoke it on every teardown path, quit key or dropped
// connection alike.
func (m *Model) Close() {
	m.unsubscribe()
}

func repaintCmd() tea.Cmd {
	return tea.Tick(repaintInterval, func(t time.Time) tea.Msg {
		return repaintMsg(t)
	})
}

// listenCmd waits for the next bus event. It is re-issued after every
// delivery so the subscription stays live for the whole program.
func (m *Model) listenCmd() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.events
		if !ok {
			return busClosedMsg{}
		}
		return busEventMsg{event: event}
	}
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-6)
		return m, nil

	case repaintMsg:
		// Clocks and accrued costs are recomputed on render, the tick
		// only forces the redraw.
		return m, repaintCmd()

	case busEventMsg:
		if msg.event.Kind == ports.EventSnapshot {
			m.list.SetSessions(msg.event.Sessions)
		}
		return m, m.listenCmd()

	case busClosedMsg:
		return m, nil

	case clearErrorMsg:
		m.errors.ClearError()
		return m, nil

	case actionDoneMsg:
		if m.state == stateExtending {
			m.state = stateList
			m.dialog = nil
		}
		if msg.err != nil {
			m.errors.SetError(msg.err)
			return m, m.errors.ClearAfterDelay()
		}
		return m, nil

	case sessionCreatedMsg:
		m.state = stateList
		m.dialog = nil
		if msg.err != nil {
			m.errors.SetError(msg.err)
			return m, m.errors.ClearAfterDelay()
		}
		return m, nil

	case summaryLoadedMsg:
		if msg.err != nil {
			m.state = stateList
			m.errors.SetError(msg.err)
			return m, m.errors.ClearAfterDelay()
		}
		m.summary = msg.summary
		return m, nil
	}

	switch m.state {
	case stateCreating, stateExtending:
		return m.updateDialog(msg)
	case stateConfirmDelete:
		return m.updateConfirm(msg)
	case stateHelp, stateSummary:
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "esc", "q":
				m.state = stateList
				m.summary = nil
			}
		}
		return m, nil
	default:
		return m.updateList(msg)
	}
}

func (m *Model) updateDialog(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.dialog == nil {
		m.state = stateList
		return m, nil
	}

	model, cmd := m.dialog.Update(msg)
	if d, ok := model.(*Dialog); ok {
		m.dialog = d
	}

	switch content := m.dialog.Content().(type) {
	case *SessionForm:
		if content.Cancelled() {
			m.state = stateList
			m.dialog = nil
			return m, nil
		}
	case *ExtendForm:
		if content.Cancelled() {
			m.state = stateList
			m.dialog = nil
			return m, nil
		}
	}
	return m, cmd
}

func (m *Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y":
		id := m.confirmID
		m.state = stateList
		return m, m.actionCmd(func(ctx context.Context) error {
			return m.service.Delete(ctx, id)
		})
	case "n", "N", "esc":
		m.state = stateList
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, m.list.Update(msg)
	}

	switch {
	case matches(keyMsg, m.keys.Quit):
		m.Close()
		return m, tea.Quit

	case matches(keyMsg, m.keys.Help):
		m.state = stateHelp
		return m, nil

	case matches(keyMsg, m.keys.New):
		form := NewSessionForm(m.service, m.defaultRate)
		m.dialog = NewDialog("New session", form)
		m.state = stateCreating
		return m, m.dialog.Init()

	case matches(keyMsg, m.keys.Summary):
		m.state = stateSummary
		m.summary = nil
		return m, m.summaryCmd()

	case matches(keyMsg, m.keys.Pause):
		return m.withSelected(func(s domain.Session) tea.Cmd {
			if s.IsRunning {
				return m.actionCmd(func(ctx context.Context) error {
					return m.service.Pause(ctx, s.ID)
				})
			}
			return m.actionCmd(func(ctx context.Context) error {
				return m.service.Resume(ctx, s.ID)
			})
		})

	case matches(keyMsg, m.keys.AddTime):
		return m.withSelected(func(s domain.Session) tea.Cmd {
			return m.actionCmd(func(ctx context.Context) error {
				return m.service.AddTime(ctx, s.ID, quickAdjustMin)
			})
		})

	case matches(keyMsg, m.keys.SubTime):
		return m.withSelected(func(s domain.Session) tea.Cmd {
			return m.actionCmd(func(ctx context.Context) error {
				return m.service.SubtractTime(ctx, s.ID, quickAdjustMin)
			})
		})

	case matches(keyMsg, m.keys.Extend):
		return m.withSelected(func(s domain.Session) tea.Cmd {
			if s.Mode != domain.ModeFixed {
				m.errors.SetError(domain.ErrWrongMode)
				return m.errors.ClearAfterDelay()
			}
			form := NewExtendForm(m.service, s.ID)
			m.dialog = NewDialog(fmt.Sprintf("Extend session %d", s.ID), form)
			m.state = stateExtending
			return m.dialog.Init()
		})

	case matches(keyMsg, m.keys.Complete):
		return m.withSelected(func(s domain.Session) tea.Cmd {
			return m.actionCmd(func(ctx context.Context) error {
				return m.service.Complete(ctx, s.ID)
			})
		})

	case matches(keyMsg, m.keys.Delete):
		return m.withSelected(func(s domain.Session) tea.Cmd {
			m.confirmID = s.ID
			m.confirmName = s.Name
			m.state = stateConfirmDelete
			return nil
		})

	case matches(keyMsg, m.keys.TogglePaid):
		return m.withSelected(func(s domain.Session) tea.Cmd {
			return m.actionCmd(func(ctx context.Context) error {
				return m.service.TogglePaid(ctx, s.ID)
			})
		})

	case matches(keyMsg, m.keys.CyclePayment):
		return m.withSelected(func(s domain.Session) tea.Cmd {
			next := domain.PaymentCash
			if s.PaymentMethod == domain.PaymentCash {
				next = domain.PaymentTransfer
			}
			return m.actionCmd(func(ctx context.Context) error {
				return m.service.SetPaymentMethod(ctx, s.ID, next)
			})
		})
	}

	return m, m.list.Update(msg)
}

func matches(msg tea.KeyMsg, binding key.Binding) bool {
	return key.Matches(msg, binding)
}

// withSelected runs an action against the session under the cursor.
func (m *Model) withSelected(fn func(domain.Session) tea.Cmd) (tea.Model, tea.Cmd) {
	item, ok := m.list.Selected()
	if !ok {
		return m, nil
	}
	return m, fn(item.Session)
}

// actionCmd runs a service call off the update loop and reports the
// outcome via actionDoneMsg.
func (m *Model) actionCmd(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionDoneMsg{err: fn(ctx)}
	}
}

func (m *Model) summaryCmd() tea.Cmd {
	reports := m.reports
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		day := domain.BusinessDayOf(time.Now())
		summary, err := reports.Daily(ctx, day)
		return summaryLoadedMsg{summary: summary, err: err}
	}
}

// View implements tea.Model
func (m *Model) View() string {
	switch m.state {
	case stateCreating, stateExtending:
		if m.dialog != nil {
			return m.dialog.View()
		}
	case stateHelp:
		return renderHeader("") + "\n" + renderHelp(m.keys)
	case stateSummary:
		if m.summary == nil {
			return renderHeader("") + "\n  Loading summary..."
		}
		return renderHeader("") + "\n" + renderSummary(m.summary)
	case stateConfirmDelete:
		return renderHeader("") + "\n" +
			theme.ErrorStyle.Render(fmt.Sprintf(
				"  Delete session %d (%s)? The record is kept in history. (y/n)",
				m.confirmID, m.confirmName))
	}
	return m.viewList()
}

func (m *Model) viewList() string {
	var b strings.Builder
	b.WriteString(renderHeader(""))
	b.WriteString("\n")

	if m.list.Empty() {
		b.WriteString(theme.MutedStyle.Render("  No active sessions. Press n to open one."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.list.View())
	}

	if m.errors.HasError() {
		b.WriteString("\n")
		b.WriteString(theme.ErrorStyle.Render("  " + m.errors.Message()))
	}

	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render(
		"  n new · space pause · +/- time · e extend · c close · x delete · p paid · s summary · ? help · q quit"))
	return b.String()
}
