package server

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"

	"playtab/internal/logging"
	"playtab/internal/ui"
)

// sessionModel wraps ui.Model to log session lifetime.
type sessionModel struct {
	*ui.Model
	sessionID string
	startTime time.Time
}

func (s *sessionModel) Init() tea.Cmd {
	return s.Model.Init()
}

func (s *sessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(tea.QuitMsg); ok {
		s.Model.Close()
		logging.Logger.Info("SSH session ended",
			"session_id", s.sessionID,
			"duration", time.Since(s.startTime).String())
	}

	updatedModel, cmd := s.Model.Update(msg)
	if m, ok := updatedModel.(*ui.Model); ok {
		s.Model = m
	}
	return s, cmd
}

func (s *sessionModel) View() string {
	return s.Model.View()
}

// teaHandler creates a Bubbletea model for each SSH session. All
// sessions render the same coordinator view; each gets its own bus
// subscription so local and remote mutations repaint every terminal.
func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, _ := sess.Pty()
	sessionID := fmt.Sprintf("%s@%s", sess.User(), sess.RemoteAddr().String())

	logging.Logger.Info("New SSH session",
		"session_id", sessionID,
		"user", sess.User(),
		"remote_addr", sess.RemoteAddr().String(),
		"term", pty.Term,
		"window", fmt.Sprintf("%dx%d", pty.Window.Width, pty.Window.Height))

	model := ui.NewModel(s.service, s.reports, s.coord, s.bus, s.defaultRate)

	// The quit key never arrives when the connection drops, so the
	// subscription is also released when the ssh session's context ends.
	go func() {
		<-sess.Context().Done()
		model.Close()
	}()

	wrapped := &sessionModel{
		Model:     model,
		sessionID: sessionID,
		startTime: time.Now(),
	}

	return wrapped, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}
