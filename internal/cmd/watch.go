package cmd

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"playtab/internal/logging"
	"playtab/internal/state"
	"playtab/internal/ui"
)

// WatchCmd starts the TUI application
type WatchCmd struct{}

// Run executes the TUI
func (w *WatchCmd) Run(cli *CLI) error {
	logging.Logger.Info("Starting playtab TUI", "client_id", cli.Container.ClientID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	coordDone := make(chan error, 1)
	go func() {
		coordDone <- cli.Container.Coordinator.Run(ctx)
	}()

	model := ui.NewModel(
		cli.Container.SessionService,
		cli.Container.ReportService,
		cli.Container.Coordinator,
		cli.Container.Bus,
		cli.Settings().EffectiveHourlyRate(),
	)

	p := tea.NewProgram(model, tea.WithAltScreen())

	logging.Logger.Info("Starting TUI program")
	if _, err := p.Run(); err != nil {
		logging.Logger.Error("TUI program error", "error", err)
		return fmt.Errorf("error running program: %w", err)
	}

	cancel()
	if err := <-coordDone; err != nil {
		logging.Logger.Warn("Coordinator stopped with error", "error", err)
	}

	if st, err := state.Load(); err == nil {
		if err := st.RecordSync(time.Now().UTC()); err != nil {
			logging.Logger.Warn("Failed to record sync time", "error", err)
		}
	}

	logging.Logger.Info("TUI program exited normally")
	return nil
}
