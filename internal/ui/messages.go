package ui

import (
	"time"

	"playtab/internal/domain"
	"playtab/internal/ports"
	"playtab/internal/services"
)

// repaintMsg drives the half-second redraw that keeps countdowns and
// accrued costs moving without any data change.
type repaintMsg time.Time

// busEventMsg wraps a broadcast event received from the coordinator.
type busEventMsg struct {
	event ports.Event
}

// busClosedMsg signals that the broadcast subscription ended.
type busClosedMsg struct{}

// actionDoneMsg reports the outcome of an asynchronous session
// operation triggered by a key press.
type actionDoneMsg struct {
	err error
}

// sessionCreatedMsg is sent when session creation completes.
type sessionCreatedMsg struct {
	session *domain.Session
	err     error
}

// summaryLoadedMsg carries the daily report for the summary overlay.
type summaryLoadedMsg struct {
	summary *services.DailySummary
	err     error
}
