package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"playtab/internal/domain"
	"playtab/internal/theme"
)

// Status symbols
const (
	symbolRunning = "●"
	symbolPaused  = "◐"
	symbolExpired = "○"
)

// expiringThreshold is when a fixed countdown turns orange.
const expiringThreshold = 5 * time.Minute

// SessionItem implements list.Item for one active session.
type SessionItem struct {
	Session domain.Session
}

// FilterValue implements list.Item
func (i SessionItem) FilterValue() string {
	return i.Session.Name + " " + i.Session.Location
}

// SessionDelegate renders one session as two lines: identity on the
// first, live clock and money on the second.
type SessionDelegate struct{}

// Height implements list.ItemDelegate
func (d SessionDelegate) Height() int { return 2 }

// Spacing implements list.ItemDelegate
func (d SessionDelegate) Spacing() int { return 0 }

// Update implements list.ItemDelegate
func (d SessionDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

// Render implements list.ItemDelegate
func (d SessionDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(SessionItem)
	if !ok {
		return
	}
	sess := item.Session
	now := time.Now()

	cursor := " "
	if index == m.Index() {
		cursor = ">"
	}

	line1 := fmt.Sprintf("%s %02d. %s %s", cursor, sess.ID, statusIcon(sess, now),
		theme.NormalStyle.Render(sess.Name))
	line1 += theme.MutedStyle.Render(" @ " + sess.Location)
	line1 += " " + theme.ShiftStyle(int(sess.Shift)).Render("["+sess.Shift.Label()+"]")
	if sess.Note != "" {
		line1 += theme.MutedStyle.Render(" · " + sess.Note)
	}

	indent := "        "
	line2 := indent + clockColumn(sess, now) + "  " + moneyColumn(sess, now)
	if sess.IsPaid {
		line2 += "  " + theme.PaidStyle.Render("paid ("+string(sess.PaymentMethod)+")")
	} else {
		line2 += "  " + theme.UnpaidStyle.Render("unpaid")
	}

	fmt.Fprintf(w, "%s\n%s", line1, line2)
}

func statusIcon(sess domain.Session, now time.Time) string {
	if !sess.IsRunning {
		return theme.PausedStyle.Render(symbolPaused)
	}
	if sess.Mode == domain.ModeFixed {
		remaining := time.Duration(sess.RemainingSeconds(now)) * time.Second
		if remaining == 0 {
			return theme.ExpiredStyle.Render(symbolExpired)
		}
		if remaining <= expiringThreshold {
			return theme.ExpiringStyle.Render(symbolRunning)
		}
	}
	return theme.RunningStyle.Render(symbolRunning)
}

// clockColumn shows the countdown for fixed sessions and the billable
// elapsed time for pro-rated ones.
func clockColumn(sess domain.Session, now time.Time) string {
	if sess.Mode == domain.ModeFixed {
		remaining := time.Duration(sess.RemainingSeconds(now)) * time.Second
		text := "⏱ " + domain.FormatClock(remaining)
		switch {
		case remaining == 0:
			return theme.ExpiredStyle.Render(text + " expired")
		case remaining <= expiringThreshold:
			return theme.ExpiringStyle.Render(text)
		default:
			return theme.NormalStyle.Render(text)
		}
	}
	return theme.NormalStyle.Render("⏱ " + domain.FormatClock(sess.Elapsed(now)))
}

func moneyColumn(sess domain.Session, now time.Time) string {
	if sess.Mode == domain.ModeProRated {
		return theme.MoneyStyle.Render(fmt.Sprintf("%s (%s/h)",
			sess.AccruedCost(now).StringFixed(2),
			sess.ProRated.HourlyRate.String()))
	}
	return theme.MutedStyle.Render(fmt.Sprintf("%d min block", sess.Fixed.DurationMinutes))
}

// SessionList wraps the bubbles list with session-specific plumbing.
type SessionList struct {
	list list.Model
}

// NewSessionList builds the list component.
func NewSessionList() *SessionList {
	l := list.New([]list.Item{}, SessionDelegate{}, 0, 0)
	l.Title = "Active sessions"
	l.Styles.Title = theme.TitleStyle
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	return &SessionList{list: l}
}

// SetSessions replaces the items, keeping the cursor on the same
// session id when it survives the refresh.
func (sl *SessionList) SetSessions(sessions []domain.Session) {
	var selectedID int64 = -1
	if item, ok := sl.Selected(); ok {
		selectedID = item.Session.ID
	}

	items := make([]list.Item, len(sessions))
	newIndex := -1
	for i, s := range sessions {
		items[i] = SessionItem{Session: s}
		if s.ID == selectedID {
			newIndex = i
		}
	}
	sl.list.SetItems(items)
	if newIndex >= 0 {
		sl.list.Select(newIndex)
	}
}

// Selected returns the session under the cursor.
func (sl *SessionList) Selected() (SessionItem, bool) {
	item, ok := sl.list.SelectedItem().(SessionItem)
	return item, ok
}

// SetSize propagates terminal dimensions.
func (sl *SessionList) SetSize(width, height int) {
	sl.list.SetSize(width, height)
}

// Update forwards messages to the underlying list.
func (sl *SessionList) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	sl.list, cmd = sl.list.Update(msg)
	return cmd
}

// View renders the list.
func (sl *SessionList) View() string {
	return sl.list.View()
}

// Empty reports whether any sessions are shown.
func (sl *SessionList) Empty() bool {
	return len(sl.list.Items()) == 0
}
