package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jub0bs/fcors"
	"github.com/shopspring/decimal"

	"playtab/internal/domain"
	"playtab/internal/logging"
	"playtab/internal/services"
	"playtab/internal/syncer"
)

// HTTPServer exposes a read-only JSON view of the floor for dashboards
// and the front-desk display. Mutations stay on the TUI and CLI.
type HTTPServer struct {
	addr    string
	coord   *syncer.Coordinator
	reports *services.ReportService
	srv     *http.Server
}

// NewHTTPServer wires the read-only API.
func NewHTTPServer(addr string, coord *syncer.Coordinator, reports *services.ReportService) (*HTTPServer, error) {
	s := &HTTPServer{
		addr:    addr,
		coord:   coord,
		reports: reports,
	}

	cors, err := fcors.AllowAccess(fcors.FromAnyOrigin())
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions", s.handleSessions).Methods(http.MethodGet)
	r.HandleFunc("/api/history", s.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/api/summary", s.handleSummary).Methods(http.MethodGet)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           cors(r),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Start serves until the context is cancelled.
func (s *HTTPServer) Start(ctx context.Context) error {
	logging.Logger.Info("Starting HTTP server", "address", s.addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

// sessionView is the wire shape of one active session. Remaining time
// and accrued cost are computed at request time, not read from storage.
type sessionView struct {
	ID               int64   `json:"id"`
	Mode             string  `json:"mode"`
	Name             string  `json:"name"`
	Location         string  `json:"location"`
	Note             string  `json:"note,omitempty"`
	Shift            int     `json:"shift"`
	StartTime        string  `json:"start_time"`
	IsRunning        bool    `json:"is_running"`
	IsPaid           bool    `json:"is_paid"`
	PaymentMethod    string  `json:"payment_method"`
	RemainingSeconds *int    `json:"remaining_seconds,omitempty"`
	RemainingClock   *string `json:"remaining_clock,omitempty"`
	HourlyRate       *string `json:"hourly_rate,omitempty"`
	AccruedCost      *string `json:"accrued_cost,omitempty"`
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	sessions := s.coord.Sessions()

	views := make([]sessionView, 0, len(sessions))
	for i := range sessions {
		views = append(views, toSessionView(&sessions[i], now))
	}
	writeJSON(w, http.StatusOK, views)
}

func toSessionView(sess *domain.Session, now time.Time) sessionView {
	v := sessionView{
		ID:            sess.ID,
		Mode:          string(sess.Mode),
		Name:          sess.Name,
		Location:      sess.Location,
		Note:          sess.Note,
		Shift:         int(sess.Shift),
		StartTime:     sess.StartTime.UTC().Format(time.RFC3339),
		IsRunning:     sess.IsRunning,
		IsPaid:        sess.IsPaid,
		PaymentMethod: string(sess.PaymentMethod),
	}
	switch sess.Mode {
	case domain.ModeFixed:
		remaining := sess.RemainingSeconds(now)
		clock := domain.FormatClock(time.Duration(remaining) * time.Second)
		v.RemainingSeconds = &remaining
		v.RemainingClock = &clock
	case domain.ModeProRated:
		rate := sess.ProRated.HourlyRate.String()
		cost := sess.AccruedCost(now).StringFixed(2)
		v.HourlyRate = &rate
		v.AccruedCost = &cost
	}
	return v
}

// historyView is the wire shape of one finalized history record.
type historyView struct {
	ID            string `json:"id"`
	SessionID     int64  `json:"session_id"`
	Name          string `json:"name"`
	Location      string `json:"location"`
	Shift         int    `json:"shift"`
	SessionDate   string `json:"session_date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time,omitempty"`
	EndReason     string `json:"end_reason"`
	FinalCost     string `json:"final_cost"`
	IsPaid        bool   `json:"is_paid"`
	PaymentMethod string `json:"payment_method"`
}

func (s *HTTPServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	day, err := parseDayParam(r, "day")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	shift := domain.ShiftAll
	if raw := r.URL.Query().Get("shift"); raw != "" {
		shift, err = domain.ParseShift(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	recs, err := s.reports.Records(r.Context(), day, shift)
	if err != nil {
		logging.Logger.Error("History query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "history query failed")
		return
	}

	views := make([]historyView, 0, len(recs))
	for _, rec := range recs {
		hv := historyView{
			ID:            rec.ID,
			SessionID:     rec.SessionID,
			Name:          rec.Name,
			Location:      rec.Location,
			Shift:         int(rec.Shift),
			SessionDate:   rec.SessionDate.Format("2006-01-02"),
			StartTime:     rec.StartTime.UTC().Format(time.RFC3339),
			EndReason:     string(rec.EndReason),
			FinalCost:     rec.FinalCost.StringFixed(2),
			IsPaid:        rec.IsPaid,
			PaymentMethod: string(rec.PaymentMethod),
		}
		if rec.EndTime != nil {
			hv.EndTime = rec.EndTime.UTC().Format(time.RFC3339)
		}
		views = append(views, hv)
	}
	writeJSON(w, http.StatusOK, views)
}

// shiftTotalsView is the wire shape of one shift's totals.
type shiftTotalsView struct {
	Shift    int    `json:"shift"`
	Label    string `json:"label"`
	Sessions int    `json:"sessions"`
	Revenue  string `json:"revenue"`
	Cash     string `json:"cash"`
	Transfer string `json:"transfer"`
	Unpaid   int    `json:"unpaid"`
}

func (s *HTTPServer) handleSummary(w http.ResponseWriter, r *http.Request) {
	day, err := parseDayParam(r, "day")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := s.reports.Daily(r.Context(), day)
	if err != nil {
		logging.Logger.Error("Summary query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "summary query failed")
		return
	}

	shifts := make([]shiftTotalsView, 0, len(summary.Shifts))
	for _, t := range summary.Shifts {
		shifts = append(shifts, toShiftTotalsView(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"business_day": summary.BusinessDay.Format("2006-01-02"),
		"shifts":       shifts,
		"total":        toShiftTotalsView(summary.Total),
	})
}

func toShiftTotalsView(t services.ShiftTotals) shiftTotalsView {
	return shiftTotalsView{
		Shift:    int(t.Shift),
		Label:    t.Shift.Label(),
		Sessions: t.Sessions,
		Revenue:  money(t.Revenue),
		Cash:     money(t.Cash),
		Transfer: money(t.Transfer),
		Unpaid:   t.Unpaid,
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// parseDayParam reads a YYYY-MM-DD business day. Missing means the
// current business day.
func parseDayParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return domain.BusinessDayOf(time.Now()), nil
	}
	day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return day, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
