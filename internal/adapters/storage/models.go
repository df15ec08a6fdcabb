package storage

import "time"

// SessionModel is the GORM model for the sessions table. Both billing
// modes share the table; mode decides which billing columns are live.
type SessionModel struct {
	CreatedAt       time.Time
	DurationMinutes int        `gorm:"not null;default:0"`
	ExpectedEnd     *time.Time `gorm:"default:null"`
	HourlyRate      string     `gorm:"not null;default:'0'"`
	ID              int64      `gorm:"primaryKey;autoIncrement"`
	IsPaid          bool       `gorm:"not null;default:false"`
	IsRunning       bool       `gorm:"not null;default:true"`
	LastUpdated     time.Time  `gorm:"not null;index:idx_sessions_updated"`
	Location        string     `gorm:"not null;default:''"`
	Mode            string     `gorm:"not null;check:mode IN ('fixed','prorated')"`
	Name            string     `gorm:"not null;default:''"`
	Note            string     `gorm:"default:''"`
	PausedAt        *time.Time `gorm:"default:null"`
	PausedRemaining int        `gorm:"not null;default:0"`
	PaymentMethod   string     `gorm:"not null;default:'transfer';check:payment_method IN ('transfer','cash')"`
	Shift           int        `gorm:"not null;default:0"`
	StartTime       time.Time  `gorm:"not null"`
	TotalPauseNS    int64      `gorm:"column:total_pause_ns;not null;default:0"`
	UpdatedAt       time.Time
}

// TableName specifies the table name for GORM
func (SessionModel) TableName() string { return "sessions" }

// HistoryModel is the GORM model for the history table. At most one row
// per session may be in_progress; a partial unique index created in
// NewSQLiteStore enforces that.
type HistoryModel struct {
	CreatedAt       time.Time
	DurationMinutes int        `gorm:"not null;default:0"`
	EndReason       string     `gorm:"not null;default:'in_progress';check:end_reason IN ('in_progress','completed','expired','deleted')"`
	EndTime         *time.Time `gorm:"default:null"`
	FinalCost       string     `gorm:"not null;default:'0'"`
	HourlyRate      string     `gorm:"not null;default:'0'"`
	ID              string     `gorm:"primaryKey"`
	IsPaid          bool       `gorm:"not null;default:false"`
	Location        string     `gorm:"not null;default:''"`
	Mode            string     `gorm:"not null;check:mode IN ('fixed','prorated')"`
	Name            string     `gorm:"not null;default:''"`
	Note            string     `gorm:"default:''"`
	PaymentMethod   string     `gorm:"not null;default:'transfer'"`
	SessionDate     time.Time  `gorm:"not null;index:idx_history_date"`
	SessionID       int64      `gorm:"not null;index:idx_history_session"`
	Shift           int        `gorm:"not null;default:0"`
	StartTime       time.Time  `gorm:"not null"`
	UpdatedAt       time.Time
}

// TableName specifies the table name for GORM
func (HistoryModel) TableName() string { return "history" }
