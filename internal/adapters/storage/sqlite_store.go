package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"playtab/internal/domain"
	"playtab/internal/logging"
	"playtab/internal/ports"
)

// SQLiteStore implements ports.Store using GORM. It has no push
// channel; clients relying on it converge through the poll loop.
type SQLiteStore struct {
	db *gorm.DB
}

// Verify interface compliance at compile time
var _ ports.Store = (*SQLiteStore)(nil)

// gormLogger wraps the playtab logger for GORM
type gormLogger struct {
	level logger.LogLevel
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &gormLogger{level: level}
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Info {
		logging.Logger.Info(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Warn {
		logging.Logger.Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Error {
		logging.Logger.Error(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level < logger.Info {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logging.Logger.Error("gorm query error",
			"error", err,
			"duration", elapsed,
			"sql", sql,
			"rows", rows,
		)
	} else if elapsed > 200*time.Millisecond {
		logging.Logger.Warn("slow query",
			"duration", elapsed,
			"sql", sql,
			"rows", rows,
		)
	} else {
		logging.Logger.Debug("gorm query",
			"duration", elapsed,
			"sql", sql,
			"rows", rows,
		)
	}
}

func newGormLogger() logger.Interface {
	if os.Getenv("PLAYTAB_DEBUG") == "1" {
		return (&gormLogger{}).LogMode(logger.Info)
	}
	return (&gormLogger{}).LogMode(logger.Silent)
}

// NewSQLiteStore opens (creating if needed) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Expand home directory if present
	if len(dbPath) > 0 && dbPath[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(homeDir, dbPath[1:])
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		PrepareStmt: false,
		NowFunc:     func() time.Time { return time.Now().UTC() },
		Logger:      newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for concurrent access
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	db.Exec("PRAGMA synchronous=NORMAL")
	db.Exec("PRAGMA foreign_keys=ON")

	if err := db.AutoMigrate(&SessionModel{}, &HistoryModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	// GORM cannot express a partial unique index; one open history row
	// per session is the idempotency anchor for archiving.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_history_open
		ON history(session_id) WHERE end_reason = 'in_progress'
	`).Error; err != nil {
		return nil, fmt.Errorf("failed to create open-history index: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (r *SQLiteStore) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ListSessions implements ports.SessionStore.ListSessions
func (r *SQLiteStore) ListSessions(ctx context.Context) ([]domain.Session, error) {
	var models []SessionModel
	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Order("start_time ASC, id ASC").
			Find(&models).Error
	}, 3)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Session, len(models))
	for i, m := range models {
		result[i] = sessionModelToDomain(m)
	}
	return result, nil
}

// GetSession implements ports.SessionStore.GetSession
func (r *SQLiteStore) GetSession(ctx context.Context, id int64) (*domain.Session, error) {
	var model SessionModel
	err := withRetry(func() error {
		return r.db.WithContext(ctx).First(&model, id).Error
	}, 3)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	s := sessionModelToDomain(model)
	return &s, nil
}

// CreateSession implements ports.SessionStore.CreateSession
func (r *SQLiteStore) CreateSession(ctx context.Context, s domain.Session) (int64, error) {
	model := domainToSessionModel(s)
	model.ID = 0 // the store assigns ids

	err := withRetry(func() error {
		return r.db.WithContext(ctx).Create(&model).Error
	}, 3)
	if err != nil {
		return 0, fmt.Errorf("failed to create session: %w", err)
	}
	return model.ID, nil
}

// UpdateSession implements ports.SessionStore.UpdateSession
func (r *SQLiteStore) UpdateSession(ctx context.Context, s domain.Session) error {
	model := domainToSessionModel(s)

	return withRetry(func() error {
		result := r.db.WithContext(ctx).
			Model(&SessionModel{}).
			Where("id = ?", s.ID).
			Select("*").
			Omit("id", "created_at").
			Updates(&model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrSessionNotFound
		}
		return nil
	}, 3)
}

// RestoreSession implements ports.SessionStore.RestoreSession
func (r *SQLiteStore) RestoreSession(ctx context.Context, s domain.Session) error {
	model := domainToSessionModel(s)

	// Upsert: the row is normally gone, but a concurrent client may have
	// restored it first, in which case the newer state wins.
	return withRetry(func() error {
		return r.db.WithContext(ctx).
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(&model).Error
	}, 3)
}

// DeleteSession implements ports.SessionStore.DeleteSession
func (r *SQLiteStore) DeleteSession(ctx context.Context, id int64) error {
	return withRetry(func() error {
		result := r.db.WithContext(ctx).Delete(&SessionModel{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrSessionNotFound
		}
		return nil
	}, 3)
}

// OpenHistory implements ports.HistoryStore.OpenHistory
func (r *SQLiteStore) OpenHistory(ctx context.Context, rec domain.HistoryRecord) error {
	model := domainToHistoryModel(rec)

	err := withRetry(func() error {
		return r.db.WithContext(ctx).Create(&model).Error
	}, 3)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	return nil
}

// GetOpenHistory implements ports.HistoryStore.GetOpenHistory
func (r *SQLiteStore) GetOpenHistory(ctx context.Context, sessionID int64) (*domain.HistoryRecord, error) {
	var model HistoryModel
	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Where("session_id = ? AND end_reason = ?", sessionID, string(domain.EndReasonInProgress)).
			First(&model).Error
	}, 3)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoOpenHistory
		}
		return nil, err
	}

	rec := historyModelToDomain(model)
	return &rec, nil
}

// UpdateOpenHistory implements ports.HistoryStore.UpdateOpenHistory
func (r *SQLiteStore) UpdateOpenHistory(ctx context.Context, rec domain.HistoryRecord) error {
	return withRetry(func() error {
		result := r.db.WithContext(ctx).
			Model(&HistoryModel{}).
			Where("session_id = ? AND end_reason = ?", rec.SessionID, string(domain.EndReasonInProgress)).
			Updates(map[string]any{
				"name":           rec.Name,
				"location":       rec.Location,
				"note":           rec.Note,
				"shift":          int(rec.Shift),
				"is_paid":        rec.IsPaid,
				"payment_method": string(rec.PaymentMethod),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrNoOpenHistory
		}
		return nil
	}, 3)
}

// FinalizeHistory implements ports.HistoryStore.FinalizeHistory
func (r *SQLiteStore) FinalizeHistory(ctx context.Context, sessionID int64, close domain.HistoryClose) (bool, error) {
	var closed bool
	err := withRetry(func() error {
		result := r.db.WithContext(ctx).
			Model(&HistoryModel{}).
			Where("session_id = ? AND end_reason = ?", sessionID, string(domain.EndReasonInProgress)).
			Updates(map[string]any{
				"end_time":         close.EndTime,
				"duration_minutes": close.DurationMinutes,
				"final_cost":       close.FinalCost.String(),
				"is_paid":          close.IsPaid,
				"payment_method":   string(close.PaymentMethod),
				"end_reason":       string(close.Reason),
			})
		if result.Error != nil {
			return result.Error
		}
		closed = result.RowsAffected > 0
		return nil
	}, 3)
	if err != nil {
		return false, err
	}
	return closed, nil
}

// ReopenHistory implements ports.HistoryStore.ReopenHistory
func (r *SQLiteStore) ReopenHistory(ctx context.Context, sessionID int64) error {
	return withRetry(func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var model HistoryModel
			err := tx.
				Where("session_id = ? AND end_reason <> ?", sessionID, string(domain.EndReasonInProgress)).
				Order("end_time DESC").
				First(&model).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrNoOpenHistory
				}
				return err
			}

			return tx.Model(&HistoryModel{}).
				Where("id = ?", model.ID).
				Updates(map[string]any{
					"end_time":   nil,
					"final_cost": "0",
					"end_reason": string(domain.EndReasonInProgress),
				}).Error
		})
	}, 3)
}

// ListHistory implements ports.HistoryStore.ListHistory
func (r *SQLiteStore) ListHistory(ctx context.Context, businessDay time.Time, shift domain.Shift) ([]domain.HistoryRecord, error) {
	day := time.Date(businessDay.Year(), businessDay.Month(), businessDay.Day(),
		0, 0, 0, 0, businessDay.Location())

	var models []HistoryModel
	err := withRetry(func() error {
		query := r.db.WithContext(ctx).Where("session_date = ?", day)
		if shift != domain.ShiftAll {
			query = query.Where("shift = ?", int(shift))
		}
		return query.Order("start_time ASC").Find(&models).Error
	}, 3)
	if err != nil {
		return nil, err
	}

	result := make([]domain.HistoryRecord, len(models))
	for i, m := range models {
		result[i] = historyModelToDomain(m)
	}
	return result, nil
}

// withRetry retries operations on SQLITE_BUSY with exponential backoff
func withRetry(fn func() error, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && (sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked) {
			time.Sleep(time.Millisecond * time.Duration(50*(i+1)))
			continue
		}

		return err
	}
	return fmt.Errorf("operation failed after %d retries", maxRetries)
}
