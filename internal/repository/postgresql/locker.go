package postgresql

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-service/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-service/internal/pkg/database"
)

// advisoryLocker holds a session-level advisory lock per period. The lock
// lives on a dedicated pooled connection so it survives the transactions
// opened while it is held.
type advisoryLocker struct {
	db *database.DB
}

func NewPeriodLocker(db *database.DB) payroll.PeriodLocker {
	return &advisoryLocker{db: db}
}

// TryLock implements payroll.PeriodLocker.
func (l *advisoryLocker) TryLock(ctx context.Context, periodID string) (func(), error) {
	conn, err := l.db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection for period lock: %w", err)
	}

	var acquired bool
	err = conn.QueryRow(ctx, `SELECT pg_try_advisory_lock(hashtextextended($1, 0))`, periodID).Scan(&acquired)
	if err != nil {
		conn.Release()
		return nil, fmt.Errorf("try period lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, payroll.ErrPeriodBusy
	}

	unlock := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := conn.Exec(ctx, `SELECT pg_advisory_unlock(hashtextextended($1, 0))`, periodID); err != nil {
			// A connection still holding the lock must not go back to the pool.
			slog.Error("Failed to release period lock", "period_id", periodID, "error", err)
			_ = conn.Conn().Close(ctx)
		}
		conn.Release()
	}
	return unlock, nil
}
