// Package service holds the business operations behind the HTTP handlers.
// Every multi-row write runs inside a single gorm transaction.
package service

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Clock returns the current time. Tests replace it to simulate expiry.
type Clock func() time.Time

// SystemClock reads the wall clock
func SystemClock() time.Time {
	return time.Now()
}

// Identity is the caller resolved from a session token
type Identity struct {
	UserID     string
	Mobile     string
	PropertyID string
}

// Scope bounds which complaints a caller may see
type Scope string

const (
	ScopeSelf       Scope = "self"
	ScopeSupervisor Scope = "supervisor"
)

const pgUniqueViolation = "23505"

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// countBy returns row counts of a model grouped by column
func countBy(db *gorm.DB, value interface{}, column string) (map[string]int64, error) {
	var rows []struct {
		GroupKey string
		Total    int64
	}
	err := db.Model(value).
		Select(column + " AS group_key, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.GroupKey] = row.Total
	}
	return counts, nil
}
