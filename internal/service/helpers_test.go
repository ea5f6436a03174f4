package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/tenancy-service/internal/model"
	"github.com/suteetoe/tenancy-service/pkg/database"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// newTestDB opens a private in-memory database whose timestamps come from clock
func newTestDB(t *testing.T, clock *fakeClock) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        clock.Now,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db, zap.NewNop()))
	return db
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, mobile, message string) error {
	args := m.Called(ctx, mobile, message)
	return args.Error(0)
}

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func validUserInput(mobile string) CreateUserInput {
	return CreateUserInput{
		Mobile:      mobile,
		Name:        strPtr("Asha Rao"),
		Address:     "12 MG Road",
		FullAddress: "12 MG Road, Indiranagar, Bengaluru",
		City:        "Bengaluru",
		State:       "Karnataka",
		Pincode:     "560038",
		Bedrooms:    2,
		Bathrooms:   1,
	}
}

func seedUser(t *testing.T, db *gorm.DB, mobile string) *model.User {
	t.Helper()
	user, err := NewUserService(db, zap.NewNop()).CreateWithProperty(context.Background(), validUserInput(mobile))
	require.NoError(t, err)
	return user
}

func identityOf(u *model.User) Identity {
	return Identity{UserID: u.ID, Mobile: u.Mobile, PropertyID: u.PropertyID}
}

func setStatus(t *testing.T, db *gorm.DB, id string, status model.ComplaintStatus) {
	t.Helper()
	require.NoError(t, db.Model(&model.Complaint{}).Where("id = ?", id).Update("status", status).Error)
}

var errInsertFailed = errors.New("insert failed")

// failInserts makes every INSERT into table fail on db
func failInserts(t *testing.T, db *gorm.DB, table string) {
	t.Helper()
	err := db.Callback().Create().Before("gorm:create").Register("test:fail_"+table, func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == table {
			_ = tx.AddError(errInsertFailed)
		}
	})
	require.NoError(t, err)
}
