package repository

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"snapspend/internal/models"
	"snapspend/pkg/config"
	"snapspend/pkg/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type ExpenseRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo *ExpenseRepository
}

func (s *ExpenseRepositorySuite) SetupTest() {
	db, err := sqlite.Open(context.Background(), &config.DatabaseConfig{Path: ":memory:"}, zap.NewNop())
	require.NoError(s.T(), err, "failed to open test database")
	s.db = db
	s.repo = NewExpenseRepository(db, zap.NewNop())
}

func (s *ExpenseRepositorySuite) TearDownTest() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *ExpenseRepositorySuite) TestInsertAssignsIDAndTimestamp() {
	rec := &models.ExpenseRecord{
		UserID:   "demo-user-001",
		Date:     "2024-01-05",
		Merchant: "Cafe Luna",
		Category: "coffee",
		Total:    4.50,
		Currency: "USD",
		Notes:    "latte",
		RawJSON:  `{"merchant":"Cafe Luna"}`,
	}

	id, err := s.repo.Insert(context.Background(), rec)
	require.NoError(s.T(), err)
	assert.Greater(s.T(), id, int64(0))
	assert.Equal(s.T(), id, rec.ID)
	assert.False(s.T(), rec.CreatedAt.IsZero(), "creation timestamp must be assigned on insert")
}

func (s *ExpenseRepositorySuite) TestInsertRequiresUserID() {
	_, err := s.repo.Insert(context.Background(), &models.ExpenseRecord{Merchant: "Cafe Luna"})
	assert.Error(s.T(), err)
}

func (s *ExpenseRepositorySuite) TestRoundTripFidelity() {
	ctx := context.Background()

	inserted := make([]*models.ExpenseRecord, 0, 3)
	for i := 0; i < 3; i++ {
		rec := &models.ExpenseRecord{
			UserID:   "round-trip-user",
			Date:     fmt.Sprintf("2024-02-0%d", i+1),
			Merchant: fmt.Sprintf("Merchant %d", i),
			Category: "groceries",
			Total:    10.25 + float64(i),
			Currency: "EUR",
			Notes:    fmt.Sprintf("note %d", i),
			RawJSON:  fmt.Sprintf(`{"n":%d}`, i),
		}
		_, err := s.repo.Insert(ctx, rec)
		require.NoError(s.T(), err)
		inserted = append(inserted, rec)
	}

	got, err := s.repo.Recent(ctx, "round-trip-user", 3)
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 3)

	// Most-recent-insert-first: got[0] is inserted[2]
	for i, rec := range got {
		want := inserted[len(inserted)-1-i]
		assert.Equal(s.T(), want.ID, rec.ID)
		assert.Equal(s.T(), want.UserID, rec.UserID)
		assert.Equal(s.T(), want.Date, rec.Date)
		assert.Equal(s.T(), want.Merchant, rec.Merchant)
		assert.Equal(s.T(), want.Category, rec.Category)
		assert.Equal(s.T(), want.Total, rec.Total)
		assert.Equal(s.T(), want.Currency, rec.Currency)
		assert.Equal(s.T(), want.Notes, rec.Notes)
		assert.Equal(s.T(), want.RawJSON, rec.RawJSON)
	}
}

func (s *ExpenseRepositorySuite) TestRecentOrderAndLimit() {
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.repo.Insert(ctx, &models.ExpenseRecord{
			UserID:   "limit-user",
			Merchant: fmt.Sprintf("Merchant %d", i),
		})
		require.NoError(s.T(), err)
	}

	got, err := s.repo.Recent(ctx, "limit-user", 3)
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 3, "never more than limit records")

	assert.Equal(s.T(), "Merchant 4", got[0].Merchant)
	assert.Equal(s.T(), "Merchant 3", got[1].Merchant)
	assert.Equal(s.T(), "Merchant 2", got[2].Merchant)
	assert.Greater(s.T(), got[0].ID, got[1].ID)
	assert.Greater(s.T(), got[1].ID, got[2].ID)
}

func (s *ExpenseRepositorySuite) TestRecentDefaultLimit() {
	ctx := context.Background()

	for i := 0; i < DefaultRecentLimit+5; i++ {
		_, err := s.repo.Insert(ctx, &models.ExpenseRecord{UserID: "busy-user"})
		require.NoError(s.T(), err)
	}

	got, err := s.repo.Recent(ctx, "busy-user", 0)
	require.NoError(s.T(), err)
	assert.Len(s.T(), got, DefaultRecentLimit)
}

func (s *ExpenseRepositorySuite) TestRecentIsolatesUsers() {
	ctx := context.Background()

	_, err := s.repo.Insert(ctx, &models.ExpenseRecord{UserID: "alice", Merchant: "A-Mart"})
	require.NoError(s.T(), err)
	_, err = s.repo.Insert(ctx, &models.ExpenseRecord{UserID: "bob", Merchant: "B-Mart"})
	require.NoError(s.T(), err)

	got, err := s.repo.Recent(ctx, "alice", 10)
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 1)
	assert.Equal(s.T(), "alice", got[0].UserID)
	assert.Equal(s.T(), "A-Mart", got[0].Merchant)
}

func (s *ExpenseRepositorySuite) TestRecentEmptyIsNotAnError() {
	got, err := s.repo.Recent(context.Background(), "nobody", 10)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), got)
}

func TestExpenseRepositorySuite(t *testing.T) {
	suite.Run(t, new(ExpenseRepositorySuite))
}
