package service

import (
	"context"
	"testing"
	"time"

	"points-mall/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePointsStore struct {
	user         *models.User
	transactions []models.PointsTransaction
	checkinDays  map[string]bool
}

func newFakePointsStore(user *models.User) *fakePointsStore {
	return &fakePointsStore{
		user:        user,
		checkinDays: map[string]bool{},
	}
}

func (f *fakePointsStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, models.ErrUserNotFound
	}
	u := *f.user
	return &u, nil
}

func (f *fakePointsStore) HasCheckedInToday(ctx context.Context, userID string, startOfDay time.Time) (bool, error) {
	return f.checkinDays[startOfDay.Format("2006-01-02")], nil
}

func (f *fakePointsStore) RecordCheckin(ctx context.Context, userID string, award int64, day string) error {
	if f.checkinDays[day] {
		return models.ErrAlreadyCheckedIn
	}
	f.checkinDays[day] = true
	f.user.Points += award
	f.transactions = append(f.transactions, models.PointsTransaction{
		UserID:      userID,
		Amount:      award,
		Kind:        models.TxKindEarn,
		Description: models.TxDescCheckin,
	})
	return nil
}

func (f *fakePointsStore) TransactionsByUser(ctx context.Context, userID string, since *time.Time, description string) ([]models.PointsTransaction, error) {
	return f.transactions, nil
}

func (f *fakePointsStore) SumTransactions(ctx context.Context, userID string) (int64, error) {
	var sum int64
	for _, tx := range f.transactions {
		sum += tx.Amount
	}
	return sum, nil
}

type fakeCheckinGuard struct {
	claimed map[string]bool
}

func newFakeCheckinGuard() *fakeCheckinGuard {
	return &fakeCheckinGuard{claimed: map[string]bool{}}
}

func (f *fakeCheckinGuard) ClaimDailyCheckin(ctx context.Context, userID, day string, until time.Time) (bool, error) {
	key := userID + ":" + day
	if f.claimed[key] {
		return false, nil
	}
	f.claimed[key] = true
	return true, nil
}

func (f *fakeCheckinGuard) ReleaseDailyCheckin(ctx context.Context, userID, day string) error {
	delete(f.claimed, userID+":"+day)
	return nil
}

func newTestPointsService(st *fakePointsStore, guard *fakeCheckinGuard, now time.Time) *PointsService {
	svc := NewPointsService(st, guard, nil, 50)
	svc.now = func() time.Time { return now }
	return svc
}

func TestDailyCheckinAwardsOnce(t *testing.T) {
	user := &models.User{ID: "u1", Points: 100}
	st := newFakePointsStore(user)
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	svc := newTestPointsService(st, newFakeCheckinGuard(), now)

	award, err := svc.DailyCheckin(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(50), award)
	assert.Equal(t, int64(150), user.Points)

	require.Len(t, st.transactions, 1)
	assert.Equal(t, int64(50), st.transactions[0].Amount)
	assert.Equal(t, models.TxKindEarn, st.transactions[0].Kind)
	assert.Equal(t, models.TxDescCheckin, st.transactions[0].Description)
}

func TestDailyCheckinRejectsSameDay(t *testing.T) {
	user := &models.User{ID: "u1", Points: 100}
	st := newFakePointsStore(user)
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	svc := newTestPointsService(st, newFakeCheckinGuard(), now)

	_, err := svc.DailyCheckin(context.Background(), "u1")
	require.NoError(t, err)

	_, err = svc.DailyCheckin(context.Background(), "u1")
	assert.ErrorIs(t, err, models.ErrAlreadyCheckedIn)

	assert.Equal(t, int64(150), user.Points)
	assert.Len(t, st.transactions, 1)
}

func TestDailyCheckinAllowsNextDay(t *testing.T) {
	user := &models.User{ID: "u1", Points: 0}
	st := newFakePointsStore(user)
	guard := newFakeCheckinGuard()

	day1 := time.Date(2024, 6, 1, 23, 50, 0, 0, time.UTC)
	svc := newTestPointsService(st, guard, day1)
	_, err := svc.DailyCheckin(context.Background(), "u1")
	require.NoError(t, err)

	day2 := day1.Add(20 * time.Minute)
	svc.now = func() time.Time { return day2 }
	award, err := svc.DailyCheckin(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(50), award)

	assert.Equal(t, int64(100), user.Points)
	assert.Len(t, st.transactions, 2)
}

func TestDailyCheckinSurvivesGuardOutage(t *testing.T) {
	user := &models.User{ID: "u1", Points: 0}
	st := newFakePointsStore(user)
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	svc := NewPointsService(st, nil, nil, 50)
	svc.now = func() time.Time { return now }

	award, err := svc.DailyCheckin(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(50), award)

	_, err = svc.DailyCheckin(context.Background(), "u1")
	assert.ErrorIs(t, err, models.ErrAlreadyCheckedIn)
}

func TestVerifyLedger(t *testing.T) {
	user := &models.User{ID: "u1", Points: 0}
	st := newFakePointsStore(user)
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	svc := newTestPointsService(st, newFakeCheckinGuard(), now)

	_, err := svc.DailyCheckin(context.Background(), "u1")
	require.NoError(t, err)

	ok, err := svc.VerifyLedger(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	// A balance drifting away from its ledger must be flagged
	user.Points += 7
	ok, err = svc.VerifyLedger(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}
