package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/insiderwatch/insiderwatch/internal/domain"
	"github.com/insiderwatch/insiderwatch/internal/refdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users map[uint]*domain.User
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, userID uint) (*domain.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	if f.users == nil {
		f.users = make(map[uint]*domain.User)
	}
	user.ID = uint(len(f.users) + 1)
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) SetActive(ctx context.Context, userID uint, active bool) error {
	user, ok := f.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	user.Active = active
	return nil
}

func (f *fakeUserRepo) UpdateSettings(ctx context.Context, userID uint, settings []byte) error {
	user, ok := f.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	user.Settings = json.RawMessage(settings)
	return nil
}

func (f *fakeUserRepo) ListByEmailPreference(ctx context.Context, flag string) ([]domain.User, error) {
	var out []domain.User
	for _, user := range f.users {
		if !user.Active {
			continue
		}
		var settings map[string]any
		if err := json.Unmarshal(user.Settings, &settings); err != nil {
			continue
		}
		if enabled, ok := settings[flag].(bool); ok && enabled {
			out = append(out, *user)
		}
	}
	return out, nil
}

type recordingSubRepo struct {
	fakeSubscriptionRepo
	created []*domain.Subscription
}

func (r *recordingSubRepo) Create(ctx context.Context, sub *domain.Subscription) error {
	sub.ID = uint(len(r.created) + 1)
	r.created = append(r.created, sub)
	return nil
}

func newSubscriptionFixture(t *testing.T) (*SubscriptionUsecase, *recordingSubRepo) {
	t.Helper()
	users := &fakeUserRepo{users: map[uint]*domain.User{
		1: {ID: 1, Email: "a@example.com", Phone: "+15550100", Active: true},
	}}
	subs := &recordingSubRepo{}
	return NewSubscriptionUsecase(users, subs, refdata.Default()), subs
}

func TestSubscriptionCreate_NormalizesFilters(t *testing.T) {
	uc, repo := newSubscriptionFixture(t)

	sub, err := uc.Create(context.Background(), 1, SubscriptionInput{
		Ticker:          strPtr(" aapl "),
		Sector:          strPtr("Technology"),
		MarketCap:       strPtr("Mega Cap"),
		TransactionType: strPtr("p"),
		SharePriceMin:   decPtr("100"),
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)

	assert.Equal(t, "AAPL", *sub.Ticker)
	assert.Equal(t, "technology", *sub.Sector)
	assert.Equal(t, "mega", *sub.MarketCap)
	assert.Equal(t, "P", *sub.TransactionType)
	assert.True(t, sub.Enabled)
	assert.Equal(t, json.RawMessage(`{}`), sub.Settings)
}

func TestSubscriptionCreate_AcceptsTaxonomyKeysDirectly(t *testing.T) {
	uc, _ := newSubscriptionFixture(t)

	sub, err := uc.Create(context.Background(), 1, SubscriptionInput{
		Sector:    strPtr("financial-services"),
		MarketCap: strPtr("small"),
	})
	require.NoError(t, err)
	assert.Equal(t, "financial-services", *sub.Sector)
	assert.Equal(t, "small", *sub.MarketCap)
}

func TestSubscriptionCreate_Validation(t *testing.T) {
	uc, _ := newSubscriptionFixture(t)

	tests := []struct {
		name    string
		userID  uint
		input   SubscriptionInput
		wantErr error
	}{
		{"unknown user", 99, SubscriptionInput{}, ErrUserNotFound},
		{"unknown sector", 1, SubscriptionInput{Sector: strPtr("Astrology")}, ErrUnknownSector},
		{"unknown market cap", 1, SubscriptionInput{MarketCap: strPtr("Giga Cap")}, ErrUnknownMarketCap},
		{"bad transaction type", 1, SubscriptionInput{TransactionType: strPtr("X")}, ErrInvalidTransactionType},
		{"inverted price range", 1, SubscriptionInput{SharePriceMin: decPtr("10"), SharePriceMax: decPtr("5")}, ErrInvalidRange},
		{"inverted ownership range", 1, SubscriptionInput{OwnershipChangeMin: decPtr("3"), OwnershipChangeMax: decPtr("1")}, ErrInvalidRange},
		{"broken settings", 1, SubscriptionInput{Settings: json.RawMessage(`{"a":`)}, ErrInvalidSettings},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Create(context.Background(), tt.userID, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSubscriptionCreate_EqualBoundsAllowed(t *testing.T) {
	uc, _ := newSubscriptionFixture(t)

	_, err := uc.Create(context.Background(), 1, SubscriptionInput{
		SharePriceMin: decPtr("10"),
		SharePriceMax: decPtr("10"),
	})
	assert.NoError(t, err)
}

func TestUserRegisterOrGet(t *testing.T) {
	users := &fakeUserRepo{}
	uc := NewUserUsecase(users)

	created, err := uc.RegisterOrGet(context.Background(), "a@example.com", "+15550100")
	require.NoError(t, err)
	assert.True(t, created.Active)
	assert.JSONEq(t, `{"daily_digest":true,"weekly_sector_report":true}`, string(created.Settings))

	again, err := uc.RegisterOrGet(context.Background(), "a@example.com", "ignored")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, "+15550100", again.Phone)
}

func TestSetEmailPreference(t *testing.T) {
	users := &fakeUserRepo{users: map[uint]*domain.User{
		1: {ID: 1, Email: "a@example.com", Active: true,
			Settings: json.RawMessage(`{"daily_digest":true,"weekly_sector_report":true,"theme":"dark"}`)},
	}}
	uc := NewUserUsecase(users)

	require.NoError(t, uc.SetEmailPreference(context.Background(), 1, PrefDailyDigest, false))

	// Only the named flag flips; unrelated keys survive.
	assert.JSONEq(t, `{"daily_digest":false,"weekly_sector_report":true,"theme":"dark"}`,
		string(users.users[1].Settings))

	assert.ErrorIs(t, uc.SetEmailPreference(context.Background(), 1, "marketing_spam", false), ErrUnknownPreference)
	assert.ErrorIs(t, uc.SetEmailPreference(context.Background(), 99, PrefDailyDigest, false), ErrUserNotFound)
}
