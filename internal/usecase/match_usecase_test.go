package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/insiderwatch/insiderwatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscriptionRepo struct {
	candidates []domain.SubscriptionWithUser
	err        error
	gotTicker  *string
}

func (f *fakeSubscriptionRepo) Create(ctx context.Context, sub *domain.Subscription) error {
	return nil
}

func (f *fakeSubscriptionRepo) ListByUser(ctx context.Context, userID uint) ([]domain.Subscription, error) {
	return nil, nil
}

func (f *fakeSubscriptionRepo) SetEnabled(ctx context.Context, userID, subID uint, enabled bool) error {
	return nil
}

func (f *fakeSubscriptionRepo) Delete(ctx context.Context, userID, subID uint) error {
	return nil
}

func (f *fakeSubscriptionRepo) ListEnabledWithUsers(ctx context.Context, ticker *string) ([]domain.SubscriptionWithUser, error) {
	f.gotTicker = ticker
	return f.candidates, f.err
}

func candidate(email, phone, settings string, sub domain.Subscription) domain.SubscriptionWithUser {
	sub.Settings = json.RawMessage(settings)
	return domain.SubscriptionWithUser{Subscription: sub, Email: email, Phone: phone}
}

func TestFindRecipients_EmptyIsNotAnError(t *testing.T) {
	repo := &fakeSubscriptionRepo{}
	engine := NewMatchUsecase(repo)

	results, err := engine.FindRecipients(context.Background(), appleEvent("150"))
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindRecipients_RepositoryErrorPropagates(t *testing.T) {
	repoErr := errors.New("connection refused")
	repo := &fakeSubscriptionRepo{err: repoErr}
	engine := NewMatchUsecase(repo)

	results, err := engine.FindRecipients(context.Background(), appleEvent("150"))
	require.Error(t, err)
	assert.ErrorIs(t, err, repoErr)
	assert.Nil(t, results)
}

func TestFindRecipients_PassesTickerHint(t *testing.T) {
	repo := &fakeSubscriptionRepo{}
	engine := NewMatchUsecase(repo)

	_, err := engine.FindRecipients(context.Background(), appleEvent("150"))
	require.NoError(t, err)
	require.NotNil(t, repo.gotTicker)
	assert.Equal(t, "AAPL", *repo.gotTicker)
}

func TestFindRecipients_ToleratesUnmatchableCandidates(t *testing.T) {
	// The repository may skip pre-filtering entirely; rows that cannot
	// match are weeded out by evaluation.
	repo := &fakeSubscriptionRepo{candidates: []domain.SubscriptionWithUser{
		candidate("a@example.com", "+15550100", `{"x":1}`, domain.Subscription{Ticker: strPtr("AAPL")}),
		candidate("b@example.com", "+15550101", `{"x":2}`, domain.Subscription{Ticker: strPtr("TSLA")}),
	}}
	engine := NewMatchUsecase(repo)

	results, err := engine.FindRecipients(context.Background(), appleEvent("150"))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a@example.com", results[0].Email)
}

func TestFindRecipients_DeduplicatesFullTuples(t *testing.T) {
	// Two subscriptions, same user, identical settings: one result.
	repo := &fakeSubscriptionRepo{candidates: []domain.SubscriptionWithUser{
		candidate("a@example.com", "+15550100", `{"email_notification":true}`, domain.Subscription{Ticker: strPtr("AAPL")}),
		candidate("a@example.com", "+15550100", `{"email_notification":true}`, domain.Subscription{}),
	}}
	engine := NewMatchUsecase(repo)

	results, err := engine.FindRecipients(context.Background(), appleEvent("150"))
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestFindRecipients_DifferentSettingsYieldSeparateResults(t *testing.T) {
	// Same user, one ticker-scoped and one catch-all subscription with
	// different settings payloads: both come back.
	repo := &fakeSubscriptionRepo{candidates: []domain.SubscriptionWithUser{
		candidate("a@example.com", "+15550100", `{"email_notification":true}`, domain.Subscription{Ticker: strPtr("AAPL")}),
		candidate("a@example.com", "+15550100", `{"text_notification":true}`, domain.Subscription{}),
	}}
	engine := NewMatchUsecase(repo)

	results, err := engine.FindRecipients(context.Background(), appleEvent("150"))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, results[0].Email, results[1].Email)
	assert.NotEqual(t, string(results[0].Settings), string(results[1].Settings))
}

func TestFindRecipientsSubscribedAfter_FiltersByCreationTime(t *testing.T) {
	cutoff := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	older := candidate("old@example.com", "", `{}`, domain.Subscription{
		Ticker:    strPtr("AAPL"),
		CreatedAt: cutoff.Add(-time.Hour),
	})
	newer := candidate("new@example.com", "", `{}`, domain.Subscription{
		Ticker:    strPtr("AAPL"),
		CreatedAt: cutoff.Add(time.Hour),
	})
	repo := &fakeSubscriptionRepo{candidates: []domain.SubscriptionWithUser{older, newer}}
	engine := NewMatchUsecase(repo)

	results, err := engine.FindRecipientsSubscribedAfter(context.Background(), appleEvent("150"), cutoff)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new@example.com", results[0].Email)

	// The zero cutoff places no restriction, matching FindRecipients.
	results, err = engine.FindRecipientsSubscribedAfter(context.Background(), appleEvent("150"), time.Time{})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestFindRecipients_SettingsEchoedVerbatim(t *testing.T) {
	settings := `{"email_notification":true,"digest":{"hour":9},"tags":["ceo","tech"]}`
	repo := &fakeSubscriptionRepo{candidates: []domain.SubscriptionWithUser{
		candidate("a@example.com", "+15550100", settings, domain.Subscription{}),
	}}
	engine := NewMatchUsecase(repo)

	results, err := engine.FindRecipients(context.Background(), domain.TradeEvent{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.JSONEq(t, settings, string(results[0].Settings))
	assert.Equal(t, settings, string(results[0].Settings))
}
