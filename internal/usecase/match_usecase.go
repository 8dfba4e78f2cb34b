package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/insiderwatch/insiderwatch/internal/domain"
)

// MatchUsecase runs one matching pass: fetch candidate subscriptions joined
// with their owners, evaluate each against the event, and collect distinct
// recipients. It holds no state across calls; concurrent passes for
// different events are safe.
type MatchUsecase struct {
	subs domain.SubscriptionRepository
}

func NewMatchUsecase(subs domain.SubscriptionRepository) *MatchUsecase {
	return &MatchUsecase{subs: subs}
}

// FindRecipients returns the deduplicated recipients for one event. An empty
// slice with a nil error means no subscription matched; a repository failure
// is returned as an error so callers can tell the two apart.
func (u *MatchUsecase) FindRecipients(ctx context.Context, event domain.TradeEvent) ([]domain.MatchResult, error) {
	return u.findRecipients(ctx, event, time.Time{})
}

// FindRecipientsSubscribedAfter is FindRecipients restricted to
// subscriptions created after the given instant. The scheduled re-matching
// pass uses it so recipients already delivered to inline are not matched a
// second time.
func (u *MatchUsecase) FindRecipientsSubscribedAfter(ctx context.Context, event domain.TradeEvent, after time.Time) ([]domain.MatchResult, error) {
	return u.findRecipients(ctx, event, after)
}

func (u *MatchUsecase) findRecipients(ctx context.Context, event domain.TradeEvent, subscribedAfter time.Time) ([]domain.MatchResult, error) {
	candidates, err := u.subs.ListEnabledWithUsers(ctx, event.Ticker)
	if err != nil {
		return nil, fmt.Errorf("list candidate subscriptions: %w", err)
	}

	results := make([]domain.MatchResult, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		if !subscribedAfter.IsZero() && !candidate.Subscription.CreatedAt.After(subscribedAfter) {
			continue
		}
		if !Matches(candidate.Subscription, event) {
			continue
		}
		result := domain.MatchResult{
			Email:    candidate.Email,
			Phone:    candidate.Phone,
			Settings: candidate.Subscription.Settings,
		}
		key := result.Email + "\x00" + result.Phone + "\x00" + string(result.Settings)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		results = append(results, result)
	}

	return results, nil
}
