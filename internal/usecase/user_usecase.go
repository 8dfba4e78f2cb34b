package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/insiderwatch/insiderwatch/internal/domain"
)

// Account-level settings hold the digest opt-ins consumed by the scheduled
// email jobs. Per-alert channel flags live on each subscription's settings
// payload instead.
const (
	PrefDailyDigest        = "daily_digest"
	PrefWeeklySectorReport = "weekly_sector_report"
)

var defaultUserSettings = json.RawMessage(`{"daily_digest":true,"weekly_sector_report":true}`)

type UserUsecase struct {
	users domain.UserRepository
}

func NewUserUsecase(users domain.UserRepository) *UserUsecase {
	return &UserUsecase{users: users}
}

// RegisterOrGet returns the user registered under email, creating an active
// account with default delivery preferences when none exists.
func (u *UserUsecase) RegisterOrGet(ctx context.Context, email, phone string) (*domain.User, error) {
	user, err := u.users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	newUser := &domain.User{
		Email:    email,
		Phone:    phone,
		Active:   true,
		Settings: defaultUserSettings,
	}
	if err := u.users.Create(ctx, newUser); err != nil {
		return nil, err
	}
	return newUser, nil
}

// SetEmailPreference flips one boolean flag in the user's account settings,
// leaving every other key untouched.
func (u *UserUsecase) SetEmailPreference(ctx context.Context, userID uint, pref string, enabled bool) error {
	if pref != PrefDailyDigest && pref != PrefWeeklySectorReport {
		return ErrUnknownPreference
	}

	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	settings := map[string]any{}
	if len(user.Settings) > 0 {
		if err := json.Unmarshal(user.Settings, &settings); err != nil {
			settings = map[string]any{}
		}
	}
	settings[pref] = enabled

	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return u.users.UpdateSettings(ctx, userID, raw)
}

func (u *UserUsecase) Deactivate(ctx context.Context, userID uint) error {
	if err := u.users.SetActive(ctx, userID, false); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
