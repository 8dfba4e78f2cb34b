package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/insiderwatch/insiderwatch/internal/domain"
	"github.com/insiderwatch/insiderwatch/internal/usecase"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type registerUserRequest struct {
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
}

type userResponse struct {
	ID       uint            `json:"id"`
	Email    string          `json:"email"`
	Phone    string          `json:"phone,omitempty"`
	Active   bool            `json:"active"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

func mapUser(u *domain.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Email:    u.Email,
		Phone:    u.Phone,
		Active:   u.Active,
		Settings: u.Settings,
	}
}

type subscriptionRequest struct {
	Ticker          *string `json:"ticker"`
	Sector          *string `json:"sector"`
	MarketCap       *string `json:"market_cap"`
	TransactionType *string `json:"transaction_type"`

	SharePriceMin *decimal.Decimal `json:"share_price_min"`
	SharePriceMax *decimal.Decimal `json:"share_price_max"`

	TotalAmountMin *decimal.Decimal `json:"total_amount_min"`
	TotalAmountMax *decimal.Decimal `json:"total_amount_max"`

	TotalSharesMin *decimal.Decimal `json:"total_shares_min"`
	TotalSharesMax *decimal.Decimal `json:"total_shares_max"`

	SharesAfterMin *decimal.Decimal `json:"shares_after_min"`
	SharesAfterMax *decimal.Decimal `json:"shares_after_max"`

	OwnershipChangeMin *decimal.Decimal `json:"ownership_change_min"`
	OwnershipChangeMax *decimal.Decimal `json:"ownership_change_max"`

	Settings json.RawMessage `json:"settings"`
}

func (r subscriptionRequest) toInput() usecase.SubscriptionInput {
	return usecase.SubscriptionInput{
		Ticker:             r.Ticker,
		Sector:             r.Sector,
		MarketCap:          r.MarketCap,
		TransactionType:    r.TransactionType,
		SharePriceMin:      r.SharePriceMin,
		SharePriceMax:      r.SharePriceMax,
		TotalAmountMin:     r.TotalAmountMin,
		TotalAmountMax:     r.TotalAmountMax,
		TotalSharesMin:     r.TotalSharesMin,
		TotalSharesMax:     r.TotalSharesMax,
		SharesAfterMin:     r.SharesAfterMin,
		SharesAfterMax:     r.SharesAfterMax,
		OwnershipChangeMin: r.OwnershipChangeMin,
		OwnershipChangeMax: r.OwnershipChangeMax,
		Settings:           r.Settings,
	}
}

type subscriptionResponse struct {
	ID     uint `json:"id"`
	UserID uint `json:"user_id"`

	Ticker          *string `json:"ticker,omitempty"`
	Sector          *string `json:"sector,omitempty"`
	MarketCap       *string `json:"market_cap,omitempty"`
	TransactionType *string `json:"transaction_type,omitempty"`

	SharePriceMin *decimal.Decimal `json:"share_price_min,omitempty"`
	SharePriceMax *decimal.Decimal `json:"share_price_max,omitempty"`

	TotalAmountMin *decimal.Decimal `json:"total_amount_min,omitempty"`
	TotalAmountMax *decimal.Decimal `json:"total_amount_max,omitempty"`

	TotalSharesMin *decimal.Decimal `json:"total_shares_min,omitempty"`
	TotalSharesMax *decimal.Decimal `json:"total_shares_max,omitempty"`

	SharesAfterMin *decimal.Decimal `json:"shares_after_min,omitempty"`
	SharesAfterMax *decimal.Decimal `json:"shares_after_max,omitempty"`

	OwnershipChangeMin *decimal.Decimal `json:"ownership_change_min,omitempty"`
	OwnershipChangeMax *decimal.Decimal `json:"ownership_change_max,omitempty"`

	Settings  json.RawMessage `json:"settings,omitempty"`
	Enabled   bool            `json:"enabled"`
	CreatedAt time.Time       `json:"created_at"`
}

func mapSubscription(sub domain.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:                 sub.ID,
		UserID:             sub.UserID,
		Ticker:             sub.Ticker,
		Sector:             sub.Sector,
		MarketCap:          sub.MarketCap,
		TransactionType:    sub.TransactionType,
		SharePriceMin:      sub.SharePriceMin,
		SharePriceMax:      sub.SharePriceMax,
		TotalAmountMin:     sub.TotalAmountMin,
		TotalAmountMax:     sub.TotalAmountMax,
		TotalSharesMin:     sub.TotalSharesMin,
		TotalSharesMax:     sub.TotalSharesMax,
		SharesAfterMin:     sub.SharesAfterMin,
		SharesAfterMax:     sub.SharesAfterMax,
		OwnershipChangeMin: sub.OwnershipChangeMin,
		OwnershipChangeMax: sub.OwnershipChangeMax,
		Settings:           sub.Settings,
		Enabled:            sub.Enabled,
		CreatedAt:          sub.CreatedAt,
	}
}

func (s *Server) registerUser(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := s.users.RegisterOrGet(c.Request.Context(), req.Email, req.Phone)
	if err != nil {
		s.respondUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapUser(user))
}

func (s *Server) deactivateUser(c *gin.Context) {
	userID, ok := s.pathID(c, "user_id")
	if !ok {
		return
	}
	if err := s.users.Deactivate(c.Request.Context(), userID); err != nil {
		s.respondUsecaseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) createSubscription(c *gin.Context) {
	userID, ok := s.pathID(c, "user_id")
	if !ok {
		return
	}

	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	sub, err := s.subs.Create(c.Request.Context(), userID, req.toInput())
	if err != nil {
		s.respondUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapSubscription(*sub))
}

func (s *Server) listSubscriptions(c *gin.Context) {
	userID, ok := s.pathID(c, "user_id")
	if !ok {
		return
	}

	subs, err := s.subs.List(c.Request.Context(), userID)
	if err != nil {
		s.respondUsecaseError(c, err)
		return
	}

	out := make([]subscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		out = append(out, mapSubscription(sub))
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": out})
}

func (s *Server) enableSubscription(c *gin.Context) {
	s.setSubscriptionEnabled(c, true)
}

func (s *Server) disableSubscription(c *gin.Context) {
	s.setSubscriptionEnabled(c, false)
}

func (s *Server) setSubscriptionEnabled(c *gin.Context, enabled bool) {
	userID, ok := s.pathID(c, "user_id")
	if !ok {
		return
	}
	subID, ok := s.pathID(c, "sub_id")
	if !ok {
		return
	}

	var err error
	if enabled {
		err = s.subs.Enable(c.Request.Context(), userID, subID)
	} else {
		err = s.subs.Disable(c.Request.Context(), userID, subID)
	}
	if err != nil {
		s.respondUsecaseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteSubscription(c *gin.Context) {
	userID, ok := s.pathID(c, "user_id")
	if !ok {
		return
	}
	subID, ok := s.pathID(c, "sub_id")
	if !ok {
		return
	}

	if err := s.subs.Delete(c.Request.Context(), userID, subID); err != nil {
		s.respondUsecaseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// cancelEmail handles the unsubscribe links embedded in outgoing digests.
// email_type is "d" for the daily digest and "w" for the weekly sector
// report, matching the short codes used in the links themselves.
func (s *Server) cancelEmail(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 32)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, errors.New("user_id must be a positive integer"))
		return
	}

	var pref string
	switch c.Query("email_type") {
	case "d":
		pref = usecase.PrefDailyDigest
	case "w":
		pref = usecase.PrefWeeklySectorReport
	default:
		s.respondError(c, http.StatusBadRequest, errors.New(`email_type must be "d" or "w"`))
		return
	}

	if err := s.users.SetEmailPreference(c.Request.Context(), uint(userID), pref, false); err != nil {
		s.respondUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled", "email_type": c.Query("email_type")})
}

func (s *Server) pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		s.respondError(c, http.StatusBadRequest, errors.New(name+" must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}

func (s *Server) respondUsecaseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrUserNotFound), errors.Is(err, usecase.ErrSubscriptionNotFound):
		s.respondError(c, http.StatusNotFound, err)
	case errors.Is(err, usecase.ErrUnknownSector),
		errors.Is(err, usecase.ErrUnknownMarketCap),
		errors.Is(err, usecase.ErrInvalidTransactionType),
		errors.Is(err, usecase.ErrInvalidRange),
		errors.Is(err, usecase.ErrInvalidSettings),
		errors.Is(err, usecase.ErrUnknownPreference):
		s.respondError(c, http.StatusBadRequest, err)
	default:
		s.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		s.respondError(c, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func (s *Server) respondError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
