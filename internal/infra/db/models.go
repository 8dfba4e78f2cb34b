package db

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type userModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;not null"`
	Phone     string         `gorm:""`
	IsActive  bool           `gorm:"index;not null;default:true"`
	Settings  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (userModel) TableName() string { return "users" }

type subscriptionModel struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"index:idx_subscriptions_user_enabled,priority:1;not null"`

	Ticker          *string `gorm:"index"`
	Sector          *string
	MarketCap       *string
	TransactionType *string

	SharePriceMin      *decimal.Decimal `gorm:"type:numeric"`
	SharePriceMax      *decimal.Decimal `gorm:"type:numeric"`
	TotalAmountMin     *decimal.Decimal `gorm:"type:numeric"`
	TotalAmountMax     *decimal.Decimal `gorm:"type:numeric"`
	TotalSharesMin     *decimal.Decimal `gorm:"type:numeric"`
	TotalSharesMax     *decimal.Decimal `gorm:"type:numeric"`
	SharesAfterMin     *decimal.Decimal `gorm:"type:numeric"`
	SharesAfterMax     *decimal.Decimal `gorm:"type:numeric"`
	OwnershipChangeMin *decimal.Decimal `gorm:"type:numeric"`
	OwnershipChangeMax *decimal.Decimal `gorm:"type:numeric"`

	Settings  datatypes.JSON `gorm:"type:jsonb;not null"`
	Enabled   bool           `gorm:"index:idx_subscriptions_user_enabled,priority:2"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_subscriptions_user_enabled,priority:3"`
}

func (subscriptionModel) TableName() string { return "subscriptions" }

type tradeModel struct {
	ID              uint   `gorm:"primaryKey"`
	Filing          string `gorm:"not null"`
	AccessionNo     string `gorm:"index;not null"`
	CIK             string
	Ticker          string `gorm:"index;not null"`
	OfficerName     string
	CompanyName     string
	SearchText      string `gorm:"column:q"`
	Sector          string
	MarketCap       string
	PeriodOfReport  string
	TransactionType string    `gorm:"index;not null"`
	DisclosedDate   time.Time `gorm:"index"`
	Link            string

	SharePrice                  *decimal.Decimal `gorm:"type:numeric"`
	TotalShares                 *decimal.Decimal `gorm:"type:numeric"`
	TotalAmountSpent            *decimal.Decimal `gorm:"type:numeric"`
	TotalSharesAfterTransaction *decimal.Decimal `gorm:"type:numeric"`
	ChangeInSharesPercentage    *decimal.Decimal `gorm:"type:numeric"`

	OneWeekReturn   *decimal.Decimal `gorm:"type:numeric"`
	OneMonthReturn  *decimal.Decimal `gorm:"type:numeric"`
	SixMonthsReturn *decimal.Decimal `gorm:"type:numeric"`

	MatchedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (tradeModel) TableName() string { return "trades" }
