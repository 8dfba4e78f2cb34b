package secapi

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

type queryRequest struct {
	Query queryClause      `json:"query"`
	From  int              `json:"from"`
	Size  int              `json:"size"`
	Sort  []map[string]any `json:"sort"`
}

type queryClause struct {
	QueryString queryString `json:"query_string"`
}

type queryString struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Total        totalField           `json:"total"`
	Transactions []insiderTransaction `json:"transactions"`
}

type totalField struct {
	Value int `json:"value"`
}

type insiderTransaction struct {
	ID             string `json:"id"`
	AccessionNo    string `json:"accessionNo"`
	FiledAt        string `json:"filedAt"`
	PeriodOfReport string `json:"periodOfReport"`

	Issuer struct {
		CIK           string `json:"cik"`
		TradingSymbol string `json:"tradingSymbol"`
		Name          string `json:"name"`
	} `json:"issuer"`

	ReportingOwner struct {
		Name         string `json:"name"`
		Relationship struct {
			IsOfficer    bool   `json:"isOfficer"`
			OfficerTitle string `json:"officerTitle"`
		} `json:"relationship"`
	} `json:"reportingOwner"`

	NonDerivativeTable struct {
		Transactions []nonDerivativeTransaction `json:"transactions"`
		Holdings     []nonDerivativeHolding     `json:"holdings"`
	} `json:"nonDerivativeTable"`
}

type nonDerivativeTransaction struct {
	Coding struct {
		Code string `json:"code"`
	} `json:"coding"`
	Amounts struct {
		Shares        nullableDecimal `json:"shares"`
		PricePerShare nullableDecimal `json:"pricePerShare"`
	} `json:"amounts"`
	OwnershipNature struct {
		DirectOrIndirectOwnership string `json:"directOrIndirectOwnership"`
		NatureOfOwnership         string `json:"natureOfOwnership"`
	} `json:"ownershipNature"`
	PostTransactionAmounts struct {
		SharesOwnedFollowingTransaction nullableDecimal `json:"sharesOwnedFollowingTransaction"`
	} `json:"postTransactionAmounts"`
}

type nonDerivativeHolding struct {
	PostTransactionAmounts struct {
		SharesOwnedFollowingTransaction nullableDecimal `json:"sharesOwnedFollowingTransaction"`
	} `json:"postTransactionAmounts"`
}

type nullableDecimal struct {
	Decimal decimal.Decimal
	Valid   bool
}

func (n *nullableDecimal) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		n.Valid = false
		return nil
	}
	trimmed := strings.TrimSpace(string(data))
	if len(trimmed) == 0 {
		n.Valid = false
		return nil
	}
	if trimmed[0] == '"' && trimmed[len(trimmed)-1] == '"' {
		trimmed = strings.Trim(trimmed, "\"")
	}
	dec, err := decimal.NewFromString(trimmed)
	if err != nil {
		// An unparseable amount leaves the field absent rather than
		// failing the whole record.
		n.Valid = false
		return nil
	}
	n.Decimal = dec
	n.Valid = true
	return nil
}

func (n nullableDecimal) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Decimal.String())
}
