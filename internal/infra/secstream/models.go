package secstream

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/insiderwatch/insiderwatch/internal/domain"
)

type filingMessage struct {
	FormType    string `json:"formType"`
	Ticker      string `json:"ticker"`
	CompanyName string `json:"companyName"`
	AccessionNo string `json:"accessionNo"`
	Link        string `json:"linkToFilingDetails"`
}

func decodeFilings(data []byte) ([]domain.Filing, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty message")
	}

	var payloads []filingMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &payloads); err != nil {
			return nil, fmt.Errorf("decode filing array: %w", err)
		}
	} else {
		var payload filingMessage
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			return nil, fmt.Errorf("decode filing: %w", err)
		}
		payloads = []filingMessage{payload}
	}

	filings := make([]domain.Filing, 0, len(payloads))
	for _, payload := range payloads {
		if payload.AccessionNo == "" && payload.FormType == "" {
			continue
		}
		filings = append(filings, domain.Filing{
			FormType:    payload.FormType,
			Ticker:      payload.Ticker,
			CompanyName: payload.CompanyName,
			AccessionNo: payload.AccessionNo,
			Link:        payload.Link,
		})
	}
	return filings, nil
}
