// Package refdata holds the shared sector and market-cap enumeration used
// by both the event normalizer and the subscription author. The table is
// immutable once loaded; changing it is a breaking schema change that
// requires migrating stored subscriptions.
package refdata

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var defaultDocument []byte

type option struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
}

type tickerEntry struct {
	Symbol    string `yaml:"symbol"`
	Sector    string `yaml:"sector"`
	MarketCap string `yaml:"market_cap"`
}

type document struct {
	Sectors    []option      `yaml:"sectors"`
	MarketCaps []option      `yaml:"market_caps"`
	Tickers    []tickerEntry `yaml:"tickers"`
}

type tickerInfo struct {
	sector    string
	marketCap string
}

// Taxonomy is the loaded categorical mapping. All lookups are read-only,
// safe for concurrent use.
type Taxonomy struct {
	sectorKeyByLabel map[string]string
	sectorLabelByKey map[string]string
	capKeyByLabel    map[string]string
	capLabelByKey    map[string]string
	tickers          map[string]tickerInfo
}

// Load parses a taxonomy document. Duplicate keys and ticker rows that
// reference undefined sector or market-cap keys are rejected.
func Load(r io.Reader) (*Taxonomy, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Taxonomy, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}

	t := &Taxonomy{
		sectorKeyByLabel: make(map[string]string, len(doc.Sectors)),
		sectorLabelByKey: make(map[string]string, len(doc.Sectors)),
		capKeyByLabel:    make(map[string]string, len(doc.MarketCaps)),
		capLabelByKey:    make(map[string]string, len(doc.MarketCaps)),
		tickers:          make(map[string]tickerInfo, len(doc.Tickers)),
	}

	for _, opt := range doc.Sectors {
		if opt.Key == "" || opt.Label == "" {
			return nil, fmt.Errorf("sector option with empty key or label")
		}
		if _, ok := t.sectorLabelByKey[opt.Key]; ok {
			return nil, fmt.Errorf("duplicate sector key %q", opt.Key)
		}
		t.sectorLabelByKey[opt.Key] = opt.Label
		t.sectorKeyByLabel[normalize(opt.Label)] = opt.Key
	}

	for _, opt := range doc.MarketCaps {
		if opt.Key == "" || opt.Label == "" {
			return nil, fmt.Errorf("market cap option with empty key or label")
		}
		if _, ok := t.capLabelByKey[opt.Key]; ok {
			return nil, fmt.Errorf("duplicate market cap key %q", opt.Key)
		}
		t.capLabelByKey[opt.Key] = opt.Label
		t.capKeyByLabel[normalize(opt.Label)] = opt.Key
	}

	for _, entry := range doc.Tickers {
		symbol := strings.ToUpper(strings.TrimSpace(entry.Symbol))
		if symbol == "" {
			return nil, fmt.Errorf("ticker entry with empty symbol")
		}
		if _, ok := t.sectorLabelByKey[entry.Sector]; !ok {
			return nil, fmt.Errorf("ticker %s references unknown sector %q", symbol, entry.Sector)
		}
		if _, ok := t.capLabelByKey[entry.MarketCap]; !ok {
			return nil, fmt.Errorf("ticker %s references unknown market cap %q", symbol, entry.MarketCap)
		}
		t.tickers[symbol] = tickerInfo{sector: entry.Sector, marketCap: entry.MarketCap}
	}

	return t, nil
}

// Default returns the taxonomy embedded in the binary.
func Default() *Taxonomy {
	t, err := Parse(defaultDocument)
	if err != nil {
		panic(fmt.Sprintf("refdata: embedded taxonomy invalid: %v", err))
	}
	return t
}

// SectorKey maps a sector key or display label to its canonical key.
func (t *Taxonomy) SectorKey(value string) (string, bool) {
	if _, ok := t.sectorLabelByKey[value]; ok {
		return value, true
	}
	key, ok := t.sectorKeyByLabel[normalize(value)]
	return key, ok
}

// MarketCapKey maps a market-cap key or display label to its canonical key.
func (t *Taxonomy) MarketCapKey(value string) (string, bool) {
	if _, ok := t.capLabelByKey[value]; ok {
		return value, true
	}
	key, ok := t.capKeyByLabel[normalize(value)]
	return key, ok
}

func (t *Taxonomy) SectorLabel(key string) (string, bool) {
	label, ok := t.sectorLabelByKey[key]
	return label, ok
}

func (t *Taxonomy) MarketCapLabel(key string) (string, bool) {
	label, ok := t.capLabelByKey[key]
	return label, ok
}

// SectorForTicker returns the sector key recorded for a ticker symbol.
func (t *Taxonomy) SectorForTicker(symbol string) (string, bool) {
	info, ok := t.tickers[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return "", false
	}
	return info.sector, true
}

// MarketCapForTicker returns the market-cap key recorded for a ticker symbol.
func (t *Taxonomy) MarketCapForTicker(symbol string) (string, bool) {
	info, ok := t.tickers[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return "", false
	}
	return info.marketCap, true
}

func normalize(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
