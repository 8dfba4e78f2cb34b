package domain

// DailyDigest summarizes one day of disclosures: the highest-value purchases
// and sales plus the full counts behind them.
type DailyDigest struct {
	Purchases     []Trade
	Sales         []Trade
	PurchaseCount int
	SaleCount     int
}

// SectorActivity is one sector's slice of a weekly report, purchases and
// sales ordered by amount spent.
type SectorActivity struct {
	Sector    string
	Purchases []Trade
	Sales     []Trade
}

// WeeklySectorReport groups a week of disclosures by sector.
type WeeklySectorReport struct {
	WeekNumber int
	Sectors    []SectorActivity
}
