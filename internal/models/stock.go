package models

import "time"

// HistoricalPrice is one daily OHLCV bar.
type HistoricalPrice struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// StockSnapshot is the full market picture for one ticker, fetched once per
// debate run and immutable afterwards. Optional fields use pointers so the
// prompt layer can distinguish "zero" from "not reported".
type StockSnapshot struct {
	Ticker             string   `json:"ticker"`
	CompanyName        string   `json:"company_name,omitempty"`
	CurrentPrice       float64  `json:"current_price"`
	PriceChangePercent float64  `json:"price_change_percent"`
	Volume             int64    `json:"volume"`
	MarketCap          *float64 `json:"market_cap,omitempty"`
	PERatio            *float64 `json:"pe_ratio,omitempty"`
	FiftyTwoWeekHigh   float64  `json:"fifty_two_week_high"`
	FiftyTwoWeekLow    float64  `json:"fifty_two_week_low"`
	Sector             string   `json:"sector,omitempty"`
	Industry           string   `json:"industry,omitempty"`

	// Shareholding pattern
	PromoterHolding *float64 `json:"promoter_holding,omitempty"`
	FIIHolding      *float64 `json:"fii_holding,omitempty"`
	DIIHolding      *float64 `json:"dii_holding,omitempty"`
	PublicHolding   *float64 `json:"public_holding,omitempty"`

	// Key statistics
	Beta          *float64 `json:"beta,omitempty"`
	DividendYield *float64 `json:"dividend_yield,omitempty"`
	BookValue     *float64 `json:"book_value,omitempty"`
	EPS           *float64 `json:"eps,omitempty"`
	PBRatio       *float64 `json:"pb_ratio,omitempty"`
	DebtToEquity  *float64 `json:"debt_to_equity,omitempty"`
	ROE           *float64 `json:"roe,omitempty"`

	// Analyst consensus
	AnalystBuy  int      `json:"analyst_buy"`
	AnalystHold int      `json:"analyst_hold"`
	AnalystSell int      `json:"analyst_sell"`
	TargetPrice *float64 `json:"target_price,omitempty"`

	// Latest quarter
	QuarterlyRevenue *float64 `json:"quarterly_revenue,omitempty"`
	QuarterlyProfit  *float64 `json:"quarterly_profit,omitempty"`
	RevenueGrowth    *float64 `json:"revenue_growth,omitempty"`
	ProfitGrowth     *float64 `json:"profit_growth,omitempty"`

	HistoricalPrices []HistoricalPrice `json:"historical_prices,omitempty"`
	FetchedAt        time.Time         `json:"fetched_at"`
}

// NewsItem is one search result from the news collaborator. Date is the
// publication date as an ISO-8601 string, or empty when the source omitted it.
type NewsItem struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
	URL     string `json:"url"`
	Date    string `json:"date"`
}

// TickerQuote is the compact per-symbol view used by the ticker tape.
type TickerQuote struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Change float64 `json:"change"`
}

// IndexQuote is one market index reading.
type IndexQuote struct {
	Name          string  `json:"name"`
	Symbol        string  `json:"symbol"`
	Value         float64 `json:"value"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Trend         string  `json:"trend"` // up, down, flat
}
