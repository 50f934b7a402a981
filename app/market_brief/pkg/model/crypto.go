package model

// CryptoReport BTC/ETH 日内交易简报
type CryptoReport struct {
	Date     string `json:"date" schema:"date" required:"true"`
	BTCPrice string `json:"btc_price" schema:"price" asset:"btc" desc:"Current BTC price in USD (e.g. '$XX,XXX.XX')" required:"true"`
	ETHPrice string `json:"eth_price" schema:"price" asset:"eth" desc:"Current ETH price in USD (e.g. '$X,XXX.XX')" required:"true"`

	Macro       Macro            `json:"macro" required:"true"`
	Regulatory  CryptoRegulatory `json:"regulatory" required:"true"`
	Whales      Whales           `json:"whales" required:"true"`
	Technicals  CryptoTechnicals `json:"technicals" required:"true"`
	Sentiment   CryptoSentiment  `json:"sentiment" required:"true"`
	NewsLinks   []NewsLink       `json:"news_links" items:"5"`
	Bias        Bias             `json:"bias" schema:"bias" required:"true"`
	BiasColor   string           `json:"bias_color" schema:"bias_color"`
	Summary     string           `json:"summary" desc:"One actionable sentence (e.g. 'Wait for volatility - avoid chopping in $95k-$98k range, wait for breakout above $98.1k or breakdown below $95k')" required:"true"`
	UpdatedTime string           `json:"updated" desc:"HH:MM UTC"`
}

// Macro 宏观与地缘
type Macro struct {
	Geopolitics  string `json:"geopolitics" desc:"2-3 sentences on active conflicts, NATO tensions, or regional issues affecting risk assets"`
	Trade        string `json:"trade" desc:"Any trade war developments, tariff news, or supply chain impacts"`
	Fed          string `json:"fed" desc:"Fed rate decision probability and outlook (e.g. '82-95% chance of HOLD at Jan FOMC')"`
	DataReleases string `json:"data_releases" desc:"Any major economic prints today (CPI, NFP, PPI) or note if none"`
	DXYYields    string `json:"dxy_yields" desc:"10Y Treasury yield level and DXY movement (e.g. '10Y at 4.17%, DXY at 99.10')"`
}

// CryptoRegulatory 监管与 ETF 资金流
type CryptoRegulatory struct {
	SECNews  string `json:"sec_news" desc:"Any SEC lawsuits, court rulings, or enforcement actions"`
	ETFFlows string `json:"etf_flows" desc:"Bitcoin ETF inflow/outflow data from yesterday"`
	Other    string `json:"other" desc:"Any other regulatory news (regional bans, new bills, etc.)"`
}

// Whales 链上巨鲸动向
type Whales struct {
	Activity    string `json:"activity" desc:"On-chain whale accumulation or distribution data"`
	Positioning string `json:"positioning" desc:"Whale long/short ratio if available"`
	Notable     string `json:"notable" desc:"Any notable large transactions or wallet movements"`
}

// CryptoTechnicals 技术面
type CryptoTechnicals struct {
	BTCPrice              string `json:"btc_price" schema:"price" asset:"btc" desc:"Current BTC price in USD"`
	BTCIntradaySupport    string `json:"btc_intraday_support" desc:"$XX,XXX"`
	BTCIntradayResistance string `json:"btc_intraday_resistance" desc:"$XX,XXX"`
	BTCMonthlySupport     string `json:"btc_1m_support" desc:"$XX,XXX"`
	BTCTrend              string `json:"btc_trend" desc:"Trend description (e.g. 'Consolidating between $95k-$98k')"`
	BTCChartNote          string `json:"btc_chart_note" desc:"Key technical observation"`
	ETHPrice              string `json:"eth_price" schema:"price" asset:"eth" desc:"Current ETH price in USD"`
	ETHIntradaySupport    string `json:"eth_intraday_support" desc:"$X,XXX"`
	ETHIntradayResistance string `json:"eth_intraday_resistance" desc:"$X,XXX"`
	ETHMonthlySupport     string `json:"eth_1m_support" desc:"$X,XXX"`
	ETHTrend              string `json:"eth_trend" desc:"Trend description"`
	ETHChartNote          string `json:"eth_chart_note" desc:"Key technical observation (e.g. 'Lagging BTC, stuck in range')"`
}

// CryptoSentiment 情绪面
type CryptoSentiment struct {
	FearGreed        string `json:"fear_greed" desc:"XX - Status (e.g. 61 - Greed)"`
	FearGreedNote    string `json:"fear_greed_note" desc:"Context on sentiment shift"`
	LiquidationsUp   string `json:"liquidations_up" desc:"Short liquidation cluster level (e.g. '$97k-$98k')"`
	LiquidationsDown string `json:"liquidations_down" desc:"Long liquidation cluster level (e.g. 'Below $95k')"`
	Narratives       string `json:"narratives" desc:"What crypto twitter/traders are focused on today"`
}

func (r *CryptoReport) SetUpdated(value string) { r.UpdatedTime = value }

func (r *CryptoReport) Stance() Bias { return r.Bias }

func (r *CryptoReport) SetBiasColor(color string) { r.BiasColor = color }

func (r *CryptoReport) TrimNewsLinks(max int) {
	if len(r.NewsLinks) > max {
		r.NewsLinks = r.NewsLinks[:max]
	}
}
