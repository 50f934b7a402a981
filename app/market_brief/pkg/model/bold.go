package model

// BoldReport BTC/黄金 双资产简报
type BoldReport struct {
	Date      string `json:"date" schema:"date" required:"true"`
	BTCPrice  string `json:"btc_price" schema:"price" asset:"btc" desc:"Current BTC price in USD (e.g. '$XX,XXX.XX')" required:"true"`
	GoldPrice string `json:"gold_price" schema:"price" asset:"gold" desc:"Current gold spot price per troy ounce in USD (e.g. '$X,XXX.XX')" required:"true"`

	Macro       Macro      `json:"macro" required:"true"`
	BTC         BoldBTC    `json:"btc" required:"true"`
	Gold        BoldGold   `json:"gold" required:"true"`
	NewsLinks   []NewsLink `json:"news_links" items:"5"`
	Bias        Bias       `json:"bias" schema:"bias" required:"true"`
	BiasColor   string     `json:"bias_color" schema:"bias_color"`
	Summary     string     `json:"summary" desc:"One actionable sentence covering both BTC and gold (e.g. 'Gold bid on safe-haven flows, BTC range-bound - wait for $98k breakout')" required:"true"`
	UpdatedTime string     `json:"updated" desc:"HH:MM UTC"`
}

// BoldBTC 比特币分析
type BoldBTC struct {
	Regulatory struct {
		SECNews  string `json:"sec_news" desc:"Any SEC lawsuits, court rulings, or enforcement actions"`
		ETFFlows string `json:"etf_flows" desc:"Bitcoin ETF inflow/outflow data from yesterday"`
	} `json:"regulatory"`
	Whales struct {
		Activity string `json:"activity" desc:"On-chain whale accumulation or distribution data"`
		Notable  string `json:"notable" desc:"Any notable large transactions or wallet movements"`
	} `json:"whales"`
	Technicals Levels `json:"technicals"`
	Sentiment  struct {
		FearGreed        string `json:"fear_greed" desc:"XX - Status (e.g. 61 - Greed)"`
		LiquidationsUp   string `json:"liquidations_up" desc:"Short liquidation cluster level (e.g. '$97k-$98k')"`
		LiquidationsDown string `json:"liquidations_down" desc:"Long liquidation cluster level (e.g. 'Below $95k')"`
		Narratives       string `json:"narratives" desc:"What crypto twitter/traders are focused on today"`
	} `json:"sentiment"`
}

// BoldGold 黄金分析
type BoldGold struct {
	Flows struct {
		ETFFlows      string `json:"etf_flows" desc:"Gold ETF (GLD, IAU) holdings change and flow data"`
		CentralBanks  string `json:"central_banks" desc:"Central bank gold purchases or sales (e.g. 'PBoC added 5t in December')"`
		Institutional string `json:"institutional" desc:"Notable fund or institutional positioning, COMEX futures positioning"`
	} `json:"flows"`
	Demand struct {
		Physical   string `json:"physical" desc:"Physical demand from jewelry, India/China premiums or discounts"`
		Investment string `json:"investment" desc:"Bar, coin and investment demand trends"`
		Supply     string `json:"supply" desc:"Mine supply, recycling, or supply disruptions"`
	} `json:"demand"`
	Technicals Levels `json:"technicals"`
	Sentiment  struct {
		SafeHaven       string `json:"safe_haven" desc:"Safe-haven demand context (risk-off flows, geopolitics)"`
		GoldSilverRatio string `json:"gold_silver_ratio" desc:"Current gold/silver ratio and direction (e.g. '84.2, falling')"`
		Narratives      string `json:"narratives" desc:"What gold traders are focused on today"`
	} `json:"sentiment"`
}

// Levels 单个资产的关键价位
type Levels struct {
	IntradaySupport    string `json:"intraday_support" desc:"Nearest intraday support level in USD"`
	IntradayResistance string `json:"intraday_resistance" desc:"Nearest intraday resistance level in USD"`
	MonthlySupport     string `json:"monthly_support" desc:"One-month support level in USD"`
	Trend              string `json:"trend" desc:"Trend description (e.g. 'Consolidating between $95k-$98k')"`
	ChartNote          string `json:"chart_note" desc:"Key technical observation"`
}

func (r *BoldReport) SetUpdated(value string) { r.UpdatedTime = value }

func (r *BoldReport) Stance() Bias { return r.Bias }

func (r *BoldReport) SetBiasColor(color string) { r.BiasColor = color }

func (r *BoldReport) TrimNewsLinks(max int) {
	if len(r.NewsLinks) > max {
		r.NewsLinks = r.NewsLinks[:max]
	}
}
