// Package prompt 渲染发送给模型的唯一一段指令文本
package prompt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iWorld-y/market_brief/app/market_brief/pkg/model"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/variant"
)

// DateLayout 报告日期格式，例如 January 02, 2006
const DateLayout = "January 02, 2006"

// Input 构建 Prompt 所需的全部输入
type Input struct {
	Variant variant.Variant
	// Date 以 UTC 日期渲染
	Date time.Time
	// Prices 为 nil 时不输出价格行，由模型自行估价
	Prices   model.PriceSnapshot
	Evidence string
}

// rubric 每种 bias 对应的市场状态
var rubric = map[model.Bias]string{
	model.BiasBullish: "Clear upside momentum: price holding above key support, positive ETF/institutional flows, supportive macro, and no major event risk in the next 24h",
	model.BiasBearish: "Clear downside pressure: key support lost or rejected at resistance, outflows or risk-off macro, hawkish Fed or negative regulatory news",
	model.BiasNeutral: "Mixed signals with no dominant driver: price ranging between well-defined levels and flows roughly balanced",
	model.BiasWait:    "High uncertainty or imminent catalyst (FOMC, CPI, major court ruling) or price chopping mid-range: stand aside until a breakout or breakdown confirms",
}

// Build 渲染 Prompt。相同输入总是产生相同输出。
func Build(in Input) (string, error) {
	if in.Variant.NewReport == nil {
		return "", errors.New("variant has no report schema")
	}

	today := in.Date.UTC().Format(DateLayout)
	prices := in.Prices.Restrict(in.Variant.Assets)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Role: %s\n\n", in.Variant.Role)

	if line := priceLine(in.Variant.Assets, prices); line != "" {
		sb.WriteString(line)
		sb.WriteString("\n\n")
	}

	evidence := strings.TrimSpace(in.Evidence)
	if evidence == "" {
		evidence = model.NoRecentData
	}
	fmt.Fprintf(&sb, "Search Data:\n%s\n\n", evidence)
	fmt.Fprintf(&sb, "Today's Date: %s\n\n", today)

	report := in.Variant.NewReport()
	sb.WriteString("Analyze the search data and create a comprehensive market analysis report. Output ONLY valid JSON in exactly this shape:\n\n")
	sb.WriteString(Schema(report, today, prices))
	sb.WriteString("\n\n")

	sb.WriteString("Bias rubric (choose exactly one):\n")
	for _, b := range model.Biases {
		fmt.Fprintf(&sb, "- %s: %s\n", b, rubric[b])
	}
	sb.WriteString("\n")

	sb.WriteString("Important:\n")
	sb.WriteString("- Use actual figures from the search data; quote numbers, levels and percentages literally\n")
	fmt.Fprintf(&sb, "- If specific data is not found for a field, write %q instead of inventing a value\n", model.NoRecentData)
	sb.WriteString("- Be specific with price levels and percentages\n")
	if prices != nil {
		sb.WriteString("- Use the LIVE PRICES above for every price field\n")
	}
	fmt.Fprintf(&sb, "- %s\n", in.Variant.Focus)
	if keys := Required(report); len(keys) > 0 {
		fmt.Fprintf(&sb, "- Never omit these keys or set them to null or an empty string: %s\n", strings.Join(keys, ", "))
	}
	sb.WriteString("- bias_color must match the chosen bias\n")
	sb.WriteString("- Output ONLY JSON, no markdown\n")

	return sb.String(), nil
}

// priceLine 例如 LIVE PRICES: BTC = $50,000.00, ETH = $3,000.00
func priceLine(assets []model.Asset, prices model.PriceSnapshot) string {
	if prices == nil {
		return ""
	}
	parts := make([]string, 0, len(assets))
	for _, a := range assets {
		if v, ok := prices[a]; ok {
			parts = append(parts, fmt.Sprintf("%s = %s", a.Label(), model.FormatUSD(v)))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "LIVE PRICES: " + strings.Join(parts, ", ")
}
