// Package painpoint classifies user-expressed business difficulties into
// weighted categories. Scoring is keyword-based over the current message plus
// the last two history turns; the result is ephemeral per-message and only the
// primary category is folded into the long-lived user profile.
package painpoint

// Category identifies one class of retail pain point.
type Category string

const (
	CategoryLowConversion Category = "low_conversion"
	CategoryFootTraffic   Category = "foot_traffic_decline"
	CategoryDataBlindness Category = "data_blindness"
	CategoryCostPressure  Category = "cost_pressure"
	CategoryStaffing      Category = "staffing_burden"
	CategoryInventory     Category = "inventory_management"
	CategoryLayout        Category = "layout_optimization"
)

// categorySpec is one row of the classifier table. Weight expresses business
// severity (1–3) and multiplies every keyword hit for the category.
type categorySpec struct {
	category   Category
	weight     float64
	keywordsEN []string
	keywordsKO []string
	displayKO  string
}

// The table is ordered; ordering is the deterministic tie-break when two
// categories score identically.
var categoryTable = []categorySpec{
	{
		category:   CategoryLowConversion,
		weight:     3,
		keywordsEN: []string{"conversion", "conversion rate", "purchase rate", "checkout"},
		keywordsKO: []string{"전환율", "구매전환", "구매율", "구매로 이어지"},
		displayKO:  "구매 전환율 부진",
	},
	{
		category:   CategoryFootTraffic,
		weight:     3,
		keywordsEN: []string{"foot traffic", "footfall", "visitors", "walk-in"},
		keywordsKO: []string{"방문객", "유동인구", "손님이 없", "발길", "내방"},
		displayKO:  "방문객 감소",
	},
	{
		category:   CategoryDataBlindness,
		weight:     3,
		keywordsEN: []string{"data", "analytics", "measure", "tracking", "insight"},
		keywordsKO: []string{"데이터", "분석", "측정", "파악이 안", "알 수가 없"},
		displayKO:  "매장 데이터 부재",
	},
	{
		category:   CategoryCostPressure,
		weight:     2,
		keywordsEN: []string{"cost", "budget", "expensive", "rent", "margin"},
		keywordsKO: []string{"비용", "임대료", "예산", "부담", "마진"},
		displayKO:  "비용 부담",
	},
	{
		category:   CategoryStaffing,
		weight:     2,
		keywordsEN: []string{"staff", "hiring", "turnover", "workforce"},
		keywordsKO: []string{"직원", "인력", "채용", "인건비", "알바"},
		displayKO:  "인력 운영 부담",
	},
	{
		category:   CategoryInventory,
		weight:     2,
		keywordsEN: []string{"inventory", "stock", "sold out", "overstock"},
		keywordsKO: []string{"재고", "품절", "발주", "악성재고"},
		displayKO:  "재고 관리 어려움",
	},
	{
		category:   CategoryLayout,
		weight:     1,
		keywordsEN: []string{"layout", "display", "placement", "shelf"},
		keywordsKO: []string{"동선", "진열", "배치", "레이아웃", "매대"},
		displayKO:  "매장 동선/진열 고민",
	},
}

// Weight returns the severity weight (1–3) of a category, or zero for an
// unknown category.
func Weight(c Category) float64 {
	for _, spec := range categoryTable {
		if spec.category == c {
			return spec.weight
		}
	}
	return 0
}

// DisplayName returns the Korean display label used in summaries and prompts.
func DisplayName(c Category) string {
	for _, spec := range categoryTable {
		if spec.category == c {
			return spec.displayKO
		}
	}
	return string(c)
}
