package profile

import (
	"strconv"

	"github.com/neuraltwin/assistant-engine/pkg/assistant/rules"
)

type industryMatch struct {
	industry string
	detail   string
}

// Ordered industry table: more specific sub-segments come before the broad
// category so the detail label survives.
var industryTable = []rules.Rule[industryMatch]{
	rules.MustRule(`여성복|여성 의류`, industryMatch{industry: "패션/의류", detail: "여성복"}),
	rules.MustRule(`남성복|남성 의류`, industryMatch{industry: "패션/의류", detail: "남성복"}),
	rules.MustRule(`스트릿|스트리트 패션`, industryMatch{industry: "패션/의류", detail: "스트릿"}),
	rules.MustRule(`패션|의류|옷가게|어패럴|(?i)\bapparel\b|(?i)\bfashion\b`, industryMatch{industry: "패션/의류"}),
	rules.MustRule(`화장품|뷰티|코스메틱|(?i)\bbeauty\b|(?i)\bcosmetic`, industryMatch{industry: "뷰티/화장품"}),
	rules.MustRule(`카페|커피|베이커리|디저트|(?i)\bcafe\b`, industryMatch{industry: "F&B", detail: "카페/디저트"}),
	rules.MustRule(`식당|음식점|레스토랑|(?i)\brestaurant\b`, industryMatch{industry: "F&B", detail: "외식"}),
	rules.MustRule(`편의점|(?i)\bconvenience store\b`, industryMatch{industry: "편의점"}),
	rules.MustRule(`가전|전자제품|(?i)\belectronics\b`, industryMatch{industry: "가전/전자"}),
	rules.MustRule(`마트|슈퍼|식료품|(?i)\bgrocery\b`, industryMatch{industry: "마트/식료품"}),
	rules.MustRule(`명품|럭셔리|(?i)\bluxury\b`, industryMatch{industry: "명품/럭셔리"}),
	rules.MustRule(`스포츠|아웃도어|(?i)\bsports\b`, industryMatch{industry: "스포츠/아웃도어"}),
	rules.MustRule(`리빙|인테리어 소품|홈데코`, industryMatch{industry: "리빙/홈데코"}),
}

var roleTable = []rules.Rule[Role]{
	// VMD must outrank the bare MD pattern.
	rules.MustRule(`VMD|비주얼 ?머천다이저|(?i)\bvisual merchandiser\b`, RoleVisualMerchandiser),
	rules.MustRule(`\bMD\b|머천다이저|(?i)\bmerchandiser\b`, RoleMerchandiser),
	rules.MustRule(`사장|대표|오너|창업|(?i)\bowner\b|(?i)\bfounder\b`, RoleOwner),
	rules.MustRule(`점장|매니저|(?i)\bstore manager\b|(?i)\bmanager\b`, RoleManager),
	rules.MustRule(`마케터|마케팅 담당|(?i)\bmarketer\b|(?i)\bmarketing\b`, RoleMarketer),
	rules.MustRule(`직원|스태프|알바|(?i)\bstaff\b`, RoleStaff),
}

var locationTable = []rules.Rule[string]{
	rules.MustRule(`강남`, "강남"),
	rules.MustRule(`홍대`, "홍대"),
	rules.MustRule(`성수`, "성수"),
	rules.MustRule(`명동`, "명동"),
	rules.MustRule(`가로수길`, "가로수길"),
	rules.MustRule(`잠실`, "잠실"),
	rules.MustRule(`이태원`, "이태원"),
	rules.MustRule(`판교`, "판교"),
	rules.MustRule(`서면`, "부산 서면"),
	rules.MustRule(`동성로`, "대구 동성로"),
}

var (
	// The pyeong rule classifies from the captured number, not the rule value.
	pyeongTable = []rules.Rule[StoreSize]{
		rules.MustRule(`(\d+)\s*평`, StoreSize("")),
	}

	storeSizeDescriptive = []rules.Rule[StoreSize]{
		rules.MustRule(`작은 매장|소형 매장|조그마|조그만`, StoreSizeSmall),
		rules.MustRule(`큰 매장|대형 매장|넓은 매장|플래그십`, StoreSizeLarge),
		rules.MustRule(`중형 매장|중간 규모`, StoreSizeMedium),
	}
)

// Pyeong thresholds for store size classification.
const (
	mediumFloorPyeong = 50
	largeFloorPyeong  = 150
)

func classifyPyeong(pyeong int) StoreSize {
	switch {
	case pyeong >= largeFloorPyeong:
		return StoreSizeLarge
	case pyeong >= mediumFloorPyeong:
		return StoreSizeMedium
	default:
		return StoreSizeSmall
	}
}

// ExperienceSignals carries the caller-supplied evidence that feeds the
// per-turn experience-level recomputation.
type ExperienceSignals struct {
	// AdvancedDepth is true when the depth classifier rated the message as
	// an advanced question.
	AdvancedDepth bool
	TurnCount     int
}

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Update applies one turn of extraction to a copy of prior and returns it.
// Sticky scalars are only extracted while unset; the experience level is
// recomputed unconditionally.
func (e *Extractor) Update(prior Profile, message string, topic TopicID, signals ExperienceSignals) Profile {
	p := prior

	if p.Industry == "" {
		if match, ok := rules.FirstMatch(industryTable, message); ok {
			p.Industry = match.industry
			p.IndustryDetail = match.detail
		}
	}
	if p.StoreSize == "" {
		e.extractStoreSize(&p, message)
	}
	if p.Role == "" {
		if role, ok := rules.FirstMatch(roleTable, message); ok {
			p.Role = role
		}
	}
	if p.Location == "" {
		if location, ok := rules.FirstMatch(locationTable, message); ok {
			p.Location = location
		}
	}

	p.AddInterest(topic)
	p.ExperienceLevel = e.experienceLevel(&p, signals)
	return p
}

func (e *Extractor) extractStoreSize(p *Profile, message string) {
	if _, groups, ok := rules.FirstSubmatch(pyeongTable, message); ok {
		if pyeong, err := strconv.Atoi(groups[1]); err == nil {
			p.StoreSize = classifyPyeong(pyeong)
			p.StoreSizeRaw = groups[0]
			return
		}
	}
	if size, groups, ok := rules.FirstSubmatch(storeSizeDescriptive, message); ok {
		p.StoreSize = size
		p.StoreSizeRaw = groups[0]
	}
}

// Experience scoring weights; thresholds map score≥4 to expert and score≥2 to
// intermediate.
func (e *Extractor) experienceLevel(p *Profile, signals ExperienceSignals) ExperienceLevel {
	score := 0
	if signals.AdvancedDepth {
		score += 2
	}
	if len(p.Interests) >= 3 {
		score++
	}
	if len(p.Interests) >= 5 {
		score++
	}
	switch p.Role {
	case RoleMerchandiser, RoleVisualMerchandiser:
		score += 2
	case RoleOwner, RoleManager:
		score++
	}
	if len(p.PainPoints) >= 2 {
		score++
	}
	if signals.TurnCount >= 6 {
		score++
	}

	switch {
	case score >= 4:
		return ExperienceExpert
	case score >= 2:
		return ExperienceIntermediate
	default:
		return ExperienceBeginner
	}
}
