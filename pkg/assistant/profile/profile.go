// Package profile maintains the per-session user profile the assistant
// accumulates across turns. Scalar attributes are sticky-once-set; set-typed
// attributes only grow. The caller owns persistence; this package only builds
// updated copies.
package profile

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/neuraltwin/assistant-engine/pkg/assistant/painpoint"
)

type StoreSize string

const (
	StoreSizeSmall  StoreSize = "small"
	StoreSizeMedium StoreSize = "medium"
	StoreSizeLarge  StoreSize = "large"
)

type Role string

const (
	RoleOwner              Role = "owner"
	RoleManager            Role = "manager"
	RoleMerchandiser       Role = "merchandiser"
	RoleVisualMerchandiser Role = "visual_merchandiser"
	RoleMarketer           Role = "marketer"
	RoleStaff              Role = "staff"
)

type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceExpert       ExperienceLevel = "expert"
)

// TopicID identifies a conversation topic category, assigned by the caller's
// topic classifier.
type TopicID string

// Profile is the sticky per-session user profile.
//
// Industry, StoreSize, Role and Location are sticky: once extracted they are
// never overwritten by later turns. Interests and PainPoints are union-grown
// every turn. ExperienceLevel is recomputed every turn from current evidence.
type Profile struct {
	Industry        string               `json:"industry,omitempty"`
	IndustryDetail  string               `json:"industryDetail,omitempty"`
	StoreSize       StoreSize            `json:"storeSize,omitempty"`
	StoreSizeRaw    string               `json:"storeSizeRaw,omitempty"`
	Role            Role                 `json:"role,omitempty"`
	Location        string               `json:"location,omitempty"`
	Interests       []TopicID            `json:"interests"`
	PainPoints      []painpoint.Category `json:"painPoints"`
	ExperienceLevel ExperienceLevel      `json:"experienceLevel,omitempty"`
}

// AddInterest union-grows the interest set.
func (p *Profile) AddInterest(topic TopicID) {
	if topic == "" || lo.Contains(p.Interests, topic) {
		return
	}
	p.Interests = append(p.Interests, topic)
}

// AddPainPoint union-grows the pain-point set.
func (p *Profile) AddPainPoint(category painpoint.Category) {
	if category == "" || lo.Contains(p.PainPoints, category) {
		return
	}
	p.PainPoints = append(p.PainPoints, category)
}

// scalarsKnown counts how many of the four sticky scalar attributes are set.
func (p *Profile) scalarsKnown() int {
	known := 0
	if p.Industry != "" {
		known++
	}
	if p.StoreSize != "" {
		known++
	}
	if p.Role != "" {
		known++
	}
	if p.Location != "" {
		known++
	}
	return known
}

var storeSizeKO = map[StoreSize]string{
	StoreSizeSmall:  "소형",
	StoreSizeMedium: "중형",
	StoreSizeLarge:  "대형",
}

var roleKO = map[Role]string{
	RoleOwner:              "대표/사장",
	RoleManager:            "점장/매니저",
	RoleMerchandiser:       "MD",
	RoleVisualMerchandiser: "VMD",
	RoleMarketer:           "마케터",
	RoleStaff:              "매장 직원",
}

var experienceKO = map[ExperienceLevel]string{
	ExperienceBeginner:     "입문",
	ExperienceIntermediate: "중급",
	ExperienceExpert:       "전문가",
}

// FormatForPrompt renders the profile block injected into the system prompt.
// It returns "" until at least two sticky scalars are known; a near-empty
// profile block costs tokens without steering the model.
func (p *Profile) FormatForPrompt() string {
	if p.scalarsKnown() < 2 {
		return ""
	}

	var b strings.Builder
	b.WriteString("[고객 프로필]\n")
	if p.Industry != "" {
		line := "- 업종: " + p.Industry
		if p.IndustryDetail != "" {
			line += fmt.Sprintf(" (%s)", p.IndustryDetail)
		}
		b.WriteString(line + "\n")
	}
	if p.StoreSize != "" {
		line := "- 매장 규모: " + storeSizeKO[p.StoreSize]
		if p.StoreSizeRaw != "" {
			line += fmt.Sprintf(" (%s)", p.StoreSizeRaw)
		}
		b.WriteString(line + "\n")
	}
	if p.Role != "" {
		b.WriteString("- 역할: " + roleKO[p.Role] + "\n")
	}
	if p.Location != "" {
		b.WriteString("- 상권: " + p.Location + "\n")
	}
	if len(p.PainPoints) > 0 {
		names := lo.Map(p.PainPoints, func(c painpoint.Category, _ int) string {
			return painpoint.DisplayName(c)
		})
		b.WriteString("- 주요 고민: " + strings.Join(names, ", ") + "\n")
	}
	if p.ExperienceLevel != "" {
		b.WriteString("- 숙련도: " + experienceKO[p.ExperienceLevel] + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
