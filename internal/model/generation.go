package model

import "tailoring-engine/internal/domain"

// GenerationInput is the normalized payload handed to the AI generation
// capability. Every list field is non-nil so prompt templates never have to
// branch on missing arrays.
type GenerationInput struct {
	Kind            domain.MaterialKind   `json:"kind"`
	UserID          string                `json:"userId"`
	Language        string                `json:"language,omitempty"`
	Profile         ProfileInput          `json:"profile"`
	PersonalCanvas  *CanvasInput          `json:"personalCanvas,omitempty"`
	Experiences     []ExperienceInput     `json:"experiences"`
	Job             JobInput              `json:"job"`
	MatchingSummary *MatchingSummaryInput `json:"matchingSummary,omitempty"`
	Company         *CompanyInput         `json:"company,omitempty"`
	CV              *CVSections           `json:"cv,omitempty"`
	Tone            string                `json:"tone,omitempty"`
}

type ProfileInput struct {
	FullName       string   `json:"fullName"`
	Headline       string   `json:"headline"`
	Location       string   `json:"location"`
	SeniorityLevel string   `json:"seniorityLevel"`
	WorkPermitInfo string   `json:"workPermitInfo"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Goals          []string `json:"goals"`
	Aspirations    []string `json:"aspirations"`
	PersonalValues []string `json:"personalValues"`
	Strengths      []string `json:"strengths"`
	Interests      []string `json:"interests"`
	Skills         []string `json:"skills"`
	Certifications []string `json:"certifications"`
	Languages      []string `json:"languages"`
	SocialLinks    []string `json:"socialLinks"`
}

type CanvasInput struct {
	CustomerSegments      []string `json:"customerSegments"`
	ValueProposition      []string `json:"valueProposition"`
	Channels              []string `json:"channels"`
	CustomerRelationships []string `json:"customerRelationships"`
	KeyActivities         []string `json:"keyActivities"`
	KeyResources          []string `json:"keyResources"`
	KeyPartners           []string `json:"keyPartners"`
	CostStructure         []string `json:"costStructure"`
	RevenueStreams        []string `json:"revenueStreams"`
}

type ExperienceInput struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	CompanyName      string       `json:"companyName"`
	Type             string       `json:"type"`
	StartDate        string       `json:"startDate"`
	EndDate          string       `json:"endDate"`
	Responsibilities []string     `json:"responsibilities"`
	Tasks            []string     `json:"tasks"`
	Achievements     []string     `json:"achievements"`
	KpiSuggestions   []string     `json:"kpiSuggestions"`
	Stories          []StoryInput `json:"stories"`
}

type StoryInput struct {
	Title     string `json:"title"`
	Situation string `json:"situation"`
	Task      string `json:"task"`
	Action    string `json:"action"`
	Result    string `json:"result"`
}

type JobInput struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	SeniorityLevel   string   `json:"seniorityLevel"`
	RoleSummary      string   `json:"roleSummary"`
	Responsibilities []string `json:"responsibilities"`
	RequiredSkills   []string `json:"requiredSkills"`
	Behaviours       []string `json:"behaviours"`
	SuccessCriteria  []string `json:"successCriteria"`
	ExplicitPains    []string `json:"explicitPains"`
	AtsKeywords      []string `json:"atsKeywords"`
}

type ScoreBreakdownInput struct {
	SkillFit      float64 `json:"skillFit"`
	ExperienceFit float64 `json:"experienceFit"`
	InterestFit   float64 `json:"interestFit"`
	Edge          float64 `json:"edge"`
}

type MatchingSummaryInput struct {
	OverallScore         float64             `json:"overallScore"`
	ScoreBreakdown       ScoreBreakdownInput `json:"scoreBreakdown"`
	Recommendation       string              `json:"recommendation"`
	ReasoningHighlights  []string            `json:"reasoningHighlights"`
	StrengthsForThisRole []string            `json:"strengthsForThisRole"`
	SkillMatch           []string            `json:"skillMatch"`
	RiskyPoints          []string            `json:"riskyPoints"`
	ImpactOpportunities  []string            `json:"impactOpportunities"`
	TailoringTips        []string            `json:"tailoringTips"`
}

type CompanyInput struct {
	Name             string   `json:"name"`
	Industry         string   `json:"industry"`
	SizeRange        string   `json:"sizeRange"`
	Website          string   `json:"website"`
	WebsiteLabel     string   `json:"websiteLabel"`
	Description      string   `json:"description"`
	ProductsServices []string `json:"productsServices"`
	TargetMarkets    []string `json:"targetMarkets"`
	CustomerSegments []string `json:"customerSegments"`
	RawNotes         string   `json:"rawNotes"`
}

// ImproveRequest is what the improve capability receives: the current
// content, the staged presets/note and the evaluation it should act on.
type ImproveRequest struct {
	Kind       domain.MaterialKind                   `json:"kind"`
	Content    string                                `json:"content"`
	Presets    []string                              `json:"presets"`
	Note       string                                `json:"note,omitempty"`
	Evaluation *domain.ApplicationStrengthEvaluation `json:"evaluation,omitempty"`
	Language   string                                `json:"language,omitempty"`
}

// CVSections toggles optional CV sections.
type CVSections struct {
	IncludeSkills         bool `json:"includeSkills"`
	IncludeLanguages      bool `json:"includeLanguages"`
	IncludeCertifications bool `json:"includeCertifications"`
	IncludeInterests      bool `json:"includeInterests"`
}

// DefaultCVSections includes every optional section.
func DefaultCVSections() CVSections {
	return CVSections{IncludeSkills: true, IncludeLanguages: true, IncludeCertifications: true, IncludeInterests: true}
}
