package domain

import "time"

// JobDescription is the target job a material is tailored to. The engine only
// reads it.
type JobDescription struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Title            string    `json:"title"`
	CompanyID        *string   `json:"company_id,omitempty"`
	SeniorityLevel   string    `json:"seniority_level"`
	RoleSummary      string    `json:"role_summary"`
	Responsibilities []*string `json:"responsibilities"`
	RequiredSkills   []*string `json:"required_skills"`
	Behaviours       []*string `json:"behaviours"`
	SuccessCriteria  []*string `json:"success_criteria"`
	ExplicitPains    []*string `json:"explicit_pains"`
	AtsKeywords      []*string `json:"ats_keywords"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// HasCompany reports whether the job references a company record.
func (j *JobDescription) HasCompany() bool {
	return j != nil && j.CompanyID != nil && *j.CompanyID != ""
}

type ScoreBreakdown struct {
	SkillFit      float64 `json:"skill_fit"`
	ExperienceFit float64 `json:"experience_fit"`
	InterestFit   float64 `json:"interest_fit"`
	Edge          float64 `json:"edge"`
}

// MatchingSummary is the precomputed fit analysis for a (user, job) pair.
type MatchingSummary struct {
	ID                   string         `json:"id"`
	UserID               string         `json:"user_id"`
	JobID                string         `json:"job_id"`
	CompanyID            *string        `json:"company_id,omitempty"`
	OverallScore         float64        `json:"overall_score"`
	ScoreBreakdown       ScoreBreakdown `json:"score_breakdown"`
	Recommendation       string         `json:"recommendation"`
	ReasoningHighlights  []*string      `json:"reasoning_highlights"`
	StrengthsForThisRole []*string      `json:"strengths_for_this_role"`
	SkillMatch           []*string      `json:"skill_match"`
	RiskyPoints          []*string      `json:"risky_points"`
	ImpactOpportunities  []*string      `json:"impact_opportunities"`
	TailoringTips        []*string      `json:"tailoring_tips"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// Company is optional enrichment for a job.
type Company struct {
	ID               string    `json:"id"`
	CompanyName      string    `json:"company_name"`
	Industry         string    `json:"industry"`
	SizeRange        string    `json:"size_range"`
	Website          string    `json:"website"`
	Description      string    `json:"description"`
	ProductsServices []*string `json:"products_services"`
	TargetMarkets    []*string `json:"target_markets"`
	CustomerSegments []*string `json:"customer_segments"`
	RawNotes         string    `json:"raw_notes"`
}
