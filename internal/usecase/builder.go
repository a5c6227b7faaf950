package usecase

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"

	"tailoring-engine/internal/domain"
	"tailoring-engine/internal/model"
)

const defaultExperienceType = "work"

// SourceData is everything already fetched for one generation.
type SourceData struct {
	UserID          string
	Profile         *domain.TailoringProfile
	Job             *domain.JobDescription
	MatchingSummary *domain.MatchingSummary
	// Company is only used when Job references one.
	Company *domain.Company
}

type BuildOptions struct {
	Language string
	// CVSections applies to KindCV only; nil includes every section.
	CVSections *model.CVSections
	Tone       string
}

// BuildGenerationInput normalizes the source data into the payload for one
// material kind. It performs no I/O.
func BuildGenerationInput(kind domain.MaterialKind, src SourceData, opts BuildOptions) (*model.GenerationInput, error) {
	if src.Profile == nil {
		return nil, &ValidationError{Field: "profile", Msg: "user profile is required for tailoring"}
	}
	if src.Job == nil {
		return nil, &ValidationError{Field: "job", Msg: "job description is required for tailoring"}
	}
	fullName := trimmed(src.Profile.Profile.FullName)
	if fullName == "" {
		return nil, &ValidationError{Field: "fullName", Msg: "user profile fullName is required for tailoring"}
	}
	title := trimmed(src.Job.Title)
	if title == "" {
		return nil, &ValidationError{Field: "job.title", Msg: "job title is required for tailoring"}
	}

	in := &model.GenerationInput{
		Kind:            kind,
		UserID:          src.UserID,
		Language:        opts.Language,
		Profile:         mapProfile(src.Profile.Profile, fullName),
		Experiences:     mapExperiences(src.Profile.Experiences, src.Profile.Stories),
		Job:             mapJob(src.Job, title),
		MatchingSummary: mapMatchingSummary(src.MatchingSummary),
	}
	if src.Job.HasCompany() && src.Company != nil {
		in.Company = mapCompany(src.Company)
	}

	switch kind {
	case domain.KindCV:
		sections := model.DefaultCVSections()
		if opts.CVSections != nil {
			sections = *opts.CVSections
		}
		in.CV = &sections
		applySections(&in.Profile, sections)
	case domain.KindCoverLetter:
		in.Tone = trimmed(opts.Tone)
		in.PersonalCanvas = mapCanvas(src.Profile.PersonalCanvas)
	case domain.KindSpeech:
		in.PersonalCanvas = mapCanvas(src.Profile.PersonalCanvas)
	}
	return in, nil
}

func mapProfile(p domain.UserProfile, fullName string) model.ProfileInput {
	return model.ProfileInput{
		FullName:       fullName,
		Headline:       trimmed(p.Headline),
		Location:       trimmed(p.Location),
		SeniorityLevel: trimmed(p.SeniorityLevel),
		WorkPermitInfo: trimmed(p.WorkPermitInfo),
		Email:          trimmed(p.PrimaryEmail),
		Phone:          trimmed(p.PrimaryPhone),
		Goals:          CompactStrings(p.Goals),
		Aspirations:    CompactStrings(p.Aspirations),
		PersonalValues: CompactStrings(p.PersonalValues),
		Strengths:      CompactStrings(p.Strengths),
		Interests:      CompactStrings(p.Interests),
		Skills:         CompactStrings(p.Skills),
		Certifications: CompactStrings(p.Certifications),
		Languages:      CompactStrings(p.Languages),
		SocialLinks:    CompactStrings(p.SocialLinks),
	}
}

func applySections(p *model.ProfileInput, s model.CVSections) {
	if !s.IncludeSkills {
		p.Skills = []string{}
	}
	if !s.IncludeLanguages {
		p.Languages = []string{}
	}
	if !s.IncludeCertifications {
		p.Certifications = []string{}
	}
	if !s.IncludeInterests {
		p.Interests = []string{}
	}
}

// mapExperiences keeps source order and attaches each story to its
// experience. Stories pointing at an unknown experience are dropped.
func mapExperiences(exps []domain.Experience, stories []domain.STARStory) []model.ExperienceInput {
	out := make([]model.ExperienceInput, 0, len(exps))
	index := make(map[string]int, len(exps))
	for _, e := range exps {
		typ := trimmed(e.ExperienceType)
		if typ == "" {
			typ = defaultExperienceType
		}
		index[e.ID] = len(out)
		out = append(out, model.ExperienceInput{
			ID:               e.ID,
			Title:            trimmed(e.Title),
			CompanyName:      trimmed(e.CompanyName),
			Type:             typ,
			StartDate:        trimmed(e.StartDate),
			EndDate:          trimmed(e.EndDate),
			Responsibilities: CompactStrings(e.Responsibilities),
			Tasks:            CompactStrings(e.Tasks),
			Achievements:     []string{},
			KpiSuggestions:   []string{},
			Stories:          []model.StoryInput{},
		})
	}
	for _, s := range stories {
		i, ok := index[s.ExperienceID]
		if !ok {
			continue
		}
		exp := &out[i]
		exp.Stories = append(exp.Stories, model.StoryInput{
			Title:     trimmed(s.Title),
			Situation: trimmed(s.Situation),
			Task:      trimmed(s.Task),
			Action:    trimmed(s.Action),
			Result:    trimmed(s.Result),
		})
		exp.Achievements = append(exp.Achievements, CompactStrings(s.Achievements)...)
		exp.KpiSuggestions = append(exp.KpiSuggestions, CompactStrings(s.KpiSuggestions)...)
	}
	return out
}

func mapJob(j *domain.JobDescription, title string) model.JobInput {
	return model.JobInput{
		ID:               j.ID,
		Title:            title,
		SeniorityLevel:   trimmed(j.SeniorityLevel),
		RoleSummary:      trimmed(j.RoleSummary),
		Responsibilities: CompactStrings(j.Responsibilities),
		RequiredSkills:   CompactStrings(j.RequiredSkills),
		Behaviours:       CompactStrings(j.Behaviours),
		SuccessCriteria:  CompactStrings(j.SuccessCriteria),
		ExplicitPains:    CompactStrings(j.ExplicitPains),
		AtsKeywords:      CompactStrings(j.AtsKeywords),
	}
}

func mapMatchingSummary(s *domain.MatchingSummary) *model.MatchingSummaryInput {
	if s == nil {
		return nil
	}
	rec := s.Recommendation
	switch rec {
	case "apply", "maybe", "skip":
	default:
		rec = "maybe"
	}
	return &model.MatchingSummaryInput{
		OverallScore: finite(s.OverallScore),
		ScoreBreakdown: model.ScoreBreakdownInput{
			SkillFit:      finite(s.ScoreBreakdown.SkillFit),
			ExperienceFit: finite(s.ScoreBreakdown.ExperienceFit),
			InterestFit:   finite(s.ScoreBreakdown.InterestFit),
			Edge:          finite(s.ScoreBreakdown.Edge),
		},
		Recommendation:       rec,
		ReasoningHighlights:  CompactStrings(s.ReasoningHighlights),
		StrengthsForThisRole: CompactStrings(s.StrengthsForThisRole),
		SkillMatch:           CompactStrings(s.SkillMatch),
		RiskyPoints:          CompactStrings(s.RiskyPoints),
		ImpactOpportunities:  CompactStrings(s.ImpactOpportunities),
		TailoringTips:        CompactStrings(s.TailoringTips),
	}
}

func mapCompany(c *domain.Company) *model.CompanyInput {
	return &model.CompanyInput{
		Name:             trimmed(c.CompanyName),
		Industry:         trimmed(c.Industry),
		SizeRange:        trimmed(c.SizeRange),
		Website:          trimmed(c.Website),
		WebsiteLabel:     websiteLabel(c.Website),
		Description:      trimmed(c.Description),
		ProductsServices: CompactStrings(c.ProductsServices),
		TargetMarkets:    CompactStrings(c.TargetMarkets),
		CustomerSegments: CompactStrings(c.CustomerSegments),
		RawNotes:         trimmed(c.RawNotes),
	}
}

func mapCanvas(c *domain.PersonalCanvas) *model.CanvasInput {
	if c == nil {
		return nil
	}
	return &model.CanvasInput{
		CustomerSegments:      CompactStrings(c.CustomerSegments),
		ValueProposition:      CompactStrings(c.ValueProposition),
		Channels:              CompactStrings(c.Channels),
		CustomerRelationships: CompactStrings(c.CustomerRelationships),
		KeyActivities:         CompactStrings(c.KeyActivities),
		KeyResources:          CompactStrings(c.KeyResources),
		KeyPartners:           CompactStrings(c.KeyPartners),
		CostStructure:         CompactStrings(c.CostStructure),
		RevenueStreams:        CompactStrings(c.RevenueStreams),
	}
}

// websiteLabel reduces a company URL to its registrable domain, e.g.
// "https://careers.acme.co.uk/jobs" -> "acme.co.uk".
func websiteLabel(raw string) string {
	raw = trimmed(raw)
	if raw == "" {
		return ""
	}
	candidate := raw
	if !strings.HasPrefix(candidate, "http://") && !strings.HasPrefix(candidate, "https://") {
		candidate = "https://" + candidate
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return raw
	}
	host := parsed.Hostname()
	if host == "" {
		return raw
	}
	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return strings.TrimPrefix(etld, "www.")
	}
	return strings.TrimPrefix(host, "www.")
}
