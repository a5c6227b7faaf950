package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	scoreMin = 0
	scoreMax = 100
)

type DimensionScores struct {
	AtsReadiness       int `json:"atsReadiness"`
	KeywordCoverage    int `json:"keywordCoverage"`
	ClarityFocus       int `json:"clarityFocus"`
	TargetedFitSignals int `json:"targetedFitSignals"`
	EvidenceStrength   int `json:"evidenceStrength"`
}

type Decision struct {
	Label            string   `json:"label"`
	ReadyToApply     bool     `json:"readyToApply"`
	RationaleBullets []string `json:"rationaleBullets"`
}

type ImprovementTarget struct {
	Document string `json:"document"`
	Anchor   string `json:"anchor"`
}

type Improvement struct {
	Title  string            `json:"title"`
	Action string            `json:"action"`
	Impact string            `json:"impact"`
	Target ImprovementTarget `json:"target"`
}

type EvaluationNotes struct {
	AtsNotes         []string `json:"atsNotes"`
	HumanReaderNotes []string `json:"humanReaderNotes"`
}

// ApplicationStrengthEvaluation is the automated score of one material plus
// ranked suggestions for improving it.
type ApplicationStrengthEvaluation struct {
	OverallScore    int             `json:"overallScore"`
	DimensionScores DimensionScores `json:"dimensionScores"`
	Decision        Decision        `json:"decision"`
	MissingSignals  []string        `json:"missingSignals"`
	TopImprovements []Improvement   `json:"topImprovements"`
	Notes           EvaluationNotes `json:"notes"`
}

var (
	cvAnchors          = []string{"summary", "skills", "experience", "education", "projects", "general"}
	coverLetterAnchors = []string{"coverLetterBody", "opening", "closing", "general"}
)

var anchorAliases = map[string]string{
	"summary":         "summary",
	"profile":         "summary",
	"resumeSummary":   "summary",
	"skills":          "skills",
	"competencies":    "skills",
	"experience":      "experience",
	"workExperience":  "experience",
	"education":       "education",
	"projects":        "projects",
	"project":         "projects",
	"coverLetterBody": "coverLetterBody",
	"body":            "coverLetterBody",
	"opening":         "opening",
	"intro":           "opening",
	"closing":         "closing",
	"conclusion":      "closing",
	"general":         "general",
}

// NormalizeAnchor maps known aliases onto the canonical anchor ids; anything
// else becomes "general".
func NormalizeAnchor(anchor string) string {
	if a, ok := anchorAliases[strings.TrimSpace(anchor)]; ok {
		return a
	}
	return "general"
}

// NormalizeEvaluation coerces a loosely-typed evaluation payload into a valid
// ApplicationStrengthEvaluation. Scores are rounded and clamped to 0-100.
func NormalizeEvaluation(m map[string]interface{}) *ApplicationStrengthEvaluation {
	if m == nil {
		m = map[string]interface{}{}
	}
	out := &ApplicationStrengthEvaluation{
		OverallScore:   clampScore(m["overallScore"]),
		MissingSignals: toStringSlice(m["missingSignals"]),
	}

	dims, _ := m["dimensionScores"].(map[string]interface{})
	out.DimensionScores = DimensionScores{
		AtsReadiness:       clampScore(dims["atsReadiness"]),
		KeywordCoverage:    clampScore(dims["keywordCoverage"]),
		ClarityFocus:       clampScore(dims["clarityFocus"]),
		TargetedFitSignals: clampScore(dims["targetedFitSignals"]),
		EvidenceStrength:   clampScore(dims["evidenceStrength"]),
	}

	dec, _ := m["decision"].(map[string]interface{})
	label, _ := dec["label"].(string)
	switch label {
	case "strong", "borderline", "risky":
	default:
		label = "risky"
	}
	ready, _ := dec["readyToApply"].(bool)
	out.Decision = Decision{Label: label, ReadyToApply: ready, RationaleBullets: toStringSlice(dec["rationaleBullets"])}

	out.TopImprovements = []Improvement{}
	if arr, ok := m["topImprovements"].([]interface{}); ok {
		for _, it := range arr {
			im, _ := it.(map[string]interface{})
			out.TopImprovements = append(out.TopImprovements, normalizeImprovement(im))
		}
	}

	notes, _ := m["notes"].(map[string]interface{})
	out.Notes = EvaluationNotes{
		AtsNotes:         toStringSlice(notes["atsNotes"]),
		HumanReaderNotes: toStringSlice(notes["humanReaderNotes"]),
	}
	return out
}

func normalizeImprovement(m map[string]interface{}) Improvement {
	title, _ := m["title"].(string)
	action, _ := m["action"].(string)
	impact, _ := m["impact"].(string)
	if impact != "high" && impact != "low" {
		impact = "medium"
	}
	target, _ := m["target"].(map[string]interface{})
	doc, _ := target["document"].(string)
	anchor, _ := target["anchor"].(string)
	return Improvement{
		Title:  strings.TrimSpace(title),
		Action: strings.TrimSpace(action),
		Impact: impact,
		Target: normalizeTarget(doc, anchor),
	}
}

func normalizeTarget(document, anchor string) ImprovementTarget {
	if document != "coverLetter" {
		document = "cv"
	}
	allowed := cvAnchors
	if document == "coverLetter" {
		allowed = coverLetterAnchors
	}
	a := NormalizeAnchor(anchor)
	for _, ok := range allowed {
		if ok == a {
			return ImprovementTarget{Document: document, Anchor: a}
		}
	}
	return ImprovementTarget{Document: document, Anchor: "general"}
}

func clampScore(v interface{}) int {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return scoreMin
		}
		f = p
	default:
		return scoreMin
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return scoreMin
	}
	r := int(math.Round(f))
	if r < scoreMin {
		return scoreMin
	}
	if r > scoreMax {
		return scoreMax
	}
	return r
}

func toStringSlice(v interface{}) []string {
	out := []string{}
	arr, ok := v.([]interface{})
	if !ok {
		return out
	}
	for _, it := range arr {
		if it == nil {
			continue
		}
		s, ok := it.(string)
		if !ok {
			s = fmt.Sprintf("%v", it)
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Clone returns a deep copy so callers can hand the evaluation out without
// sharing its slices.
func (e *ApplicationStrengthEvaluation) Clone() *ApplicationStrengthEvaluation {
	if e == nil {
		return nil
	}
	out := *e
	out.Decision.RationaleBullets = append([]string{}, e.Decision.RationaleBullets...)
	out.MissingSignals = append([]string{}, e.MissingSignals...)
	out.TopImprovements = append([]Improvement{}, e.TopImprovements...)
	out.Notes.AtsNotes = append([]string{}, e.Notes.AtsNotes...)
	out.Notes.HumanReaderNotes = append([]string{}, e.Notes.HumanReaderNotes...)
	return &out
}
