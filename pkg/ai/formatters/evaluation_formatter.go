package formatters

import (
	"context"
	"fmt"

	"tailoring-engine/internal/domain"
	"tailoring-engine/internal/model"
)

const evaluationInstructions = `You are an application evaluator. Assess how strong this material is for the job it was tailored to, using ONLY the text provided.

HARD RULES:
- Never invent facts about the candidate.
- Use "" for unknown strings and [] for empty arrays. Never output null.
- Scores are integers from 0 to 100.
- Keep bullets concise and actionable (<= 160 characters).

DECISION: "strong" (readyToApply true), "borderline" or "risky".
Each improvement targets a section anchor: summary, skills, experience, education, projects or general for a CV; coverLetterBody, opening, closing or general for a cover letter.

Return ONLY a JSON object with this structure:
{
  "overallScore": 0,
  "dimensionScores": {"atsReadiness": 0, "keywordCoverage": 0, "clarityFocus": 0, "targetedFitSignals": 0, "evidenceStrength": 0},
  "decision": {"label": "borderline", "readyToApply": false, "rationaleBullets": []},
  "missingSignals": [],
  "topImprovements": [{"title": "", "action": "", "impact": "medium", "target": {"document": "cv", "anchor": "general"}}],
  "notes": {"atsNotes": [], "humanReaderNotes": []}
}`

type EvaluationFormatter struct {
	llm      Completer
	language string
}

func NewEvaluationFormatter(llm Completer, language string) *EvaluationFormatter {
	return &EvaluationFormatter{llm: llm, language: language}
}

func (f *EvaluationFormatter) Format(ctx context.Context, kind domain.MaterialKind, content string) (*domain.ApplicationStrengthEvaluation, error) {
	prompt := fmt.Sprintf("%s\n\nOutput language: %s\nMaterial type: %s\n\nMaterial text:\n%s",
		evaluationInstructions, languageOr("", f.language), kind, content)
	out, err := f.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	m, err := ExtractJSONObject(out)
	if err != nil {
		return nil, err
	}
	if err := model.ValidateMap(model.SchemaEvaluation, m); err != nil {
		return nil, fmt.Errorf("evaluation output: %w", err)
	}
	return domain.NormalizeEvaluation(m), nil
}
