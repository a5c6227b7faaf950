package formatters

import (
	"context"
	"fmt"
	"strings"

	"tailoring-engine/internal/domain"
	"tailoring-engine/internal/model"
)

const improveInstructions = `You are an expert editorial career coach improving an existing professional document.

PRIORITY ORDER (STRICT):
1) Obey the improvement instructions exactly.
2) Preserve factual accuracy. Never invent roles, employers, dates, tools, skills, achievements or metrics.
3) Apply the evaluation findings.
4) Keep the original language, tone and structure coherent.

Return ONLY the full improved document in Markdown. No JSON, no commentary, no code fences.`

type ImproveFormatter struct {
	llm      Completer
	language string
}

func NewImproveFormatter(llm Completer, language string) *ImproveFormatter {
	return &ImproveFormatter{llm: llm, language: language}
}

func (f *ImproveFormatter) Format(ctx context.Context, req model.ImproveRequest) (string, error) {
	var b strings.Builder
	b.WriteString(improveInstructions)
	fmt.Fprintf(&b, "\n\nMaterial type: %s\nLANGUAGE: %s\n", req.Kind, languageOr(req.Language, f.language))
	b.WriteString("\nImprovement instructions:\n")
	for _, p := range req.Presets {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	if req.Kind == domain.KindSpeech {
		fmt.Fprintf(&b, "- Keep exactly these three sections, in this order, each under its own heading: \"## %s\", \"## %s\", \"## %s\". Do not rename, merge or drop them.\n",
			domain.HeadingElevatorPitch, domain.HeadingCareerStory, domain.HeadingWhyMe)
	}
	if req.Note != "" {
		fmt.Fprintf(&b, "\nUser note:\n%s\n", req.Note)
	}
	if req.Evaluation != nil {
		fmt.Fprintf(&b, "\nEvaluation:\n%s\n", mustMarshal(req.Evaluation))
	}
	fmt.Fprintf(&b, "\nCurrent document:\n\"\"\"\n%s\n\"\"\"\n", req.Content)

	out, err := f.llm.Complete(ctx, b.String())
	if err != nil {
		return "", err
	}
	return unwrapImproved(out)
}

// unwrapImproved accepts plain Markdown, or a {"content": "..."} object when
// the model ignored the format rule.
func unwrapImproved(out string) (string, error) {
	s := StripFences(out)
	if strings.HasPrefix(s, "{") {
		m, err := ExtractJSONObject(s)
		if err != nil {
			return "", err
		}
		if err := model.ValidateMap(model.SchemaImprove, m); err != nil {
			return "", fmt.Errorf("improve output: %w", err)
		}
		s = StripFences(m["content"].(string))
	}
	return strings.TrimSpace(trimBoundaries(s)), nil
}

// trimBoundaries drops the """ delimiter lines the prompt wraps the document in.
func trimBoundaries(s string) string {
	lines := strings.Split(s, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == `"""` {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == `"""` {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
