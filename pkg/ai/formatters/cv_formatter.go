package formatters

import (
	"context"
	"fmt"

	"tailoring-engine/internal/model"
)

const cvInstructions = `You write a tailored CV in Markdown for the candidate described in the context, targeting the job in the context.

HARD RULES:
- Never invent employers, roles, dates, tools, skills, achievements or metrics.
- Use only facts from profile, experiences and stories.
- Prioritise experience and skills that match the job's required skills and ATS keywords.
- Include only the sections enabled under "cv" (skills, languages, certifications, interests).
- Start with "# <full name>" followed by the headline.
- Return ONLY the Markdown document. No commentary, no code fences.`

type CVFormatter struct {
	llm      Completer
	language string
}

func NewCVFormatter(llm Completer, language string) *CVFormatter {
	return &CVFormatter{llm: llm, language: language}
}

func (f *CVFormatter) Format(ctx context.Context, in *model.GenerationInput) (string, error) {
	prompt := fmt.Sprintf("%s\n\nLANGUAGE: write the whole CV in %s.\n\nContext:\n%s",
		cvInstructions, languageOr(in.Language, f.language), mustMarshal(in))
	out, err := f.llm.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	md := StripFences(out)
	if md == "" {
		return "", fmt.Errorf("ai returned an empty cv")
	}
	return md, nil
}
