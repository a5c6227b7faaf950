package formatters

import (
	"context"
	"fmt"

	"tailoring-engine/internal/model"
)

const coverLetterInstructions = `You write a one-page cover letter in Markdown for the candidate described in the context, applying to the job in the context.

HARD RULES:
- First person, 3 to 4 short paragraphs.
- Never invent facts; ground every claim in profile, experiences, stories or the personal canvas.
- Address the job's explicit pains and success criteria where the candidate has evidence.
- Mention the company by name only when a company is present in the context.
- Use the requested tone.
- Return ONLY the letter. No commentary, no code fences.`

type CoverLetterFormatter struct {
	llm      Completer
	language string
}

func NewCoverLetterFormatter(llm Completer, language string) *CoverLetterFormatter {
	return &CoverLetterFormatter{llm: llm, language: language}
}

func (f *CoverLetterFormatter) Format(ctx context.Context, in *model.GenerationInput) (string, error) {
	prompt := fmt.Sprintf("%s\n\nTONE: %s\nLANGUAGE: write the whole letter in %s.\n\nContext:\n%s",
		coverLetterInstructions, in.Tone, languageOr(in.Language, f.language), mustMarshal(in))
	out, err := f.llm.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	letter := StripFences(out)
	if letter == "" {
		return "", fmt.Errorf("ai returned an empty cover letter")
	}
	return letter, nil
}
