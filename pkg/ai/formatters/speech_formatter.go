package formatters

import (
	"context"
	"fmt"
	"strings"

	"tailoring-engine/internal/domain"
	"tailoring-engine/internal/model"
)

const speechInstructions = `You generate a personal narrative speech from the candidate data in the context, tailored to the job without inventing facts.

Output must be concise, professional, first-person, grounded in the data provided, with no extra keys.

Return ONLY a JSON object with this exact structure:
{
  "elevatorPitch": "string (<= 80 words)",
  "careerStory": "string (<= 160 words)",
  "whyMe": "string (<= 120 words)"
}`

type SpeechFormatter struct {
	llm      Completer
	language string
}

func NewSpeechFormatter(llm Completer, language string) *SpeechFormatter {
	return &SpeechFormatter{llm: llm, language: language}
}

func (f *SpeechFormatter) Format(ctx context.Context, in *model.GenerationInput) (*domain.Speech, error) {
	prompt := fmt.Sprintf("%s\n\nLANGUAGE: every value must be in %s.\n\nContext:\n%s",
		speechInstructions, languageOr(in.Language, f.language), mustMarshal(in))
	out, err := f.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	m, err := ExtractJSONObject(out)
	if err != nil {
		return nil, err
	}
	if err := model.ValidateMap(model.SchemaSpeech, m); err != nil {
		return nil, fmt.Errorf("speech output: %w", err)
	}
	s := &domain.Speech{
		ElevatorPitch: strings.TrimSpace(m["elevatorPitch"].(string)),
		CareerStory:   strings.TrimSpace(m["careerStory"].(string)),
		WhyMe:         strings.TrimSpace(m["whyMe"].(string)),
	}
	if s.ElevatorPitch == "" || s.CareerStory == "" || s.WhyMe == "" {
		return nil, fmt.Errorf("speech output: blank section")
	}
	return s, nil
}
