package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tailoring-engine/internal/domain"
)

func TestParseMaterialKind(t *testing.T) {
	for in, want := range map[string]domain.MaterialKind{
		"cv":           domain.KindCV,
		"coverLetter":  domain.KindCoverLetter,
		"cover-letter": domain.KindCoverLetter,
		"speech":       domain.KindSpeech,
	} {
		got, err := domain.ParseMaterialKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := domain.ParseMaterialKind("resume")
	assert.Error(t, err)
}

func TestDefaultMaterialName(t *testing.T) {
	assert.Equal(t, "Tailored CV — Backend Engineer", domain.DefaultMaterialName(domain.KindCV, "Backend Engineer"))
	assert.Equal(t, "Cover Letter — Backend Engineer", domain.DefaultMaterialName(domain.KindCoverLetter, "Backend Engineer"))
	assert.Equal(t, "Speech — Backend Engineer", domain.DefaultMaterialName(domain.KindSpeech, "Backend Engineer"))
}

func TestSpeechMarkdownRoundTrip(t *testing.T) {
	block := domain.SpeechBlock{
		ElevatorPitch: "I build reliable backends.",
		CareerStory:   "Started in support,\nmoved to platform work.",
		WhyMe:         "I have shipped this exact system before.",
	}

	got := domain.ParseSpeechMarkdown(block.Markdown())

	assert.Equal(t, block.ElevatorPitch, got.ElevatorPitch)
	assert.Equal(t, block.CareerStory, got.CareerStory)
	assert.Equal(t, block.WhyMe, got.WhyMe)
}

func TestParseSpeechMarkdown_NoHeadings(t *testing.T) {
	got := domain.ParseSpeechMarkdown("Just a pitch.")
	assert.Equal(t, "Just a pitch.", got.ElevatorPitch)
	assert.Empty(t, got.CareerStory)
	assert.Empty(t, got.WhyMe)
}

func TestParseSpeechMarkdown_LooseHeadings(t *testing.T) {
	cases := map[string]string{
		"trailing punctuation": "## Elevator Pitch:\n\nI build backends.\n\n## Career Story:\n\nSupport then platform.\n\n## Why me?\n\nShipped it before.",
		"bold labels":          "**Elevator pitch**\nI build backends.\n\n**Career story**\nSupport then platform.\n\n**Why me**\nShipped it before.",
		"numbered":             "### 1. Elevator pitch\nI build backends.\n### 2) Career story\nSupport then platform.\n### 3. Why Me\nShipped it before.",
	}
	for name, md := range cases {
		t.Run(name, func(t *testing.T) {
			got := domain.ParseSpeechMarkdown(md)
			assert.Equal(t, "I build backends.", got.ElevatorPitch)
			assert.Equal(t, "Support then platform.", got.CareerStory)
			assert.Equal(t, "Shipped it before.", got.WhyMe)
			assert.NoError(t, got.Validate())
		})
	}
}

func TestParseSpeechMarkdown_KeepsPreamble(t *testing.T) {
	got := domain.ParseSpeechMarkdown("Hi, I'm Ada.\n\n## Elevator pitch\n\nI build backends.\n\n## Career story\n\nSupport.\n\n## Why me\n\nShipped.")
	assert.Equal(t, "Hi, I'm Ada.\n\nI build backends.", got.ElevatorPitch)
	assert.Equal(t, "Support.", got.CareerStory)
}

func TestSpeechValidate(t *testing.T) {
	err := domain.ParseSpeechMarkdown("## Elevator pitch\n\nI build backends.\n\n## Motivation\n\nShipped.").Validate()
	require.ErrorIs(t, err, domain.ErrIncompleteSpeech)
	assert.Contains(t, err.Error(), domain.HeadingCareerStory)
	assert.Contains(t, err.Error(), domain.HeadingWhyMe)
	assert.NotContains(t, err.Error(), domain.HeadingElevatorPitch)
}

func TestJobDescription_HasCompany(t *testing.T) {
	empty := ""
	id := "c-1"
	assert.False(t, (&domain.JobDescription{}).HasCompany())
	assert.False(t, (&domain.JobDescription{CompanyID: &empty}).HasCompany())
	assert.True(t, (&domain.JobDescription{CompanyID: &id}).HasCompany())
}
