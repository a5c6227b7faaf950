package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaterialKind identifies one of the tailored application materials.
type MaterialKind string

const (
	KindCV          MaterialKind = "cv"
	KindCoverLetter MaterialKind = "coverLetter"
	KindSpeech      MaterialKind = "speech"
)

// ParseMaterialKind accepts the canonical kind values plus the URL-friendly
// "cover-letter" spelling.
func ParseMaterialKind(s string) (MaterialKind, error) {
	switch s {
	case "cv":
		return KindCV, nil
	case "coverLetter", "cover-letter", "cover_letter":
		return KindCoverLetter, nil
	case "speech":
		return KindSpeech, nil
	}
	return "", fmt.Errorf("unknown material kind %q", s)
}

// Label is the human-readable prefix used for default material names.
func (k MaterialKind) Label() string {
	switch k {
	case KindCV:
		return "Tailored CV"
	case KindCoverLetter:
		return "Cover Letter"
	case KindSpeech:
		return "Speech"
	}
	return string(k)
}

// DefaultMaterialName joins the kind label and the job title with a dash.
func DefaultMaterialName(k MaterialKind, jobTitle string) string {
	return k.Label() + " — " + jobTitle
}

type CVDocument struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	JobID            *string   `json:"job_id,omitempty"`
	Name             string    `json:"name"`
	TemplateID       *string   `json:"template_id,omitempty"`
	IsTailored       bool      `json:"is_tailored"`
	Content          string    `json:"content"`
	ShowProfilePhoto bool      `json:"show_profile_photo"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type CoverLetter struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	JobID      *string   `json:"job_id,omitempty"`
	Name       string    `json:"name"`
	Tone       string    `json:"tone"`
	IsTailored bool      `json:"is_tailored"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type SpeechBlock struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	JobID         *string   `json:"job_id,omitempty"`
	Name          string    `json:"name"`
	IsTailored    bool      `json:"is_tailored"`
	ElevatorPitch string    `json:"elevator_pitch"`
	CareerStory   string    `json:"career_story"`
	WhyMe         string    `json:"why_me"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Speech is the three-part output of the speech generation capability.
type Speech struct {
	ElevatorPitch string `json:"elevatorPitch"`
	CareerStory   string `json:"careerStory"`
	WhyMe         string `json:"whyMe"`
}

// Markdown joins the speech parts into one document for evaluation.
func (s SpeechBlock) Markdown() string {
	return "## " + HeadingElevatorPitch + "\n\n" + s.ElevatorPitch +
		"\n\n## " + HeadingCareerStory + "\n\n" + s.CareerStory +
		"\n\n## " + HeadingWhyMe + "\n\n" + s.WhyMe + "\n"
}

// TailoredMaterials lists the materials already tailored to one job.
type TailoredMaterials struct {
	CVs          []CVDocument  `json:"cvs"`
	CoverLetters []CoverLetter `json:"cover_letters"`
	Speeches     []SpeechBlock `json:"speeches"`
}

// Empty reports whether no material exists for the job yet.
func (m TailoredMaterials) Empty() bool {
	return len(m.CVs) == 0 && len(m.CoverLetters) == 0 && len(m.Speeches) == 0
}

// Speech section headings as written by SpeechBlock.Markdown.
const (
	HeadingElevatorPitch = "Elevator pitch"
	HeadingCareerStory   = "Career story"
	HeadingWhyMe         = "Why me"
)

// ErrIncompleteSpeech is returned when a speech document is missing one of
// its three parts.
var ErrIncompleteSpeech = errors.New("speech is missing a section")

// ParseSpeechMarkdown splits a document produced by SpeechBlock.Markdown back
// into its parts. Headings are matched loosely: case, markdown heading or
// bold markers, list numbering and trailing punctuation are ignored. Text
// before the first known heading goes to the pitch.
func ParseSpeechMarkdown(md string) Speech {
	var out Speech
	target := &out.ElevatorPitch
	var buf []string
	flush := func() {
		text := strings.TrimSpace(strings.Join(buf, "\n"))
		buf = buf[:0]
		if text == "" {
			return
		}
		if *target != "" {
			*target += "\n\n"
		}
		*target += text
	}
	for _, line := range strings.Split(md, "\n") {
		var next *string
		switch speechHeading(line) {
		case "elevator pitch":
			next = &out.ElevatorPitch
		case "career story":
			next = &out.CareerStory
		case "why me":
			next = &out.WhyMe
		}
		if next != nil {
			flush()
			target = next
			continue
		}
		buf = append(buf, line)
	}
	flush()
	return out
}

// speechHeading reduces a line to its bare lower-case words, so that
// "## Career Story:", "**Why me?**" and "2. Why me" all compare equal to the
// plain heading.
func speechHeading(line string) string {
	s := strings.TrimSpace(line)
	s = strings.TrimLeft(s, "#")
	s = strings.Trim(s, " \t*_")
	// list numbering: "1." or "1)"
	if j := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }); j > 0 && (s[j] == '.' || s[j] == ')') {
		s = s[j+1:]
	}
	s = strings.Trim(s, " \t*_")
	s = strings.TrimRight(s, ":?!.-")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Validate reports ErrIncompleteSpeech when any part is blank.
func (s Speech) Validate() error {
	var missing []string
	if strings.TrimSpace(s.ElevatorPitch) == "" {
		missing = append(missing, HeadingElevatorPitch)
	}
	if strings.TrimSpace(s.CareerStory) == "" {
		missing = append(missing, HeadingCareerStory)
	}
	if strings.TrimSpace(s.WhyMe) == "" {
		missing = append(missing, HeadingWhyMe)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrIncompleteSpeech, strings.Join(missing, ", "))
	}
	return nil
}
