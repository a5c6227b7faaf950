// Command tailor runs one generate, feedback and improve cycle against an
// in-memory store. Without -ai-url it starts a local mock of the ai-service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"tailoring-engine/internal/domain"
	"tailoring-engine/internal/platform/logger"
	"tailoring-engine/internal/usecase"
	"tailoring-engine/pkg/ai"
	"tailoring-engine/pkg/infrastructure"
)

var errNotFound = errors.New("material not found")

const dryRunUser = "9136d765-327d-4cf3-bf1c-98aa1449e52d"

// input is the dry-run fixture: the candidate, the job and optionally its
// matching summary.
type input struct {
	Profile         domain.TailoringProfile `json:"profile"`
	Job             domain.JobDescription   `json:"job"`
	MatchingSummary *domain.MatchingSummary `json:"matching_summary"`
}

func main() {
	var (
		inPath   = flag.String("input", "", "JSON file with profile, job and matching_summary (built-in sample when empty)")
		kindFlag = flag.String("kind", "cv", "material kind: cv, coverLetter or speech")
		presets  = flag.String("presets", "quantified-impact", "comma separated improvement presets")
		note     = flag.String("note", "", "free-text improvement note")
		aiURL    = flag.String("ai-url", "", "ai-service base URL (mock server when empty)")
		language = flag.String("language", "english", "output language")
		outPath  = flag.String("out", "", "write the improved markdown here instead of stdout")
		pdfPath  = flag.String("pdf", "", "also render the improved CV to this PDF file")
	)
	flag.Parse()

	lg, err := logger.New("dev")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync()

	kind, err := domain.ParseMaterialKind(*kindFlag)
	if err != nil {
		lg.Fatal("invalid kind", "error", err)
	}
	in, err := loadInput(*inPath)
	if err != nil {
		lg.Fatal("load input", "error", err)
	}

	url := *aiURL
	if url == "" {
		srv, base := startMockAI()
		defer srv.Shutdown(context.Background())
		url = base
	}

	client := ai.NewClient(ai.NewServiceClient(url, 60*time.Second, lg), *language)
	store := newMemStore(&in.Profile)
	orch := usecase.NewOrchestrator(usecase.OrchestratorDeps{
		Profiles:     store,
		Companies:    store,
		Generator:    client,
		CVs:          memCVs{store},
		CoverLetters: memCoverLetters{store},
		Speeches:     memSpeeches{store},
		Log:          lg,
		Language:     *language,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	p := usecase.JobParams{UserID: dryRunUser, Job: &in.Job, MatchingSummary: in.MatchingSummary}
	id, err := generate(ctx, orch, kind, p)
	if err != nil {
		lg.Fatal("generate failed", "kind", kind, "error", err)
	}
	lg.Info("material generated", "kind", kind, "id", id)

	engine := usecase.NewImprovementEngine(usecase.EngineConfig{
		Kind:       kind,
		MaterialID: id,
		Evaluator:  client,
		Improver:   client,
		Content:    func(ctx context.Context) (string, error) { return store.content(kind, id) },
		Overwrite:  func(ctx context.Context, content string) error { return store.overwrite(ctx, kind, id, content) },
		Language:   *language,
		Log:        lg,
	})
	defer engine.Subscribe(func(s usecase.ImprovementSnapshot) {
		lg.Debug("improvement state", "state", s.State, "busy", s.Busy)
	})()

	ev, err := engine.RunFeedback(ctx)
	if err != nil {
		lg.Fatal("feedback failed", "error_key", usecase.ErrorKey(err, usecase.PhaseFeedback), "error", err)
	}
	printEvaluation(ev)

	engine.SetPresets(strings.Split(*presets, ","))
	engine.SetNote(*note)
	improved, err := engine.RunImprove(ctx)
	if err != nil {
		lg.Fatal("improve failed", "error_key", usecase.ErrorKey(err, usecase.PhaseImprove), "error", err)
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, []byte(improved+"\n"), 0o644); err != nil {
			lg.Fatal("write output", "error", err)
		}
		lg.Info("wrote improved material", "path", *outPath)
	} else {
		fmt.Println(improved)
	}

	if *pdfPath != "" {
		if kind != domain.KindCV {
			lg.Warn("pdf export is only available for CVs (skipped)", "kind", kind)
			return
		}
		if err := writePDF(ctx, in.Profile.Profile.FullName, improved, *pdfPath); err != nil {
			lg.Fatal("pdf export failed", "error", err)
		}
		lg.Info("wrote pdf", "path", *pdfPath)
	}
}

func generate(ctx context.Context, orch *usecase.Orchestrator, kind domain.MaterialKind, p usecase.JobParams) (string, error) {
	switch kind {
	case domain.KindCV:
		doc, err := orch.GenerateCVForJob(ctx, p, usecase.CVOptions{})
		if err != nil {
			return "", err
		}
		return doc.ID, nil
	case domain.KindCoverLetter:
		cl, err := orch.GenerateCoverLetterForJob(ctx, p, usecase.CoverLetterOptions{})
		if err != nil {
			return "", err
		}
		return cl.ID, nil
	default:
		sb, err := orch.GenerateSpeechForJob(ctx, p, usecase.SpeechOptions{})
		if err != nil {
			return "", err
		}
		return sb.ID, nil
	}
}

func (s *memStore) content(kind domain.MaterialKind, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case domain.KindCV:
		if doc, ok := s.cvs[id]; ok {
			return doc.Content, nil
		}
	case domain.KindCoverLetter:
		if cl, ok := s.letters[id]; ok {
			return cl.Content, nil
		}
	default:
		if sb, ok := s.speeches[id]; ok {
			return sb.Markdown(), nil
		}
	}
	return "", errNotFound
}

func (s *memStore) overwrite(ctx context.Context, kind domain.MaterialKind, id, content string) error {
	var err error
	switch kind {
	case domain.KindCV:
		_, err = memCVs{s}.Update(ctx, usecase.UpdateCVParams{ID: id, Content: &content})
	case domain.KindCoverLetter:
		_, err = memCoverLetters{s}.Update(ctx, usecase.UpdateCoverLetterParams{ID: id, Content: &content})
	default:
		sp := domain.ParseSpeechMarkdown(content)
		if err := sp.Validate(); err != nil {
			return err
		}
		_, err = memSpeeches{s}.Update(ctx, usecase.UpdateSpeechParams{ID: id, ElevatorPitch: &sp.ElevatorPitch, CareerStory: &sp.CareerStory, WhyMe: &sp.WhyMe})
	}
	return err
}

func printEvaluation(ev *domain.ApplicationStrengthEvaluation) {
	fmt.Printf("Score: %d/100 (%s, ready to apply: %v)\n", ev.OverallScore, ev.Decision.Label, ev.Decision.ReadyToApply)
	for _, imp := range ev.TopImprovements {
		fmt.Printf("  [%s] %s: %s\n", imp.Impact, imp.Title, imp.Action)
	}
	if len(ev.MissingSignals) > 0 {
		fmt.Printf("Missing: %s\n", strings.Join(ev.MissingSignals, ", "))
	}
	fmt.Println()
}

func writePDF(ctx context.Context, title, markdown, path string) error {
	html, err := infrastructure.MarkdownToHTML(title, markdown)
	if err != nil {
		return err
	}
	pdf, err := infrastructure.NewChromedpRenderer(os.Getenv("CHROME_PATH")).RenderHTMLToPDF(ctx, html)
	if err != nil {
		return err
	}
	return os.WriteFile(path, pdf, 0o644)
}

func loadInput(path string) (*input, error) {
	if path == "" {
		return sampleInput(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var in input
	if err := json.Unmarshal(b, &in); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &in, nil
}

func sampleInput() *input {
	s := func(v string) *string { return &v }
	return &input{
		Profile: domain.TailoringProfile{
			Profile: domain.UserProfile{
				ID:        "sample-profile",
				FullName:  "Ada Lovelace",
				Headline:  "Backend engineer",
				Location:  "London",
				Skills:    []*string{s("Go"), s("Postgres"), s("Redis")},
				Strengths: []*string{s("Systems thinking")},
				Languages: []*string{s("English")},
			},
			Experiences: []domain.Experience{
				{ID: "exp-1", Title: "Engineer", CompanyName: "Acme", StartDate: "2020-01", Responsibilities: []*string{s("Billing platform")}},
			},
			Stories: []domain.STARStory{
				{ID: "story-1", ExperienceID: "exp-1", Title: "Latency", Situation: "Slow checkout API", Action: "Profiled and cached hot paths", Result: "p99 down 40%"},
			},
		},
		Job: domain.JobDescription{
			ID:             "sample-job",
			UserID:         dryRunUser,
			Title:          "Senior Backend Engineer",
			RequiredSkills: []*string{s("Go"), s("Kubernetes")},
		},
	}
}
