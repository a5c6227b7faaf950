package usecase

import (
	"context"
	"sync"

	"tailoring-engine/internal/domain"
	"tailoring-engine/internal/model"
)

// ── readers ─────────────────────────────────────────────────────────────

type fakeProfiles struct {
	profile *domain.TailoringProfile
	err     error
	calls   int
}

func (f *fakeProfiles) GetProfileForTailoring(_ context.Context, _ string) (*domain.TailoringProfile, error) {
	f.calls++
	return f.profile, f.err
}

type fakeCompanies struct {
	mu      sync.Mutex
	company *domain.Company
	err     error
	ids     []string
}

func (f *fakeCompanies) GetCompany(_ context.Context, id string) (*domain.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, id)
	return f.company, f.err
}

func (f *fakeCompanies) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ids)
}

type fakeJobs struct {
	mu    sync.Mutex
	job   *domain.JobDescription
	err   error
	calls int
}

func (f *fakeJobs) GetFullJobDescription(_ context.Context, _ string) (*domain.JobDescription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.job, f.err
}

type fakeSummaries struct {
	mu      sync.Mutex
	summary *domain.MatchingSummary
	err     error
	calls   int
}

func (f *fakeSummaries) GetByContext(_ context.Context, _, _ string) (*domain.MatchingSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.summary, f.err
}

// ── AI ──────────────────────────────────────────────────────────────────

type fakeGenerator struct {
	mu     sync.Mutex
	cv     string
	letter string
	speech *domain.Speech
	err    error
	inputs []*model.GenerationInput

	// When set, each call signals entered and then waits on release.
	entered chan struct{}
	release chan struct{}
}

func (f *fakeGenerator) record(in *model.GenerationInput) error {
	f.mu.Lock()
	f.inputs = append(f.inputs, in)
	entered, release := f.entered, f.release
	f.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
		<-release
	}
	return f.err
}

func (f *fakeGenerator) GenerateCV(_ context.Context, in *model.GenerationInput) (string, error) {
	if err := f.record(in); err != nil {
		return "", err
	}
	return f.cv, nil
}

func (f *fakeGenerator) GenerateCoverLetter(_ context.Context, in *model.GenerationInput) (string, error) {
	if err := f.record(in); err != nil {
		return "", err
	}
	return f.letter, nil
}

func (f *fakeGenerator) GenerateSpeech(_ context.Context, in *model.GenerationInput) (*domain.Speech, error) {
	if err := f.record(in); err != nil {
		return nil, err
	}
	return f.speech, nil
}

func (f *fakeGenerator) lastInput() *model.GenerationInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.inputs) == 0 {
		return nil
	}
	return f.inputs[len(f.inputs)-1]
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputs)
}

type fakeEvaluator struct {
	mu    sync.Mutex
	evals []*domain.ApplicationStrengthEvaluation // returned in order, last one repeats
	errs  []error
	calls int

	entered chan struct{}
	release chan struct{}
}

func (f *fakeEvaluator) Evaluate(_ context.Context, _ domain.MaterialKind, _ string) (*domain.ApplicationStrengthEvaluation, error) {
	f.mu.Lock()
	i := f.calls
	f.calls++
	entered, release := f.entered, f.release
	f.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
		<-release
	}
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return nil, err
	}
	if len(f.evals) == 0 {
		return nil, nil
	}
	if i >= len(f.evals) {
		i = len(f.evals) - 1
	}
	return f.evals[i], nil
}

type fakeImprover struct {
	mu   sync.Mutex
	out  string
	err  error
	reqs []model.ImproveRequest
}

func (f *fakeImprover) Improve(_ context.Context, req model.ImproveRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return f.out, f.err
}

// ── stores ──────────────────────────────────────────────────────────────

type fakeCVStore struct {
	mu      sync.Mutex
	created []CreateCVParams
	updated []UpdateCVParams
	err     error
}

func (f *fakeCVStore) Create(_ context.Context, p CreateCVParams) (*domain.CVDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, p)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.CVDocument{
		ID: "cv-new", UserID: p.UserID, JobID: p.JobID, Name: p.Name, TemplateID: p.TemplateID,
		IsTailored: p.IsTailored, Content: p.Content, ShowProfilePhoto: p.ShowProfilePhoto,
	}, nil
}

func (f *fakeCVStore) Update(_ context.Context, p UpdateCVParams) (*domain.CVDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, p)
	if f.err != nil {
		return nil, f.err
	}
	doc := &domain.CVDocument{ID: p.ID, JobID: p.JobID, IsTailored: true}
	if p.Content != nil {
		doc.Content = *p.Content
	}
	return doc, nil
}

type fakeCoverLetterStore struct {
	created []CreateCoverLetterParams
	updated []UpdateCoverLetterParams
	err     error
}

func (f *fakeCoverLetterStore) Create(_ context.Context, p CreateCoverLetterParams) (*domain.CoverLetter, error) {
	f.created = append(f.created, p)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.CoverLetter{
		ID: "cl-new", UserID: p.UserID, JobID: p.JobID, Name: p.Name, Tone: p.Tone,
		IsTailored: p.IsTailored, Content: p.Content,
	}, nil
}

func (f *fakeCoverLetterStore) Update(_ context.Context, p UpdateCoverLetterParams) (*domain.CoverLetter, error) {
	f.updated = append(f.updated, p)
	if f.err != nil {
		return nil, f.err
	}
	cl := &domain.CoverLetter{ID: p.ID, JobID: p.JobID, IsTailored: true}
	if p.Tone != nil {
		cl.Tone = *p.Tone
	}
	if p.Content != nil {
		cl.Content = *p.Content
	}
	return cl, nil
}

type fakeSpeechStore struct {
	created []CreateSpeechParams
	updated []UpdateSpeechParams
	err     error
}

func (f *fakeSpeechStore) Create(_ context.Context, p CreateSpeechParams) (*domain.SpeechBlock, error) {
	f.created = append(f.created, p)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SpeechBlock{
		ID: "sp-new", UserID: p.UserID, JobID: p.JobID, Name: p.Name, IsTailored: p.IsTailored,
		ElevatorPitch: p.ElevatorPitch, CareerStory: p.CareerStory, WhyMe: p.WhyMe,
	}, nil
}

func (f *fakeSpeechStore) Update(_ context.Context, p UpdateSpeechParams) (*domain.SpeechBlock, error) {
	f.updated = append(f.updated, p)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SpeechBlock{ID: p.ID, JobID: p.JobID, IsTailored: true}, nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events []MaterialEvent
	err    error
}

func (f *fakeEvents) Publish(_ context.Context, ev MaterialEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

// ── fixtures ────────────────────────────────────────────────────────────

func sp(s string) *string { return &s }

func testProfile() *domain.TailoringProfile {
	return &domain.TailoringProfile{
		Profile: domain.UserProfile{
			ID:        "p-1",
			FullName:  "Ada Lovelace",
			Headline:  "Backend engineer",
			Skills:    []*string{sp("Go"), nil, sp("  "), sp("Postgres")},
			Goals:     []*string{nil},
			Strengths: []*string{sp("Systems thinking")},
			Languages: []*string{sp("English")},
		},
		PersonalCanvas: &domain.PersonalCanvas{ValueProposition: []*string{sp("Ship reliable systems"), nil}},
		Experiences: []domain.Experience{
			{ID: "e-1", Title: "Engineer", CompanyName: "Acme", StartDate: "2020-01"},
			{ID: "e-2", Title: "Intern", ExperienceType: "education", Tasks: []*string{sp("Testing"), sp("")}},
		},
		Stories: []domain.STARStory{
			{ID: "s-1", ExperienceID: "e-1", Title: "Latency", Situation: "Slow API", Achievements: []*string{sp("Cut p99 by 40%"), nil}},
			{ID: "s-2", ExperienceID: "missing", Title: "Orphan"},
		},
	}
}

func testJob() *domain.JobDescription {
	return &domain.JobDescription{
		ID:             "job-1",
		UserID:         "user-1",
		Title:          "Senior Backend Engineer",
		RequiredSkills: []*string{sp("Go"), nil},
	}
}

func testJobWithCompany() *domain.JobDescription {
	j := testJob()
	j.CompanyID = sp("co-1")
	return j
}

func testEvaluation(score int) *domain.ApplicationStrengthEvaluation {
	return &domain.ApplicationStrengthEvaluation{
		OverallScore:    score,
		Decision:        domain.Decision{Label: "borderline", RationaleBullets: []string{}},
		MissingSignals:  []string{"kubernetes"},
		TopImprovements: []domain.Improvement{},
		Notes:           domain.EvaluationNotes{AtsNotes: []string{}, HumanReaderNotes: []string{}},
	}
}
