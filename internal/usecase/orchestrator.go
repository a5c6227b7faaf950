package usecase

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tailoring-engine/internal/domain"
	"tailoring-engine/internal/model"
	"tailoring-engine/internal/platform/logger"
)

var tracer = otel.Tracer("tailoring-engine/usecase")

const defaultCoverLetterTone = "Professional"

// OrchestratorDeps are the collaborators of the Orchestrator. Events may be
// nil.
type OrchestratorDeps struct {
	Profiles     ProfileReader
	Companies    CompanyReader
	Generator    Generator
	CVs          CVStore
	CoverLetters CoverLetterStore
	Speeches     SpeechStore
	Events       EventPublisher
	Log          *logger.Logger
	Language     string
}

// Orchestrator generates tailored materials for a job and persists them.
// Generate always creates a new record; regenerate always updates the given
// one.
type Orchestrator struct {
	profiles  ProfileReader
	companies CompanyReader
	gen       Generator
	cvs       CVStore
	letters   CoverLetterStore
	speeches  SpeechStore
	events    EventPublisher
	log       *logger.Logger
	language  string

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewOrchestrator(d OrchestratorDeps) *Orchestrator {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Orchestrator{
		profiles:  d.Profiles,
		companies: d.Companies,
		gen:       d.Generator,
		cvs:       d.CVs,
		letters:   d.CoverLetters,
		speeches:  d.Speeches,
		events:    d.Events,
		log:       log.With("component", "orchestrator"),
		language:  d.Language,
		inflight:  map[string]struct{}{},
	}
}

// ---- CV ----

func (o *Orchestrator) GenerateCVForJob(ctx context.Context, p JobParams, opts CVOptions) (doc *domain.CVDocument, err error) {
	ctx, span := o.startSpan(ctx, "tailoring.generate_cv", domain.KindCV, p, "")
	defer func() { endSpan(span, err) }()

	in, err := o.prepare(ctx, domain.KindCV, p, BuildOptions{Language: o.language, CVSections: opts.Sections})
	if err != nil {
		return nil, err
	}
	content, err := o.gen.GenerateCV(ctx, in)
	if err != nil {
		return nil, &AIError{Op: "generate cv", Err: err}
	}
	showPhoto := true
	if opts.ShowProfilePhoto != nil {
		showPhoto = *opts.ShowProfilePhoto
	}
	doc, err = o.cvs.Create(ctx, CreateCVParams{
		UserID:           p.UserID,
		JobID:            strPtr(p.Job.ID),
		Name:             materialName(opts.Name, domain.KindCV, p.Job.Title),
		TemplateID:       opts.TemplateID,
		IsTailored:       true,
		Content:          content,
		ShowProfilePhoto: showPhoto,
	})
	if err != nil {
		return nil, fmt.Errorf("create cv: %w", err)
	}
	o.publish(ctx, EventMaterialGenerated, domain.KindCV, doc.ID, p)
	return doc, nil
}

func (o *Orchestrator) RegenerateCVForJob(ctx context.Context, p RegenerateParams, opts CVOptions) (doc *domain.CVDocument, err error) {
	ctx, span := o.startSpan(ctx, "tailoring.regenerate_cv", domain.KindCV, p.JobParams, p.ID)
	defer func() { endSpan(span, err) }()

	release, err := o.acquire(domain.KindCV, p.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	in, err := o.prepare(ctx, domain.KindCV, p.JobParams, BuildOptions{Language: o.language, CVSections: opts.Sections})
	if err != nil {
		return nil, err
	}
	content, err := o.gen.GenerateCV(ctx, in)
	if err != nil {
		return nil, &AIError{Op: "generate cv", Err: err}
	}
	doc, err = o.cvs.Update(ctx, UpdateCVParams{
		ID:               p.ID,
		JobID:            strPtr(p.Job.ID),
		Name:             optionalString(opts.Name),
		TemplateID:       opts.TemplateID,
		IsTailored:       boolPtr(true),
		Content:          &content,
		ShowProfilePhoto: opts.ShowProfilePhoto,
	})
	if err != nil {
		return nil, fmt.Errorf("update cv %s: %w", p.ID, err)
	}
	o.publish(ctx, EventMaterialRegenerated, domain.KindCV, doc.ID, p.JobParams)
	return doc, nil
}

// ---- Cover letter ----

func (o *Orchestrator) GenerateCoverLetterForJob(ctx context.Context, p JobParams, opts CoverLetterOptions) (cl *domain.CoverLetter, err error) {
	ctx, span := o.startSpan(ctx, "tailoring.generate_cover_letter", domain.KindCoverLetter, p, "")
	defer func() { endSpan(span, err) }()

	tone := trimmed(opts.Tone)
	if tone == "" {
		tone = defaultCoverLetterTone
	}
	in, err := o.prepare(ctx, domain.KindCoverLetter, p, BuildOptions{Language: o.language, Tone: tone})
	if err != nil {
		return nil, err
	}
	content, err := o.gen.GenerateCoverLetter(ctx, in)
	if err != nil {
		return nil, &AIError{Op: "generate cover letter", Err: err}
	}
	cl, err = o.letters.Create(ctx, CreateCoverLetterParams{
		UserID:     p.UserID,
		JobID:      strPtr(p.Job.ID),
		Name:       materialName(opts.Name, domain.KindCoverLetter, p.Job.Title),
		Tone:       tone,
		IsTailored: true,
		Content:    content,
	})
	if err != nil {
		return nil, fmt.Errorf("create cover letter: %w", err)
	}
	o.publish(ctx, EventMaterialGenerated, domain.KindCoverLetter, cl.ID, p)
	return cl, nil
}

func (o *Orchestrator) RegenerateCoverLetterForJob(ctx context.Context, p RegenerateParams, opts CoverLetterOptions) (cl *domain.CoverLetter, err error) {
	ctx, span := o.startSpan(ctx, "tailoring.regenerate_cover_letter", domain.KindCoverLetter, p.JobParams, p.ID)
	defer func() { endSpan(span, err) }()

	release, err := o.acquire(domain.KindCoverLetter, p.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	in, err := o.prepare(ctx, domain.KindCoverLetter, p.JobParams, BuildOptions{Language: o.language, Tone: trimmed(opts.Tone)})
	if err != nil {
		return nil, err
	}
	content, err := o.gen.GenerateCoverLetter(ctx, in)
	if err != nil {
		return nil, &AIError{Op: "generate cover letter", Err: err}
	}
	cl, err = o.letters.Update(ctx, UpdateCoverLetterParams{
		ID:         p.ID,
		JobID:      strPtr(p.Job.ID),
		Name:       optionalString(opts.Name),
		Tone:       optionalString(opts.Tone),
		IsTailored: boolPtr(true),
		Content:    &content,
	})
	if err != nil {
		return nil, fmt.Errorf("update cover letter %s: %w", p.ID, err)
	}
	o.publish(ctx, EventMaterialRegenerated, domain.KindCoverLetter, cl.ID, p.JobParams)
	return cl, nil
}

// ---- Speech ----

func (o *Orchestrator) GenerateSpeechForJob(ctx context.Context, p JobParams, opts SpeechOptions) (sb *domain.SpeechBlock, err error) {
	ctx, span := o.startSpan(ctx, "tailoring.generate_speech", domain.KindSpeech, p, "")
	defer func() { endSpan(span, err) }()

	speech, err := o.generateSpeech(ctx, p)
	if err != nil {
		return nil, err
	}
	sb, err = o.speeches.Create(ctx, CreateSpeechParams{
		UserID:        p.UserID,
		JobID:         strPtr(p.Job.ID),
		Name:          materialName(opts.Name, domain.KindSpeech, p.Job.Title),
		IsTailored:    true,
		ElevatorPitch: speech.ElevatorPitch,
		CareerStory:   speech.CareerStory,
		WhyMe:         speech.WhyMe,
	})
	if err != nil {
		return nil, fmt.Errorf("create speech: %w", err)
	}
	o.publish(ctx, EventMaterialGenerated, domain.KindSpeech, sb.ID, p)
	return sb, nil
}

func (o *Orchestrator) RegenerateSpeechForJob(ctx context.Context, p RegenerateParams, opts SpeechOptions) (sb *domain.SpeechBlock, err error) {
	ctx, span := o.startSpan(ctx, "tailoring.regenerate_speech", domain.KindSpeech, p.JobParams, p.ID)
	defer func() { endSpan(span, err) }()

	release, err := o.acquire(domain.KindSpeech, p.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	speech, err := o.generateSpeech(ctx, p.JobParams)
	if err != nil {
		return nil, err
	}
	sb, err = o.speeches.Update(ctx, UpdateSpeechParams{
		ID:            p.ID,
		JobID:         strPtr(p.Job.ID),
		Name:          optionalString(opts.Name),
		IsTailored:    boolPtr(true),
		ElevatorPitch: &speech.ElevatorPitch,
		CareerStory:   &speech.CareerStory,
		WhyMe:         &speech.WhyMe,
	})
	if err != nil {
		return nil, fmt.Errorf("update speech %s: %w", p.ID, err)
	}
	o.publish(ctx, EventMaterialRegenerated, domain.KindSpeech, sb.ID, p.JobParams)
	return sb, nil
}

func (o *Orchestrator) generateSpeech(ctx context.Context, p JobParams) (*domain.Speech, error) {
	in, err := o.prepare(ctx, domain.KindSpeech, p, BuildOptions{Language: o.language})
	if err != nil {
		return nil, err
	}
	speech, err := o.gen.GenerateSpeech(ctx, in)
	if err != nil {
		return nil, &AIError{Op: "generate speech", Err: err}
	}
	if speech == nil {
		return nil, &AIError{Op: "generate speech", Err: fmt.Errorf("empty result")}
	}
	return speech, nil
}

// prepare loads the profile and the optional company, then builds the input.
func (o *Orchestrator) prepare(ctx context.Context, kind domain.MaterialKind, p JobParams, opts BuildOptions) (*model.GenerationInput, error) {
	if p.Job == nil {
		return nil, &ValidationError{Field: "job", Msg: "job description is required for tailoring"}
	}
	profile, err := o.profiles.GetProfileForTailoring(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return BuildGenerationInput(kind, SourceData{
		UserID:          p.UserID,
		Profile:         profile,
		Job:             p.Job,
		MatchingSummary: p.MatchingSummary,
		Company:         bestEffortCompany(ctx, o.companies, p.Job, o.log),
	}, opts)
}

// acquire rejects a second regenerate of the same material while the first
// is still running.
func (o *Orchestrator) acquire(kind domain.MaterialKind, id string) (func(), error) {
	if id == "" {
		return nil, &ValidationError{Field: "id", Msg: "material id is required to regenerate"}
	}
	key := string(kind) + ":" + id
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.inflight[key]; busy {
		return nil, ErrRegenerateInFlight
	}
	o.inflight[key] = struct{}{}
	return func() {
		o.mu.Lock()
		delete(o.inflight, key)
		o.mu.Unlock()
	}, nil
}

func (o *Orchestrator) publish(ctx context.Context, typ string, kind domain.MaterialKind, id string, p JobParams) {
	if o.events == nil {
		return
	}
	ev := MaterialEvent{Type: typ, Kind: kind, ID: id, UserID: p.UserID, JobID: p.Job.ID}
	if err := o.events.Publish(ctx, ev); err != nil {
		o.log.Warn("publish material event failed (non-fatal)", "event", typ, "material_id", id, "error", err)
	}
}

func (o *Orchestrator) startSpan(ctx context.Context, name string, kind domain.MaterialKind, p JobParams, id string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String("material.kind", string(kind))}
	if p.Job != nil {
		attrs = append(attrs, attribute.String("job.id", p.Job.ID))
	}
	if id != "" {
		attrs = append(attrs, attribute.String("material.id", id))
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func materialName(name string, kind domain.MaterialKind, jobTitle string) string {
	if n := trimmed(name); n != "" {
		return n
	}
	return domain.DefaultMaterialName(kind, trimmed(jobTitle))
}
