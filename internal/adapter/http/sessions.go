package http

import (
	"context"
	"sync"

	"tailoring-engine/internal/domain"
	"tailoring-engine/internal/platform/logger"
	"tailoring-engine/internal/usecase"
)

type CVRepository interface {
	usecase.CVStore
	Get(ctx context.Context, userID, id string) (*domain.CVDocument, error)
}

type CoverLetterRepository interface {
	usecase.CoverLetterStore
	Get(ctx context.Context, userID, id string) (*domain.CoverLetter, error)
}

type SpeechRepository interface {
	usecase.SpeechStore
	Get(ctx context.Context, userID, id string) (*domain.SpeechBlock, error)
}

// Stores groups the per-kind material repositories.
type Stores struct {
	CVs          CVRepository
	CoverLetters CoverLetterRepository
	Speeches     SpeechRepository
}

// Owns returns the repository's not-found error when the material does not
// exist or belongs to another user.
func (s Stores) Owns(ctx context.Context, kind domain.MaterialKind, userID, id string) error {
	_, err := s.content(ctx, kind, userID, id)
	return err
}

// content reads the improvable text of a material. Speeches are joined into
// one markdown document.
func (s Stores) content(ctx context.Context, kind domain.MaterialKind, userID, id string) (string, error) {
	switch kind {
	case domain.KindCV:
		doc, err := s.CVs.Get(ctx, userID, id)
		if err != nil {
			return "", err
		}
		return doc.Content, nil
	case domain.KindCoverLetter:
		cl, err := s.CoverLetters.Get(ctx, userID, id)
		if err != nil {
			return "", err
		}
		return cl.Content, nil
	default:
		sb, err := s.Speeches.Get(ctx, userID, id)
		if err != nil {
			return "", err
		}
		return sb.Markdown(), nil
	}
}

func (s Stores) overwrite(ctx context.Context, kind domain.MaterialKind, id, content string) error {
	var err error
	switch kind {
	case domain.KindCV:
		_, err = s.CVs.Update(ctx, usecase.UpdateCVParams{ID: id, Content: &content})
	case domain.KindCoverLetter:
		_, err = s.CoverLetters.Update(ctx, usecase.UpdateCoverLetterParams{ID: id, Content: &content})
	default:
		sp := domain.ParseSpeechMarkdown(content)
		// a lost heading would blank a stored part
		if err := sp.Validate(); err != nil {
			return err
		}
		_, err = s.Speeches.Update(ctx, usecase.UpdateSpeechParams{
			ID:            id,
			ElevatorPitch: &sp.ElevatorPitch,
			CareerStory:   &sp.CareerStory,
			WhyMe:         &sp.WhyMe,
		})
	}
	return err
}

// Sessions keeps one improvement engine per material, created on first use.
type Sessions struct {
	mu           sync.Mutex
	engines      map[string]*usecase.ImprovementEngine
	regenerating map[string]struct{}
	stores       Stores
	evaluator    usecase.Evaluator
	improver     usecase.Improver
	language     string
	log          *logger.Logger
}

func NewSessions(stores Stores, evaluator usecase.Evaluator, improver usecase.Improver, language string, log *logger.Logger) *Sessions {
	if log == nil {
		log = logger.Nop()
	}
	return &Sessions{
		engines:      map[string]*usecase.ImprovementEngine{},
		regenerating: map[string]struct{}{},
		stores:       stores,
		evaluator:    evaluator,
		improver:     improver,
		language:     language,
		log:          log,
	}
}

func sessionKey(kind domain.MaterialKind, id string) string {
	return string(kind) + ":" + id
}

// Get checks that userID owns the material on every call, then returns its
// engine. It fails with usecase.ErrRegenerateInFlight while the material is
// being regenerated.
func (s *Sessions) Get(ctx context.Context, userID string, kind domain.MaterialKind, id string) (*usecase.ImprovementEngine, error) {
	if err := s.stores.Owns(ctx, kind, userID, id); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := sessionKey(kind, id)
	if _, busy := s.regenerating[key]; busy {
		return nil, usecase.ErrRegenerateInFlight
	}
	if e, ok := s.engines[key]; ok {
		return e, nil
	}
	e := usecase.NewImprovementEngine(usecase.EngineConfig{
		Kind:       kind,
		MaterialID: id,
		Evaluator:  s.evaluator,
		Improver:   s.improver,
		Content: func(ctx context.Context) (string, error) {
			return s.stores.content(ctx, kind, userID, id)
		},
		Overwrite: func(ctx context.Context, content string) error {
			return s.stores.overwrite(ctx, kind, id, content)
		},
		Language: s.language,
		Log:      s.log,
	})
	s.engines[key] = e
	return e, nil
}

// BeginRegenerate marks the material as being regenerated and resets its
// session. Pending evaluations and improvements are discarded; one already
// writing finishes before BeginRegenerate returns. Call done when the
// regeneration is over.
func (s *Sessions) BeginRegenerate(kind domain.MaterialKind, id string) (done func(), err error) {
	key := sessionKey(kind, id)
	s.mu.Lock()
	if _, busy := s.regenerating[key]; busy {
		s.mu.Unlock()
		return nil, usecase.ErrRegenerateInFlight
	}
	s.regenerating[key] = struct{}{}
	e := s.engines[key]
	s.mu.Unlock()

	if e != nil {
		e.Reset()
	}
	return func() {
		s.mu.Lock()
		delete(s.regenerating, key)
		s.mu.Unlock()
	}, nil
}
