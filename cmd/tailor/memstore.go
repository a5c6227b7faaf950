package main

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"tailoring-engine/internal/domain"
	"tailoring-engine/internal/usecase"
)

// memStore keeps materials in memory so a dry run needs no database.
type memStore struct {
	mu       sync.Mutex
	profile  *domain.TailoringProfile
	cvs      map[string]*domain.CVDocument
	letters  map[string]*domain.CoverLetter
	speeches map[string]*domain.SpeechBlock
}

func newMemStore(profile *domain.TailoringProfile) *memStore {
	return &memStore{
		profile:  profile,
		cvs:      map[string]*domain.CVDocument{},
		letters:  map[string]*domain.CoverLetter{},
		speeches: map[string]*domain.SpeechBlock{},
	}
}

func (s *memStore) GetProfileForTailoring(context.Context, string) (*domain.TailoringProfile, error) {
	return s.profile, nil
}

func (s *memStore) GetCompany(context.Context, string) (*domain.Company, error) {
	return nil, nil
}

type memCVs struct{ *memStore }

func (s memCVs) Create(_ context.Context, p usecase.CreateCVParams) (*domain.CVDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	doc := &domain.CVDocument{
		ID: uuid.New().String(), UserID: p.UserID, JobID: p.JobID, Name: p.Name, TemplateID: p.TemplateID,
		IsTailored: p.IsTailored, Content: p.Content, ShowProfilePhoto: p.ShowProfilePhoto, CreatedAt: now, UpdatedAt: now,
	}
	s.cvs[doc.ID] = doc
	cp := *doc
	return &cp, nil
}

func (s memCVs) Update(_ context.Context, p usecase.UpdateCVParams) (*domain.CVDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.cvs[p.ID]
	if !ok {
		return nil, errNotFound
	}
	if p.Content != nil {
		doc.Content = *p.Content
	}
	if p.Name != nil {
		doc.Name = *p.Name
	}
	if p.TemplateID != nil {
		doc.TemplateID = p.TemplateID
	}
	doc.UpdatedAt = time.Now().UTC()
	cp := *doc
	return &cp, nil
}

func (s memCVs) Get(_ context.Context, userID, id string) (*domain.CVDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.cvs[id]
	if !ok || doc.UserID != userID {
		return nil, errNotFound
	}
	cp := *doc
	return &cp, nil
}

type memCoverLetters struct{ *memStore }

func (s memCoverLetters) Create(_ context.Context, p usecase.CreateCoverLetterParams) (*domain.CoverLetter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	cl := &domain.CoverLetter{
		ID: uuid.New().String(), UserID: p.UserID, JobID: p.JobID, Name: p.Name, Tone: p.Tone,
		IsTailored: p.IsTailored, Content: p.Content, CreatedAt: now, UpdatedAt: now,
	}
	s.letters[cl.ID] = cl
	cp := *cl
	return &cp, nil
}

func (s memCoverLetters) Update(_ context.Context, p usecase.UpdateCoverLetterParams) (*domain.CoverLetter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cl, ok := s.letters[p.ID]
	if !ok {
		return nil, errNotFound
	}
	if p.Content != nil {
		cl.Content = *p.Content
	}
	if p.Tone != nil {
		cl.Tone = *p.Tone
	}
	cl.UpdatedAt = time.Now().UTC()
	cp := *cl
	return &cp, nil
}

type memSpeeches struct{ *memStore }

func (s memSpeeches) Create(_ context.Context, p usecase.CreateSpeechParams) (*domain.SpeechBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	sb := &domain.SpeechBlock{
		ID: uuid.New().String(), UserID: p.UserID, JobID: p.JobID, Name: p.Name, IsTailored: p.IsTailored,
		ElevatorPitch: p.ElevatorPitch, CareerStory: p.CareerStory, WhyMe: p.WhyMe, CreatedAt: now, UpdatedAt: now,
	}
	s.speeches[sb.ID] = sb
	cp := *sb
	return &cp, nil
}

func (s memSpeeches) Update(_ context.Context, p usecase.UpdateSpeechParams) (*domain.SpeechBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sb, ok := s.speeches[p.ID]
	if !ok {
		return nil, errNotFound
	}
	if p.ElevatorPitch != nil {
		sb.ElevatorPitch = *p.ElevatorPitch
	}
	if p.CareerStory != nil {
		sb.CareerStory = *p.CareerStory
	}
	if p.WhyMe != nil {
		sb.WhyMe = *p.WhyMe
	}
	sb.UpdatedAt = time.Now().UTC()
	cp := *sb
	return &cp, nil
}
