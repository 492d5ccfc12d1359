package interview

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anigokul432/ai-v2v-interviewer-backend/internal/assistant"
	"github.com/anigokul432/ai-v2v-interviewer-backend/internal/identity"
	"github.com/anigokul432/ai-v2v-interviewer-backend/internal/ids"
)

// Service defines the interview lifecycle operations.
type Service interface {
	CreateInterview(ctx context.Context, ownerEmail, title, description string, questions []string) (*Interview, error)
	ListOwnInterviews(ctx context.Context, caller *identity.User) ([]*Interview, error)
	ListAllInterviews(ctx context.Context) ([]*Interview, error)
	GetInterview(ctx context.Context, caller *identity.User, id string) (*Interview, error)
	UpdateInterview(ctx context.Context, caller *identity.User, id string, patch UpdatePatch) (*Interview, error)
	DeleteInterview(ctx context.Context, caller *identity.User, id string) error
	SubmitConversation(ctx context.Context, caller *identity.User, id string, turns []Turn, recordingB64 *string) (int, error)
	GetRecording(ctx context.Context, caller *identity.User, id string) ([]byte, error)

	GenerateIntroduction(ctx context.Context, candidateName, title, description string) (string, error)
	GenerateFollowup(ctx context.Context, previousQuestion, previousAnswer string) (string, error)
	GenerateOutro(ctx context.Context, candidateName string) (string, error)
}

// UserDirectory is the slice of the identity store the orchestrator needs to
// bind interviews to their owning identity.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*identity.User, error)
}

// Orchestrator drives interview state transitions, invokes the assistant
// gateway at the right points and persists resulting state atomically.
type Orchestrator struct {
	store   Store
	users   UserDirectory
	gateway assistant.Gateway
	now     func() time.Time
}

var _ Service = (*Orchestrator)(nil)

// NewOrchestrator wires the orchestrator to its collaborators.
func NewOrchestrator(store Store, users UserDirectory, gateway assistant.Gateway) *Orchestrator {
	return &Orchestrator{
		store:   store,
		users:   users,
		gateway: gateway,
		now:     time.Now,
	}
}

// CreateInterview persists an interview and its questions atomically for the
// user matching ownerEmail.
func (o *Orchestrator) CreateInterview(ctx context.Context, ownerEmail, title, description string, questions []string) (*Interview, error) {
	ownerEmail = strings.TrimSpace(strings.ToLower(ownerEmail))
	if ownerEmail == "" || strings.TrimSpace(title) == "" {
		return nil, ErrValidation
	}
	owner, err := o.users.FindByEmail(ctx, ownerEmail)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	iv := &Interview{
		ID:          ids.New(),
		OwnerID:     owner.ID,
		Title:       title,
		Description: description,
		Questions:   append([]string(nil), questions...),
		CreatedAt:   o.now().UTC(),
	}
	if err := o.store.Create(ctx, iv); err != nil {
		return nil, fmt.Errorf("create interview: %w", err)
	}
	return iv, nil
}

// ListOwnInterviews returns interviews scoped to the caller.
func (o *Orchestrator) ListOwnInterviews(ctx context.Context, caller *identity.User) ([]*Interview, error) {
	if caller == nil {
		return nil, ErrNotFound
	}
	return o.store.ListByOwner(ctx, caller.ID)
}

// ListAllInterviews is the unscoped catalog view. It intentionally crosses
// owner boundaries; callers must not assume owner scoping here.
func (o *Orchestrator) ListAllInterviews(ctx context.Context) ([]*Interview, error) {
	return o.store.ListAll(ctx)
}

// GetInterview returns the interview only to its owner. An ownership
// mismatch is reported as ErrNotFound, identical to a missing id.
func (o *Orchestrator) GetInterview(ctx context.Context, caller *identity.User, id string) (*Interview, error) {
	return o.getOwned(ctx, caller, id)
}

// UpdateInterview applies only the present patch fields. A present question
// list replaces the set wholesale. Updates against a taken interview are
// accepted but applied as no-ops: the transcript referencing the original
// questions already exists.
func (o *Orchestrator) UpdateInterview(ctx context.Context, caller *identity.User, id string, patch UpdatePatch) (*Interview, error) {
	iv, err := o.getOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if iv.Taken {
		return iv, nil
	}
	if patch.Title != nil {
		iv.Title = *patch.Title
	}
	if patch.Description != nil {
		iv.Description = *patch.Description
	}
	replaceQuestions := patch.Questions != nil
	if replaceQuestions {
		iv.Questions = append([]string(nil), (*patch.Questions)...)
	}
	if err := o.store.Update(ctx, iv, replaceQuestions); err != nil {
		return nil, err
	}
	return iv, nil
}

// DeleteInterview removes an owned interview and cascades to its questions.
func (o *Orchestrator) DeleteInterview(ctx context.Context, caller *identity.User, id string) error {
	if _, err := o.getOwned(ctx, caller, id); err != nil {
		return err
	}
	return o.store.Delete(ctx, id)
}

// SubmitConversation scores a finished session and performs the single
// created -> taken transition. The write is conditional on taken=false, so a
// concurrent or repeated submission loses with ErrConflict and cannot
// overwrite the original score.
func (o *Orchestrator) SubmitConversation(ctx context.Context, caller *identity.User, id string, turns []Turn, recordingB64 *string) (int, error) {
	iv, err := o.getOwned(ctx, caller, id)
	if err != nil {
		return 0, err
	}
	if iv.Taken {
		return 0, ErrConflict
	}
	if len(turns) == 0 {
		return 0, ErrValidation
	}

	var recording []byte
	if recordingB64 != nil {
		recording, err = base64.StdEncoding.DecodeString(*recordingB64)
		if err != nil {
			return 0, ErrDecode
		}
	}

	transcript := make([]assistant.Exchange, len(turns))
	for i, turn := range turns {
		transcript[i] = assistant.Exchange{Question: turn.Question, Answer: turn.Answer}
	}
	response, err := o.gateway.GenerateScore(ctx, transcript)
	if err != nil {
		return 0, err
	}
	score, err := ParseScore(response)
	if err != nil {
		return 0, err
	}

	// Conditional final write; also re-checks existence in case the
	// interview was deleted while the gateway call was in flight.
	if err := o.store.Finalize(ctx, id, score, recording); err != nil {
		return 0, err
	}
	return score, nil
}

// GetRecording streams back the submitted recording, owner-only. A missing
// recording and a foreign interview are both ErrNotFound.
func (o *Orchestrator) GetRecording(ctx context.Context, caller *identity.User, id string) ([]byte, error) {
	if _, err := o.getOwned(ctx, caller, id); err != nil {
		return nil, err
	}
	return o.store.GetRecording(ctx, id)
}

func (o *Orchestrator) GenerateIntroduction(ctx context.Context, candidateName, title, description string) (string, error) {
	return o.gateway.GenerateIntroduction(ctx, candidateName, title, description)
}

func (o *Orchestrator) GenerateFollowup(ctx context.Context, previousQuestion, previousAnswer string) (string, error) {
	if strings.TrimSpace(previousQuestion) == "" {
		return "", ErrValidation
	}
	return o.gateway.GenerateFollowup(ctx, previousQuestion, previousAnswer)
}

func (o *Orchestrator) GenerateOutro(ctx context.Context, candidateName string) (string, error) {
	return o.gateway.GenerateOutro(ctx, candidateName)
}

func (o *Orchestrator) getOwned(ctx context.Context, caller *identity.User, id string) (*Interview, error) {
	if caller == nil || strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	iv, err := o.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if iv.OwnerID != caller.ID {
		return nil, ErrNotFound
	}
	return iv, nil
}
