// Package assistant integrates the external generative-text capability used
// for interview introductions, follow-up questions, closing remarks and
// transcript scoring.
package assistant

import (
	"context"
	"errors"
)

// ErrGatewayFailure covers every upstream failure: timeout, refusal,
// malformed response, capability unavailable. Calls are never retried here;
// retry policy belongs to callers.
var ErrGatewayFailure = errors.New("assistant: gateway failure")

// Exchange is one question/answer pair of a transcript.
type Exchange struct {
	Question string
	Answer   string
}

// Gateway is the synchronous request/response capability the orchestrator
// calls. GenerateScore returns raw text; the caller extracts the integer and
// must not trust the gateway to return a clean number.
type Gateway interface {
	GenerateIntroduction(ctx context.Context, candidateName, title, description string) (string, error)
	GenerateFollowup(ctx context.Context, previousQuestion, previousAnswer string) (string, error)
	GenerateOutro(ctx context.Context, candidateName string) (string, error)
	GenerateScore(ctx context.Context, transcript []Exchange) (string, error)
}
