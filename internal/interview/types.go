// Package interview holds the interview session lifecycle: catalog state,
// the submission state machine and the conversation orchestration around the
// generative assistant.
package interview

import (
	"errors"
	"time"
)

// Interview is a scored conversational session owned by exactly one user.
// Ownership never transfers. The only durable state transition is
// created -> taken, performed once by conversation submission.
type Interview struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"-"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Questions    []string  `json:"questions"`
	Taken        bool      `json:"taken"`
	Score        *int      `json:"score"`
	HasRecording bool      `json:"has_recording"`
	CreatedAt    time.Time `json:"created_at"`
}

// Turn is one question/answer unit of a session transcript. Turns are
// client-accumulated and arrive as a complete ordered batch at submission;
// they are never persisted individually.
type Turn struct {
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	AskedAtMillis int64  `json:"asked_at_ms"`
}

// UpdatePatch carries the optional fields of an interview update. A present
// Questions slice replaces the question set wholesale.
type UpdatePatch struct {
	Title       *string
	Description *string
	Questions   *[]string
}

var (
	// ErrNotFound covers both a missing interview and one owned by another
	// caller; the two are deliberately indistinguishable.
	ErrNotFound = errors.New("interview: not found")
	// ErrConflict signals re-submission against an already scored interview.
	ErrConflict   = errors.New("interview: already taken")
	ErrValidation = errors.New("interview: invalid input")
	// ErrScoreParse signals an assistant response with no usable score.
	ErrScoreParse = errors.New("interview: unparseable score")
	// ErrDecode signals a recording payload that is not valid base64.
	ErrDecode = errors.New("interview: invalid recording encoding")
)
