package session

import (
	"context"
	"errors"
	"time"
)

// ErrLockTimeout reports that a per-session critical section could not be
// entered before the caller's deadline. The session's memory is untouched
// when this is returned.
var ErrLockTimeout = errors.New("session lock timeout")

// Turn records one question and the candidate product ids surfaced for it.
// CandidateIds is empty on the chitchat path. Seq is assigned by the store
// and orders turns by arrival, not wall clock.
type Turn struct {
	Question     string    `json:"question"`
	CandidateIds []string  `json:"candidate_ids,omitempty"`
	Seq          uint64    `json:"seq"`
	At           time.Time `json:"at"`
}

// Memory is a bounded per-session log of recent turns. Append evicts the
// oldest turn once the window is full. Read returns an empty slice for an
// unseen session, never an error.
type Memory interface {
	Append(ctx context.Context, sessionId string, turn Turn) error
	Read(ctx context.Context, sessionId string) ([]Turn, error)
	Drop(ctx context.Context, sessionId string)
}
