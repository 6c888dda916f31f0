package memory

import (
	"context"
	"sync"
	"time"

	"github.com/w-h-a/shopchat/session"
)

type memoryStore struct {
	options session.Options
	turns   map[string][]session.Turn
	seq     map[string]uint64
	mtx     sync.RWMutex
}

func (s *memoryStore) Append(ctx context.Context, sessionId string, turn session.Turn) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.seq[sessionId]++
	turn.Seq = s.seq[sessionId]

	if turn.At.IsZero() {
		turn.At = time.Now().UTC()
	}

	s.turns[sessionId] = append(s.turns[sessionId], turn)

	if len(s.turns[sessionId]) > s.options.WindowSize {
		s.turns[sessionId] = s.turns[sessionId][len(s.turns[sessionId])-s.options.WindowSize:]
	}

	return nil
}

func (s *memoryStore) Read(ctx context.Context, sessionId string) ([]session.Turn, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	cpy := make([]session.Turn, len(s.turns[sessionId]))
	copy(cpy, s.turns[sessionId])

	return cpy, nil
}

func (s *memoryStore) Drop(ctx context.Context, sessionId string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	delete(s.turns, sessionId)
	delete(s.seq, sessionId)
}

func NewMemory(opts ...session.Option) session.Memory {
	options := session.NewOptions(opts...)

	s := &memoryStore{
		options: options,
		turns:   map[string][]session.Turn{},
		seq:     map[string]uint64{},
		mtx:     sync.RWMutex{},
	}

	return s
}
