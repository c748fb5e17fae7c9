package service

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wordplay/internal/profile"
	"wordplay/internal/vocab"
)

type memoryBackend struct {
	data    map[string]string
	failSet error
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{data: map[string]string{}}
}

func (m *memoryBackend) Get(key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryBackend) Set(key, value string) error {
	if m.failSet != nil {
		return m.failSet
	}
	m.data[key] = value
	return nil
}

type recordingSpeaker struct {
	mu     sync.Mutex
	spoken []string
}

func (r *recordingSpeaker) Pronounce(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spoken = append(r.spoken, text)
}

func (r *recordingSpeaker) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.spoken) == 0 {
		return ""
	}
	return r.spoken[len(r.spoken)-1]
}

var testNow = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

func newTestStore(t *testing.T, backend profile.Backend) *profile.Store {
	t.Helper()
	n := 0
	store := profile.NewStore(backend, zap.NewNop(),
		profile.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("user-%d", n)
		}),
		profile.WithClock(func() time.Time { return testNow }),
	)
	require.NoError(t, store.Load())
	return store
}

func newTestController(t *testing.T) (*QuizController, *recordingSpeaker, *memoryBackend) {
	t.Helper()
	backend := newMemoryBackend()
	speaker := &recordingSpeaker{}
	c := NewQuizController(
		newTestStore(t, backend),
		vocab.NewParser(nil),
		speaker,
		zap.NewNop(),
		WithRand(rand.New(rand.NewSource(42))),
		WithNow(func() time.Time { return testNow }),
	)
	return c, speaker, backend
}
