// Package profile keeps the set of user profiles and writes the whole
// collection back to durable storage after every change.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"wordplay/internal/models"
	"wordplay/internal/utils"
)

// StorageKey names the single record that holds every profile
const StorageKey = "wordplay.users"

// ErrUserNotFound is returned for operations on an unknown profile id
var ErrUserNotFound = errors.New("user not found")

// StorageError reports persisted data that could not be decoded or a write
// that failed. The store stays usable after either.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Backend is durable key/value storage with whole-record overwrite
type Backend interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source used for upload dates
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides how new profile ids are generated
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// Store owns the in-memory profile collection and the current selection.
// It is not safe for concurrent use.
type Store struct {
	backend Backend
	log     *zap.Logger
	now     func() time.Time
	newID   func() string

	users      []models.UserProfile
	selectedID string
}

// NewStore creates an empty store; call Load to restore persisted profiles
func NewStore(backend Backend, log *zap.Logger, opts ...Option) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		backend: backend,
		log:     log.Named("profile"),
		now:     time.Now,
		newID:   utils.NewID,
		users:   []models.UserProfile{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory state with the persisted collection.
// Missing data yields an empty collection. Malformed data also yields an
// empty collection and is reported as a *StorageError; the store remains
// usable. A failing backend read is returned as a plain error.
func (s *Store) Load() error {
	s.users = []models.UserProfile{}
	s.selectedID = ""

	raw, found, err := s.backend.Get(StorageKey)
	if err != nil {
		return fmt.Errorf("failed to read profiles: %w", err)
	}
	if !found {
		s.log.Info("no stored profiles, starting empty")
		return nil
	}

	var stored []models.UserProfile
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.log.Warn("stored profiles are malformed, starting empty", zap.Error(err))
		return &StorageError{Op: "load", Err: err}
	}

	s.users = s.normalize(stored)
	s.log.Info("profiles loaded", zap.Int("count", len(s.users)))
	return nil
}

// normalize drops profiles without an id or with a repeated id and
// backfills collections that older data may lack
func (s *Store) normalize(in []models.UserProfile) []models.UserProfile {
	out := make([]models.UserProfile, 0, len(in))
	seen := make(map[string]bool, len(in))

	for i, p := range in {
		if p.ID == "" {
			s.log.Warn("dropping stored profile without id", zap.Int("index", i), zap.String("name", p.Name))
			continue
		}
		if seen[p.ID] {
			s.log.Warn("dropping stored profile with duplicate id", zap.String("id", p.ID))
			continue
		}
		seen[p.ID] = true

		if p.Words == nil {
			p.Words = []models.VocabWord{}
		}
		if p.History == nil {
			p.History = []models.QuizResult{}
		}
		out = append(out, p)
	}

	return out
}

// Users returns copies of all profiles in creation order
func (s *Store) Users() []models.UserProfile {
	out := make([]models.UserProfile, len(s.users))
	for i, p := range s.users {
		out[i] = p.Clone()
	}
	return out
}

// User returns a copy of the profile with the given id
func (s *Store) User(id string) (models.UserProfile, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return models.UserProfile{}, ErrUserNotFound
	}
	return s.users[idx].Clone(), nil
}

// Selected returns the selected profile, if any
func (s *Store) Selected() (models.UserProfile, bool) {
	if s.selectedID == "" {
		return models.UserProfile{}, false
	}
	p, err := s.User(s.selectedID)
	if err != nil {
		return models.UserProfile{}, false
	}
	return p, true
}

// SelectedID returns the id of the selected profile or ""
func (s *Store) SelectedID() string {
	return s.selectedID
}

// AddUser creates a profile with a fresh id and selects it.
// The in-memory change is kept even if the write fails.
func (s *Store) AddUser(name string) (models.UserProfile, error) {
	name, err := utils.ValidateName(name)
	if err != nil {
		return models.UserProfile{}, err
	}

	p := models.UserProfile{
		ID:      s.newID(),
		Name:    name,
		Words:   []models.VocabWord{},
		History: []models.QuizResult{},
	}

	next := make([]models.UserProfile, len(s.users), len(s.users)+1)
	copy(next, s.users)
	s.users = append(next, p)
	s.selectedID = p.ID

	s.log.Info("user added", zap.String("id", p.ID), zap.String("name", p.Name))
	if err := s.persist(); err != nil {
		return models.UserProfile{}, err
	}
	return p.Clone(), nil
}

// DeleteUser removes a profile with its words and history.
// Deleting the selected profile clears the selection.
func (s *Store) DeleteUser(id string) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return ErrUserNotFound
	}

	next := make([]models.UserProfile, 0, len(s.users)-1)
	next = append(next, s.users[:idx]...)
	next = append(next, s.users[idx+1:]...)
	s.users = next

	if s.selectedID == id {
		s.selectedID = ""
	}

	s.log.Info("user deleted", zap.String("id", id))
	return s.persist()
}

// SelectUser makes the profile with the given id the selected one.
// Selection lives in memory only.
func (s *Store) SelectUser(id string) error {
	if s.indexOf(id) < 0 {
		return ErrUserNotFound
	}
	s.selectedID = id
	return nil
}

// LoadWords replaces a profile's vocabulary and records the upload
func (s *Store) LoadWords(userID string, words []models.VocabWord, sourceFileName string) error {
	uploaded := s.now().UTC().Format(time.RFC3339)
	return s.update(userID, func(p *models.UserProfile) {
		p.Words = append([]models.VocabWord{}, words...)
		p.LastUpload = &models.Upload{FileName: sourceFileName, UploadDate: uploaded}
	})
}

// RecordQuizResult appends a result to a profile's history
func (s *Store) RecordQuizResult(userID string, result models.QuizResult) error {
	return s.update(userID, func(p *models.UserProfile) {
		p.History = append(p.History, result)
	})
}

// Import merges externally supplied profiles into the store. With replace
// the collection is swapped wholesale and the selection cleared; otherwise
// profiles whose id already exists are skipped. It returns how many
// profiles were added.
func (s *Store) Import(profiles []models.UserProfile, replace bool) (int, error) {
	incoming := s.normalize(cloneAll(profiles))

	var next []models.UserProfile
	added := 0
	if replace {
		next = incoming
		added = len(incoming)
		s.selectedID = ""
	} else {
		next = make([]models.UserProfile, len(s.users), len(s.users)+len(incoming))
		copy(next, s.users)
		for _, p := range incoming {
			if s.indexOf(p.ID) >= 0 {
				s.log.Info("skipping imported profile that already exists", zap.String("id", p.ID))
				continue
			}
			next = append(next, p)
			added++
		}
	}
	s.users = next

	s.log.Info("profiles imported", zap.Int("added", added), zap.Bool("replace", replace))
	return added, s.persist()
}

func (s *Store) update(id string, fn func(p *models.UserProfile)) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return ErrUserNotFound
	}

	next := make([]models.UserProfile, len(s.users))
	copy(next, s.users)
	p := next[idx].Clone()
	fn(&p)
	next[idx] = p
	s.users = next

	return s.persist()
}

// persist rewrites the entire collection
func (s *Store) persist() error {
	data, err := json.Marshal(s.users)
	if err != nil {
		return &StorageError{Op: "encode", Err: err}
	}

	if err := s.backend.Set(StorageKey, string(data)); err != nil {
		s.log.Error("failed to save profiles", zap.Error(err))
		return &StorageError{Op: "save", Err: err}
	}
	return nil
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, p := range s.users {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(in []models.UserProfile) []models.UserProfile {
	out := make([]models.UserProfile, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}
