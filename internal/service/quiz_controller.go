package service

import (
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"wordplay/internal/audio"
	"wordplay/internal/models"
	"wordplay/internal/profile"
	"wordplay/internal/quiz"
	"wordplay/internal/utils"
	"wordplay/internal/vocab"
)

// timestampLayout is RFC 3339 in UTC with millisecond precision
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// QuizController ties the selected user, their vocabulary and the quiz
// session together. It is driven by a single front end and is not safe for
// concurrent use.
type QuizController struct {
	store   *profile.Store
	parser  *vocab.Parser
	machine *quiz.Machine
	speaker audio.Pronouncer
	log     *zap.Logger
	rng     *rand.Rand
	now     func() time.Time
}

// ControllerOption configures a QuizController
type ControllerOption func(*QuizController)

// WithRand sets the random source used for word selection
func WithRand(rng *rand.Rand) ControllerOption {
	return func(c *QuizController) { c.rng = rng }
}

// WithNow sets the clock used for result timestamps
func WithNow(now func() time.Time) ControllerOption {
	return func(c *QuizController) { c.now = now }
}

// NewQuizController creates a new quiz controller
func NewQuizController(store *profile.Store, parser *vocab.Parser, speaker audio.Pronouncer, log *zap.Logger, opts ...ControllerOption) *QuizController {
	if log == nil {
		log = zap.NewNop()
	}
	if speaker == nil {
		speaker = audio.Nop{}
	}
	c := &QuizController{
		store:   store,
		parser:  parser,
		machine: quiz.NewMachine(),
		speaker: speaker,
		log:     log.Named("controller"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Users lists every profile
func (c *QuizController) Users() []models.UserProfile {
	return c.store.Users()
}

// SelectedUser returns the selected profile, if any
func (c *QuizController) SelectedUser() (models.UserProfile, bool) {
	return c.store.Selected()
}

// AddUser creates a profile and selects it
func (c *QuizController) AddUser(name string) (models.UserProfile, error) {
	previous := c.store.SelectedID()
	p, err := c.store.AddUser(name)
	if c.store.SelectedID() != previous {
		c.discardSession("user added")
	}
	if err != nil {
		return models.UserProfile{}, err
	}
	return p, nil
}

// SelectUser switches to another profile. Switching away discards any
// active quiz without recording it.
func (c *QuizController) SelectUser(id string) error {
	previous := c.store.SelectedID()
	if err := c.store.SelectUser(id); err != nil {
		return err
	}
	if previous != id {
		c.discardSession("user switched")
	}
	c.log.Info("user selected", zap.String("id", id))
	return nil
}

// DeleteUser removes a profile. Deleting the selected profile discards
// any active quiz.
func (c *QuizController) DeleteUser(id string) error {
	wasSelected := c.store.SelectedID() == id
	if err := c.store.DeleteUser(id); err != nil {
		return err
	}
	if wasSelected {
		c.discardSession("selected user deleted")
	}
	return nil
}

// UploadVocabulary parses raw and replaces the selected user's words.
// An upload without a single valid pair leaves the profile untouched and
// returns a *vocab.ParseError.
func (c *QuizController) UploadVocabulary(fileName, raw string) ([]models.VocabWord, error) {
	user, ok := c.store.Selected()
	if !ok {
		return nil, utils.ErrNoUserSelected
	}

	words, err := c.parser.ParseUpload(raw)
	if err != nil {
		c.log.Warn("vocabulary upload rejected", zap.String("file", fileName), zap.Error(err))
		return nil, err
	}

	c.discardSession("vocabulary replaced")
	if err := c.store.LoadWords(user.ID, words, fileName); err != nil {
		return nil, err
	}

	c.log.Info("vocabulary uploaded",
		zap.String("user", user.ID),
		zap.String("file", fileName),
		zap.Int("words", len(words)),
	)
	return words, nil
}

// StartQuiz picks questionCount words from the selected user's vocabulary
// and begins a session, announcing the first word
func (c *QuizController) StartQuiz(questionCount int) error {
	if state := c.machine.State(); state != quiz.StateSelecting {
		return &quiz.StateError{Op: "start", Expected: quiz.StateSelecting, Actual: state}
	}

	user, ok := c.store.Selected()
	if !ok {
		return utils.ErrNoUserSelected
	}

	selected, err := quiz.SelectWords(user.Words, questionCount, c.rng)
	if err != nil {
		return err
	}
	if err := c.machine.Start(selected, questionCount); err != nil {
		return err
	}

	c.log.Info("quiz started", zap.String("user", user.ID), zap.Int("questions", questionCount))
	c.announceCurrent()
	return nil
}

// SubmitAnswer records an answer for the current word. complete reports
// whether that answer finished the quiz; otherwise the next word is
// announced.
func (c *QuizController) SubmitAnswer(text string) (record models.AnswerRecord, complete bool, err error) {
	record, err = c.machine.AnswerCurrent(text)
	if err != nil {
		return models.AnswerRecord{}, false, err
	}

	if c.machine.State() == quiz.StateCompleted {
		if err := c.machine.Complete(); err != nil {
			return record, false, err
		}
		score := c.machine.Session().Score()
		c.log.Info("quiz completed",
			zap.Int("correct", score.Correct),
			zap.Int("total", score.Total),
			zap.Int("percentage", score.Percentage),
		)
		return record, true, nil
	}

	c.announceCurrent()
	return record, false, nil
}

// ReplayPronunciation announces the current word again
func (c *QuizController) ReplayPronunciation() error {
	word, err := c.machine.CurrentWord()
	if err != nil {
		return err
	}
	c.speaker.Pronounce(word.TargetTerm)
	return nil
}

// Restart ends the session and returns to word selection. A completed
// session is recorded in the selected user's history and the recorded
// result is returned; an unfinished one is dropped and nil is returned.
// When the write fails the result is still kept in memory and returned
// together with the *profile.StorageError.
func (c *QuizController) Restart() (*models.QuizResult, error) {
	state := c.machine.State()
	session := c.machine.Restart()
	if session == nil {
		return nil, nil
	}
	if state != quiz.StateCompleted || !session.IsComplete {
		c.log.Info("quiz abandoned", zap.Int("answered", len(session.Answers)))
		return nil, nil
	}

	user, ok := c.store.Selected()
	if !ok {
		return nil, utils.ErrNoUserSelected
	}

	result := models.QuizResult{
		Timestamp:      c.now().UTC().Format(timestampLayout),
		Score:          session.Score(),
		SourceFileName: user.SourceFileName(),
	}
	if err := c.store.RecordQuizResult(user.ID, result); err != nil {
		return &result, err
	}

	c.log.Info("quiz result recorded", zap.String("user", user.ID), zap.Int("percentage", result.Score.Percentage))
	return &result, nil
}

// History returns a user's results, most recent first
func (c *QuizController) History(userID string) ([]models.QuizResult, error) {
	user, err := c.store.User(userID)
	if err != nil {
		return nil, err
	}

	// reversed first so results with equal timestamps keep newest first
	history := make([]models.QuizResult, len(user.History))
	for i, r := range user.History {
		history[len(history)-1-i] = r
	}
	sort.SliceStable(history, func(i, j int) bool {
		return resultTime(history[i]).After(resultTime(history[j]))
	})
	return history, nil
}

// State returns the quiz lifecycle state
func (c *QuizController) State() quiz.State {
	return c.machine.State()
}

// Session returns a copy of the active session, or nil
func (c *QuizController) Session() *quiz.Session {
	return c.machine.Session()
}

// CurrentWord returns the word being asked
func (c *QuizController) CurrentWord() (models.VocabWord, error) {
	return c.machine.CurrentWord()
}

func (c *QuizController) announceCurrent() {
	if word, err := c.machine.CurrentWord(); err == nil {
		c.speaker.Pronounce(word.TargetTerm)
	}
}

func (c *QuizController) discardSession(reason string) {
	if c.machine.State() == quiz.StateSelecting {
		return
	}
	c.machine.Restart()
	c.log.Info("quiz session discarded", zap.String("reason", reason))
}

// resultTime parses a result timestamp; unparseable ones sort last
func resultTime(r models.QuizResult) time.Time {
	t, err := time.Parse(time.RFC3339, r.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}
