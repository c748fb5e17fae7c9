package quiz

import (
	"fmt"
	"strings"

	"wordplay/internal/models"
	"wordplay/internal/utils"
)

// State is the lifecycle position of the quiz
type State int

const (
	// StateSelecting means no session is active
	StateSelecting State = iota
	// StateInProgress means questions remain to be answered
	StateInProgress
	// StateCompleted means every question has been answered
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateSelecting:
		return "selecting"
	case StateInProgress:
		return "in progress"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StateError is returned when an operation is invoked in the wrong state
type StateError struct {
	Op       string
	Expected State
	Actual   State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("quiz: cannot %s: expected state %s, got %s", e.Op, e.Expected, e.Actual)
}

// Session is one quiz attempt over a fixed set of words.
// len(Answers) == CurrentIndex at all times.
type Session struct {
	Words        []models.VocabWord
	CurrentIndex int
	Answers      []models.AnswerRecord
	IsComplete   bool
}

// QuestionCount is the number of questions in the session
func (s *Session) QuestionCount() int {
	return len(s.Words)
}

// Finished reports whether every question has been answered
func (s *Session) Finished() bool {
	return s.CurrentIndex == len(s.Words)
}

// CurrentWord returns the word being asked, if any remain
func (s *Session) CurrentWord() (models.VocabWord, bool) {
	if s.CurrentIndex >= len(s.Words) {
		return models.VocabWord{}, false
	}
	return s.Words[s.CurrentIndex], true
}

// Progress returns the 1-based number of the current question and the total.
// Once finished the number equals the total.
func (s *Session) Progress() (int, int) {
	n := s.CurrentIndex + 1
	if n > len(s.Words) {
		n = len(s.Words)
	}
	return n, len(s.Words)
}

// Score computes the score for the answers given so far
func (s *Session) Score() models.Score {
	return Score(s.Answers)
}

// Review lists each answer alongside the word it was given for
func (s *Session) Review() []models.ReviewItem {
	byID := make(map[string]models.VocabWord, len(s.Words))
	for _, w := range s.Words {
		byID[w.ID] = w
	}

	items := make([]models.ReviewItem, 0, len(s.Answers))
	for i, a := range s.Answers {
		word, ok := byID[a.WordID]
		if !ok {
			continue
		}
		items = append(items, models.ReviewItem{
			Number:        i + 1,
			SourceTerm:    word.SourceTerm,
			TargetTerm:    word.TargetTerm,
			SubmittedText: a.SubmittedText,
			IsCorrect:     a.IsCorrect,
		})
	}
	return items
}

func (s *Session) clone() *Session {
	out := *s
	out.Words = append([]models.VocabWord(nil), s.Words...)
	out.Answers = append([]models.AnswerRecord(nil), s.Answers...)
	return &out
}

// Machine owns the lifecycle of at most one quiz session.
// It never persists anything; recording results is the caller's job.
type Machine struct {
	session *Session
}

// NewMachine creates a machine in the selecting state
func NewMachine() *Machine {
	return &Machine{}
}

// State returns the current lifecycle state
func (m *Machine) State() State {
	switch {
	case m.session == nil:
		return StateSelecting
	case m.session.Finished():
		return StateCompleted
	default:
		return StateInProgress
	}
}

// Session returns a copy of the active session, or nil when selecting
func (m *Machine) Session() *Session {
	if m.session == nil {
		return nil
	}
	return m.session.clone()
}

// CurrentWord returns the word being asked while in progress
func (m *Machine) CurrentWord() (models.VocabWord, error) {
	if state := m.State(); state != StateInProgress {
		return models.VocabWord{}, &StateError{Op: "read current word", Expected: StateInProgress, Actual: state}
	}
	word, _ := m.session.CurrentWord()
	return word, nil
}

// Start begins a new session over selectedWords, which must hold exactly
// questionCount words.
func (m *Machine) Start(selectedWords []models.VocabWord, questionCount int) error {
	if state := m.State(); state != StateSelecting {
		return &StateError{Op: "start", Expected: StateSelecting, Actual: state}
	}
	if questionCount <= 0 {
		return utils.ValidationError{Field: "questionCount", Message: "question count must be positive"}
	}
	if len(selectedWords) != questionCount {
		return utils.ValidationError{
			Field:   "words",
			Message: fmt.Sprintf("expected %d words, got %d", questionCount, len(selectedWords)),
		}
	}

	m.session = &Session{
		Words:   append([]models.VocabWord(nil), selectedWords...),
		Answers: []models.AnswerRecord{},
	}
	return nil
}

// AnswerCurrent records an answer for the current word and advances.
// Blank submissions are rejected without changing the session. Reaching the
// last question does not complete the session; callers check Finished and
// call Complete.
func (m *Machine) AnswerCurrent(submittedText string) (models.AnswerRecord, error) {
	if state := m.State(); state != StateInProgress {
		return models.AnswerRecord{}, &StateError{Op: "answer", Expected: StateInProgress, Actual: state}
	}
	if err := utils.ValidateAnswer(submittedText); err != nil {
		return models.AnswerRecord{}, err
	}

	word := m.session.Words[m.session.CurrentIndex]
	submitted := strings.TrimSpace(submittedText)
	record := models.AnswerRecord{
		WordID:        word.ID,
		SubmittedText: submitted,
		IsCorrect:     CheckAnswer(submitted, word.TargetTerm),
	}

	m.session.Answers = append(m.session.Answers, record)
	m.session.CurrentIndex++

	return record, nil
}

// Complete marks a finished session as complete. Calling it again is a no-op.
func (m *Machine) Complete() error {
	if state := m.State(); state != StateCompleted {
		return &StateError{Op: "complete", Expected: StateCompleted, Actual: state}
	}
	m.session.IsComplete = true
	return nil
}

// Restart discards the active session, returning it (nil when there was none)
func (m *Machine) Restart() *Session {
	discarded := m.session
	m.session = nil
	return discarded
}
