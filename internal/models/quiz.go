package models

// AnswerRecord is a single answered question within a quiz session
type AnswerRecord struct {
	WordID        string `json:"wordId"`
	SubmittedText string `json:"submittedText"`
	IsCorrect     bool   `json:"isCorrect"`
}

// Score aggregates the correctness of a set of answers.
// Percentage is in [0,100].
type Score struct {
	Correct    int `json:"correct"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// QuizResult is the persisted summary of a completed quiz
type QuizResult struct {
	Timestamp      string `json:"timestamp"`
	Score          Score  `json:"score"`
	SourceFileName string `json:"sourceFileName,omitempty"`
}

// ReviewItem pairs an answer with the word it was given for
type ReviewItem struct {
	Number        int
	SourceTerm    string
	TargetTerm    string
	SubmittedText string
	IsCorrect     bool
}
