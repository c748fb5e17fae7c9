package models

// UserProfile is a named user with their own vocabulary and quiz history
type UserProfile struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Words      []VocabWord  `json:"words"`
	LastUpload *Upload      `json:"lastUpload,omitempty"`
	History    []QuizResult `json:"history"`
}

// Clone returns a deep copy of the profile
func (p UserProfile) Clone() UserProfile {
	out := p
	out.Words = append([]VocabWord{}, p.Words...)
	out.History = append([]QuizResult{}, p.History...)
	if p.LastUpload != nil {
		upload := *p.LastUpload
		out.LastUpload = &upload
	}
	return out
}

// SourceFileName returns the name of the last uploaded file, or "" if none
func (p UserProfile) SourceFileName() string {
	if p.LastUpload == nil {
		return ""
	}
	return p.LastUpload.FileName
}
