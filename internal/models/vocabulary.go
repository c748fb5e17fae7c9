package models

// VocabWord is one term pair parsed from an uploaded vocabulary file.
// ID is unique within the set it was parsed into.
type VocabWord struct {
	ID         string `json:"id"`
	SourceTerm string `json:"sourceTerm"`
	TargetTerm string `json:"targetTerm"`
}

// Upload describes the file the current vocabulary came from
type Upload struct {
	FileName   string `json:"fileName"`
	UploadDate string `json:"uploadDate"`
}
