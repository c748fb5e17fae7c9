// Package audio speaks target terms aloud.
package audio

// Pronouncer plays a term. Implementations return immediately and never
// report failure to the caller.
type Pronouncer interface {
	Pronounce(text string)
}

// Nop is a Pronouncer that stays silent
type Nop struct{}

// Pronounce does nothing
func (Nop) Pronounce(string) {}
