// Package vocab turns uploaded vocabulary text into term pairs.
//
// The format is one "source,target" pair per line with no header and no
// quoting. A comma inside a term cannot be expressed: such lines carry more
// than one delimiter and are rejected.
package vocab

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"wordplay/internal/models"
)

// Delimiter separates the source and target term on a line
const Delimiter = ","

// ErrNoValidPairs is wrapped by every ParseError
var ErrNoValidPairs = errors.New("no valid words found")

// ParseError reports an upload that produced no usable term pairs
type ParseError struct {
	Lines    int // lines in the input, blank ones included
	Rejected int // non-blank lines that were dropped
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %d lines read, %d rejected", ErrNoValidPairs, e.Lines, e.Rejected)
}

func (e *ParseError) Unwrap() error { return ErrNoValidPairs }

// Parser converts raw delimited text into vocabulary words
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new parser; a nil logger discards warnings
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("vocab")}
}

// Parse returns every valid pair found in raw. Invalid lines are logged and
// skipped. Each word's ID comes from its 0-based index among all lines of the
// trimmed input, so IDs are stable for a given input but may have gaps.
func (p *Parser) Parse(raw string) []models.VocabWord {
	words, _ := p.parse(raw)
	return words
}

// ParseUpload is Parse for the upload boundary: an input without a single
// valid pair is reported as a *ParseError.
func (p *Parser) ParseUpload(raw string) ([]models.VocabWord, error) {
	words, stats := p.parse(raw)
	if len(words) == 0 {
		return nil, &ParseError{Lines: stats.lines, Rejected: stats.rejected}
	}
	return words, nil
}

type parseStats struct {
	lines    int
	rejected int
}

func (p *Parser) parse(raw string) ([]models.VocabWord, parseStats) {
	words := []models.VocabWord{}
	var stats parseStats

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return words, stats
	}

	lines := strings.Split(raw, "\n")
	stats.lines = len(lines)

	for index, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		source, target, ok := splitPair(line)
		if !ok {
			stats.rejected++
			p.log.Warn("invalid line in vocabulary file",
				zap.Int("line", index+1),
				zap.String("content", line),
			)
			continue
		}

		words = append(words, models.VocabWord{
			ID:         fmt.Sprintf("word-%d", index),
			SourceTerm: source,
			TargetTerm: target,
		})
	}

	return words, stats
}

// splitPair splits a line on its single delimiter and trims both sides
func splitPair(line string) (string, string, bool) {
	if strings.Count(line, Delimiter) != 1 {
		return "", "", false
	}

	source, target, _ := strings.Cut(line, Delimiter)
	source = strings.TrimSpace(source)
	target = strings.TrimSpace(target)
	if source == "" || target == "" {
		return "", "", false
	}

	return source, target, true
}
