package quiz

import (
	"math/rand"

	"wordplay/internal/models"
	"wordplay/internal/utils"
)

// SelectWords picks count words from vocab without replacement: a uniform
// random permutation of the vocabulary, truncated to count. The input slice
// is not modified. A nil rng uses the package-level source.
func SelectWords(vocab []models.VocabWord, count int, rng *rand.Rand) ([]models.VocabWord, error) {
	if err := utils.ValidateQuestionCount(count, len(vocab)); err != nil {
		return nil, err
	}

	shuffled := make([]models.VocabWord, len(vocab))
	copy(shuffled, vocab)

	swap := func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] }
	if rng != nil {
		rng.Shuffle(len(shuffled), swap)
	} else {
		rand.Shuffle(len(shuffled), swap)
	}

	return shuffled[:count], nil
}
