package evaluation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/food-calorie-app/audio-eval/internal/labels"
)

func TestVocabulary_EntriesAreNormalized(t *testing.T) {
	for _, entry := range Vocabulary() {
		require.Equal(t, labels.Normalize(entry), entry)
	}
}

func TestVocabulary_ReturnsCopy(t *testing.T) {
	first := Vocabulary()
	first[0] = "mutated"

	require.NotEqual(t, first[0], Vocabulary()[0])
}
