package ranking

import (
	"testing"

	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveWeightsPresets(t *testing.T) {
	w, conflicts, err := ResolveWeights(nil)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
	assert.Equal(t, Weights{ApprovedPost: 10, LikeReceived: 5, FarmingLike: 10, CopyReceived: 2}, w)
}

func TestResolveWeightsConflicts(t *testing.T) {
	w, conflicts, err := ResolveWeights(map[string]int{
		KeyApprovedPost:    10,
		KeyLikeReceived:    2,
		KeyInvalidFeedback: -5,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, w.LikeReceived)
	assert.Equal(t, -5, w.InvalidFeedback)
	assert.Equal(t, 10, w.FarmingLike)

	require.Len(t, conflicts, 2)
	assert.Equal(t, Conflict{Key: KeyInvalidFeedback, Configured: -5}, conflicts[0])
	assert.Equal(t, Conflict{Key: KeyLikeReceived, Configured: 2, Preset: 5, HasPreset: true}, conflicts[1])
	assert.Equal(t, "invalid_feedback=-5 (no preset)", conflicts[0].String())
	assert.Equal(t, "like_received=2 (preset 5)", conflicts[1].String())
}

func TestResolveWeightsUnknownKey(t *testing.T) {
	_, _, err := ResolveWeights(map[string]int{"comment_written": 1})
	assert.ErrorContains(t, err, "comment_written")
}

func TestScore(t *testing.T) {
	w, _, err := ResolveWeights(map[string]int{
		KeyApprovedPost:  10,
		KeyLikeReceived:  5,
		KeyValidFeedback: 3,
		KeyCopyReceived:  2,
	})
	require.NoError(t, err)

	c := model.RankingCounters{ApprovedPosts: 2, LikesReceived: 3, ValidReceived: 1, CopyReceived: 10}
	assert.Equal(t, 58, w.Score(c))
	assert.Equal(t, 0, w.Score(model.RankingCounters{}))
}

func TestScoreMayBeNegative(t *testing.T) {
	w, _, err := ResolveWeights(map[string]int{KeyInvalidFeedback: -5})
	require.NoError(t, err)
	assert.Equal(t, -10, w.Score(model.RankingCounters{InvalidReceived: 2}))
}

func TestScoreMonotonicInLikes(t *testing.T) {
	w, _, err := ResolveWeights(nil)
	require.NoError(t, err)

	base := model.RankingCounters{ApprovedPosts: 4, ValidReceived: 2, CopyReceived: 7}
	prev := w.Score(base)
	for likes := 1; likes <= 50; likes++ {
		base.LikesReceived = likes
		s := w.Score(base)
		assert.GreaterOrEqual(t, s, prev)
		prev = s
	}
}
