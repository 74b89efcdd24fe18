package ranking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/config"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 6, 15, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, mode string, weights map[string]int) (*Service, *memStore, *memSource) {
	t.Helper()
	store := newMemStore()
	source := newMemSource()
	svc, err := NewService(store, source, config.RankingConfig{
		Weights:     weights,
		RefreshMode: mode,
		ListLimit:   100,
	})
	require.NoError(t, err)
	svc.SetClock(func() time.Time { return testNow })
	return svc, store, source
}

func start(period model.PeriodType) time.Time {
	return PeriodStart(period, testNow, time.UTC)
}

func TestUpdateUserRankingScenario(t *testing.T) {
	svc, store, source := newTestService(t, "eager", map[string]int{
		KeyApprovedPost:  10,
		KeyLikeReceived:  5,
		KeyValidFeedback: 3,
		KeyCopyReceived:  2,
	})
	ctx := context.Background()

	source.add("u", testNow.Add(-time.Hour), model.RankingCounters{
		ApprovedPosts: 2, LikesReceived: 3, ValidReceived: 1, CopyReceived: 10,
	})
	require.NoError(t, svc.UpdateUserRanking(ctx, "u"))

	for _, p := range model.Periods {
		row := store.row("u", p, start(p))
		assert.Equal(t, 58, row.Score, p)
		assert.Equal(t, 1, row.Rank, p)
		assert.Equal(t, 2, row.ApprovedPosts, p)
		assert.Equal(t, 10, row.CopyReceived, p)
	}
}

func TestUpdateUserRankingBoundsShortPeriods(t *testing.T) {
	svc, store, source := newTestService(t, "eager", nil)
	ctx := context.Background()

	// Le 20 février : avant le mois et la semaine courants
	source.add("u", time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC), model.RankingCounters{ApprovedPosts: 1})
	// Le 1er mars : dans le mois, avant le lundi 3
	source.add("u", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), model.RankingCounters{ApprovedPosts: 1})
	source.add("u", time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC), model.RankingCounters{ApprovedPosts: 1})

	require.NoError(t, svc.UpdateUserRanking(ctx, "u"))

	assert.Equal(t, 3, store.row("u", model.PeriodAll, start(model.PeriodAll)).ApprovedPosts)
	assert.Equal(t, 2, store.row("u", model.PeriodMonthly, start(model.PeriodMonthly)).ApprovedPosts)
	assert.Equal(t, 1, store.row("u", model.PeriodWeekly, start(model.PeriodWeekly)).ApprovedPosts)
}

func TestUpdateUserRankingEmptyUser(t *testing.T) {
	svc, store, _ := newTestService(t, "eager", nil)

	require.NoError(t, svc.UpdateUserRanking(context.Background(), ""))
	assert.Empty(t, store.rows)
}

func TestUpdateUserRankingIdempotent(t *testing.T) {
	svc, store, source := newTestService(t, "eager", nil)
	ctx := context.Background()

	source.add("a", testNow, model.RankingCounters{ApprovedPosts: 3, LikesReceived: 4})
	source.add("b", testNow, model.RankingCounters{ApprovedPosts: 1})
	require.NoError(t, svc.UpdateUserRanking(ctx, "a"))
	require.NoError(t, svc.UpdateUserRanking(ctx, "b"))

	first := store.row("a", model.PeriodAll, start(model.PeriodAll))
	writes := store.rankWrites

	require.NoError(t, svc.UpdateUserRanking(ctx, "a"))
	second := store.row("a", model.PeriodAll, start(model.PeriodAll))

	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Rank, second.Rank)
	assert.Equal(t, writes, store.rankWrites, "no rank should be rewritten")
}

func TestZeroActivityExcludedFromLeaderboard(t *testing.T) {
	svc, store, source := newTestService(t, "eager", nil)
	ctx := context.Background()

	source.add("active", testNow, model.RankingCounters{ApprovedPosts: 1})
	require.NoError(t, svc.UpdateUserRanking(ctx, "active"))
	require.NoError(t, svc.UpdateUserRanking(ctx, "idle"))

	idle := store.row("idle", model.PeriodAll, start(model.PeriodAll))
	assert.Equal(t, 0, idle.Score)

	entries, err := svc.Leaderboard(ctx, model.PeriodAll)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "active", entries[0].User.ID)

	pos, err := svc.Position(ctx, "idle")
	require.NoError(t, err)
	assert.Equal(t, 0, pos)
}

func TestRecalculateRanksOrdering(t *testing.T) {
	svc, store, source := newTestService(t, "scheduled", nil)
	ctx := context.Background()

	scores := []int{3, 17, 0, 9, 9, 42, 1, 25, 5, 17}
	for i, likes := range scores {
		id := fmt.Sprintf("user-%02d", i)
		source.add(id, testNow, model.RankingCounters{ApprovedPosts: 1, LikesReceived: likes})
		require.NoError(t, svc.UpdateUserRanking(ctx, id))
	}
	assert.True(t, svc.Refresher().Dirty())

	_, err := svc.RecalculateRanks(ctx)
	require.NoError(t, err)

	for _, p := range model.Periods {
		candidates, err := store.Candidates(ctx, p, start(p))
		require.NoError(t, err)
		require.Len(t, candidates, len(scores))

		seen := make(map[int]bool)
		for _, a := range candidates {
			assert.False(t, seen[a.Rank], "rank %d assigned twice", a.Rank)
			seen[a.Rank] = true
			for _, b := range candidates {
				if a.Rank < b.Rank {
					assert.GreaterOrEqual(t, a.Score, b.Score)
				}
			}
		}
		for r := 1; r <= len(scores); r++ {
			assert.True(t, seen[r], "rank %d missing", r)
		}
	}
}

func TestRecalculateRanksTie(t *testing.T) {
	svc, store, source := newTestService(t, "eager", nil)
	ctx := context.Background()

	source.add("a", testNow, model.RankingCounters{ApprovedPosts: 10})
	source.add("b", testNow, model.RankingCounters{ApprovedPosts: 10})
	require.NoError(t, svc.UpdateUserRanking(ctx, "a"))
	require.NoError(t, svc.UpdateUserRanking(ctx, "b"))

	ra := store.row("a", model.PeriodAll, start(model.PeriodAll))
	rb := store.row("b", model.PeriodAll, start(model.PeriodAll))
	assert.Equal(t, 100, ra.Score)
	assert.Equal(t, 100, rb.Score)
	assert.ElementsMatch(t, []int{1, 2}, []int{ra.Rank, rb.Rank})
}

func TestAssignRanksOnlyChanged(t *testing.T) {
	joined := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	candidates := []Candidate{
		{RowID: "r1", UserID: "a", Score: 50, Rank: 1, UserCreatedAt: joined},
		{RowID: "r2", UserID: "b", Score: 70, Rank: 2, UserCreatedAt: joined},
		{RowID: "r3", UserID: "c", Score: 10, Rank: 3, UserCreatedAt: joined},
	}

	updates := AssignRanks(candidates)
	assert.ElementsMatch(t, []RankUpdate{{RowID: "r2", Rank: 1}, {RowID: "r1", Rank: 2}}, updates)

	assert.Empty(t, AssignRanks(candidates), "second pass must be a no-op")
}

func TestAssignRanksTiebreak(t *testing.T) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(24 * time.Hour)
	candidates := []Candidate{
		{RowID: "r1", UserID: "z", Score: 5, UserCreatedAt: late},
		{RowID: "r2", UserID: "y", Score: 5, UserCreatedAt: early},
		{RowID: "r3", UserID: "x", Score: 5, UserCreatedAt: late},
	}

	AssignRanks(candidates)
	assert.Equal(t, "y", candidates[0].UserID)
	assert.Equal(t, "x", candidates[1].UserID)
	assert.Equal(t, "z", candidates[2].UserID)
}

func TestRefresherScheduledFlush(t *testing.T) {
	svc, store, source := newTestService(t, "scheduled", nil)
	ctx := context.Background()

	source.add("u", testNow, model.RankingCounters{ApprovedPosts: 1})
	require.NoError(t, svc.UpdateUserRanking(ctx, "u"))

	assert.Equal(t, 0, store.row("u", model.PeriodAll, start(model.PeriodAll)).Rank)
	assert.True(t, svc.Refresher().Dirty())

	summaries, err := svc.Refresher().Flush(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, 1, summaries[0].Rewritten)
	assert.False(t, svc.Refresher().Dirty())
	assert.Equal(t, 1, store.row("u", model.PeriodAll, start(model.PeriodAll)).Rank)

	summaries, err = svc.Refresher().Flush(ctx)
	require.NoError(t, err)
	assert.Nil(t, summaries, "clean board should not be re-sorted")
}

func TestRefresherFlushFailureStaysDirty(t *testing.T) {
	svc, store, source := newTestService(t, "scheduled", nil)
	ctx := context.Background()

	source.add("u", testNow, model.RankingCounters{ApprovedPosts: 1})
	require.NoError(t, svc.UpdateUserRanking(ctx, "u"))

	store.failUpdate = errors.New("connection reset")
	_, err := svc.Refresher().Flush(ctx)
	require.Error(t, err)
	assert.True(t, svc.Refresher().Dirty())

	store.failUpdate = nil
	_, err = svc.Refresher().Flush(ctx)
	require.NoError(t, err)
	assert.False(t, svc.Refresher().Dirty())
}

func TestRefresherRunStopsOnCancel(t *testing.T) {
	store := newMemStore()
	refresher := NewRefresher(NewAssigner(store, time.UTC), ModeScheduled, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- refresher.Run(ctx) }()

	require.Eventually(t, func() bool { return !refresher.Dirty() }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestRefresherRunEagerReturns(t *testing.T) {
	refresher := NewRefresher(NewAssigner(newMemStore(), time.UTC), ModeEager, 0)
	assert.NoError(t, refresher.Run(context.Background()))
}

func TestNewServiceRejectsUnknownMode(t *testing.T) {
	_, err := NewService(newMemStore(), newMemSource(), config.RankingConfig{RefreshMode: "hourly"})
	assert.Error(t, err)
}

func TestUserRankingsAndPosition(t *testing.T) {
	svc, _, source := newTestService(t, "eager", nil)
	ctx := context.Background()

	source.add("top", testNow, model.RankingCounters{ApprovedPosts: 5})
	source.add("second", testNow, model.RankingCounters{ApprovedPosts: 2})
	require.NoError(t, svc.UpdateUserRanking(ctx, "top"))
	require.NoError(t, svc.UpdateUserRanking(ctx, "second"))

	rows, err := svc.UserRankings(ctx, "second")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, model.PeriodAll, rows[0].PeriodType)
	assert.Equal(t, 2, rows[0].Rank)

	pos, err := svc.Position(ctx, "top")
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	pos, err = svc.Position(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 0, pos)
}
