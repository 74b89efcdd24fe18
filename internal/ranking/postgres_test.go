package ranking

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/config"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/database"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPool ouvre une base jetable dans son propre schéma.
// Ignoré tant que PIKMIN_TEST_DATABASE_URL n'est pas défini.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("PIKMIN_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("PIKMIN_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	conn, err := pgx.Connect(ctx, url)
	require.NoError(t, err)
	_, err = conn.Exec(ctx, `DROP SCHEMA IF EXISTS ranking_test CASCADE; CREATE SCHEMA ranking_test`)
	require.NoError(t, err)
	require.NoError(t, conn.Close(ctx))

	cfg, err := pgxpool.ParseConfig(url)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = "ranking_test"
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, database.Migrate(ctx, pool))
	return pool
}

func insertUser(t *testing.T, pool *pgxpool.Pool, nickname string, createdAt time.Time) string {
	t.Helper()
	var id string
	require.NoError(t, pool.QueryRow(context.Background(), `
		INSERT INTO users (username, nickname, password_hash, created_at)
		VALUES ($1, $1, 'x', $2) RETURNING id`, nickname, createdAt,
	).Scan(&id))
	return id
}

func insertCoordinate(t *testing.T, pool *pgxpool.Pool, authorID, status string, copies int) string {
	t.Helper()
	var id string
	require.NoError(t, pool.QueryRow(context.Background(), `
		INSERT INTO coordinates (author_id, title, latitude, longitude, status, copy_count, approved_at)
		VALUES ($1, 'spot', 37.5, 127.0, $2, $3, CASE WHEN $2 = 'APPROVED' THEN NOW() END)
		RETURNING id`, authorID, status, copies,
	).Scan(&id))
	return id
}

func exec(t *testing.T, pool *pgxpool.Pool, sql string, args ...interface{}) {
	t.Helper()
	_, err := pool.Exec(context.Background(), sql, args...)
	require.NoError(t, err)
}

func TestPGStoreCounters(t *testing.T) {
	pool := testPool(t)
	store := NewPGStore(pool)
	ctx := context.Background()
	joined := time.Now().Add(-48 * time.Hour)

	alice := insertUser(t, pool, "alice", joined)
	bob := insertUser(t, pool, "bob", joined)
	carol := insertUser(t, pool, "carol", joined)

	c1 := insertCoordinate(t, pool, alice, "APPROVED", 3)
	insertCoordinate(t, pool, alice, "APPROVED", 1)
	pending := insertCoordinate(t, pool, alice, "PENDING", 9)

	exec(t, pool, `INSERT INTO likes (user_id, coordinate_id) VALUES ($1, $2), ($3, $2)`, bob, c1, carol)
	exec(t, pool, `INSERT INTO likes (user_id, coordinate_id) VALUES ($1, $2)`, bob, pending)
	exec(t, pool, `INSERT INTO validity_feedback (user_id, coordinate_id, feedback_type) VALUES ($1, $2, 'VALID'), ($3, $2, 'INVALID')`, bob, c1, carol)

	var journal string
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO farming_journals (author_id, title, content) VALUES ($1, 'day 1', '50 flowers') RETURNING id`, bob,
	).Scan(&journal))
	exec(t, pool, `INSERT INTO farming_journal_likes (user_id, journal_id) VALUES ($1, $2)`, alice, journal)

	got, err := store.Counters(ctx, alice, nil)
	require.NoError(t, err)
	assert.Equal(t, model.RankingCounters{
		ApprovedPosts:   2,
		CopyReceived:    4,
		LikesReceived:   3, // les likes d'un post en attente comptent
		ValidReceived:   1,
		InvalidReceived: 1,
	}, got)

	got, err = store.Counters(ctx, bob, nil)
	require.NoError(t, err)
	assert.Equal(t, model.RankingCounters{FarmingLikesReceived: 1}, got)

	future := time.Now().Add(time.Hour)
	got, err = store.Counters(ctx, alice, &future)
	require.NoError(t, err)
	assert.Equal(t, model.RankingCounters{}, got)
}

func TestPGStoreRankingRows(t *testing.T) {
	pool := testPool(t)
	store := NewPGStore(pool)
	ctx := context.Background()

	first, err := store.GetOrCreate(ctx, insertUser(t, pool, "solo", time.Now()), model.PeriodAll, Epoch)
	require.NoError(t, err)
	again, err := store.GetOrCreate(ctx, first.UserID, model.PeriodAll, Epoch)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Zero(t, again.Rank)

	first.ApprovedPosts = 2
	first.Score = 20
	first.UpdatedAt = time.Now()
	require.NoError(t, store.SaveCounters(ctx, first))
	require.NoError(t, store.UpdateRanks(ctx, []RankUpdate{{RowID: first.ID, Rank: 1}}))

	rank, err := store.RankOf(ctx, first.UserID, model.PeriodAll, Epoch)
	require.NoError(t, err)
	assert.Equal(t, 1, rank)

	rows, err := store.ForUser(ctx, first.UserID, map[model.PeriodType]time.Time{
		model.PeriodAll:     Epoch,
		model.PeriodWeekly:  Epoch,
		model.PeriodMonthly: Epoch,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 20, rows[0].Score)
	assert.Equal(t, 2, rows[0].ApprovedPosts)
}

func TestPGStoreLeaderboardSkipsDeletedUsers(t *testing.T) {
	pool := testPool(t)
	store := NewPGStore(pool)
	ctx := context.Background()

	cfg := config.Default().Ranking
	cfg.RefreshMode = string(ModeEager)
	cfg.Timezone = "UTC"
	svc, err := NewService(store, store, cfg)
	require.NoError(t, err)

	old := time.Now().Add(-72 * time.Hour)
	alice := insertUser(t, pool, "alice", old)
	bob := insertUser(t, pool, "bob", old.Add(time.Hour))
	lurker := insertUser(t, pool, "lurker", old)

	insertCoordinate(t, pool, alice, "APPROVED", 0)
	insertCoordinate(t, pool, alice, "APPROVED", 0)
	insertCoordinate(t, pool, bob, "APPROVED", 0)

	for _, id := range []string{alice, bob, lurker} {
		require.NoError(t, svc.UpdateUserRanking(ctx, id))
	}

	board, err := svc.Leaderboard(ctx, model.PeriodAll)
	require.NoError(t, err)
	require.Len(t, board, 2, "members without approved posts stay off the board")
	assert.Equal(t, "alice", board[0].User.Nickname)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, "bob", board[1].User.Nickname)

	exec(t, pool, `UPDATE users SET deleted_at = NOW() WHERE id = $1`, alice)

	candidates, err := store.Candidates(ctx, model.PeriodAll, Epoch)
	require.NoError(t, err)
	for _, c := range candidates {
		assert.NotEqual(t, alice, c.UserID)
	}

	_, err = svc.RecalculateRanks(ctx)
	require.NoError(t, err)
	board, err = svc.Leaderboard(ctx, model.PeriodAll)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, "bob", board[0].User.Nickname)
	assert.Equal(t, 1, board[0].Rank, "bob moves up once alice is gone")
}
