package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/config"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/database"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/middleware"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/ranking"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// recordingSource note chaque membre dont les compteurs sont recalculés
type recordingSource struct {
	ranking.CounterSource

	mu    sync.Mutex
	users map[string]int
}

func (s *recordingSource) Counters(ctx context.Context, userID string, since *time.Time) (model.RankingCounters, error) {
	s.mu.Lock()
	s.users[userID]++
	s.mu.Unlock()
	return s.CounterSource.Counters(ctx, userID, since)
}

func (s *recordingSource) take() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.users
	s.users = make(map[string]int)
	return out
}

// setupDB branche database.DB sur une base jetable (schéma handler_test).
// Ignoré tant que PIKMIN_TEST_DATABASE_URL n'est pas défini.
func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("PIKMIN_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("PIKMIN_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	conn, err := pgx.Connect(ctx, url)
	require.NoError(t, err)
	_, err = conn.Exec(ctx, `DROP SCHEMA IF EXISTS handler_test CASCADE; CREATE SCHEMA handler_test`)
	require.NoError(t, err)
	require.NoError(t, conn.Close(ctx))

	cfg, err := pgxpool.ParseConfig(url)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = "handler_test"
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(ctx, pool))

	prev := database.DB
	database.DB = pool
	t.Cleanup(func() {
		database.DB = prev
		pool.Close()
	})
	return pool
}

func seedUser(t *testing.T, nickname, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	var id string
	require.NoError(t, database.DB.QueryRow(context.Background(), `
		INSERT INTO users (username, nickname, password_hash, created_at)
		VALUES ($1, $1, $2, NOW() - INTERVAL '1 day') RETURNING id`, nickname, string(hash),
	).Scan(&id))
	return &model.User{ID: id, Username: nickname, Nickname: nickname}
}

func newRankedHandler(t *testing.T, pool *pgxpool.Pool) (*Handler, *recordingSource) {
	t.Helper()
	store := ranking.NewPGStore(pool)
	source := &recordingSource{CounterSource: store, users: make(map[string]int)}

	cfg := config.Default().Ranking
	cfg.RefreshMode = string(ranking.ModeEager)
	svc, err := ranking.NewService(store, source, cfg)
	require.NoError(t, err)
	return &Handler{Rankings: svc}, source
}

func call(fn http.HandlerFunc, user *model.User, vars map[string]string, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if user != nil {
		r = middleware.WithUser(r, user)
	}
	r = mux.SetURLVars(r, vars)
	rec := httptest.NewRecorder()
	fn(rec, r)
	return rec
}

func allTime(t *testing.T, h *Handler, userID string) model.Ranking {
	t.Helper()
	rows, err := h.Rankings.UserRankings(context.Background(), userID)
	require.NoError(t, err)
	for _, r := range rows {
		if r.PeriodType == model.PeriodAll {
			return r
		}
	}
	t.Fatalf("no ALL ranking for %s", userID)
	return model.Ranking{}
}

func TestInteractionsRefreshAuthorRanking(t *testing.T) {
	pool := setupDB(t)
	h, source := newRankedHandler(t, pool)
	ctx := context.Background()

	author := seedUser(t, "author", "password1")
	fan := seedUser(t, "fan", "password2")
	staff := &model.User{ID: fan.ID, Nickname: "fan", IsStaff: true}

	var coordID, journalID string
	require.NoError(t, database.DB.QueryRow(ctx, `
		INSERT INTO coordinates (author_id, title, latitude, longitude, created_at)
		VALUES ($1, 'old spot', 37.5, 127.0, NOW() - INTERVAL '40 days') RETURNING id`, author.ID,
	).Scan(&coordID))
	require.NoError(t, database.DB.QueryRow(ctx, `
		INSERT INTO farming_journals (author_id, title, content) VALUES ($1, 'day 1', '50 flowers') RETURNING id`, author.ID,
	).Scan(&journalID))

	steps := []struct {
		name  string
		fn    http.HandlerFunc
		user  *model.User
		id    string
		body  string
		check func(t *testing.T, r model.Ranking)
	}{
		{"approve", h.ApproveCoordinate, staff, coordID, "", func(t *testing.T, r model.Ranking) {
			assert.Equal(t, 1, r.ApprovedPosts)
		}},
		{"like", h.ToggleLike, fan, coordID, "", func(t *testing.T, r model.Ranking) {
			assert.Equal(t, 1, r.LikesReceived)
		}},
		{"validity", h.SubmitValidity, fan, coordID, `{"feedbackType":"VALID"}`, func(t *testing.T, r model.Ranking) {
			assert.Equal(t, 1, r.ValidReceived)
		}},
		{"journal like", h.ToggleJournalLike, fan, journalID, "", func(t *testing.T, r model.Ranking) {
			assert.Equal(t, 1, r.FarmingLikesReceived)
		}},
	}
	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			rec := call(step.fn, step.user, map[string]string{"id": step.id}, step.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			seen := source.take()
			assert.Positive(t, seen[author.ID], "author counters recomputed")
			assert.Zero(t, seen[fan.ID])
			step.check(t, allTime(t, h, author.ID))
		})
	}

	r := allTime(t, h, author.ID)
	assert.Equal(t, 1, r.Rank)
	assert.Positive(t, r.Score)
}

func TestDeleteMeLeavesRanking(t *testing.T) {
	pool := setupDB(t)
	h, _ := newRankedHandler(t, pool)
	ctx := context.Background()

	gone := seedUser(t, "gone", "password1")
	stays := seedUser(t, "stays", "password2")
	for _, u := range []*model.User{gone, gone, stays} {
		_, err := database.DB.Exec(ctx, `
			INSERT INTO coordinates (author_id, title, latitude, longitude, status, approved_at)
			VALUES ($1, 'spot', 37.5, 127.0, 'APPROVED', NOW())`, u.ID)
		require.NoError(t, err)
	}
	_, err := database.DB.Exec(ctx, `INSERT INTO sessions (user_id, token, expires_at) VALUES ($1, 'tok', NOW() + INTERVAL '1 day')`, gone.ID)
	require.NoError(t, err)
	require.NoError(t, h.Rankings.UpdateUserRanking(ctx, gone.ID))
	require.NoError(t, h.Rankings.UpdateUserRanking(ctx, stays.ID))
	assert.Equal(t, 1, allTime(t, h, gone.ID).Rank)

	rec := call(h.DeleteMe, gone, nil, `{"password":"wrong-pass"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(h.DeleteMe, gone, nil, `{"password":"password1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var active bool
	require.NoError(t, database.DB.QueryRow(ctx, `SELECT is_active FROM sessions WHERE token = 'tok'`).Scan(&active))
	assert.False(t, active)

	_, err = getUser(ctx, gone.ID)
	assert.True(t, database.IsNotFound(err))

	board, err := h.Rankings.Leaderboard(ctx, model.PeriodAll)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, stays.ID, board[0].User.ID)
	assert.Equal(t, 1, board[0].Rank)
	assert.Zero(t, allTime(t, h, gone.ID).Rank)
}

func TestSuggestionLifecycle(t *testing.T) {
	setupDB(t)
	h := &Handler{}
	ctx := context.Background()

	member := seedUser(t, "member", "password1")
	admin := &model.User{ID: seedUser(t, "admin", "password2").ID, IsStaff: true}

	rec := call(h.CreateSuggestion, member, nil,
		`{"category":"FEATURE","title":"Dark mode","content":"please","guestNickname":"ignored"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	id := data["id"].(string)
	assert.Equal(t, member.ID, data["userId"])
	assert.Nil(t, data["guestNickname"])

	rec = call(h.CreateSuggestion, nil, nil, `{"title":"Bug","content":"map blank"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	guest := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "익명", guest["guestNickname"])
	assert.Equal(t, "OTHER", guest["category"])

	rec = call(h.UpdateSuggestion, admin, map[string]string{"id": id},
		`{"status":"REVIEWED","adminReply":"coming soon","adminNote":"sprint 12"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// un statut inchangé sans nouvelle réponse ne notifie pas
	rec = call(h.UpdateSuggestion, admin, map[string]string{"id": id}, `{"adminNote":"still sprint 12"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var kind, message string
	var count int
	require.NoError(t, database.DB.QueryRow(ctx, `
		SELECT COUNT(*), MIN(notification_type), MIN(message) FROM notifications WHERE recipient_id = $1`, member.ID,
	).Scan(&count, &kind, &message))
	assert.Equal(t, 1, count)
	assert.Equal(t, string(model.NotificationSuggestionReply), kind)
	assert.Contains(t, message, "Dark mode")

	r := httptest.NewRequest(http.MethodGet, "/me/suggestions", nil)
	rec = httptest.NewRecorder()
	h.GetMySuggestions(rec, middleware.WithUser(r, member))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	mine := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.EqualValues(t, 1, mine["total"])
	assert.EqualValues(t, 1, mine["repliedCount"])
	item := mine["items"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "coming soon", item["adminReply"])
	assert.Nil(t, item["adminNote"], "internal note stays hidden")

	r = httptest.NewRequest(http.MethodGet, "/admin/suggestions?status=pending", nil)
	rec = httptest.NewRecorder()
	h.ListSuggestions(rec, r)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.EqualValues(t, 1, page["total"], "only the guest suggestion is still pending")
}
