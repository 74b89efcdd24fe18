package ranking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/badge"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const rankingColumns = `id, user_id, period_type, period_start,
	approved_posts_count, likes_received_count, valid_received_count,
	invalid_received_count, farming_likes_received_count, copy_received_count,
	score, rank, updated_at`

// PGStore implémente Store et CounterSource sur PostgreSQL
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func dateArg(t time.Time) string {
	return t.Format("2006-01-02")
}

func scanRanking(row pgx.Row) (*model.Ranking, error) {
	var r model.Ranking
	var period string
	err := row.Scan(
		&r.ID, &r.UserID, &period, &r.PeriodStart,
		&r.ApprovedPosts, &r.LikesReceived, &r.ValidReceived,
		&r.InvalidReceived, &r.FarmingLikesReceived, &r.CopyReceived,
		&r.Score, &r.Rank, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.PeriodType = model.PeriodType(period)
	return &r, nil
}

func (s *PGStore) GetOrCreate(ctx context.Context, userID string, period model.PeriodType, start time.Time) (*model.Ranking, error) {
	row := s.pool.QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO rankings (user_id, period_type, period_start)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, period_type, period_start) DO NOTHING
			RETURNING `+rankingColumns+`
		)
		SELECT `+rankingColumns+` FROM ins
		UNION ALL
		SELECT `+rankingColumns+` FROM rankings
		WHERE user_id = $1 AND period_type = $2 AND period_start = $3
		LIMIT 1
	`, userID, string(period), dateArg(start))

	r, err := scanRanking(row)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// Inséré par une transaction concurrente après le début de notre snapshot
	return scanRanking(s.pool.QueryRow(ctx, `
		SELECT `+rankingColumns+` FROM rankings
		WHERE user_id = $1 AND period_type = $2 AND period_start = $3
	`, userID, string(period), dateArg(start)))
}

func (s *PGStore) SaveCounters(ctx context.Context, r *model.Ranking) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE rankings SET
			approved_posts_count = $2,
			likes_received_count = $3,
			valid_received_count = $4,
			invalid_received_count = $5,
			farming_likes_received_count = $6,
			copy_received_count = $7,
			score = $8,
			updated_at = $9
		WHERE id = $1
	`, r.ID, r.ApprovedPosts, r.LikesReceived, r.ValidReceived, r.InvalidReceived,
		r.FarmingLikesReceived, r.CopyReceived, r.Score, r.UpdatedAt)
	return err
}

func (s *PGStore) Candidates(ctx context.Context, period model.PeriodType, start time.Time) ([]Candidate, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.id, r.user_id, r.score, r.rank, u.created_at
		FROM rankings r
		INNER JOIN users u ON u.id = r.user_id
		WHERE r.period_type = $1 AND r.period_start = $2
		  AND u.deleted_at IS NULL
	`, string(period), dateArg(start))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.RowID, &c.UserID, &c.Score, &c.Rank, &c.UserCreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PGStore) UpdateRanks(ctx context.Context, updates []RankUpdate) error {
	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(`UPDATE rankings SET rank = $2 WHERE id = $1`, u.RowID, u.Rank)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range updates {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (s *PGStore) Top(ctx context.Context, period model.PeriodType, start time.Time, limit int) ([]model.RankingEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT
			r.rank, r.score,
			r.approved_posts_count, r.likes_received_count, r.valid_received_count,
			r.invalid_received_count, r.farming_likes_received_count, r.copy_received_count,
			u.id, u.nickname, COALESCE(u.profile_image, ''), u.profile_emoji,
			u.special_title, u.selected_title, u.badge_style, u.nickname_color,
			COALESCE((
				SELECT a.rank FROM rankings a
				WHERE a.user_id = u.id AND a.period_type = 'ALL' AND a.period_start = $4
				  AND a.approved_posts_count > 0 AND a.rank BETWEEN 1 AND 3
			), 0) AS position
		FROM rankings r
		INNER JOIN users u ON u.id = r.user_id
		WHERE r.period_type = $1
		  AND r.period_start = $2
		  AND r.approved_posts_count > 0
		  AND u.deleted_at IS NULL
		ORDER BY (r.rank = 0), r.rank, r.score DESC
		LIMIT $3
	`, string(period), dateArg(start), limit, dateArg(Epoch))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.RankingEntry
	for rows.Next() {
		var e model.RankingEntry
		var specialTitle, selectedTitle string
		var position int
		if err := rows.Scan(
			&e.Rank, &e.Score,
			&e.ApprovedPosts, &e.LikesReceived, &e.ValidReceived,
			&e.InvalidReceived, &e.FarmingLikesReceived, &e.CopyReceived,
			&e.User.ID, &e.User.Nickname, &e.User.ProfileImage, &e.User.ProfileEmoji,
			&specialTitle, &selectedTitle, &e.User.BadgeStyle, &e.User.NicknameColor,
			&position,
		); err != nil {
			return nil, err
		}
		e.User.ActiveTitle = badge.ActiveTitle(specialTitle, selectedTitle)
		e.User.BadgeClass = badge.BadgeClass(e.User.ActiveTitle, badge.Position(position))
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PGStore) ForUser(ctx context.Context, userID string, starts map[model.PeriodType]time.Time) ([]model.Ranking, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+rankingColumns+` FROM rankings
		WHERE user_id = $1 AND (
			(period_type = 'ALL' AND period_start = $2) OR
			(period_type = 'WEEKLY' AND period_start = $3) OR
			(period_type = 'MONTHLY' AND period_start = $4)
		)
		ORDER BY CASE period_type WHEN 'ALL' THEN 0 WHEN 'WEEKLY' THEN 1 ELSE 2 END
	`, userID,
		dateArg(starts[model.PeriodAll]),
		dateArg(starts[model.PeriodWeekly]),
		dateArg(starts[model.PeriodMonthly]))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Ranking
	for rows.Next() {
		r, err := scanRanking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// Counters envoie les quatre agrégats dans un seul batch
func (s *PGStore) Counters(ctx context.Context, userID string, since *time.Time) (model.RankingCounters, error) {
	var c model.RankingCounters

	batch := &pgx.Batch{}
	batch.Queue(`
		SELECT COUNT(*), COALESCE(SUM(copy_count), 0)
		FROM coordinates
		WHERE author_id = $1 AND status = 'APPROVED'
		  AND ($2::timestamptz IS NULL OR approved_at >= $2)
	`, userID, since)
	batch.Queue(`
		SELECT COUNT(*)
		FROM likes l
		INNER JOIN coordinates c ON c.id = l.coordinate_id
		WHERE c.author_id = $1
		  AND ($2::timestamptz IS NULL OR l.created_at >= $2)
	`, userID, since)
	batch.Queue(`
		SELECT
			COUNT(*) FILTER (WHERE v.feedback_type = 'VALID'),
			COUNT(*) FILTER (WHERE v.feedback_type = 'INVALID')
		FROM validity_feedback v
		INNER JOIN coordinates c ON c.id = v.coordinate_id
		WHERE c.author_id = $1
		  AND ($2::timestamptz IS NULL OR v.created_at >= $2)
	`, userID, since)
	batch.Queue(`
		SELECT COUNT(*)
		FROM farming_journal_likes fl
		INNER JOIN farming_journals j ON j.id = fl.journal_id
		WHERE j.author_id = $1
		  AND ($2::timestamptz IS NULL OR fl.created_at >= $2)
	`, userID, since)

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	if err := br.QueryRow().Scan(&c.ApprovedPosts, &c.CopyReceived); err != nil {
		return c, fmt.Errorf("approved posts: %w", err)
	}
	if err := br.QueryRow().Scan(&c.LikesReceived); err != nil {
		return c, fmt.Errorf("likes received: %w", err)
	}
	if err := br.QueryRow().Scan(&c.ValidReceived, &c.InvalidReceived); err != nil {
		return c, fmt.Errorf("validity feedback: %w", err)
	}
	if err := br.QueryRow().Scan(&c.FarmingLikesReceived); err != nil {
		return c, fmt.Errorf("farming likes: %w", err)
	}
	return c, nil
}

func (s *PGStore) RankOf(ctx context.Context, userID string, period model.PeriodType, start time.Time) (int, error) {
	var rank int
	err := s.pool.QueryRow(ctx, `
		SELECT rank FROM rankings
		WHERE user_id = $1 AND period_type = $2 AND period_start = $3
		  AND approved_posts_count > 0
	`, userID, string(period), dateArg(start)).Scan(&rank)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return rank, err
}
