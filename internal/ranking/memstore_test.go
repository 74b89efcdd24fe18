package ranking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
)

// memStore est un Store en mémoire pour les tests du paquet
type memStore struct {
	mu         sync.Mutex
	rows       map[string]*model.Ranking
	joined     map[string]time.Time
	nextID     int
	rankWrites int
	failUpdate error
}

func newMemStore() *memStore {
	return &memStore{
		rows:   make(map[string]*model.Ranking),
		joined: make(map[string]time.Time),
	}
}

func rowKey(userID string, period model.PeriodType, start time.Time) string {
	return fmt.Sprintf("%s|%s|%s", userID, period, dateArg(start))
}

func (m *memStore) GetOrCreate(_ context.Context, userID string, period model.PeriodType, start time.Time) (*model.Ranking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := rowKey(userID, period, start)
	if r, ok := m.rows[key]; ok {
		cp := *r
		return &cp, nil
	}
	m.nextID++
	r := &model.Ranking{
		ID:          fmt.Sprintf("row-%d", m.nextID),
		UserID:      userID,
		PeriodType:  period,
		PeriodStart: start,
	}
	m.rows[key] = r
	cp := *r
	return &cp, nil
}

func (m *memStore) SaveCounters(_ context.Context, r *model.Ranking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.rows[rowKey(r.UserID, r.PeriodType, r.PeriodStart)]
	if !ok {
		return fmt.Errorf("row %s not found", r.ID)
	}
	stored.RankingCounters = r.RankingCounters
	stored.Score = r.Score
	stored.UpdatedAt = r.UpdatedAt
	return nil
}

func (m *memStore) Candidates(_ context.Context, period model.PeriodType, start time.Time) ([]Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Candidate
	for _, r := range m.rows {
		if r.PeriodType != period || dateArg(r.PeriodStart) != dateArg(start) {
			continue
		}
		out = append(out, Candidate{
			RowID:         r.ID,
			UserID:        r.UserID,
			Score:         r.Score,
			Rank:          r.Rank,
			UserCreatedAt: m.joined[r.UserID],
		})
	}
	return out, nil
}

func (m *memStore) UpdateRanks(_ context.Context, updates []RankUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failUpdate != nil {
		return m.failUpdate
	}
	byID := make(map[string]*model.Ranking, len(m.rows))
	for _, r := range m.rows {
		byID[r.ID] = r
	}
	for _, u := range updates {
		byID[u.RowID].Rank = u.Rank
		m.rankWrites++
	}
	return nil
}

func (m *memStore) Top(_ context.Context, period model.PeriodType, start time.Time, limit int) ([]model.RankingEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var rows []*model.Ranking
	for _, r := range m.rows {
		if r.PeriodType == period && dateArg(r.PeriodStart) == dateArg(start) && r.ApprovedPosts > 0 {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if (a.Rank == 0) != (b.Rank == 0) {
			return b.Rank == 0
		}
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		return a.Score > b.Score
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}

	entries := make([]model.RankingEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, model.RankingEntry{
			Rank:            r.Rank,
			User:            model.UserCreator{ID: r.UserID},
			RankingCounters: r.RankingCounters,
			Score:           r.Score,
		})
	}
	return entries, nil
}

func (m *memStore) ForUser(_ context.Context, userID string, starts map[model.PeriodType]time.Time) ([]model.Ranking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Ranking
	for _, p := range model.Periods {
		if r, ok := m.rows[rowKey(userID, p, starts[p])]; ok {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memStore) RankOf(_ context.Context, userID string, period model.PeriodType, start time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rows[rowKey(userID, period, start)]
	if !ok || r.ApprovedPosts == 0 {
		return 0, nil
	}
	return r.Rank, nil
}

func (m *memStore) row(userID string, period model.PeriodType, start time.Time) model.Ranking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.rows[rowKey(userID, period, start)]
}

// activity est une variation de compteurs datée
type activity struct {
	at time.Time
	c  model.RankingCounters
}

// memSource additionne les activités postérieures à since
type memSource struct {
	mu     sync.Mutex
	events map[string][]activity
}

func newMemSource() *memSource {
	return &memSource{events: make(map[string][]activity)}
}

func (s *memSource) add(userID string, at time.Time, c model.RankingCounters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[userID] = append(s.events[userID], activity{at: at, c: c})
}

func (s *memSource) Counters(_ context.Context, userID string, since *time.Time) (model.RankingCounters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total model.RankingCounters
	for _, e := range s.events[userID] {
		if since != nil && e.at.Before(*since) {
			continue
		}
		total.ApprovedPosts += e.c.ApprovedPosts
		total.LikesReceived += e.c.LikesReceived
		total.ValidReceived += e.c.ValidReceived
		total.InvalidReceived += e.c.InvalidReceived
		total.FarmingLikesReceived += e.c.FarmingLikesReceived
		total.CopyReceived += e.c.CopyReceived
	}
	return total, nil
}
