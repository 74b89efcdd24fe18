package scanner

import (
	"database/sql"
	"fmt"
	"reflect"
	"testing"
	"time"

	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRow copies values into the destinations the way a driver would.
type fakeRow []interface{}

func (f fakeRow) Scan(dest ...interface{}) error {
	if len(dest) != len(f) {
		return fmt.Errorf("expected %d destinations, got %d", len(f), len(dest))
	}
	for i, d := range dest {
		if s, ok := d.(sql.Scanner); ok {
			if err := s.Scan(f[i]); err != nil {
				return fmt.Errorf("column %d: %w", i, err)
			}
			continue
		}
		target := reflect.ValueOf(d).Elem()
		if f[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		v := reflect.ValueOf(f[i])
		if target.Kind() == reflect.Ptr {
			p := reflect.New(target.Type().Elem())
			p.Elem().Set(v.Convert(target.Type().Elem()))
			target.Set(p)
			continue
		}
		target.Set(v.Convert(target.Type()))
	}
	return nil
}

func creatorValues(id interface{}, special, selected string, position int) []interface{} {
	if id == nil {
		return []interface{}{nil, nil, nil, nil, nil, nil, nil, nil, 0}
	}
	return []interface{}{id, "bloom", nil, "🌸", special, selected, "glow", "pink", position}
}

func TestScanUser(t *testing.T) {
	now := time.Now()
	row := fakeRow{
		"u1", "alice", "Alice", "a@example.com", false, false, "",
		nil, "", "", "pioneer", "default",
		"", "", "", "", []byte(`{underline,rainbow}`),
		4, 12, 3, now, now,
	}

	u, err := ScanUser(row)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "", u.ProfileImage)
	assert.Equal(t, []string{"underline", "rainbow"}, u.ExclusivePerks)
	assert.Equal(t, 12, u.TotalLikesReceived)
}

func TestScanCoordinateAuthorBadge(t *testing.T) {
	now := time.Now()
	base := []interface{}{
		"c1", "u1", "", "Mushroom", "", "",
		37.5, 127.0, "MUSHROOM", "APPROVED", "KOREA", false, "",
		3, 10, 1, 0, 2, 0,
		7, now, now, now, nil,
	}

	c, err := ScanCoordinate(fakeRow(append(append([]interface{}{}, base...), creatorValues("u1", "", "", 2)...)))
	require.NoError(t, err)
	require.NotNil(t, c.Author)
	assert.Equal(t, "badge-silver", c.Author.BadgeClass)
	assert.Equal(t, model.CategoryMushroom, c.Category)
	assert.NotNil(t, c.ApprovedAt)
	assert.Nil(t, c.LastVerifiedAt)

	c, err = ScanCoordinate(fakeRow(append(append([]interface{}{}, base...), creatorValues("u1", "legend", "pioneer", 1)...)))
	require.NoError(t, err)
	assert.Equal(t, "legend", c.Author.ActiveTitle, "special title wins")
	assert.Equal(t, "badge-special badge-legend", c.Author.BadgeClass)
}

func TestScanCoordinateGuest(t *testing.T) {
	now := time.Now()
	row := append([]interface{}{
		"c2", nil, "guest", "Flower", "", "",
		35.6, 139.7, "BIGFLOWER", "PENDING", "JAPAN", true, "guest",
		0, 0, 0, 0, 0, 0,
		0, now, now, nil, nil,
	}, creatorValues(nil, "", "", 0)...)

	c, err := ScanCoordinate(fakeRow(row))
	require.NoError(t, err)
	assert.True(t, c.IsGuestPost())
	assert.Nil(t, c.Author)
}

func TestScanCommentMasksDeleted(t *testing.T) {
	now := time.Now()
	row := append([]interface{}{
		"m1", "c1", nil, nil, "u1", "",
		"secret", "https://img", 2, true, now, now,
	}, creatorValues("u1", "", "", 0)...)

	m, err := ScanComment(fakeRow(row))
	require.NoError(t, err)
	assert.Equal(t, model.DeletedCommentText, m.Content)
	assert.Empty(t, m.PhotoURL)
	assert.Nil(t, m.JournalID)
	require.NotNil(t, m.CoordinateID)
	assert.Equal(t, "", m.Author.BadgeClass)
}

func TestScanSuggestion(t *testing.T) {
	now := time.Now()

	guest := append([]interface{}{
		"s1", nil, "visitor", "v@example.com", "BUG", "Map broken", "The map is blank",
		"PENDING", "", "", nil, nil, now, now,
	}, creatorValues(nil, "", "", 0)...)
	s, err := ScanSuggestion(fakeRow(guest))
	require.NoError(t, err)
	assert.Nil(t, s.Author)
	assert.Equal(t, model.SuggestionBug, s.Category)
	assert.Equal(t, "visitor", s.WriterName())

	member := append([]interface{}{
		"s2", "u1", "", "", "FEATURE", "Dark mode", "please",
		"RESOLVED", "internal", "done", now, "admin", now, now,
	}, creatorValues("u1", "", "", 0)...)
	s, err = ScanSuggestion(fakeRow(member))
	require.NoError(t, err)
	require.NotNil(t, s.Author)
	assert.Equal(t, "bloom", s.WriterName())
	assert.Equal(t, "done", s.AdminReply)
	require.NotNil(t, s.RepliedAt)
}
