package translation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/config"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"", "ko"},
		{"12345 !!", "ko"},
		{"버섯 좌표 공유합니다", "ko"},
		{"キノコの座標です", "ja"},
		{"Mushroom near the station", "en"},
		{"ok 좋아요 좌표", "ko"},
		{"ab あ", "en"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectLanguage(tt.text), tt.text)
	}
}

func newDeepLServer(t *testing.T, calls *atomic.Int32, failFirst bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		assert.Equal(t, "/v2/translate", r.URL.Path)
		assert.Equal(t, "DeepL-Auth-Key secret", r.Header.Get("Authorization"))
		assert.NoError(t, r.ParseForm())
		if failFirst && n == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		text := fmt.Sprintf("[%s→%s] %s", r.PostForm.Get("source_lang"), r.PostForm.Get("target_lang"), r.PostForm.Get("text"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"translations": []map[string]string{{"text": text}},
		})
	}))
}

func TestDeepLTranslate(t *testing.T) {
	var calls atomic.Int32
	srv := newDeepLServer(t, &calls, true)
	defer srv.Close()

	d := NewDeepL(config.DeepLConfig{APIKey: "secret", BaseURL: srv.URL}, srv.Client())
	got, err := d.Translate(context.Background(), "버섯", "ko", "ja")
	require.NoError(t, err)
	assert.Equal(t, "[KO→JA] 버섯", got)
	assert.Equal(t, int32(2), calls.Load(), "429 should be retried")
}

func TestDeepLNotConfigured(t *testing.T) {
	d := NewDeepL(config.DeepLConfig{}, nil)
	_, err := d.Translate(context.Background(), "x", "en", "ko")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestDeepLForbiddenNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	d := NewDeepL(config.DeepLConfig{APIKey: "secret", BaseURL: srv.URL}, srv.Client())
	_, err := d.Translate(context.Background(), "x", "en", "ko")
	assert.ErrorContains(t, err, "403")
	assert.Equal(t, int32(1), calls.Load())
}

// memRepo est un Repository en mémoire
type memRepo struct {
	mu      sync.Mutex
	rows    map[string]model.ContentTranslation
	finds   int
	pending []Pending
}

func newMemRepo() *memRepo {
	return &memRepo{rows: make(map[string]model.ContentTranslation)}
}

func (m *memRepo) Find(_ context.Context, contentType, objectID, field, target string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finds++
	row, ok := m.rows[cacheKey(contentType, objectID, field, target)]
	return row.TranslatedText, ok, nil
}

func (m *memRepo) Upsert(_ context.Context, t model.ContentTranslation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[cacheKey(t.ContentType, t.ObjectID, t.FieldName, t.TargetLanguage)] = t
	return nil
}

func (m *memRepo) DeleteObject(_ context.Context, contentType, objectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, row := range m.rows {
		if row.ContentType == contentType && row.ObjectID == objectID {
			delete(m.rows, k)
		}
	}
	return nil
}

func (m *memRepo) Untranslated(_ context.Context, contentType string, limit int) ([]Pending, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Pending
	for _, p := range m.pending {
		if len(out) == limit {
			break
		}
		done := false
		for _, lang := range model.SupportedLanguages {
			if _, ok := m.rows[cacheKey(contentType, p.ObjectID, p.Fields[0].Name, lang)]; ok {
				done = true
			}
		}
		if !done {
			out = append(out, p)
		}
	}
	return out, nil
}

func newRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return NewRedisCache(client, time.Hour), mr
}

func TestRedisCache(t *testing.T) {
	cache, mr := newRedisCache(t)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "k", "v"))
	got, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", got)

	mr.FastForward(2 * time.Hour)
	_, ok, err = cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestServiceTranslateAndLookup(t *testing.T) {
	var calls atomic.Int32
	srv := newDeepLServer(t, &calls, false)
	defer srv.Close()

	cache, _ := newRedisCache(t)
	repo := newMemRepo()
	svc := NewService(repo, cache, NewDeepL(config.DeepLConfig{APIKey: "secret", BaseURL: srv.URL}, srv.Client()))
	ctx := context.Background()

	err := svc.TranslateContent(ctx, ContentCoordinate, "c1", []Field{
		{Name: "title", Text: "역 앞 버섯"},
		{Name: "description", Text: ""},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "one call per target language")
	assert.Len(t, repo.rows, 2)

	res, err := svc.Lookup(ctx, ContentCoordinate, "c1", "title", "역 앞 버섯", "en")
	require.NoError(t, err)
	assert.True(t, res.Translated)
	assert.Equal(t, "[KO→EN] 역 앞 버섯", res.Text)
	assert.Equal(t, 0, repo.finds, "answered by redis")

	res, err = svc.Lookup(ctx, ContentCoordinate, "c1", "title", "역 앞 버섯", "ko")
	require.NoError(t, err)
	assert.False(t, res.Translated)
	assert.Equal(t, "역 앞 버섯", res.Text)
}

func TestServiceLookupFallsBackToPostgres(t *testing.T) {
	cache, _ := newRedisCache(t)
	repo := newMemRepo()
	require.NoError(t, repo.Upsert(context.Background(), model.ContentTranslation{
		ContentType: ContentComment, ObjectID: "m1", FieldName: "content",
		SourceLanguage: "en", TargetLanguage: "ja", TranslatedText: "こんにちは",
	}))
	svc := NewService(repo, cache, NewDeepL(config.DeepLConfig{}, nil))
	ctx := context.Background()

	res, err := svc.Lookup(ctx, ContentComment, "m1", "content", "hello", "ja")
	require.NoError(t, err)
	assert.Equal(t, "こんにちは", res.Text)
	assert.Equal(t, 1, repo.finds)

	_, err = svc.Lookup(ctx, ContentComment, "m1", "content", "hello", "ja")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.finds, "second read is cached")

	res, err = svc.Lookup(ctx, ContentComment, "missing", "content", "hello", "ja")
	require.NoError(t, err)
	assert.False(t, res.Translated)
	assert.Equal(t, "hello", res.Text)
}

func TestServiceWithoutDeepLKey(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil, NewDeepL(config.DeepLConfig{}, nil))

	err := svc.TranslateContent(context.Background(), ContentJournal, "j1", []Field{{Name: "title", Text: "hello"}})
	require.NoError(t, err)
	assert.Empty(t, repo.rows)
}

type failingTranslator struct{}

func (failingTranslator) Translate(context.Context, string, string, string) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestServiceCollectsErrors(t *testing.T) {
	svc := NewService(newMemRepo(), nil, failingTranslator{})
	err := svc.TranslateContent(context.Background(), ContentJournal, "j1", []Field{{Name: "title", Text: "hello"}})
	assert.ErrorContains(t, err, "quota exceeded")

	require.NoError(t, svc.Forget(context.Background(), ContentJournal, "j1"))
}

func TestSourceFor(t *testing.T) {
	src, ok := SourceFor(ContentCoordinate)
	require.True(t, ok)
	assert.Equal(t, "coordinates", src.Table)
	assert.True(t, src.Has("postcard_name"))
	assert.False(t, src.Has("password_hash"))

	_, ok = SourceFor("user")
	assert.False(t, ok)
}

func TestServiceForgetPurgesCache(t *testing.T) {
	var calls atomic.Int32
	srv := newDeepLServer(t, &calls, false)
	defer srv.Close()

	cache, mr := newRedisCache(t)
	repo := newMemRepo()
	svc := NewService(repo, cache, NewDeepL(config.DeepLConfig{APIKey: "secret", BaseURL: srv.URL}, srv.Client()))
	ctx := context.Background()

	require.NoError(t, svc.TranslateContent(ctx, ContentJournal, "j1", []Field{
		{Name: "title", Text: "첫날"},
		{Name: "content", Text: "꽃 50개"},
	}))
	require.NoError(t, cache.Set(ctx, cacheKey(ContentJournal, "j2", "title", "en"), "kept"))
	assert.True(t, mr.Exists(cacheKey(ContentJournal, "j1", "title", "en")))
	assert.True(t, mr.Exists(cacheKey(ContentJournal, "j1", "content", "ja")))

	require.NoError(t, svc.Forget(ctx, ContentJournal, "j1"))
	assert.Empty(t, repo.rows)
	for _, field := range []string{"title", "content"} {
		for _, lang := range model.SupportedLanguages {
			assert.False(t, mr.Exists(cacheKey(ContentJournal, "j1", field, lang)), field+"/"+lang)
		}
	}
	assert.True(t, mr.Exists(cacheKey(ContentJournal, "j2", "title", "en")), "other objects untouched")

	res, err := svc.Lookup(ctx, ContentJournal, "j1", "title", "첫날", "en")
	require.NoError(t, err)
	assert.False(t, res.Translated, "no stale translation after forget")
}

func TestServiceBackfill(t *testing.T) {
	var calls atomic.Int32
	srv := newDeepLServer(t, &calls, false)
	defer srv.Close()

	repo := newMemRepo()
	repo.pending = []Pending{
		{ObjectID: "m1", Fields: []Field{{Name: "content", Text: "역 앞"}}},
		{ObjectID: "m2", Fields: []Field{{Name: "content", Text: "公園のそば"}}},
		{ObjectID: "m3", Fields: []Field{{Name: "content", Text: "park gate"}}},
	}
	svc := NewService(repo, nil, NewDeepL(config.DeepLConfig{APIKey: "secret", BaseURL: srv.URL}, srv.Client()))
	ctx := context.Background()

	res, err := svc.Backfill(ctx, ContentComment, 2)
	require.NoError(t, err)
	assert.Equal(t, BackfillResult{Processed: 2}, res)
	assert.Equal(t, int32(4), calls.Load())

	res, err = svc.Backfill(ctx, ContentComment, 0)
	require.NoError(t, err)
	assert.Equal(t, BackfillResult{Processed: 1}, res, "already translated content is skipped")

	_, err = svc.Backfill(ctx, "user", 10)
	assert.Error(t, err)
}

func TestServiceBackfillContinuesPastFailures(t *testing.T) {
	repo := newMemRepo()
	repo.pending = []Pending{
		{ObjectID: "j1", Fields: []Field{{Name: "title", Text: "hello"}}},
		{ObjectID: "j2", Fields: []Field{{Name: "title", Text: "world"}}},
	}
	svc := NewService(repo, nil, failingTranslator{})

	res, err := svc.Backfill(context.Background(), ContentJournal, 10)
	require.NoError(t, err)
	assert.Equal(t, BackfillResult{Failed: 2}, res)
}
