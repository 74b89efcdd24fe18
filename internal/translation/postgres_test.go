package translation

import (
	"context"
	"os"
	"testing"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/database"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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
	_, err = conn.Exec(ctx, `DROP SCHEMA IF EXISTS translation_test CASCADE; CREATE SCHEMA translation_test`)
	require.NoError(t, err)
	require.NoError(t, conn.Close(ctx))

	cfg, err := pgxpool.ParseConfig(url)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = "translation_test"
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, database.Migrate(ctx, pool))
	return pool
}

func TestPGRepositoryUntranslated(t *testing.T) {
	pool := testPool(t)
	repo := NewPGRepository(pool)
	ctx := context.Background()

	var author, coordID, doneID string
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO users (username, nickname, password_hash) VALUES ('a', 'a', 'x') RETURNING id`).Scan(&author))
	require.NoError(t, pool.QueryRow(ctx, `
		INSERT INTO coordinates (author_id, title, postcard_name, latitude, longitude)
		VALUES ($1, '역 앞', '우체통', 37.5, 127.0) RETURNING id`, author).Scan(&coordID))
	require.NoError(t, pool.QueryRow(ctx, `
		INSERT INTO coordinates (author_id, title, latitude, longitude)
		VALUES ($1, 'done', 37.5, 127.0) RETURNING id`, author).Scan(&doneID))
	require.NoError(t, repo.Upsert(ctx, model.ContentTranslation{
		ContentType: ContentCoordinate, ObjectID: doneID, FieldName: "title",
		SourceLanguage: "en", TargetLanguage: "ko", TranslatedText: "완료",
	}))

	pending, err := repo.Untranslated(ctx, ContentCoordinate, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, coordID, pending[0].ObjectID)
	assert.Equal(t, []Field{
		{Name: "title", Text: "역 앞"},
		{Name: "postcard_name", Text: "우체통"},
		{Name: "description", Text: ""},
	}, pending[0].Fields)

	_, err = pool.Exec(ctx, `
		INSERT INTO comments (coordinate_id, author_id, content, is_deleted) VALUES ($1, $2, 'gone', TRUE)`, coordID, author)
	require.NoError(t, err)
	pending, err = repo.Untranslated(ctx, ContentComment, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "deleted comments are skipped")

	require.NoError(t, repo.DeleteObject(ctx, ContentCoordinate, doneID))
	pending, err = repo.Untranslated(ctx, ContentCoordinate, 1)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
