package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persiste les traductions
type Repository interface {
	Find(ctx context.Context, contentType, objectID, field, target string) (string, bool, error)
	Upsert(ctx context.Context, t model.ContentTranslation) error
	DeleteObject(ctx context.Context, contentType, objectID string) error
	Untranslated(ctx context.Context, contentType string, limit int) ([]Pending, error)
}

// Pending est un contenu dont le premier champ n'a encore aucune traduction
type Pending struct {
	ObjectID string
	Fields   []Field
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Find(ctx context.Context, contentType, objectID, field, target string) (string, bool, error) {
	var text string
	err := r.pool.QueryRow(ctx, `
		SELECT translated_text FROM content_translations
		WHERE content_type = $1 AND object_id = $2 AND field_name = $3 AND target_language = $4
	`, contentType, objectID, field, target).Scan(&text)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func (r *PGRepository) Upsert(ctx context.Context, t model.ContentTranslation) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO content_translations
			(content_type, object_id, field_name, source_language, target_language, translated_text)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (content_type, object_id, field_name, target_language)
		DO UPDATE SET source_language = EXCLUDED.source_language,
		              translated_text = EXCLUDED.translated_text,
		              created_at = NOW()
	`, t.ContentType, t.ObjectID, t.FieldName, t.SourceLanguage, t.TargetLanguage, t.TranslatedText)
	return err
}

// DeleteObject supprime les traductions d'un contenu modifié ou supprimé
func (r *PGRepository) DeleteObject(ctx context.Context, contentType, objectID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM content_translations WHERE content_type = $1 AND object_id = $2
	`, contentType, objectID)
	return err
}

// Untranslated liste les contenus les plus récents sans aucune traduction
func (r *PGRepository) Untranslated(ctx context.Context, contentType string, limit int) ([]Pending, error) {
	src, ok := SourceFor(contentType)
	if !ok {
		return nil, fmt.Errorf("unknown content type %q", contentType)
	}

	where := "t." + src.Fields[0] + " <> ''"
	if src.Filter != "" {
		where += " AND t." + src.Filter
	}
	query := `SELECT t.id, t.` + strings.Join(src.Fields, ", t.") + `
		FROM ` + src.Table + ` t
		WHERE ` + where + `
		  AND NOT EXISTS (
			SELECT 1 FROM content_translations ct
			WHERE ct.content_type = $1 AND ct.object_id = t.id AND ct.field_name = $2
		  )
		ORDER BY t.created_at DESC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, contentType, src.Fields[0], limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Pending
	for rows.Next() {
		var id string
		texts := make([]string, len(src.Fields))
		dest := []interface{}{&id}
		for i := range texts {
			dest = append(dest, &texts[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		p := Pending{ObjectID: id}
		for i, name := range src.Fields {
			p.Fields = append(p.Fields, Field{Name: name, Text: texts[i]})
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
