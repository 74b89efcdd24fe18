package translation

import (
	"context"
	"errors"
	"fmt"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/logger"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"go.uber.org/zap"
)

// Types de contenu traduits
const (
	ContentCoordinate = "coordinate"
	ContentComment    = "comment"
	ContentJournal    = "journal"
)

// Translator traduit un texte (DeepL en production)
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Field est un champ traduisible d'un contenu
type Field struct {
	Name string
	Text string
}

// Service orchestre détection, traduction et lecture en cache
type Service struct {
	repo       Repository
	cache      Cache
	translator Translator
}

// NewService crée le service. cache peut être nil (pas de Redis).
func NewService(repo Repository, cache Cache, translator Translator) *Service {
	return &Service{repo: repo, cache: cache, translator: translator}
}

// TranslateContent traduit chaque champ non vide vers les deux autres langues.
// La langue source est détectée sur le premier champ.
func (s *Service) TranslateContent(ctx context.Context, contentType, objectID string, fields []Field) error {
	if len(fields) == 0 {
		return nil
	}
	source := DetectLanguage(fields[0].Text)

	var errs []error
	for _, f := range fields {
		if f.Text == "" {
			continue
		}
		for _, target := range model.SupportedLanguages {
			if target == source {
				continue
			}
			text, err := s.translator.Translate(ctx, f.Text, source, target)
			if errors.Is(err, ErrNotConfigured) {
				return nil
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("%s %s → %s: %w", f.Name, source, target, err))
				continue
			}
			t := model.ContentTranslation{
				ContentType:    contentType,
				ObjectID:       objectID,
				FieldName:      f.Name,
				SourceLanguage: source,
				TargetLanguage: target,
				TranslatedText: text,
			}
			if err := s.repo.Upsert(ctx, t); err != nil {
				errs = append(errs, fmt.Errorf("save %s %s: %w", f.Name, target, err))
				continue
			}
			s.cacheSet(ctx, cacheKey(contentType, objectID, f.Name, target), text)
		}
	}
	return errors.Join(errs...)
}

// Lookup retourne la traduction en cache, sinon le texte original
func (s *Service) Lookup(ctx context.Context, contentType, objectID, field, original, target string) (model.TranslationResult, error) {
	res := model.TranslationResult{Text: original, Language: DetectLanguage(original)}
	if original == "" || res.Language == target || !Supported(target) {
		cacheLookups.WithLabelValues("original").Inc()
		return res, nil
	}

	key := cacheKey(contentType, objectID, field, target)
	if s.cache != nil {
		text, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			logger.L().Warn("translation cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			cacheLookups.WithLabelValues("redis").Inc()
			return model.TranslationResult{Text: text, Language: target, Translated: true}, nil
		}
	}

	text, ok, err := s.repo.Find(ctx, contentType, objectID, field, target)
	if err != nil {
		return res, err
	}
	if !ok {
		cacheLookups.WithLabelValues("original").Inc()
		return res, nil
	}

	cacheLookups.WithLabelValues("postgres").Inc()
	s.cacheSet(ctx, key, text)
	return model.TranslationResult{Text: text, Language: target, Translated: true}, nil
}

// Forget supprime les traductions d'un contenu modifié ou supprimé,
// en base puis dans le cache pour chaque champ et chaque langue.
func (s *Service) Forget(ctx context.Context, contentType, objectID string) error {
	if err := s.repo.DeleteObject(ctx, contentType, objectID); err != nil {
		return err
	}
	src, ok := SourceFor(contentType)
	if s.cache == nil || !ok {
		return nil
	}

	keys := make([]string, 0, len(src.Fields)*len(model.SupportedLanguages))
	for _, field := range src.Fields {
		for _, lang := range model.SupportedLanguages {
			keys = append(keys, cacheKey(contentType, objectID, field, lang))
		}
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("purge translation cache: %w", err)
	}
	return nil
}

// BackfillResult résume un passage de Backfill
type BackfillResult struct {
	Processed int
	Failed    int
}

// Backfill traduit jusqu'à limit contenus existants encore sans traduction.
// Un échec sur un contenu est journalisé puis le lot continue.
func (s *Service) Backfill(ctx context.Context, contentType string, limit int) (BackfillResult, error) {
	var res BackfillResult
	if _, ok := SourceFor(contentType); !ok {
		return res, fmt.Errorf("unknown content type %q", contentType)
	}
	if limit <= 0 {
		limit = 50
	}

	pending, err := s.repo.Untranslated(ctx, contentType, limit)
	if err != nil {
		return res, err
	}
	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := s.TranslateContent(ctx, contentType, p.ObjectID, p.Fields); err != nil {
			res.Failed++
			logger.L().Warn("backfill translation failed",
				zap.String("type", contentType), zap.String("id", p.ObjectID), zap.Error(err))
			continue
		}
		res.Processed++
	}
	return res, nil
}

func (s *Service) cacheSet(ctx context.Context, key, value string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		logger.L().Warn("translation cache write failed", zap.String("key", key), zap.Error(err))
	}
}
