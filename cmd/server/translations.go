package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/database"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/logger"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/translation"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func translationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translations",
		Short: "Outils de traduction",
	}

	var contentType string
	var batch int
	backfill := &cobra.Command{
		Use:   "backfill",
		Short: "Traduit les contenus existants encore sans traduction",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := translation.SourceFor(contentType); !ok {
				return fmt.Errorf("type invalide %q (coordinate, comment ou journal)", contentType)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()

			db, err := database.ConnectPostgres(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			svc, closeCache, err := newTranslationService(db, cfg, &http.Client{Timeout: 30 * time.Second})
			if err != nil {
				return err
			}
			defer closeCache()
			if svc == nil {
				return errors.New("DeepL non configuré (deepl.api_key)")
			}

			res, err := svc.Backfill(cmd.Context(), contentType, batch)
			if err != nil {
				return err
			}
			color.Green("%s: %d traduits, %d en échec", contentType, res.Processed, res.Failed)
			return nil
		},
	}
	backfill.Flags().StringVarP(&contentType, "type", "t", translation.ContentCoordinate, "coordinate, comment ou journal")
	backfill.Flags().IntVarP(&batch, "batch", "b", 50, "nombre maximal de contenus traités")

	cmd.AddCommand(backfill)
	return cmd
}
