package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/database"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/logger"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/ranking"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Applique le schéma de la base",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			color.Green("migrations appliquées")
			return nil
		},
	}
}

func ranksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ranks",
		Short: "Outils de classement",
	}

	recalc := &cobra.Command{
		Use:   "recalc",
		Short: "Recalcule les rangs de toutes les périodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRankings(cmd.Context(), func(ctx context.Context, svc *ranking.Service) error {
				summaries, err := svc.RecalculateRanks(ctx)
				if err != nil {
					return err
				}
				for _, s := range summaries {
					fmt.Printf("%-8s examinés=%d réécrits=%d\n", s.Period, s.Examined, s.Rewritten)
				}
				return nil
			})
		},
	}

	var period string
	show := &cobra.Command{
		Use:   "show",
		Short: "Affiche le classement d'une période",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := model.ParsePeriod(period)
			if !ok {
				return fmt.Errorf("période invalide %q (ALL, WEEKLY ou MONTHLY)", period)
			}
			return withRankings(cmd.Context(), func(ctx context.Context, svc *ranking.Service) error {
				entries, err := svc.Leaderboard(ctx, p)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "RANG\tPSEUDO\tSCORE\tPOSTS\tLIKES")
				for _, e := range entries {
					fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\n", e.Rank, e.User.Nickname, e.Score, e.ApprovedPosts, e.LikesReceived)
				}
				return tw.Flush()
			})
		},
	}
	show.Flags().StringVarP(&period, "period", "p", string(model.PeriodAll), "ALL, WEEKLY ou MONTHLY")

	cmd.AddCommand(recalc, show)
	return cmd
}

// withRankings ouvre la base et construit le service de classement le temps d'une commande
func withRankings(ctx context.Context, fn func(ctx context.Context, svc *ranking.Service) error) error {
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

	svc, err := newRankingService(db, cfg)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, svc)
}
