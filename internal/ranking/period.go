package ranking

import (
	"time"

	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
)

// Epoch est le début fixe de la période ALL
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// PeriodStart retourne minuit local du premier jour de la période qui contient now.
// WEEKLY commence le lundi, MONTHLY le 1er du mois, ALL à Epoch.
func PeriodStart(period model.PeriodType, now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	switch period {
	case model.PeriodWeekly:
		offset := (int(today.Weekday()) + 6) % 7
		return today.AddDate(0, 0, -offset)
	case model.PeriodMonthly:
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(Epoch.Year(), Epoch.Month(), Epoch.Day(), 0, 0, 0, 0, loc)
	}
}
