// Package geo détecte la région d'une coordonnée et le pays d'une IP.
package geo

import (
	"strings"

	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
)

type box struct {
	region         model.Region
	minLat, maxLat float64
	minLon, maxLon float64
}

// Testées dans l'ordre : la Corée avant le Japon, le Japon avant l'Asie.
var boxes = []box{
	{model.RegionKorea, 33, 38.5, 124, 130},
	{model.RegionJapan, 24, 46, 123, 154},
	{model.RegionNorthAmerica, 15, 72, -170, -50},
	{model.RegionEurope, 35, 72, -25, 60},
	{model.RegionAsiaOther, -10, 55, 60, 150},
}

// RegionFromBounds classe une coordonnée avec des boîtes englobantes grossières
func RegionFromBounds(lat, lon float64) model.Region {
	for _, b := range boxes {
		if lat >= b.minLat && lat <= b.maxLat && lon >= b.minLon && lon <= b.maxLon {
			return b.region
		}
	}
	return model.RegionOther
}

var countryRegions = map[string]model.Region{
	"kr": model.RegionKorea,
	"jp": model.RegionJapan,
	"us": model.RegionNorthAmerica,
	"ca": model.RegionNorthAmerica,
	"mx": model.RegionNorthAmerica,
}

func init() {
	for _, cc := range strings.Fields("de fr gb it es pt nl be ch at pl cz se no dk fi ie gr hu ro bg hr sk si ee lv lt lu mt cy is ua ru") {
		countryRegions[cc] = model.RegionEurope
	}
	for _, cc := range strings.Fields("cn tw hk sg my th vn ph id in pk bd np lk mm kh la bn mn kz uz ae sa il tr") {
		countryRegions[cc] = model.RegionAsiaOther
	}
}

// RegionFromCountry convertit un code pays ISO 3166-1 alpha-2
func RegionFromCountry(code string) model.Region {
	if r, ok := countryRegions[strings.ToLower(strings.TrimSpace(code))]; ok {
		return r
	}
	return model.RegionOther
}

// LanguageFromCountry : KR → ko, JP → ja, sinon en
func LanguageFromCountry(code string) string {
	switch strings.ToUpper(code) {
	case "KR":
		return model.LangKorean
	case "JP":
		return model.LangJapanese
	}
	return model.LangEnglish
}
