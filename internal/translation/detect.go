// Package translation détecte la langue des contenus, les traduit via DeepL et
// garde les traductions en base, avec Redis en cache de lecture.
package translation

import model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"

// DetectLanguage compte hangul, kana et lettres latines. Sans indice : coréen.
func DetectLanguage(text string) string {
	var korean, japanese, latin int
	for _, r := range text {
		switch {
		case (r >= 0xAC00 && r <= 0xD7AF) || (r >= 0x3130 && r <= 0x318F):
			korean++
		case (r >= 0x3040 && r <= 0x30FF) || (r >= 0x31F0 && r <= 0x31FF):
			japanese++
		case (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z'):
			latin++
		}
	}

	switch {
	case korean+japanese+latin == 0:
		return model.LangKorean
	case korean > japanese && korean > latin:
		return model.LangKorean
	case japanese > korean && japanese > latin:
		return model.LangJapanese
	}
	return model.LangEnglish
}

// Supported indique si lang fait partie des langues d'affichage
func Supported(lang string) bool {
	for _, l := range model.SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}
