package model

import "time"

// Langues supportées par le site
const (
	LangKorean   = "ko"
	LangJapanese = "ja"
	LangEnglish  = "en"
)

// SupportedLanguages liste les langues d'affichage
var SupportedLanguages = []string{LangKorean, LangJapanese, LangEnglish}

type ContentTranslation struct {
	ContentType    string    `json:"contentType"` // coordinate, comment, journal
	ObjectID       string    `json:"objectId"`
	FieldName      string    `json:"fieldName"`
	SourceLanguage string    `json:"sourceLanguage"`
	TargetLanguage string    `json:"targetLanguage"`
	TranslatedText string    `json:"translatedText"`
	CreatedAt      time.Time `json:"createdAt"`
}

// TranslationResult est la réponse du endpoint de traduction
type TranslationResult struct {
	Text       string `json:"text"`
	Language   string `json:"language"`
	Translated bool   `json:"translated"`
}
