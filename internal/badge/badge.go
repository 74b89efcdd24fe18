// Package badge décide quels titres, styles et couleurs un utilisateur peut choisir
// selon sa place au classement général, son statut admin et ses items exclusifs.
package badge

import (
	"fmt"
	"strings"
)

// Position est la place sur le podium du classement ALL (0 = hors podium)
type Position int

const (
	PositionNone   Position = 0
	PositionGold   Position = 1
	PositionSilver Position = 2
	PositionBronze Position = 3
)

// FromRank convertit un rang en place sur le podium
func FromRank(rank int) Position {
	if rank >= 1 && rank <= 3 {
		return Position(rank)
	}
	return PositionNone
}

// Option est un choix proposé à l'utilisateur
type Option struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

var (
	// Titres réservés au 1er
	PremiumTitles = []string{"explorer", "legend", "coordinator"}
	// Titres ouverts aux 2e et 3e
	NormalTitles = []string{"pioneer", "supporter"}

	titleLabels = map[string]string{
		"coordinator": "좌표 마스터",
		"explorer":    "피크민 탐험가",
		"pioneer":     "개척자",
		"legend":      "전설의 대원",
		"supporter":   "서포터",
	}

	Styles = []Option{
		{Code: "default", Label: "기본"},
		{Code: "background", Label: "배경만"},
		{Code: "glow", Label: "글로우 효과"},
		{Code: "underline", Label: "홀로그램 언더라인"},
	}

	Colors = []Option{
		{Code: "", Label: "기본"},
		{Code: "red", Label: "빨강"},
		{Code: "orange", Label: "주황"},
		{Code: "yellow", Label: "노랑"},
		{Code: "green", Label: "초록"},
		{Code: "blue", Label: "파랑"},
		{Code: "purple", Label: "보라"},
		{Code: "pink", Label: "분홍"},
		{Code: "rainbow", Label: "무지개"},
	}

	// Codes qui exigent un item exclusif, même pour un rang 1
	exclusiveStyles = map[string]bool{"underline": true}
	exclusiveColors = map[string]bool{"rainbow": true}
	exclusiveTitles = map[string]bool{"explorer": true}
)

// ExclusiveCodes liste tous les codes attribuables via exclusive_perks
func ExclusiveCodes() []string {
	return []string{"underline", "rainbow", "explorer"}
}

// ValidTitle indique si le code est un titre connu
func ValidTitle(code string) bool {
	_, ok := titleLabels[code]
	return ok
}

// TitleLabel retourne le libellé affiché d'un titre
func TitleLabel(code string) string {
	if label, ok := titleLabels[code]; ok {
		return label
	}
	return code
}

func knownOption(options []Option, code string) bool {
	for _, o := range options {
		if o.Code == code {
			return true
		}
	}
	return false
}

// Eligibility regroupe les entrées de la table de décision
type Eligibility struct {
	Position Position
	Admin    bool
	Perks    []string
}

func (e Eligibility) hasPerk(code string) bool {
	for _, p := range e.Perks {
		if strings.TrimSpace(p) == code {
			return true
		}
	}
	return false
}

// CanCustomize indique si l'utilisateur peut personnaliser son badge hors items exclusifs
func (e Eligibility) CanCustomize() bool {
	return e.Admin || e.Position != PositionNone
}

// CanSelectTitle vérifie un titre. Le code vide (retirer le titre) est toujours permis.
func (e Eligibility) CanSelectTitle(code string) bool {
	if code == "" {
		return true
	}
	if !ValidTitle(code) {
		return false
	}
	if e.Admin {
		return true
	}
	if exclusiveTitles[code] {
		return e.hasPerk(code)
	}
	switch e.Position {
	case PositionGold:
		return true
	case PositionSilver, PositionBronze:
		for _, t := range NormalTitles {
			if t == code {
				return true
			}
		}
	}
	return false
}

// CanUseStyle vérifie un style de badge. "default" est toujours permis.
func (e Eligibility) CanUseStyle(code string) bool {
	if code == "default" {
		return true
	}
	if !knownOption(Styles, code) {
		return false
	}
	if e.Admin {
		return true
	}
	if exclusiveStyles[code] {
		return e.hasPerk(code)
	}
	return e.CanCustomize()
}

// CanUseColor vérifie une couleur. La couleur par défaut ("") est toujours permise.
func (e Eligibility) CanUseColor(code string) bool {
	if code == "" {
		return true
	}
	if !knownOption(Colors, code) {
		return false
	}
	if e.Admin {
		return true
	}
	if exclusiveColors[code] {
		return e.hasPerk(code)
	}
	return e.CanCustomize()
}

// AvailableTitles liste les titres sélectionnables, premium d'abord
func (e Eligibility) AvailableTitles() []Option {
	var out []Option
	for _, code := range append(append([]string{}, PremiumTitles...), NormalTitles...) {
		if e.CanSelectTitle(code) {
			out = append(out, Option{Code: code, Label: titleLabels[code]})
		}
	}
	return out
}

// AvailableStyles liste les styles sélectionnables
func (e Eligibility) AvailableStyles() []Option {
	var out []Option
	for _, o := range Styles {
		if e.CanUseStyle(o.Code) {
			out = append(out, o)
		}
	}
	return out
}

// AvailableColors liste les couleurs sélectionnables
func (e Eligibility) AvailableColors() []Option {
	var out []Option
	for _, o := range Colors {
		if e.CanUseColor(o.Code) {
			out = append(out, o)
		}
	}
	return out
}

// Selection est un changement de personnalisation demandé (nil = inchangé)
type Selection struct {
	Title           *string
	BadgeStyle      *string
	NicknameColor   *string
	TitleColor      *string
	TitleBgColor    *string
	NicknameBgColor *string
}

// Check retourne la première option refusée
func (e Eligibility) Check(s Selection) error {
	if s.Title != nil && !e.CanSelectTitle(*s.Title) {
		return fmt.Errorf("title %q is not available", *s.Title)
	}
	if s.BadgeStyle != nil && !e.CanUseStyle(*s.BadgeStyle) {
		return fmt.Errorf("badge style %q is not available", *s.BadgeStyle)
	}
	colors := []struct {
		field string
		value *string
	}{
		{"nickname color", s.NicknameColor},
		{"title color", s.TitleColor},
		{"title background color", s.TitleBgColor},
		{"nickname background color", s.NicknameBgColor},
	}
	for _, c := range colors {
		if c.value != nil && !e.CanUseColor(*c.value) {
			return fmt.Errorf("%s %q is not available", c.field, *c.value)
		}
	}
	return nil
}

// ActiveTitle : le titre accordé par un admin prime sur celui choisi
func ActiveTitle(special, selected string) string {
	if special != "" {
		return special
	}
	return selected
}

// BadgeClass retourne la classe CSS du badge
func BadgeClass(activeTitle string, position Position) string {
	if activeTitle != "" {
		return "badge-special badge-" + activeTitle
	}
	switch position {
	case PositionGold:
		return "badge-gold"
	case PositionSilver:
		return "badge-silver"
	case PositionBronze:
		return "badge-bronze"
	}
	return ""
}
