package ranking

import (
	"fmt"
	"sort"

	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
)

// Clés acceptées dans ranking.weights
const (
	KeyApprovedPost    = "approved_post"
	KeyLikeReceived    = "like_received"
	KeyValidFeedback   = "valid_feedback"
	KeyInvalidFeedback = "invalid_feedback"
	KeyFarmingLike     = "farming_like"
	KeyCopyReceived    = "copy_received"
)

// PresetWeights s'appliquent aux clés absentes de la configuration.
// Les avis de validité n'ont pas de préréglage et ne comptent que s'ils sont configurés.
var PresetWeights = map[string]int{
	KeyApprovedPost: 10,
	KeyLikeReceived: 5,
	KeyFarmingLike:  10,
	KeyCopyReceived: 2,
}

// Weights est la formule linéaire résolue
type Weights struct {
	ApprovedPost    int
	LikeReceived    int
	ValidFeedback   int
	InvalidFeedback int
	FarmingLike     int
	CopyReceived    int
}

// Conflict note un poids configuré différent de son préréglage
type Conflict struct {
	Key        string
	Configured int
	Preset     int
	HasPreset  bool
}

func (c Conflict) String() string {
	if !c.HasPreset {
		return fmt.Sprintf("%s=%d (no preset)", c.Key, c.Configured)
	}
	return fmt.Sprintf("%s=%d (preset %d)", c.Key, c.Configured, c.Preset)
}

// ResolveWeights applique la configuration par-dessus les préréglages. Retourne les
// valeurs qui diffèrent d'un préréglage pour que l'appelant les signale. Une clé
// inconnue est une erreur.
func ResolveWeights(table map[string]int) (Weights, []Conflict, error) {
	lookup := func(key string) int {
		if v, ok := table[key]; ok {
			return v
		}
		return PresetWeights[key]
	}

	var conflicts []Conflict
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch k {
		case KeyApprovedPost, KeyLikeReceived, KeyValidFeedback, KeyInvalidFeedback, KeyFarmingLike, KeyCopyReceived:
		default:
			return Weights{}, nil, fmt.Errorf("unknown ranking weight %q", k)
		}
		preset, has := PresetWeights[k]
		if table[k] != preset {
			conflicts = append(conflicts, Conflict{Key: k, Configured: table[k], Preset: preset, HasPreset: has})
		}
	}

	return Weights{
		ApprovedPost:    lookup(KeyApprovedPost),
		LikeReceived:    lookup(KeyLikeReceived),
		ValidFeedback:   lookup(KeyValidFeedback),
		InvalidFeedback: lookup(KeyInvalidFeedback),
		FarmingLike:     lookup(KeyFarmingLike),
		CopyReceived:    lookup(KeyCopyReceived),
	}, conflicts, nil
}

// Score est la somme pondérée des six compteurs, éventuellement négative
func (w Weights) Score(c model.RankingCounters) int {
	return c.ApprovedPosts*w.ApprovedPost +
		c.LikesReceived*w.LikeReceived +
		c.ValidReceived*w.ValidFeedback +
		c.InvalidReceived*w.InvalidFeedback +
		c.FarmingLikesReceived*w.FarmingLike +
		c.CopyReceived*w.CopyReceived
}
