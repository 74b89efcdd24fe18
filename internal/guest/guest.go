// Package guest garde l'état des visiteurs non connectés (likes, votes, copies,
// posts créés) dans un cookie signé et chiffré.
package guest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/config"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/logger"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/gorilla/securecookie"
)

const (
	CookieName = "pikmin_guest"
	// Les navigateurs refusent les cookies de plus de 4 Ko
	maxCookieLen = 3900
	cookieMaxAge = 365 * 24 * 60 * 60
)

// Vote est une évaluation de validité faite en invité
type Vote struct {
	ID   string             `json:"i"`
	Type model.FeedbackType `json:"t"`
}

// State est le contenu du cookie. Les listes sont dans l'ordre d'ajout.
type State struct {
	Likes        []string         `json:"l,omitempty"`
	CommentLikes []string         `json:"cl,omitempty"`
	JournalLikes []string         `json:"jl,omitempty"`
	Coordinates  []string         `json:"c,omitempty"`
	Journals     []string         `json:"j,omitempty"`
	Comments     []string         `json:"m,omitempty"`
	Votes        []Vote           `json:"v,omitempty"`
	Copies       map[string]int64 `json:"cp,omitempty"` // id -> unix de la dernière copie comptée
	Uploads      map[string]int   `json:"u,omitempty"`  // "CATEGORY:20060102" -> posts du jour
}

// Codec lit et écrit State
type Codec struct {
	sc       *securecookie.SecureCookie
	maxItems int
	secure   bool
}

// NewCodec crée le codec. Sans clés configurées, des clés aléatoires sont générées :
// l'état invité est alors perdu au redémarrage.
func NewCodec(cfg config.GuestConfig) (*Codec, error) {
	hashKey := []byte(cfg.HashKey)
	blockKey := []byte(cfg.BlockKey)
	if len(hashKey) == 0 {
		logger.Warning("guest.hash_key not set, guest state will not survive a restart")
		hashKey = securecookie.GenerateRandomKey(64)
		if len(blockKey) == 0 {
			blockKey = securecookie.GenerateRandomKey(32)
		}
	}
	switch len(blockKey) {
	case 0, 16, 24, 32:
	default:
		return nil, fmt.Errorf("guest.block_key must be 16, 24 or 32 bytes, got %d", len(blockKey))
	}
	if len(blockKey) == 0 {
		blockKey = nil
	}

	sc := securecookie.New(hashKey, blockKey)
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxAge(cookieMaxAge)
	// La taille est contrôlée dans Save
	sc.MaxLength(0)

	maxItems := cfg.MaxItems
	if maxItems <= 0 {
		maxItems = 50
	}
	return &Codec{sc: sc, maxItems: maxItems, secure: cfg.Secure}, nil
}

// Load lit l'état. Un cookie absent, expiré ou falsifié donne un état vide.
func (c *Codec) Load(r *http.Request) *State {
	st := &State{}
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return st
	}
	if err := c.sc.Decode(CookieName, cookie.Value, st); err != nil {
		logger.Debug("guest cookie rejected: %v", err)
		return &State{}
	}
	return st
}

// Save borne l'état puis écrit le cookie
func (c *Codec) Save(w http.ResponseWriter, st *State, now time.Time) error {
	st.bound(c.maxItems)
	st.pruneCopies(now, CopyWindow)
	st.pruneUploads(now)

	for {
		encoded, err := c.sc.Encode(CookieName, st)
		if err != nil {
			return fmt.Errorf("encode guest state: %w", err)
		}
		if len(encoded) <= maxCookieLen {
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    encoded,
				Path:     "/",
				MaxAge:   cookieMaxAge,
				HttpOnly: true,
				Secure:   c.secure,
				SameSite: http.SameSiteLaxMode,
			})
			return nil
		}
		if !st.evictOne() {
			return errors.New("guest state does not fit in a cookie")
		}
	}
}

func trim(list []string, max int) []string {
	if len(list) > max {
		return append([]string(nil), list[len(list)-max:]...)
	}
	return list
}

func (st *State) bound(max int) {
	st.Likes = trim(st.Likes, max)
	st.CommentLikes = trim(st.CommentLikes, max)
	st.JournalLikes = trim(st.JournalLikes, max)
	st.Coordinates = trim(st.Coordinates, max)
	st.Journals = trim(st.Journals, max)
	st.Comments = trim(st.Comments, max)
	if len(st.Votes) > max {
		st.Votes = append([]Vote(nil), st.Votes[len(st.Votes)-max:]...)
	}
}

// evictOne retire l'entrée la plus ancienne de la liste la plus longue
func (st *State) evictOne() bool {
	lists := []*[]string{&st.Likes, &st.CommentLikes, &st.JournalLikes, &st.Coordinates, &st.Journals, &st.Comments}
	var longest *[]string
	for _, l := range lists {
		if longest == nil || len(*l) > len(*longest) {
			longest = l
		}
	}
	if len(st.Votes) > len(*longest) {
		st.Votes = st.Votes[1:]
		return true
	}
	if len(*longest) > 0 {
		*longest = (*longest)[1:]
		return true
	}
	for id := range st.Copies {
		delete(st.Copies, id)
		return true
	}
	return false
}

func uploadKey(category model.Category, day time.Time) string {
	return string(category) + ":" + day.Format("20060102")
}

// UploadsToday compte les posts créés en invité aujourd'hui dans la catégorie
func (st *State) UploadsToday(category model.Category, now time.Time) int {
	return st.Uploads[uploadKey(category, now)]
}

// RecordUpload note un post invité pour la limite quotidienne
func (st *State) RecordUpload(category model.Category, now time.Time) {
	if st.Uploads == nil {
		st.Uploads = make(map[string]int)
	}
	st.Uploads[uploadKey(category, now)]++
}

// pruneUploads ne garde que les compteurs d'aujourd'hui et d'hier
func (st *State) pruneUploads(now time.Time) {
	today := now.Format("20060102")
	yesterday := now.AddDate(0, 0, -1).Format("20060102")
	for key := range st.Uploads {
		day := key[strings.LastIndexByte(key, ':')+1:]
		if day != today && day != yesterday {
			delete(st.Uploads, key)
		}
	}
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

func remove(list []string, id string) []string {
	out := list[:0]
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// toggle ajoute ou retire id. Retourne true si id est maintenant présent.
func toggle(list *[]string, id string) bool {
	if contains(*list, id) {
		*list = remove(*list, id)
		return false
	}
	*list = append(*list, id)
	return true
}

func (st *State) ToggleLike(coordinateID string) bool     { return toggle(&st.Likes, coordinateID) }
func (st *State) ToggleCommentLike(commentID string) bool { return toggle(&st.CommentLikes, commentID) }
func (st *State) ToggleJournalLike(journalID string) bool { return toggle(&st.JournalLikes, journalID) }

func (st *State) Liked(coordinateID string) bool     { return contains(st.Likes, coordinateID) }
func (st *State) JournalLiked(journalID string) bool { return contains(st.JournalLikes, journalID) }

// Own* mémorisent les contenus créés en invité (affichage des boutons d'édition)
func (st *State) OwnCoordinate(id string) { st.Coordinates = append(remove(st.Coordinates, id), id) }
func (st *State) OwnJournal(id string)    { st.Journals = append(remove(st.Journals, id), id) }
func (st *State) OwnComment(id string)    { st.Comments = append(remove(st.Comments, id), id) }

func (st *State) OwnsCoordinate(id string) bool { return contains(st.Coordinates, id) }
func (st *State) OwnsJournal(id string) bool    { return contains(st.Journals, id) }

// Vote retourne le vote courant sur une coordonnée
func (st *State) Vote(coordinateID string) (model.FeedbackType, bool) {
	for _, v := range st.Votes {
		if v.ID == coordinateID {
			return v.Type, true
		}
	}
	return "", false
}

// SetVote remplace le vote, ou l'efface si t est vide
func (st *State) SetVote(coordinateID string, t model.FeedbackType) {
	out := st.Votes[:0]
	for _, v := range st.Votes {
		if v.ID != coordinateID {
			out = append(out, v)
		}
	}
	st.Votes = out
	if t != "" {
		st.Votes = append(st.Votes, Vote{ID: coordinateID, Type: t})
	}
}
