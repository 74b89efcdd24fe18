package guest

import "time"

// CopyWindow est le délai minimal entre deux copies comptées d'une même coordonnée
const CopyWindow = 30 * time.Minute

// Milestones déclenchent une notification à l'auteur
var Milestones = []int{5, 10, 50, 100, 500, 1000}

// IsMilestone indique si count est un palier
func IsMilestone(count int) bool {
	for _, m := range Milestones {
		if m == count {
			return true
		}
	}
	return false
}

// AllowCopy indique si une copie doit être comptée et, si oui, la note
func (st *State) AllowCopy(coordinateID string, now time.Time) bool {
	if last, ok := st.Copies[coordinateID]; ok && now.Sub(time.Unix(last, 0)) < CopyWindow {
		return false
	}
	if st.Copies == nil {
		st.Copies = make(map[string]int64)
	}
	st.Copies[coordinateID] = now.Unix()
	return true
}

func (st *State) pruneCopies(now time.Time, window time.Duration) {
	for id, last := range st.Copies {
		if now.Sub(time.Unix(last, 0)) >= window {
			delete(st.Copies, id)
		}
	}
}
