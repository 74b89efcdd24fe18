package handler

import (
	"net/http"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/utils"
)

// RootHandler affiche toutes les routes disponibles de l'API
func RootHandler(w http.ResponseWriter, r *http.Request) {
	routes := map[string]interface{}{
		"name":    "Pikmin Diary API",
		"version": "1.0.0",
		"status":  "running",
		"routes": map[string]interface{}{
			"auth": []map[string]string{
				{"method": "POST", "path": "/auth/signup", "description": "Inscription"},
				{"method": "POST", "path": "/auth/login", "description": "Connexion"},
				{"method": "POST", "path": "/auth/logout", "description": "Déconnexion"},
				{"method": "POST", "path": "/auth/password", "description": "Changer le mot de passe"},
			},
			"coordinates": []map[string]string{
				{"method": "GET", "path": "/coordinates", "description": "Liste des posts (params: q, category, region, sort, page)"},
				{"method": "POST", "path": "/coordinates", "description": "Publier un post (membre ou invité)"},
				{"method": "GET", "path": "/coordinates/map", "description": "Marqueurs de la carte"},
				{"method": "GET", "path": "/coordinates/{id}", "description": "Détail d'un post"},
				{"method": "PATCH", "path": "/coordinates/{id}", "description": "Modifier un post"},
				{"method": "DELETE", "path": "/coordinates/{id}", "description": "Supprimer un post"},
				{"method": "POST", "path": "/coordinates/{id}/copy", "description": "Copier les coordonnées"},
				{"method": "POST", "path": "/coordinates/{id}/like", "description": "Aimer / ne plus aimer"},
				{"method": "POST", "path": "/coordinates/{id}/bookmark", "description": "Ajouter / retirer des favoris"},
				{"method": "POST", "path": "/coordinates/{id}/validity", "description": "Signaler la validité (VALID / INVALID)"},
				{"method": "POST", "path": "/coordinates/{id}/report", "description": "Signaler un post"},
				{"method": "GET", "path": "/coordinates/{id}/comments", "description": "Commentaires (params: sort)"},
				{"method": "POST", "path": "/coordinates/{id}/comments", "description": "Commenter ou répondre"},
			},
			"comments": []map[string]string{
				{"method": "PATCH", "path": "/comments/{id}", "description": "Modifier un commentaire"},
				{"method": "DELETE", "path": "/comments/{id}", "description": "Supprimer un commentaire"},
				{"method": "POST", "path": "/comments/{id}/like", "description": "Aimer un commentaire"},
				{"method": "POST", "path": "/comments/{id}/report", "description": "Signaler un commentaire"},
			},
			"farming": []map[string]string{
				{"method": "GET", "path": "/farming/journals", "description": "Journaux de farming"},
				{"method": "POST", "path": "/farming/journals", "description": "Publier un journal"},
				{"method": "GET", "path": "/farming/journals/{id}", "description": "Détail d'un journal"},
				{"method": "PATCH", "path": "/farming/journals/{id}", "description": "Modifier un journal"},
				{"method": "DELETE", "path": "/farming/journals/{id}", "description": "Supprimer un journal"},
				{"method": "POST", "path": "/farming/journals/{id}/like", "description": "Aimer un journal"},
				{"method": "GET", "path": "/farming/journals/{id}/comments", "description": "Commentaires d'un journal"},
				{"method": "POST", "path": "/farming/journals/{id}/comments", "description": "Commenter un journal"},
				{"method": "GET", "path": "/farming/requests", "description": "Demandes de farming (params: status)"},
				{"method": "POST", "path": "/farming/requests", "description": "Créer une demande"},
				{"method": "GET", "path": "/farming/requests/{id}", "description": "Détail d'une demande"},
				{"method": "POST", "path": "/farming/requests/{id}/participate", "description": "Participer"},
				{"method": "POST", "path": "/farming/requests/{id}/complete", "description": "Terminer une demande"},
			},
			"rankings": []map[string]string{
				{"method": "GET", "path": "/rankings", "description": "Classement (params: period=ALL|WEEKLY|MONTHLY)"},
				{"method": "GET", "path": "/rankings/top", "description": "Top 5 de tous les temps"},
				{"method": "GET", "path": "/rankings/users/{userId}", "description": "Classements d'un membre"},
			},
			"me": []map[string]string{
				{"method": "GET", "path": "/me", "description": "Mon profil"},
				{"method": "PATCH", "path": "/me", "description": "Modifier mon profil"},
				{"method": "DELETE", "path": "/me", "description": "Supprimer mon compte"},
				{"method": "PATCH", "path": "/me/settings", "description": "Personnalisation du badge"},
				{"method": "GET", "path": "/me/badge-options", "description": "Options de badge disponibles"},
				{"method": "POST", "path": "/me/profile-image", "description": "Photo de profil"},
				{"method": "GET", "path": "/me/coordinates", "description": "Mes posts"},
				{"method": "GET", "path": "/me/bookmarks", "description": "Mes favoris"},
				{"method": "GET", "path": "/me/comments", "description": "Mes commentaires"},
				{"method": "GET", "path": "/me/farming", "description": "Mes journaux, demandes et participations"},
				{"method": "GET", "path": "/me/suggestions", "description": "Mes suggestions et leurs réponses"},
				{"method": "GET", "path": "/me/notifications", "description": "Mes notifications"},
				{"method": "GET", "path": "/me/notifications/unread-count", "description": "Notifications non lues"},
			},
			"users": []map[string]string{
				{"method": "GET", "path": "/users/{id}", "description": "Profil public"},
			},
			"translations": []map[string]string{
				{"method": "GET", "path": "/translations/{contentType}/{id}/{field}", "description": "Champ traduit (params: lang)"},
			},
			"suggestions": []map[string]string{
				{"method": "POST", "path": "/suggestions", "description": "Écrire aux opérateurs (membre ou invité)"},
				{"method": "GET", "path": "/notices/{location}", "description": "Message d'une page (coordinates_list, landing, farming_list)"},
			},
			"admin": []map[string]string{
				{"method": "GET", "path": "/admin/dashboard", "description": "Statistiques"},
				{"method": "GET", "path": "/admin/coordinates/pending", "description": "Posts en attente"},
				{"method": "POST", "path": "/admin/coordinates/{id}/approve", "description": "Approuver un post"},
				{"method": "POST", "path": "/admin/coordinates/{id}/reject", "description": "Rejeter un post"},
				{"method": "GET", "path": "/admin/reports", "description": "Signalements (params: status)"},
				{"method": "POST", "path": "/admin/reports/{id}", "description": "Traiter un signalement"},
				{"method": "GET", "path": "/admin/settings", "description": "Réglages du site"},
				{"method": "POST", "path": "/admin/rankings/recalculate", "description": "Recalculer les classements"},
				{"method": "GET", "path": "/admin/suggestions", "description": "Suggestions (params: status, category, q, page)"},
				{"method": "GET", "path": "/admin/suggestions/stats", "description": "Statistiques des suggestions"},
				{"method": "GET", "path": "/admin/suggestions/{id}", "description": "Détail d'une suggestion"},
				{"method": "PATCH", "path": "/admin/suggestions/{id}", "description": "Répondre / changer le statut"},
				{"method": "GET", "path": "/admin/notices", "description": "Messages des pages"},
				{"method": "PUT", "path": "/admin/notices/{location}", "description": "Modifier le message d'une page"},
				{"method": "POST", "path": "/admin/coordinates/batch-delete", "description": "Suppression groupée (superuser)"},
				{"method": "GET", "path": "/admin/users", "description": "Membres (superuser)"},
				{"method": "POST", "path": "/admin/users/{id}/toggle-staff", "description": "Statut staff (superuser)"},
				{"method": "POST", "path": "/admin/users/{id}/perks", "description": "Items exclusifs (superuser)"},
				{"method": "GET", "path": "/admin/bans", "description": "Bans (superuser)"},
				{"method": "POST", "path": "/admin/bans", "description": "Bannir (superuser)"},
				{"method": "DELETE", "path": "/admin/bans/{id}", "description": "Lever un ban (superuser)"},
				{"method": "PUT", "path": "/admin/settings", "description": "Modifier les réglages (superuser)"},
				{"method": "DELETE", "path": "/admin/suggestions/{id}", "description": "Supprimer une suggestion (superuser)"},
			},
			"health": []map[string]string{
				{"method": "GET", "path": "/health", "description": "Health check de l'API"},
				{"method": "GET", "path": "/metrics", "description": "Métriques Prometheus"},
			},
		},
	}

	utils.Success(w, routes)
}
