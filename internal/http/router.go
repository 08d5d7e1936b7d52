package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Auth         *AuthHandler
	Profile      *ProfileHandler
	Roommates    *RoommateHandler
	Reservations *ReservationHandler
	Admin        *AdminHandler
	Middleware   []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Auth != nil {
		mux.HandleFunc("/signup", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.SignUp(w, r)
		})
		mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Login(w, r)
		})
		mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Logout(w, r)
		})
	}

	if cfg.Profile != nil {
		mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Profile.Get(w, r)
		})
		mux.HandleFunc("/profile/preferences", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut {
				methodNotAllowed(w, http.MethodPut)
				return
			}
			cfg.Profile.UpdatePreferences(w, r)
		})
	}

	if cfg.Roommates != nil {
		mux.HandleFunc("/roommates/candidates", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Roommates.ListCandidates(w, r)
		})
		mux.HandleFunc("/roommates/requests", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Roommates.ListRequests(w, r)
			case http.MethodPost:
				cfg.Roommates.SendRequest(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/roommates/requests/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/roommates/requests/")
			if rest == "" {
				http.NotFound(w, r)
				return
			}
			id, action, _ := strings.Cut(rest, "/")
			switch {
			case action == "accept" && r.Method == http.MethodPost:
				cfg.Roommates.AcceptRequest(w, r, id)
			case action == "decline" && r.Method == http.MethodPost:
				cfg.Roommates.DeclineRequest(w, r, id)
			case action == "" && r.Method == http.MethodDelete:
				cfg.Roommates.CancelRequest(w, r, id)
			case action == "accept" || action == "decline":
				methodNotAllowed(w, http.MethodPost)
			case action == "":
				methodNotAllowed(w, http.MethodDelete)
			default:
				http.NotFound(w, r)
			}
		})
		mux.HandleFunc("/roommates/connections/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/roommates/connections/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Roommates.RemoveConnection(w, r, id)
		})
	}

	if cfg.Reservations != nil {
		mux.HandleFunc("/dorms", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Reservations.ListDorms(w, r)
		})
		mux.HandleFunc("/rooms", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Reservations.ListRooms(w, r)
		})
		mux.HandleFunc("/reservation", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				cfg.Reservations.SelectRoom(w, r)
			case http.MethodDelete:
				cfg.Reservations.CancelReservation(w, r)
			default:
				methodNotAllowed(w, http.MethodPost, http.MethodDelete)
			}
		})
	}

	if cfg.Admin != nil {
		mux.HandleFunc("/admin/dorms", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Admin.CreateDorm(w, r)
		})
		mux.HandleFunc("/admin/rooms", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Admin.CreateRoom(w, r)
		})
		mux.HandleFunc("/admin/dorms/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/admin/dorms/")
			if dormID, ok := strings.CutSuffix(rest, "/rooms"); ok && dormID != "" && !strings.Contains(dormID, "/") {
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Admin.ListRooms(w, r, dormID)
				return
			}
			dormID, rest, _ := strings.Cut(rest, "/rooms/")
			if dormID == "" || rest == "" {
				http.NotFound(w, r)
				return
			}
			roomID, action, _ := strings.Cut(rest, "/")
			switch {
			case action == "" && r.Method == http.MethodPut:
				cfg.Admin.UpdateRoom(w, r, dormID, roomID)
			case action == "vacate" && r.Method == http.MethodPost:
				cfg.Admin.VacateRoom(w, r, dormID, roomID)
			case action == "":
				methodNotAllowed(w, http.MethodPut)
			case action == "vacate":
				methodNotAllowed(w, http.MethodPost)
			default:
				http.NotFound(w, r)
			}
		})
		mux.HandleFunc("/admin/timeslots", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Admin.AssignTimeSlot(w, r)
		})
		mux.HandleFunc("/admin/warnings", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Admin.ListWarnings(w, r)
		})
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}
