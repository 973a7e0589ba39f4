package handlers

import (
	"encoding/json"
	"net/http"
)

// ListRoomsHandler returns the joinable-room list as JSON. The same data is
// pushed over the socket as room:list; this endpoint exists for the lobby
// page's initial render.
func ListRoomsHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"rooms": gs.Rooms.ListJoinable(),
		})
	}
}

// HealthzHandler reports liveness.
func HealthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
