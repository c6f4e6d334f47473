package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"worldvault/internal/vault/session"
)

type stateResponse struct {
	WorldName     string `json:"world_name"`
	Seed          int64  `json:"seed"`
	FirstGen      bool   `json:"first_generation"`
	Chunks        int    `json:"chunks"`
	OccupiedCells int    `json:"occupied_cells"`
	ActiveProfile string `json:"active_profile,omitempty"`
	LastSavedAt   string `json:"last_saved_at,omitempty"`
}

type profilesResponse struct {
	Profiles []profileEntry `json:"profiles"`
}

type profileEntry struct {
	ID        string `json:"id"`
	LastSaved string `json:"last_saved,omitempty"`
}

func registerAdminRoutes(mux *http.ServeMux, sess *session.Session, logger *log.Logger) {
	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logger.Printf("admin: encode response: %v", err)
		}
	}

	mux.HandleFunc("/admin/v1/state", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		wld := sess.World()
		resp := stateResponse{
			WorldName:     wld.Name,
			Seed:          wld.Seed,
			FirstGen:      wld.FirstGeneration,
			Chunks:        wld.Chunks.Len(),
			OccupiedCells: wld.Grid.Len(),
			ActiveProfile: sess.Registry.ActiveProfile(),
		}
		if !wld.LastSavedAt.IsZero() {
			resp.LastSavedAt = wld.LastSavedAt.UTC().Format(time.RFC3339Nano)
		}
		writeJSON(w, http.StatusOK, resp)
	})

	mux.HandleFunc("/admin/v1/profiles", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		infos, err := sess.ListProfiles()
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		resp := profilesResponse{Profiles: make([]profileEntry, 0, len(infos))}
		for _, p := range infos {
			e := profileEntry{ID: p.ID}
			if !p.LastSaved.IsZero() {
				e.LastSaved = p.LastSaved.UTC().Format(time.RFC3339Nano)
			}
			resp.Profiles = append(resp.Profiles, e)
		}
		writeJSON(w, http.StatusOK, resp)
	})

	mux.HandleFunc("/admin/v1/mirror", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if sess.Mirror == nil {
			writeJSON(w, http.StatusOK, map[string]any{"enabled": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"enabled": true,
			"stats":   sess.Mirror.Stats(),
		})
	})
}
