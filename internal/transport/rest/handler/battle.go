package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"vocabbattle/internal/cache"
	"vocabbattle/internal/logger"
	"vocabbattle/internal/transport/rest/middleware"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// BattleHandler serves read-only views of battle state
type BattleHandler struct {
	rooms       cache.RoomCache
	leaderboard cache.LeaderboardCache
	stats       cache.StatsCache
}

// NewBattleHandler creates a new battle handler
func NewBattleHandler(rooms cache.RoomCache, leaderboard cache.LeaderboardCache, stats cache.StatsCache) *BattleHandler {
	return &BattleHandler{
		rooms:       rooms,
		leaderboard: leaderboard,
		stats:       stats,
	}
}

// LeaderboardResponse is the body of GET /v1/battles/leaderboard
type LeaderboardResponse struct {
	Entries []cache.WinEntry `json:"entries"`
	MyRank  int64            `json:"myRank"`
}

// GetRoom handles GET /v1/battles/rooms/{roomId}
func (h *BattleHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]

	meta, err := h.rooms.GetMeta(r.Context(), roomID)
	if err != nil {
		logger.Criticalf("[REST] get room %s: %v", roomID, err)
		writeError(w, http.StatusInternalServerError, "failed to load room")
		return
	}
	if meta == nil {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	writeJSON(w, http.StatusOK, meta)
}

// Leaderboard handles GET /v1/battles/leaderboard
func (h *BattleHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxLeaderboardLimit)
	}

	entries, err := h.leaderboard.GetTop(r.Context(), limit)
	if err != nil {
		logger.Criticalf("[REST] leaderboard: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}

	resp := LeaderboardResponse{Entries: entries, MyRank: -1}
	if userID := middleware.GetUserID(r.Context()); userID != "" {
		if rank, err := h.leaderboard.GetRank(r.Context(), userID); err == nil {
			resp.MyRank = rank
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Stats handles GET /v1/battles/stats
func (h *BattleHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Get(r.Context())
	if err != nil {
		logger.Criticalf("[REST] stats: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	if stats == nil {
		writeError(w, http.StatusNotFound, "stats not published yet")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
