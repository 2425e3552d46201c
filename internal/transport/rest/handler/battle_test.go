package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vocabbattle/internal/cache"
	"vocabbattle/internal/model"
	"vocabbattle/internal/transport/rest/middleware"
)

type MockRoomCache struct {
	mock.Mock
}

func (m *MockRoomCache) SetMeta(ctx context.Context, meta *model.RoomMeta) error {
	return m.Called(ctx, meta).Error(0)
}

func (m *MockRoomCache) GetMeta(ctx context.Context, roomID string) (*model.RoomMeta, error) {
	args := m.Called(ctx, roomID)
	meta, _ := args.Get(0).(*model.RoomMeta)
	return meta, args.Error(1)
}

func (m *MockRoomCache) Delete(ctx context.Context, roomID string) error {
	return m.Called(ctx, roomID).Error(0)
}

type MockLeaderboardCache struct {
	mock.Mock
}

func (m *MockLeaderboardCache) AddWin(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockLeaderboardCache) GetTop(ctx context.Context, limit int) ([]cache.WinEntry, error) {
	args := m.Called(ctx, limit)
	entries, _ := args.Get(0).([]cache.WinEntry)
	return entries, args.Error(1)
}

func (m *MockLeaderboardCache) GetRank(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockStatsCache struct {
	mock.Mock
}

func (m *MockStatsCache) Set(ctx context.Context, stats *model.BattleStats) error {
	return m.Called(ctx, stats).Error(0)
}

func (m *MockStatsCache) Get(ctx context.Context) (*model.BattleStats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*model.BattleStats)
	return stats, args.Error(1)
}

func serve(ctx context.Context, h http.HandlerFunc, route, target string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc(route, h)
	req := httptest.NewRequest(http.MethodGet, target, nil).WithContext(ctx)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetRoom(t *testing.T) {
	t.Parallel()

	t.Run("Found", func(t *testing.T) {
		t.Parallel()
		rooms := &MockRoomCache{}
		rooms.On("GetMeta", mock.Anything, "room-1").Return(&model.RoomMeta{
			RoomID:         "room-1",
			MatchID:        "match-1",
			TotalQuestions: 10,
			Status:         model.MatchInProgress,
		}, nil)
		h := NewBattleHandler(rooms, nil, nil)

		w := serve(context.Background(), h.GetRoom, "/rooms/{roomId}", "/rooms/room-1")
		require.Equal(t, http.StatusOK, w.Code)

		var meta model.RoomMeta
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
		assert.Equal(t, "match-1", meta.MatchID)
		assert.Equal(t, 10, meta.TotalQuestions)
	})

	t.Run("Missing", func(t *testing.T) {
		t.Parallel()
		rooms := &MockRoomCache{}
		rooms.On("GetMeta", mock.Anything, "gone").Return(nil, nil)
		h := NewBattleHandler(rooms, nil, nil)

		w := serve(context.Background(), h.GetRoom, "/rooms/{roomId}", "/rooms/gone")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Cache Error", func(t *testing.T) {
		t.Parallel()
		rooms := &MockRoomCache{}
		rooms.On("GetMeta", mock.Anything, "room-1").Return(nil, assert.AnError)
		h := NewBattleHandler(rooms, nil, nil)

		w := serve(context.Background(), h.GetRoom, "/rooms/{roomId}", "/rooms/room-1")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestLeaderboard(t *testing.T) {
	t.Parallel()

	t.Run("Default Limit With Rank", func(t *testing.T) {
		t.Parallel()
		lb := &MockLeaderboardCache{}
		lb.On("GetTop", mock.Anything, 10).Return([]cache.WinEntry{{UserID: "u1", Wins: 4, Rank: 1}}, nil)
		lb.On("GetRank", mock.Anything, "u1").Return(int64(1), nil)
		h := NewBattleHandler(nil, lb, nil)

		ctx := context.WithValue(context.Background(), middleware.UserIDKey, "u1")
		w := serve(ctx, h.Leaderboard, "/leaderboard", "/leaderboard")
		require.Equal(t, http.StatusOK, w.Code)

		var resp LeaderboardResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.MyRank)
		assert.Equal(t, []cache.WinEntry{{UserID: "u1", Wins: 4, Rank: 1}}, resp.Entries)
		lb.AssertExpectations(t)
	})

	t.Run("Limit Is Capped", func(t *testing.T) {
		t.Parallel()
		lb := &MockLeaderboardCache{}
		lb.On("GetTop", mock.Anything, 100).Return([]cache.WinEntry{}, nil)
		h := NewBattleHandler(nil, lb, nil)

		w := serve(context.Background(), h.Leaderboard, "/leaderboard", "/leaderboard?limit=5000")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"entries":[],"myRank":-1}`, w.Body.String())
		lb.AssertExpectations(t)
	})

	t.Run("Bad Limit", func(t *testing.T) {
		t.Parallel()
		h := NewBattleHandler(nil, &MockLeaderboardCache{}, nil)

		w := serve(context.Background(), h.Leaderboard, "/leaderboard", "/leaderboard?limit=abc")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		w = serve(context.Background(), h.Leaderboard, "/leaderboard", "/leaderboard?limit=0")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStats(t *testing.T) {
	t.Parallel()

	t.Run("Published", func(t *testing.T) {
		t.Parallel()
		updated := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		stats := &MockStatsCache{}
		stats.On("Get", mock.Anything).Return(&model.BattleStats{Queued: 3, ActiveRooms: 2, UpdatedAt: updated}, nil)
		h := NewBattleHandler(nil, nil, stats)

		w := serve(context.Background(), h.Stats, "/stats", "/stats")
		require.Equal(t, http.StatusOK, w.Code)

		var got model.BattleStats
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, 3, got.Queued)
		assert.Equal(t, 2, got.ActiveRooms)
		assert.True(t, updated.Equal(got.UpdatedAt))
	})

	t.Run("Not Yet Published", func(t *testing.T) {
		t.Parallel()
		stats := &MockStatsCache{}
		stats.On("Get", mock.Anything).Return(nil, nil)
		h := NewBattleHandler(nil, nil, stats)

		w := serve(context.Background(), h.Stats, "/stats", "/stats")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
