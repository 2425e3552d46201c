package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"vocabbattle/internal/cache"
	"vocabbattle/internal/model"
)

// --- VocabularyRepo ---

type MockVocabularyRepo struct {
	mock.Mock
}

func (m *MockVocabularyRepo) Sample(ctx context.Context, limit int) ([]*model.VocabularyItem, error) {
	args := m.Called(ctx, limit)
	items, _ := args.Get(0).([]*model.VocabularyItem)
	return items, args.Error(1)
}

func (m *MockVocabularyRepo) InsertMany(ctx context.Context, items []*model.VocabularyItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

// --- question builder ---

type stubQuestions struct {
	drafts []model.QuestionDraft
	err    error
}

func (s *stubQuestions) BuildQuestions(ctx context.Context, count int) ([]model.QuestionDraft, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.drafts) > count {
		return s.drafts[:count], nil
	}
	return s.drafts, nil
}

// --- BattleRepo ---

type fakeBattleRepo struct {
	mu sync.Mutex

	createMatchErr     error
	createQuestionsErr error
	recordErr          error
	finalizeErr        error

	// when set, RecordAnswer announces itself on recordStarted and blocks until recordGate closes
	recordStarted chan struct{}
	recordGate    chan struct{}

	matches []string
	answers []*model.BattleAnswer
	results []*model.MatchResult
}

func (r *fakeBattleRepo) CreateMatch(ctx context.Context, userIDs []string, startedAt time.Time) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createMatchErr != nil {
		return "", r.createMatchErr
	}
	id := fmt.Sprintf("match-%d", len(r.matches)+1)
	r.matches = append(r.matches, id)
	return id, nil
}

func (r *fakeBattleRepo) CreateQuestions(ctx context.Context, matchID string, drafts []model.QuestionDraft) ([]*model.BattleQuestion, error) {
	if r.createQuestionsErr != nil {
		return nil, r.createQuestionsErr
	}
	out := make([]*model.BattleQuestion, len(drafts))
	for i, d := range drafts {
		out[i] = &model.BattleQuestion{
			ID:            fmt.Sprintf("q-%d", d.Position),
			SourceItemID:  d.SourceItemID,
			QuestionText:  d.QuestionText,
			Position:      d.Position,
			Options:       d.Options,
			CorrectOption: d.CorrectOption,
		}
	}
	return out, nil
}

func (r *fakeBattleRepo) RecordAnswer(ctx context.Context, answer *model.BattleAnswer) error {
	if r.recordStarted != nil {
		r.recordStarted <- struct{}{}
	}
	if r.recordGate != nil {
		<-r.recordGate
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recordErr != nil {
		return r.recordErr
	}
	r.answers = append(r.answers, answer)
	return nil
}

// gate makes the next RecordAnswer calls block until the returned release is called
func (r *fakeBattleRepo) gate() (started chan struct{}, release func()) {
	r.recordStarted = make(chan struct{}, 4)
	r.recordGate = make(chan struct{})
	return r.recordStarted, func() { close(r.recordGate) }
}

func (r *fakeBattleRepo) FinalizeMatch(ctx context.Context, result *model.MatchResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
	return r.finalizeErr
}

// --- Broadcaster ---

type sentMessage struct {
	conn    string
	typ     string
	payload interface{}
}

type fakeBroadcaster struct {
	mu      sync.Mutex
	sent    []sentMessage
	offline map[string]bool
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{offline: make(map[string]bool)}
}

func (b *fakeBroadcaster) SendToConnection(connectionID string, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, sentMessage{conn: connectionID, typ: msgType, payload: payload})
}

func (b *fakeBroadcaster) IsConnected(connectionID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.offline[connectionID]
}

// of returns the payloads of every msgType message sent to conn, oldest first
func (b *fakeBroadcaster) of(conn, msgType string) []interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []interface{}
	for _, m := range b.sent {
		if m.conn == conn && m.typ == msgType {
			out = append(out, m.payload)
		}
	}
	return out
}

// types lists the message types sent to conn, oldest first
func (b *fakeBroadcaster) types(conn string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, m := range b.sent {
		if m.conn == conn {
			out = append(out, m.typ)
		}
	}
	return out
}

func (b *fakeBroadcaster) errors(conn string) []string {
	var out []string
	for _, p := range b.of(conn, model.EventError) {
		out = append(out, p.(model.ErrorEvent).Message)
	}
	return out
}

func (b *fakeBroadcaster) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = nil
}

// --- Scheduler ---

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped
	t.stopped = true
	return active
}

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// fire runs the i-th armed callback, stopped or not, the way a late timer would
func (s *fakeScheduler) fire(i int) {
	s.mu.Lock()
	t := s.timers[i]
	s.mu.Unlock()
	t.f()
}

func (s *fakeScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// --- caches ---

type fakeRoomCache struct {
	mu      sync.Mutex
	metas   map[string]*model.RoomMeta
	deleted []string
}

func newFakeRoomCache() *fakeRoomCache {
	return &fakeRoomCache{metas: make(map[string]*model.RoomMeta)}
}

func (c *fakeRoomCache) SetMeta(ctx context.Context, meta *model.RoomMeta) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metas[meta.RoomID] = meta
	return nil
}

func (c *fakeRoomCache) GetMeta(ctx context.Context, roomID string) (*model.RoomMeta, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metas[roomID], nil
}

func (c *fakeRoomCache) Delete(ctx context.Context, roomID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.metas, roomID)
	c.deleted = append(c.deleted, roomID)
	return nil
}

type MockLeaderboardCache struct {
	mock.Mock
}

func (m *MockLeaderboardCache) AddWin(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
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
