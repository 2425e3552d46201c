package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"vocabbattle/internal/cache"
	"vocabbattle/internal/config"
	"vocabbattle/internal/logger"
	"vocabbattle/internal/model"
	"vocabbattle/internal/repository"
)

type questionBuilder interface {
	BuildQuestions(ctx context.Context, count int) ([]model.QuestionDraft, error)
}

// BattleService owns the matchmaking queue and every live room.
// The queue, the room map and the connection/user indexes share one mutex; every room
// transition runs under it. Persistence and cache I/O always run outside it.
type BattleService struct {
	cfg         config.BattleConfig
	questions   questionBuilder
	battles     repository.BattleRepo
	broadcaster Broadcaster
	roomCache   cache.RoomCache
	leaderboard cache.LeaderboardCache
	scheduler   Scheduler
	now         func() time.Time
	newRoomID   func() string

	mu         sync.Mutex
	queue      *MatchmakingQueue
	rooms      map[string]*battleRoom
	roomByConn map[string]string
	roomByUser map[string]string
	starting   map[string]struct{} // paired users whose room is still being set up
}

// finalization carries a finished room out of the critical section. The result is built
// only after the room's answer writes have drained.
type finalization struct {
	room         *battleRoom
	status       model.MatchStatus
	forcedWinner string
	departed     []string
	endedAt      time.Time
}

// NewBattleService creates the battle engine
func NewBattleService(cfg config.BattleConfig, questions questionBuilder, battles repository.BattleRepo) *BattleService {
	s := &BattleService{
		cfg:        cfg,
		questions:  questions,
		battles:    battles,
		newRoomID:  func() string { return "battle_" + uuid.NewString() },
		queue:      NewMatchmakingQueue(),
		rooms:      make(map[string]*battleRoom),
		roomByConn: make(map[string]string),
		roomByUser: make(map[string]string),
		starting:   make(map[string]struct{}),
	}
	s.SetClock(clockwork.NewRealClock())
	return s
}

// SetClock replaces the clock used for timestamps and question deadlines
func (s *BattleService) SetClock(clock clockwork.Clock) {
	s.scheduler = clockScheduler{clock: clock}
	s.now = clock.Now
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *BattleService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetCaches sets the optional Redis mirrors
func (s *BattleService) SetCaches(rooms cache.RoomCache, leaderboard cache.LeaderboardCache) {
	s.roomCache = rooms
	s.leaderboard = leaderboard
}

// Connect greets a freshly authenticated connection
func (s *BattleService) Connect(sess *model.Session) {
	logger.Infof("[Battle] user %s connected (conn %s)", sess.UserID, sess.ConnectionID)
	s.send(sess.ConnectionID, model.EventReady, model.ReadyEvent{UserID: sess.UserID})
}

// JoinQueue enqueues the player and pairs whoever is waiting
func (s *BattleService) JoinQueue(ctx context.Context, sess *model.Session) {
	if sess == nil || sess.UserID == "" {
		return
	}

	s.mu.Lock()
	if s.busyLocked(sess) {
		s.mu.Unlock()
		s.sendError(sess.ConnectionID, ErrAlreadyInMatch)
		return
	}
	requeued := s.queue.Contains(sess.UserID)
	entry := s.queue.Join(model.QueuedPlayer{
		UserID:       sess.UserID,
		DisplayName:  sess.DisplayName,
		ConnectionID: sess.ConnectionID,
	}, s.now())
	s.mu.Unlock()

	if requeued {
		logger.Infof("[Battle] user %s rejoined the queue", sess.UserID)
	} else {
		logger.Infof("[Battle] user %s joined the queue", sess.UserID)
	}
	s.send(sess.ConnectionID, model.EventQueueJoined, model.QueueJoinedEvent{QueuedAt: entry.JoinedAt})

	s.TryPairAll(ctx)
}

// LeaveQueue removes the player from the queue
func (s *BattleService) LeaveQueue(sess *model.Session) {
	if sess == nil || sess.UserID == "" {
		return
	}

	s.mu.Lock()
	left := s.queue.Leave(sess.UserID)
	s.mu.Unlock()

	if !left {
		s.sendError(sess.ConnectionID, ErrNotQueued)
		return
	}
	logger.Infof("[Battle] user %s left the queue", sess.UserID)
	s.send(sess.ConnectionID, model.EventQueueLeft, model.QueueLeftEvent{LeftAt: s.now()})
}

// TryPairAll pops waiting players two at a time, oldest first, and starts a match per pair.
// Both entries leave the queue inside the lock, before any I/O.
func (s *BattleService) TryPairAll(ctx context.Context) {
	var pairs [][2]model.QueuedPlayer

	s.mu.Lock()
	for {
		a, b, ok := s.queue.PopPair()
		if !ok {
			break
		}
		s.starting[a.UserID] = struct{}{}
		s.starting[b.UserID] = struct{}{}
		pairs = append(pairs, [2]model.QueuedPlayer{a, b})
	}
	s.mu.Unlock()

	for _, p := range pairs {
		s.startMatch(ctx, p[0], p[1])
	}
}

func (s *BattleService) startMatch(ctx context.Context, a, b model.QueuedPlayer) {
	logger.Infof("[Battle] pairing %s vs %s", a.UserID, b.UserID)

	abort := func(err error) {
		s.mu.Lock()
		delete(s.starting, a.UserID)
		delete(s.starting, b.UserID)
		s.mu.Unlock()
		s.sendError(a.ConnectionID, err)
		s.sendError(b.ConnectionID, err)
	}

	pctx, cancel := s.persistCtx(ctx)
	defer cancel()

	drafts, err := s.questions.BuildQuestions(pctx, s.cfg.QuestionsPerMatch)
	if err != nil {
		logger.Warningf("[Battle] question build failed for %s vs %s: %v", a.UserID, b.UserID, err)
		if errors.Is(err, ErrNotEnoughVocabulary) {
			abort(ErrNotEnoughVocabulary)
		} else {
			abort(ErrCannotCreateMatch)
		}
		return
	}

	startedAt := s.now()
	matchID, err := s.battles.CreateMatch(pctx, []string{a.UserID, b.UserID}, startedAt)
	if err != nil {
		logger.Criticalf("[Battle] create match failed: %v", err)
		abort(ErrCannotCreateMatch)
		return
	}

	questions, err := s.battles.CreateQuestions(pctx, matchID, drafts)
	if err != nil {
		logger.Criticalf("[Battle] persist questions for match %s failed: %v", matchID, err)
		s.discardMatch(pctx, matchID, a.UserID, b.UserID)
		abort(ErrCannotCreateMatch)
		return
	}

	room := newBattleRoom(s.newRoomID(), matchID, a, b, questions, startedAt)

	s.mu.Lock()
	delete(s.starting, a.UserID)
	delete(s.starting, b.UserID)
	s.rooms[room.id] = room
	for _, p := range room.players {
		s.roomByConn[p.ConnectionID] = room.id
		s.roomByUser[p.UserID] = room.id
	}

	// A player may have dropped while the match was being set up.
	aUp := s.broadcaster.IsConnected(a.ConnectionID)
	bUp := s.broadcaster.IsConnected(b.ConnectionID)
	if !aUp || !bUp {
		var forced string
		var departed []string
		switch {
		case aUp:
			forced, departed = a.UserID, []string{b.UserID}
		case bUp:
			forced, departed = b.UserID, []string{a.UserID}
		default:
			departed = []string{a.UserID, b.UserID}
		}
		logger.Room(room.id).Warn().Bool("aConnected", aUp).Bool("bConnected", bUp).Msg("player unreachable at match start")
		fin := s.finishLocked(room, model.MatchCancelled, forced, departed...)
		s.mu.Unlock()
		s.complete(ctx, fin)
		return
	}

	s.sendRoom(room, model.EventMatchFound, matchFoundEvent(room, s.cfg.QuestionTimeLimit))
	s.emitQuestionLocked(room)
	meta := roomMeta(room)
	s.mu.Unlock()

	logger.Room(room.id).Info().Str("matchId", matchID).Int("questions", len(questions)).Msg("match started")

	if s.roomCache != nil {
		if err := s.roomCache.SetMeta(pctx, meta); err != nil {
			logger.Warningf("[Battle] cache room %s: %v", room.id, err)
		}
	}
}

// SubmitAnswer validates, persists and scores one answer, then advances the room if the
// question is over. The answered-set entry is taken before the write so a second message
// for the same question is rejected while the first is still in flight.
func (s *BattleService) SubmitAnswer(ctx context.Context, sess *model.Session, req model.AnswerRequest) {
	if sess == nil || sess.UserID == "" {
		return
	}

	s.mu.Lock()
	room, question, selected, err := s.acceptAnswerLocked(sess, req)
	if err != nil {
		s.mu.Unlock()
		s.sendError(sess.ConnectionID, err)
		return
	}
	index := room.index
	room.answered[sess.UserID] = struct{}{}
	room.writes.Add(1)
	s.mu.Unlock()

	fin := s.recordAnswer(ctx, sess, room, question, index, selected)
	room.writes.Done()

	s.complete(ctx, fin)
}

// recordAnswer persists an accepted answer and applies its outcome. A room finished while the
// write was in flight still counts the answer: its finalization waits for this write.
func (s *BattleService) recordAnswer(ctx context.Context, sess *model.Session, room *battleRoom, question *model.BattleQuestion, index int, selected string) *finalization {
	isCorrect := selected == question.CorrectOption
	delta := 0
	if isCorrect {
		delta = 1
	}

	pctx, cancel := s.persistCtx(ctx)
	defer cancel()

	err := s.battles.RecordAnswer(pctx, &model.BattleAnswer{
		MatchID:        room.matchID,
		QuestionID:     question.ID,
		UserID:         sess.UserID,
		SelectedOption: selected,
		IsCorrect:      isCorrect,
		ScoreDelta:     delta,
		AnsweredAt:     s.now(),
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateAnswer):
			s.sendError(sess.ConnectionID, ErrAlreadyAnswered)
		case errors.Is(err, repository.ErrMatchClosed):
			s.sendError(sess.ConnectionID, ErrMatchEnded)
		default:
			// Nothing was scored; let the client retry this question.
			if s.liveLocked(room) && room.index == index {
				delete(room.answered, sess.UserID)
			}
			logger.Criticalf("[Battle] record answer of %s in room %s: %v", sess.UserID, room.id, err)
			s.sendError(sess.ConnectionID, ErrCannotSaveAnswer)
		}
		return nil
	}

	room.scores[sess.UserID] += delta
	s.send(sess.ConnectionID, model.EventAnswerResult, model.AnswerResultEvent{
		QuestionID:     question.ID,
		SelectedOption: selected,
		IsCorrect:      isCorrect,
		ScoreDelta:     delta,
		Score:          room.scores[sess.UserID],
	})

	if !s.liveLocked(room) {
		return nil
	}
	s.sendRoom(room, model.EventScoreUpdate, scoreUpdateEvent(room))
	if room.index == index && (isCorrect || room.everyoneAnswered()) {
		return s.advanceLocked(room, index)
	}
	return nil
}

func (s *BattleService) acceptAnswerLocked(sess *model.Session, req model.AnswerRequest) (*battleRoom, *model.BattleQuestion, string, error) {
	roomID, ok := s.roomByConn[sess.ConnectionID]
	if !ok || roomID != req.RoomID {
		return nil, nil, "", ErrInvalidRoom
	}

	room := s.rooms[roomID]
	if room == nil || room.status != model.MatchInProgress || !room.hasPlayer(sess.UserID) {
		return nil, nil, "", ErrMatchEnded
	}

	question := room.current()
	if question == nil || question.ID != req.QuestionID {
		return nil, nil, "", ErrInvalidQuestion
	}

	if _, done := room.answered[sess.UserID]; done {
		return nil, nil, "", ErrAlreadyAnswered
	}

	selected := normalizeOption(req.SelectedOption)
	if !model.IsOptionLabel(selected) {
		return nil, nil, "", ErrInvalidOption
	}

	return room, question, selected, nil
}

// Disconnect drops the connection from the queue and forfeits its live match
func (s *BattleService) Disconnect(ctx context.Context, sess *model.Session) {
	if sess == nil || sess.UserID == "" {
		return
	}

	s.mu.Lock()
	s.queue.LeaveConnection(sess.UserID, sess.ConnectionID)

	roomID, ok := s.roomByConn[sess.ConnectionID]
	if !ok {
		s.mu.Unlock()
		logger.Infof("[Battle] user %s disconnected (conn %s)", sess.UserID, sess.ConnectionID)
		return
	}

	var fin *finalization
	room := s.rooms[roomID]
	if room != nil && s.liveLocked(room) {
		forced := ""
		if opponent, ok := room.opponentOf(sess.UserID); ok {
			forced = opponent.UserID
			s.send(opponent.ConnectionID, model.EventOpponentLeft, model.OpponentLeftEvent{
				RoomID:  room.id,
				Message: opponentLeftMessage,
			})
		}
		logger.Room(room.id).Info().Str("userId", sess.UserID).Msg("player left mid-match")
		fin = s.finishLocked(room, model.MatchCancelled, forced, sess.UserID)
	}
	s.mu.Unlock()

	s.complete(ctx, fin)
}

func (s *BattleService) onQuestionTimeout(roomID string, index int) {
	s.mu.Lock()
	var fin *finalization
	if room, ok := s.rooms[roomID]; ok {
		if room.index == index && s.liveLocked(room) {
			logger.Debugf("[Battle] room %s question %d timed out", roomID, index+1)
		}
		fin = s.advanceLocked(room, index)
	}
	s.mu.Unlock()

	s.complete(context.Background(), fin)
}

// advanceLocked moves past question `expected`. It is a no-op for a stale caller.
func (s *BattleService) advanceLocked(room *battleRoom, expected int) *finalization {
	if !s.liveLocked(room) || room.index != expected {
		return nil
	}

	room.stopTimer()
	room.index++
	room.answered = make(map[string]struct{})

	if room.index >= len(room.questions) {
		return s.finishLocked(room, model.MatchFinished, "")
	}
	s.emitQuestionLocked(room)
	return nil
}

func (s *BattleService) emitQuestionLocked(room *battleRoom) {
	if room.current() == nil {
		return
	}
	room.stopTimer()
	index := room.index
	roomID := room.id
	room.timer = s.scheduler.AfterFunc(s.cfg.QuestionTimeLimit, func() {
		s.onQuestionTimeout(roomID, index)
	})
	s.sendRoom(room, model.EventQuestion, questionEvent(room, s.cfg.QuestionTimeLimit, s.now()))
}

// finishLocked ends the room, unregisters it and returns the deferred side effects.
// forcedWinner overrides the score comparison; departed players get a left-at time.
func (s *BattleService) finishLocked(room *battleRoom, status model.MatchStatus, forcedWinner string, departed ...string) *finalization {
	if room.status.Terminal() {
		return nil
	}
	room.stopTimer()
	room.status = status

	for _, p := range room.players {
		if s.roomByConn[p.ConnectionID] == room.id {
			delete(s.roomByConn, p.ConnectionID)
		}
		if s.roomByUser[p.UserID] == room.id {
			delete(s.roomByUser, p.UserID)
		}
	}
	delete(s.rooms, room.id)

	return &finalization{
		room:         room,
		status:       status,
		forcedWinner: forcedWinner,
		departed:     departed,
		endedAt:      s.now(),
	}
}

func (s *BattleService) resultLocked(fin *finalization) (*model.MatchResult, model.FinishedEvent) {
	room := fin.room
	winnerID := room.leader()
	if fin.forcedWinner != "" {
		winnerID = &fin.forcedWinner
	}

	result := &model.MatchResult{
		MatchID:  room.matchID,
		Status:   fin.status,
		EndedAt:  fin.endedAt,
		WinnerID: winnerID,
	}
	for _, p := range room.players {
		pr := model.PlayerResult{
			UserID:   p.UserID,
			Score:    room.scores[p.UserID],
			IsWinner: winnerID != nil && *winnerID == p.UserID,
		}
		for _, d := range fin.departed {
			if d == p.UserID {
				leftAt := fin.endedAt
				pr.LeftAt = &leftAt
			}
		}
		result.Players = append(result.Players, pr)
	}

	event := model.FinishedEvent{
		RoomID:      room.id,
		MatchID:     room.matchID,
		Status:      fin.status,
		WinnerID:    winnerID,
		IsDraw:      winnerID == nil,
		Leaderboard: leaderboard(room),
	}
	return result, event
}

// complete persists and announces a finished room. A failed write never blocks the announcement.
// It must not be called while holding a write slot of the same room.
func (s *BattleService) complete(ctx context.Context, fin *finalization) {
	if fin == nil {
		return
	}

	fin.room.writes.Wait()
	s.mu.Lock()
	result, event := s.resultLocked(fin)
	s.mu.Unlock()

	pctx, cancel := s.persistCtx(ctx)
	defer cancel()

	if err := s.battles.FinalizeMatch(pctx, result); err != nil {
		logger.Criticalf("[Battle] finalize match %s: %v", result.MatchID, err)
	}

	s.sendRoom(fin.room, model.EventFinished, event)

	l := logger.Room(fin.room.id)
	l.Info().Str("status", string(result.Status)).Bool("draw", event.IsDraw).Msg("match finished")

	if s.roomCache != nil {
		if err := s.roomCache.Delete(pctx, fin.room.id); err != nil {
			logger.Warningf("[Battle] uncache room %s: %v", fin.room.id, err)
		}
	}
	if s.leaderboard != nil && result.WinnerID != nil {
		if err := s.leaderboard.AddWin(pctx, *result.WinnerID); err != nil {
			logger.Warningf("[Battle] record win for %s: %v", *result.WinnerID, err)
		}
	}
}

// discardMatch closes a match record whose room never came to life
func (s *BattleService) discardMatch(ctx context.Context, matchID string, userIDs ...string) {
	result := &model.MatchResult{
		MatchID: matchID,
		Status:  model.MatchCancelled,
		EndedAt: s.now(),
	}
	for _, id := range userIDs {
		result.Players = append(result.Players, model.PlayerResult{UserID: id})
	}
	if err := s.battles.FinalizeMatch(ctx, result); err != nil {
		logger.Warningf("[Battle] discard match %s: %v", matchID, err)
	}
}

// Snapshot counts waiting players and live rooms
func (s *BattleService) Snapshot() model.BattleStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.BattleStats{
		Queued:      s.queue.Len(),
		Starting:    len(s.starting) / 2,
		ActiveRooms: len(s.rooms),
		UpdatedAt:   s.now(),
	}
}

// Shutdown cancels every live room, scoring them as they stand
func (s *BattleService) Shutdown(ctx context.Context) {
	s.mu.Lock()
	var fins []*finalization
	for _, room := range s.rooms {
		if fin := s.finishLocked(room, model.MatchCancelled, ""); fin != nil {
			fins = append(fins, fin)
		}
	}
	s.mu.Unlock()

	for _, fin := range fins {
		s.complete(ctx, fin)
	}
}

func (s *BattleService) busyLocked(sess *model.Session) bool {
	if _, ok := s.roomByConn[sess.ConnectionID]; ok {
		return true
	}
	if _, ok := s.roomByUser[sess.UserID]; ok {
		return true
	}
	_, ok := s.starting[sess.UserID]
	return ok
}

func (s *BattleService) liveLocked(room *battleRoom) bool {
	return s.rooms[room.id] == room && room.status == model.MatchInProgress
}

func (s *BattleService) persistCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(context.WithoutCancel(ctx), s.cfg.PersistTimeout)
}

func (s *BattleService) send(connectionID, msgType string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.SendToConnection(connectionID, msgType, payload)
	}
}

func (s *BattleService) sendRoom(room *battleRoom, msgType string, payload interface{}) {
	for _, p := range room.players {
		s.send(p.ConnectionID, msgType, payload)
	}
}

func (s *BattleService) sendError(connectionID string, err error) {
	s.send(connectionID, model.EventError, model.ErrorEvent{Message: err.Error()})
}
