// Package session runs the orchestration loop that owns all room state.
// Every inbound socket event and every fired timer is a message processed
// to completion before the next one, so no two mutations of the same room
// ever interleave and no locks are needed.
package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/blackout-game/blackout-backend/internal/game"
	"github.com/blackout-game/blackout-backend/internal/prompt"
	"github.com/blackout-game/blackout-backend/internal/registry"
	"github.com/blackout-game/blackout-backend/internal/view"
)

type Config struct {
	MinPlayers    int
	MinRounds     int
	MaxRounds     int
	RoundEndDelay time.Duration // scoreboard display before the next round
	SweepInterval time.Duration
}

type Session struct {
	inbox    chan Msg
	reg      *registry.Registry
	selector *prompt.Selector
	cfg      Config
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func New(parent context.Context, reg *registry.Registry, selector *prompt.Selector, cfg Config, log *zap.Logger) *Session {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		inbox:    make(chan Msg, 64),
		reg:      reg,
		selector: selector,
		cfg:      cfg,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
	go s.loop()
	return s
}

func (s *Session) Inbox() chan<- Msg { return s.inbox }

// MinPlayers reports the configured start threshold so the transport can
// word its rejection message.
func (s *Session) MinPlayers() int { return s.cfg.MinPlayers }

func (s *Session) loop() {
	sweep := time.NewTicker(s.cfg.SweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return

		case <-sweep.C:
			s.reg.Sweep()

		case code := <-s.reg.Expired():
			s.reclaim(code)

		case m := <-s.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				s.handleCreate(msg)
			case JoinRoom:
				s.handleJoin(msg)
			case ResumeSession:
				s.handleResumeSession(msg)
			case ResumeToken:
				s.handleResumeToken(msg)
			case Leave:
				s.handleLeave(msg)
			case Disconnect:
				s.handleDisconnect(msg)
			case SetMaxRounds:
				s.handleSetMaxRounds(msg)
			case SetSettings:
				s.handleSetSettings(msg)
			case StartGame:
				s.handleStartGame(msg)
			case RevealPrompt:
				s.handleReveal(msg)
			case RerollPrompt:
				s.handleReroll(msg)
			case PickWinner:
				s.handlePickWinner(msg)
			case SkipRound:
				s.handleSkip(msg)
			case RestartGame:
				s.handleRestart(msg)
			case RequestState:
				s.handleRequestState(msg)
			case Inspect:
				s.handleInspect(msg)
			case advanceTimer:
				s.handleAdvanceTimer(msg.Code)
			case Shutdown:
				s.cancel()
				return
			}
		}
	}
}

func (s *Session) handleCreate(msg CreateRoom) {
	name, err := game.NormalizeName(msg.Name)
	if err != nil {
		msg.Reply <- JoinResult{Err: err}
		return
	}

	room, host := s.reg.CreateRoom(name)
	host.Outbox = msg.Outbox
	s.log.Info("room created", zap.String("room", room.Code), zap.String("player", host.ID))

	s.broadcast(room)
	msg.Reply <- JoinResult{RoomCode: room.Code, PlayerID: host.ID, ResumeSecret: host.ResumeSecret}
}

func (s *Session) handleJoin(msg JoinRoom) {
	name, err := game.NormalizeName(msg.Name)
	if err != nil {
		msg.Reply <- JoinResult{Err: err}
		return
	}
	room := s.reg.Get(msg.Code)
	if room == nil {
		msg.Reply <- JoinResult{Err: game.ErrRoomNotFound}
		return
	}
	if room.NameTaken(name) {
		msg.Reply <- JoinResult{Err: game.ErrNameTaken}
		return
	}

	p := game.NewPlayer(name, false)
	p.Outbox = msg.Outbox
	room.AddPlayer(p)
	s.reg.CancelReclaim(room.Code)
	s.log.Info("player joined", zap.String("room", room.Code), zap.String("player", p.ID))

	s.broadcast(room)
	msg.Reply <- JoinResult{RoomCode: room.Code, PlayerID: p.ID, ResumeSecret: p.ResumeSecret}
}

func (s *Session) handleResumeSession(msg ResumeSession) {
	if msg.SessionID == "" || msg.Name == "" {
		msg.Reply <- JoinResult{Err: game.ErrMissingSession}
		return
	}

	if code := s.reg.SessionRoom(msg.SessionID); code != "" {
		if room := s.reg.Get(code); room != nil {
			if p := room.Player(msg.PlayerID); p != nil {
				s.attach(room, p, msg.Outbox)
				s.broadcast(room)
				msg.Reply <- JoinResult{RoomCode: room.Code, PlayerID: p.ID, ResumeSecret: p.ResumeSecret}
				return
			}
		}
	}

	// Unknown session: open a fresh room for the caller.
	name, err := game.NormalizeName(msg.Name)
	if err != nil {
		msg.Reply <- JoinResult{Err: err}
		return
	}
	room, host := s.reg.CreateRoom(name)
	host.Outbox = msg.Outbox
	s.reg.MapSession(msg.SessionID, room.Code)
	s.log.Info("room created via session", zap.String("room", room.Code), zap.String("player", host.ID))

	s.broadcast(room)
	msg.Reply <- JoinResult{RoomCode: room.Code, PlayerID: host.ID, ResumeSecret: host.ResumeSecret}
}

func (s *Session) handleResumeToken(msg ResumeToken) {
	room := s.reg.Get(msg.Code)
	if room == nil {
		msg.Reply <- JoinResult{Err: game.ErrRoomNotFound}
		return
	}
	p := room.Player(msg.PlayerID)
	if p == nil {
		msg.Reply <- JoinResult{Err: game.ErrPlayerNotFound}
		return
	}
	if p.ResumeSecret != msg.Secret {
		msg.Reply <- JoinResult{Err: game.ErrBadResumeSecret}
		return
	}

	s.attach(room, p, msg.Outbox)
	s.log.Info("player resumed", zap.String("room", room.Code), zap.String("player", p.ID))
	s.broadcast(room)
	msg.Reply <- JoinResult{RoomCode: room.Code, PlayerID: p.ID, ResumeSecret: p.ResumeSecret}
}

// attach replaces the player's transport handle, marks it connected and
// disarms the room's pending reclaim.
func (s *Session) attach(room *game.Room, p *game.Player, outbox chan<- any) {
	p.Outbox = outbox
	p.Connected = true
	s.reg.CancelReclaim(room.Code)
}

func (s *Session) handleLeave(msg Leave) {
	room := s.reg.Get(msg.Code)
	if room == nil {
		return
	}
	p := game.Leave(room, msg.PlayerID)
	if p == nil {
		return
	}
	s.reg.CancelReclaim(room.Code)
	s.log.Info("player left", zap.String("room", room.Code), zap.String("player", p.ID))
	s.broadcast(room)
}

func (s *Session) handleDisconnect(msg Disconnect) {
	room := s.reg.Get(msg.Code)
	if room == nil {
		return
	}
	p := room.Player(msg.PlayerID)
	if p == nil {
		return
	}
	// A resume elsewhere already replaced this connection.
	if msg.Outbox != nil && p.Outbox != msg.Outbox {
		return
	}
	p.Connected = false
	p.Outbox = nil
	s.broadcast(room)
}

func (s *Session) handleSetMaxRounds(msg SetMaxRounds) {
	room := s.reg.Get(msg.Code)
	if room == nil || room.HostID != msg.PlayerID || room.Phase != game.PhaseLobby {
		return
	}
	room.MaxRounds = min(s.cfg.MaxRounds, max(s.cfg.MinRounds, msg.MaxRounds))
	s.broadcast(room)
}

func (s *Session) handleSetSettings(msg SetSettings) {
	room := s.reg.Get(msg.Code)
	if room == nil || room.HostID != msg.PlayerID || room.Phase != game.PhaseLobby {
		return
	}
	lang, ok := game.ParseLanguage(msg.Language)
	if !ok {
		return
	}
	room.Language = lang
	room.ExcludedLetters = game.NormalizeExcludedLetters(msg.ExcludedLetters, prompt.FallbackExcludedLetters)
	s.broadcast(room)
}

func (s *Session) handleStartGame(msg StartGame) {
	room := s.reg.Get(msg.Code)
	if room == nil {
		msg.Reply <- Ack{Err: game.ErrRoomNotFound}
		return
	}
	if room.HostID != msg.PlayerID {
		msg.Reply <- Ack{Err: game.ErrNotHost}
		return
	}
	if room.Phase != game.PhaseLobby {
		msg.Reply <- Ack{Err: game.ErrWrongPhase}
		return
	}
	if room.ConnectedCount() < s.cfg.MinPlayers {
		msg.Reply <- Ack{Err: game.ErrNotEnoughPlayers}
		return
	}

	reader := room.HostID
	if reader == "" || room.Player(reader) == nil {
		reader = game.RandomReader(room)
	}
	if err := s.installRound(room, reader); err != nil {
		s.log.Error("start game failed", zap.String("room", room.Code), zap.Error(err))
		msg.Reply <- Ack{Err: err}
		return
	}
	game.ToPlaying(room)
	s.log.Info("game started", zap.String("room", room.Code), zap.String("reader", reader))
	s.broadcast(room)
	msg.Reply <- Ack{}
}

// installRound draws an unused prompt, records its key and installs the
// new round. The room is untouched when the draw fails.
func (s *Session) installRound(room *game.Room, readerID string) error {
	p, err := s.selector.Draw(room)
	if err != nil {
		return err
	}
	room.UsePrompt(p.Key())
	room.CurrentRound = &game.RoundState{
		Number:   len(room.History) + 1,
		Category: p.Category,
		Task:     p.Task,
		Letter:   p.Letter,
		ReaderID: readerID,
	}
	return nil
}

func (s *Session) handleReveal(msg RevealPrompt) {
	room := s.reg.Get(msg.Code)
	if room == nil || room.CurrentRound == nil || room.HostID != msg.PlayerID {
		return
	}
	if room.CurrentRound.Revealed {
		return
	}
	game.Reveal(room)
	s.broadcast(room)
}

func (s *Session) handleReroll(msg RerollPrompt) {
	room := s.reg.Get(msg.Code)
	if room == nil || room.CurrentRound == nil || room.HostID != msg.PlayerID {
		return
	}
	if room.CurrentRound.Revealed {
		return
	}
	p, err := s.selector.Reroll(room)
	if err != nil {
		s.log.Warn("reroll failed", zap.String("room", room.Code), zap.Error(err))
		return
	}
	room.UsePrompt(p.Key())
	s.broadcast(room)
}

func (s *Session) handlePickWinner(msg PickWinner) {
	room := s.reg.Get(msg.Code)
	if room == nil || room.Phase != game.PhasePlaying || room.HostID != msg.PlayerID {
		return
	}
	if err := game.SelectWinner(room, msg.WinnerID); err != nil {
		return
	}
	game.Award(room, msg.WinnerID)
	game.AssignHost(room, msg.WinnerID)
	s.advance(room)
}

func (s *Session) handleSkip(msg SkipRound) {
	room := s.reg.Get(msg.Code)
	if room == nil || room.Phase != game.PhasePlaying || room.CurrentRound == nil {
		return
	}
	if room.HostID != msg.PlayerID && room.OwnerID != msg.PlayerID {
		return
	}
	s.advance(room)
}

// advance finalizes the round and either ends the game or shows the
// scoreboard and arms the next-round timer.
func (s *Session) advance(room *game.Room) {
	game.Finalize(room)

	if game.IsLastRound(room) {
		game.ToEnded(room)
		s.log.Info("game ended", zap.String("room", room.Code), zap.Strings("winners", game.Winners(room)))
		s.broadcast(room)
		return
	}

	game.ToRoundEnd(room)
	s.broadcast(room)

	code := room.Code
	time.AfterFunc(s.cfg.RoundEndDelay, func() {
		select {
		case s.inbox <- advanceTimer{Code: code}:
		case <-s.ctx.Done():
		}
	})
}

// handleAdvanceTimer starts the next round when the scoreboard delay
// expires. A stale fire after a restart or deletion is a guarded no-op.
func (s *Session) handleAdvanceTimer(code string) {
	room := s.reg.Get(code)
	if room == nil || room.Phase != game.PhaseRoundEnd {
		return
	}
	reader := game.NextReader(room)
	if reader == "" {
		return
	}
	if err := s.installRound(room, reader); err != nil {
		s.log.Error("next round failed", zap.String("room", room.Code), zap.Error(err))
		return
	}
	game.ToPlaying(room)
	s.broadcast(room)
}

func (s *Session) handleRestart(msg RestartGame) {
	room := s.reg.Get(msg.Code)
	if room == nil || room.HostID != msg.PlayerID {
		return
	}
	game.ResetScores(room)
	game.ToLobby(room)
	s.log.Info("game restarted", zap.String("room", room.Code))
	s.broadcast(room)
}

func (s *Session) handleRequestState(msg RequestState) {
	room := s.reg.Get(msg.Code)
	if room == nil || room.Player(msg.PlayerID) == nil {
		return
	}
	s.sendTo(room, msg.PlayerID)
}

func (s *Session) handleInspect(msg Inspect) {
	room := s.reg.Get(msg.Code)
	if room == nil {
		msg.Reply <- nil
		return
	}
	v := view.Project(room, msg.Viewer)
	msg.Reply <- &v
}

// reclaim handles a fired reclaim timer. The condition is re-checked:
// a cancellation racing the fire, or a room that woke up in the meantime,
// must not be deleted.
func (s *Session) reclaim(code string) {
	if !s.reg.ReclaimPending(code) {
		return
	}
	s.reg.CancelReclaim(code)
	room := s.reg.Get(code)
	if room == nil {
		return
	}
	if room.Phase == game.PhaseEnded || room.AllDisconnected() {
		s.reg.Delete(code)
		s.log.Info("room reclaimed", zap.String("room", code))
	}
}

// broadcast pushes each connected player its own projected view. Slow
// clients are dropped and marked disconnected, as a dead socket would be.
func (s *Session) broadcast(room *game.Room) {
	for _, p := range room.PlayerList() {
		s.push(room, p)
	}
}

func (s *Session) sendTo(room *game.Room, playerID string) {
	if p := room.Player(playerID); p != nil {
		s.push(room, p)
	}
}

func (s *Session) push(room *game.Room, p *game.Player) {
	if !p.Connected || p.Outbox == nil {
		return
	}
	select {
	case p.Outbox <- view.Project(room, p.ID):
	default:
		p.Connected = false
		p.Outbox = nil
	}
}
