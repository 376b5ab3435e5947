// Package ws adapts websocket connections to session messages. Each
// connection owns an outbox channel; the session loop pushes projected
// room views into it and a writer goroutine serializes them out. All
// writes go through the outbox so the connection has a single writer.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/blackout-game/blackout-backend/internal/game"
	"github.com/blackout-game/blackout-backend/internal/session"
	"github.com/blackout-game/blackout-backend/internal/types"
	"github.com/blackout-game/blackout-backend/internal/view"
)

const (
	outboxSize   = 16
	writeTimeout = 5 * time.Second
	readTimeout  = 10 * time.Minute
)

func Handler(s *session.Session, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		c := &client{
			conn: conn,
			sess: s,
			log:  log,
			out:  make(chan any, outboxSize),
		}
		c.run(r.Context())
	}
}

type client struct {
	conn *websocket.Conn
	sess *session.Session
	log  *zap.Logger
	out  chan any

	// Set once the connection lands in a room.
	code     string
	playerID string
}

func (c *client) run(ctx context.Context) {
	writeCtx, writeCancel := context.WithCancel(ctx)
	defer writeCancel()
	go c.writer(writeCtx)

	defer func() {
		if c.playerID != "" {
			c.sess.Inbox() <- session.Disconnect{Code: c.code, PlayerID: c.playerID, Outbox: c.out}
		}
	}()

	for {
		readCtx, cancel := context.WithTimeout(ctx, readTimeout)
		_, data, err := c.conn.Read(readCtx)
		cancel()
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if !errors.Is(err, context.Canceled) {
					c.log.Debug("socket read ended", zap.Error(err))
				}
			}
			return
		}

		var cm types.ClientMessage
		if err := json.Unmarshal(data, &cm); err != nil {
			c.out <- types.ServerMessage{Type: "error", Error: "bad json"}
			continue
		}
		c.dispatch(cm)
	}
}

// writer drains the outbox until the connection context ends. Room views
// arrive from the session loop, everything else from the reader.
func (c *client) writer(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.out:
			var sm types.ServerMessage
			switch m := msg.(type) {
			case view.RoomView:
				sm = types.ServerMessage{Type: "roomUpdate", Room: &m}
			case types.ServerMessage:
				sm = m
			default:
				continue
			}
			payload, err := json.Marshal(sm)
			if err != nil {
				continue
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			_ = c.conn.Write(wctx, websocket.MessageText, payload)
			cancel()
		}
	}
}

func (c *client) dispatch(m types.ClientMessage) {
	switch m.Type {
	case "createRoom":
		reply := make(chan session.JoinResult, 1)
		c.sess.Inbox() <- session.CreateRoom{Name: m.Name, Outbox: c.out, Reply: reply}
		c.joinResult(m.Type, <-reply)

	case "joinRoom":
		reply := make(chan session.JoinResult, 1)
		c.sess.Inbox() <- session.JoinRoom{Name: m.Name, Code: m.Code, Outbox: c.out, Reply: reply}
		c.joinResult(m.Type, <-reply)

	case "autoJoinRoom":
		reply := make(chan session.JoinResult, 1)
		c.sess.Inbox() <- session.ResumeSession{SessionID: m.SessionID, PlayerID: m.PlayerID, Name: m.Name, Outbox: c.out, Reply: reply}
		c.joinResult(m.Type, <-reply)

	case "resumePlayer":
		reply := make(chan session.JoinResult, 1)
		c.sess.Inbox() <- session.ResumeToken{Code: m.Code, PlayerID: m.PlayerID, Secret: m.ResumeToken, Outbox: c.out, Reply: reply}
		c.joinResult(m.Type, <-reply)

	case "leaveRoom":
		c.sess.Inbox() <- session.Leave{Code: c.code, PlayerID: c.playerID}
		c.code, c.playerID = "", ""

	case "updateMaxRounds":
		c.sess.Inbox() <- session.SetMaxRounds{Code: c.code, PlayerID: c.playerID, MaxRounds: m.MaxRounds}

	case "updateRoomSettings":
		c.sess.Inbox() <- session.SetSettings{Code: c.code, PlayerID: c.playerID, Language: m.Language, ExcludedLetters: m.ExcludedLetters}

	case "startGame":
		reply := make(chan session.Ack, 1)
		c.sess.Inbox() <- session.StartGame{Code: c.code, PlayerID: c.playerID, Reply: reply}
		c.ackResult(m.Type, <-reply)

	case "revealCategory":
		c.sess.Inbox() <- session.RevealPrompt{Code: c.code, PlayerID: c.playerID}

	case "rerollPrompt":
		c.sess.Inbox() <- session.RerollPrompt{Code: c.code, PlayerID: c.playerID}

	case "selectWinner":
		c.sess.Inbox() <- session.PickWinner{Code: c.code, PlayerID: c.playerID, WinnerID: m.WinnerID}

	case "skipRound":
		c.sess.Inbox() <- session.SkipRound{Code: c.code, PlayerID: c.playerID}

	case "restartGame":
		c.sess.Inbox() <- session.RestartGame{Code: c.code, PlayerID: c.playerID}

	case "requestState":
		c.sess.Inbox() <- session.RequestState{Code: c.code, PlayerID: c.playerID}

	default:
		c.out <- types.ServerMessage{Type: "error", Error: "unknown type"}
	}
}

func (c *client) joinResult(op string, res session.JoinResult) {
	if res.Err != nil {
		c.out <- types.ServerMessage{Type: "result", Op: op, Error: c.reason(res.Err)}
		return
	}
	c.code, c.playerID = res.RoomCode, res.PlayerID
	c.out <- types.ServerMessage{
		Type:        "result",
		Op:          op,
		OK:          true,
		RoomCode:    res.RoomCode,
		PlayerID:    res.PlayerID,
		ResumeToken: res.ResumeSecret,
	}
}

func (c *client) ackResult(op string, ack session.Ack) {
	if ack.Err != nil {
		c.out <- types.ServerMessage{Type: "result", Op: op, Error: c.reason(ack.Err)}
		return
	}
	c.out <- types.ServerMessage{Type: "result", Op: op, OK: true}
}

func (c *client) reason(err error) string {
	switch {
	case errors.Is(err, game.ErrInvalidName):
		return "Invalid name"
	case errors.Is(err, game.ErrNameTaken):
		return "Name already taken"
	case errors.Is(err, game.ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, game.ErrPlayerNotFound):
		return "Player not found"
	case errors.Is(err, game.ErrBadResumeSecret):
		return "Invalid resume token"
	case errors.Is(err, game.ErrMissingSession):
		return "Missing session info"
	case errors.Is(err, game.ErrNotHost):
		return "Only host can start"
	case errors.Is(err, game.ErrWrongPhase):
		return "Game already started"
	case errors.Is(err, game.ErrNotEnoughPlayers):
		return fmt.Sprintf("Need at least %d players", c.sess.MinPlayers())
	default:
		return err.Error()
	}
}
