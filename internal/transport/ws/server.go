package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"parkcraft.ai/internal/config"
	"parkcraft.ai/internal/gameaction"
	"parkcraft.ai/internal/protocol"
	"parkcraft.ai/internal/sim"
	"parkcraft.ai/internal/world"
)

const (
	outQueue    = 64
	replayQueue = 256
	readTimeout = 60 * time.Second
)

type Server struct {
	loop      *sim.Loop
	reg       *gameaction.Registry
	cfg       config.Config
	throttle  *gameaction.Throttle
	validator *protocol.Validator
	log       *zap.Logger
	now       func() time.Time

	nextPlayer atomic.Int32
	sessions   sync.Map // session id -> *session

	upgrader websocket.Upgrader
}

type session struct {
	id     string
	player gameaction.PlayerID
	name   string
	group  string
	out    chan []byte
}

func NewServer(loop *sim.Loop, reg *gameaction.Registry, cfg config.Config, validator *protocol.Validator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		loop:      loop,
		reg:       reg,
		cfg:       cfg,
		throttle:  gameaction.NewThrottle(cfg.Cooldowns),
		validator: validator,
		log:       logger,
		now:       time.Now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Sessions is the number of connected players.
func (s *Server) Sessions() int {
	n := 0
	s.sessions.Range(func(_, _ any) bool { n++; return true })
	return n
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sess := s.handshake(r.Context(), conn)
		if sess == nil {
			return
		}
		log := s.log.With(zap.String("session", sess.id), zap.Int32("player", int32(sess.player)))
		log.Info("player joined", zap.String("name", sess.name), zap.String("group", sess.group))
		s.sessions.Store(sess.id, sess)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		subID, feed := s.loop.Subscribe(replayQueue)
		defer s.loop.Unsubscribe(subID)

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-sess.out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Replication fan-out.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case e, ok := <-feed:
					if !ok {
						return
					}
					sess.send(protocol.ReplicateMsg{
						Type:            protocol.TypeReplicate,
						ProtocolVersion: protocol.Version,
						Tick:            e.Tick,
						Player:          int32(e.Player),
						Record:          e.Record,
						Status:          e.Status,
						Cost:            e.Cost,
					})
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			if e := s.handleMessage(ctx, sess, msg); e != nil {
				sess.send(*e)
			}
		}

		// Cleanup.
		s.sessions.Delete(sess.id)
		s.throttle.Forget(sess.player)
		log.Info("player left")
	}
}

func (s *Server) handshake(ctx context.Context, conn *websocket.Conn) *session {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil
	}
	reject := func(reason string) *session {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(time.Second))
		return nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		return reject("expected HELLO")
	}
	if err := s.validator.Validate(protocol.TypeHello, msg); err != nil {
		return reject("bad HELLO")
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return reject("bad HELLO")
	}
	if hello.ProtocolVersion != protocol.Version {
		return reject("bad protocol_version")
	}
	token := ""
	if hello.Auth != nil {
		token = strings.TrimSpace(hello.Auth.Token)
	}
	group, ok := s.cfg.GroupFor(hello.Group, token)
	if !ok {
		return reject("group not granted")
	}

	sess := &session{
		id:     uuid.NewString(),
		player: gameaction.PlayerID(s.nextPlayer.Add(1)),
		name:   hello.PlayerName,
		group:  group,
		out:    make(chan []byte, outQueue),
	}

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       sess.id,
		PlayerID:        int32(sess.player),
		Group:           group,
		Actions:         s.allowedTypes(group),
	}
	rctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = s.loop.Read(rctx, func(st *world.State) {
		welcome.Tick = st.Tick
		welcome.StateDigest = st.Digest()
		welcome.ObjectsDigest = st.Objects.Digest
	})
	if err != nil {
		return reject("server busy")
	}
	if err := writeJSON(conn, welcome); err != nil {
		return nil
	}
	return sess
}

func (s *Server) allowedTypes(group string) []string {
	var out []string
	for _, t := range s.reg.Types() {
		if p, ok := s.reg.Permission(t); ok && s.cfg.Allows(group, p) {
			out = append(out, string(t))
		}
	}
	return out
}

// handleMessage validates one client message and queues its action. The
// returned error message, if any, goes straight back to the client; the
// action result follows asynchronously.
func (s *Server) handleMessage(ctx context.Context, sess *session, msg []byte) *protocol.ErrorMsg {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		e := protocol.NewError("", protocol.ErrProtoBadRequest, "malformed json")
		return &e
	}
	if base.Type != protocol.TypeAction {
		e := protocol.NewError("", protocol.ErrProtoBadRequest, "unexpected message type "+base.Type)
		return &e
	}
	if err := s.validator.Validate(protocol.TypeAction, msg); err != nil {
		e := protocol.NewError("", protocol.ErrProtoBadRequest, err.Error())
		return &e
	}
	var m protocol.ActionMsg
	if err := json.Unmarshal(msg, &m); err != nil {
		e := protocol.NewError("", protocol.ErrProtoBadRequest, err.Error())
		return &e
	}
	if m.ProtocolVersion != protocol.Version {
		e := protocol.NewError(m.ReqID, protocol.ErrProtoVersion, "want protocol_version "+protocol.Version)
		return &e
	}

	a, err := s.reg.New(gameaction.Type(m.Action))
	if err != nil {
		e := protocol.NewError(m.ReqID, protocol.ErrUnknownAction, err.Error())
		return &e
	}
	if p, _ := s.reg.Permission(a.Type()); !s.cfg.Allows(sess.group, p) {
		e := protocol.NewError(m.ReqID, protocol.ErrNoPermission, "group "+sess.group+" lacks "+string(p))
		return &e
	}
	if a.ActionFlags().Has(gameaction.ClientOnly) {
		e := protocol.NewError(m.ReqID, protocol.ErrNoPermission, "client-only action")
		return &e
	}
	if err := gameaction.SetParams(a, m.Params); err != nil {
		e := protocol.NewError(m.ReqID, protocol.ErrBadParams, err.Error())
		return &e
	}
	// Peers choose only the flags a client may set; the player is the
	// session's, whatever the message claims.
	a.SetFlags(gameaction.CommandFlags(m.Flags) & gameaction.ClientFlags)
	a.SetPlayer(sess.player)

	if !m.QueryOnly && !s.throttle.Allow(sess.player, a, s.now()) {
		e := protocol.NewError(m.ReqID, protocol.ErrRateLimit, "action on cooldown")
		return &e
	}

	reply := make(chan sim.Outcome, 1)
	if err := s.loop.Submit(sim.Submission{Action: a, QueryOnly: m.QueryOnly, Reply: reply}); err != nil {
		code := protocol.ErrBusy
		if errors.Is(err, sim.ErrStopped) {
			code = protocol.ErrInternal
		}
		e := protocol.NewError(m.ReqID, code, err.Error())
		return &e
	}
	go func() {
		select {
		case out := <-reply:
			sess.send(protocol.NewResult(m.ReqID, out.Tick, out.Result))
		case <-ctx.Done():
		}
	}()
	return nil
}

// send queues v without blocking; a client that stops reading loses
// messages rather than stalling the tick loop.
func (sess *session) send(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case sess.out <- b:
	default:
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
