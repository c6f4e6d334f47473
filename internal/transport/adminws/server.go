package adminws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"worldvault/internal/protocol"
	"worldvault/internal/vault/codec"
	"worldvault/internal/vault/profile"
	"worldvault/internal/vault/session"
	"worldvault/internal/world/chunk"
	"worldvault/internal/world/grid"
)

// Server exposes the profile lifecycle over a WebSocket endpoint for editor
// and tooling clients. One request in flight per connection: operations for
// a profile must not overlap, and the read loop enforces that by blocking
// until the current request's result is queued.
type Server struct {
	sess *session.Session
	log  *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(sess *session.Session, logger *log.Logger) *Server {
	return &Server{
		sess: sess,
		log:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		out := make(chan []byte, 8)

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				return
			}
			res := s.handle(ctx, msg)
			b, err := json.Marshal(res)
			if err != nil {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case out <- b:
			}
		}
	}
}

func (s *Server) handle(ctx context.Context, msg []byte) protocol.ResultMsg {
	fail := func(reqID, code string, err error) protocol.ResultMsg {
		return protocol.ResultMsg{
			Type:            protocol.TypeResult,
			ProtocolVersion: protocol.Version,
			RequestID:       reqID,
			OK:              false,
			ErrorCode:       code,
			Error:           err.Error(),
		}
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return fail("", protocol.ErrProtoBadRequest, err)
	}
	var req protocol.RequestMsg
	if err := json.Unmarshal(msg, &req); err != nil {
		return fail("", protocol.ErrProtoBadRequest, err)
	}
	if req.ProtocolVersion != protocol.Version {
		return fail(req.RequestID, protocol.ErrProtoBadRequest, errors.New("bad protocol_version"))
	}

	ok := protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		RequestID:       req.RequestID,
		OK:              true,
		ProfileID:       req.ProfileID,
	}

	switch base.Type {
	case protocol.TypeProfileList:
		infos, err := s.sess.ListProfiles()
		if err != nil {
			return fail(req.RequestID, codeFor(err), err)
		}
		ok.ProfileID = ""
		ok.Profiles = make([]protocol.ProfileInfo, 0, len(infos))
		for _, p := range infos {
			info := protocol.ProfileInfo{ID: p.ID}
			if !p.LastSaved.IsZero() {
				info.LastSaved = p.LastSaved.UTC().Format(time.RFC3339Nano)
			}
			ok.Profiles = append(ok.Profiles, info)
		}
		return ok

	case protocol.TypeProfileCreate:
		id, err := s.sess.CreateProfile(ctx, req.ProfileID, req.Seed)
		if err != nil {
			return fail(req.RequestID, codeFor(err), err)
		}
		ok.ProfileID = id
		return ok

	case protocol.TypeSaveAll:
		if err := s.sess.SaveAll(ctx, req.ProfileID); err != nil {
			return fail(req.RequestID, codeFor(err), err)
		}
		return ok

	case protocol.TypeLoadAll:
		if err := s.sess.LoadAll(ctx, req.ProfileID); err != nil {
			return fail(req.RequestID, codeFor(err), err)
		}
		return ok

	case protocol.TypeDeleteAll:
		if err := s.sess.DeleteAll(ctx, req.ProfileID); err != nil {
			return fail(req.RequestID, codeFor(err), err)
		}
		return ok

	case protocol.TypeProfileDelete:
		if err := s.sess.DeleteProfile(ctx, req.ProfileID); err != nil {
			return fail(req.RequestID, codeFor(err), err)
		}
		return ok

	case protocol.TypeArchive:
		dir, err := s.sess.ArchiveProfile(req.ProfileID)
		if err != nil {
			return fail(req.RequestID, codeFor(err), err)
		}
		ok.ArchiveDir = dir
		return ok

	default:
		return fail(req.RequestID, protocol.ErrProtoBadRequest, errors.New("unknown request type: "+base.Type))
	}
}

// codeFor maps domain failures onto wire error codes.
func codeFor(err error) string {
	var de *codec.DecodeError
	var ee *codec.EncodeError
	var oe *grid.OverlapError
	switch {
	case errors.Is(err, codec.ErrNotFound), errors.Is(err, grid.ErrNoPlacement), errors.Is(err, chunk.ErrUnknownChunk):
		return protocol.ErrNotFound
	case errors.As(err, &de):
		return protocol.ErrDecode
	case errors.As(err, &ee):
		return protocol.ErrEncode
	case errors.As(err, &oe):
		return protocol.ErrConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return protocol.ErrInternal
	case errors.Is(err, profile.ErrInvalidID):
		return protocol.ErrBadRequest
	case errors.Is(err, os.ErrPermission), errors.Is(err, os.ErrNotExist), errors.Is(err, os.ErrExist):
		return protocol.ErrIO
	default:
		return protocol.ErrInternal
	}
}
