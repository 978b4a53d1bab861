package kiosk

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	ws "github.com/stemsi/exstem-seb/internal/websocket"
)

// IPCPath is where the host connects its control channel.
const IPCPath = "/ipc"

// buildUpgrader accepts connections without an Origin (the native host) or
// from a loopback origin.
func buildUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false
			}
			if u.Hostname() == "localhost" {
				return true
			}
			ip := net.ParseIP(u.Hostname())
			return ip != nil && ip.IsLoopback()
		},
	}
}

// IPCServer serves the request/response control channel over websocket.
type IPCServer struct {
	dispatcher *Dispatcher
	upgrader   websocket.Upgrader
	log        zerolog.Logger
}

func NewIPCServer(dispatcher *Dispatcher, log zerolog.Logger) *IPCServer {
	return &IPCServer{
		dispatcher: dispatcher,
		upgrader:   buildUpgrader(),
		log:        log.With().Str("component", "kiosk_ipc_server").Logger(),
	}
}

// Handler returns the HTTP handler mounting the IPC endpoint.
func (s *IPCServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(IPCPath, s.serve)
	return mux
}

func (s *IPCServer) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("IPC upgrade failed")
		return
	}
	defer conn.Close()

	s.log.Info().Str("remote", r.RemoteAddr).Msg("IPC client connected")

	for {
		var req ws.Request
		if err := ws.ReadJSON(conn, &req); err != nil {
			if isMalformed(err) {
				if err := ws.WriteError(conn, "", "malformed request"); err != nil {
					return
				}
				continue
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Info().Msg("IPC client disconnected")
				return
			}
			s.log.Warn().Err(err).Msg("IPC read failed")
			return
		}

		reply := s.dispatcher.Dispatch(r.Context(), req)
		if err := ws.WriteTyped(conn, reply); err != nil {
			s.log.Warn().Err(err).Str("action", string(req.Action)).Msg("IPC write failed")
			return
		}
	}
}

// isMalformed reports decode failures that leave the connection usable.
func isMalformed(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
