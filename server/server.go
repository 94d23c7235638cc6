package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"windfield/calculator"
	"windfield/model"
)

type Server struct {
	addr     string
	upgrader websocket.Upgrader
	field    *calculator.WindField
}

func NewServer(addr string, upgrader websocket.Upgrader, field *calculator.WindField) *Server {
	return &Server{
		addr:     addr,
		upgrader: upgrader,
		field:    field,
	}
}

// serveWs handles websocket requests from the peer.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("upgrade")
		return
	}
	defer conn.Close()

	hub := NewHub(s.field, conn)
	defer close(hub.done)
	go hub.handleRequest()
	go hub.handleResponse()

	log.WithField("remote", r.RemoteAddr).Info("client connected")
	for {
		var msg model.Msg
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("read request")
			}
			log.WithField("remote", r.RemoteAddr).Info("client disconnected")
			return
		}
		hub.msg <- msg
	}
}

// Handler routes /ws to the query service.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWs)
	return mux
}

func (s *Server) Serve() error {
	log.WithField("addr", s.addr).Info("wind field query service listening")
	return http.ListenAndServe(s.addr, s.Handler())
}
