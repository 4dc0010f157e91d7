package web

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/scribeapp/scribe-web/pkg/session"
	"github.com/scribeapp/scribe-web/pkg/store"
	"github.com/scribeapp/scribe-web/pkg/upstream"
)

var liveUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// liveEvent is one store replacement pushed to the page.
type liveEvent struct {
	Store string `json:"store"`
	Data  any    `json:"data"`
}

// handleLive upgrades to a WebSocket and mirrors the session's stores
// to the page. The client sends "refresh" to re-read notes and folders;
// every store replacement is pushed as a liveEvent. The socket is an
// enhancement only: its failure never affects page handling.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	sc := session.FromRequest(r)

	conn, err := liveUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		s.logger.Warn("live upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	sess := store.NewSession()

	// One writer at a time; subscriber callbacks fire on whichever
	// goroutine called Set.
	var writeMu sync.Mutex
	push := func(name string, data any) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(liveEvent{Store: name, Data: data}); err != nil {
			s.logger.Warn("live push failed", "store", name, "err", err)
		}
	}

	sess.User.Subscribe(func(u *upstream.User) { push("user", u) })
	sess.Notes.Subscribe(func(n []upstream.Note) { push("notes", n) })
	sess.Folders.Subscribe(func(f []upstream.Folder) { push("folders", f) })

	sess.User.Set(sc.User)
	s.refreshStores(r.Context(), sc, sess)

	for {
		kind, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if kind == websocket.TextMessage && string(msg) == "refresh" {
			s.refreshStores(r.Context(), sc, sess)
		}
	}
}
