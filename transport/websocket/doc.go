// Package websocket pushes live Sokoban session updates to browsers.
//
// A central Hub owns every connection. Clients join one session through the
// ?session=ID query parameter and receive JSON messages whenever that session
// changes:
//
//	{"session_id":"a3f9","event":"state_update","game_state":{...}}
//	{"session_id":"a3f9","event":"level_solved","data":{...}}
//
// Incoming frames are read only to keep the connection alive.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// Concurrency:
//
// Registration, removal and fan-out all run on the Run goroutine, so the
// client maps need no locking. A client whose send buffer fills up is dropped.
// Once Run returns, broadcasts become no-ops.
package websocket
