// Package api provides the HTTP REST API for the Sokoban server.
//
// Endpoints:
//
// Session Management:
//   - POST   /api/sessions              - Create a session ({"pack_id": "microban"}, empty body for the default pack)
//   - GET    /api/sessions              - List sessions (?sort=created|accessed&order=asc|desc&limit=N&pack=ID)
//   - GET    /api/sessions/{id}         - Session info with current game state
//   - DELETE /api/sessions/{id}         - Delete a session
//
// Game Operations:
//   - GET  /api/sessions/{id}/state     - Current game state
//   - POST /api/sessions/{id}/move      - {"direction": "up|right|down|left|u|r|d|l", "reset": false}
//   - POST /api/sessions/{id}/bulk-move - {"moves": ["up","left"]} or {"lurd": "rrdl"}
//   - POST /api/sessions/{id}/reset     - Restart the current level
//   - POST /api/sessions/{id}/next      - Advance to the next level
//   - POST /api/sessions/{id}/level     - {"index": 0} jump to a level (0-based)
//   - GET  /api/sessions/{id}/hint      - Shortest solution from the current position
//
// Level Packs:
//   - GET  /api/packs                   - List packs
//   - POST /api/packs                   - {"name": "mine", "text": "<pack text>"} validate and store
//   - GET  /api/packs/{name}            - Pack levels as JSON rows, or ?format=text for the raw pack
//
// Other:
//   - GET /healthz                      - Liveness check
//   - GET /ws?session=ID                - WebSocket state updates for one session
//
// Error Handling:
//
// Errors are returned as JSON with the HTTP status code repeated in the body:
//
//	{"error": "session not found", "code": 404}
//
// Unknown sessions and packs map to 404. Bad level indexes, invalid packs and
// malformed bodies map to 400. A blocked move is not an error: it returns 200
// with "success": false and the reason in "message".
package api
