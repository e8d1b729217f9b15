// Package http provides the admin REST surface and middleware for the
// planning session engine.
//
// The router exposes the following endpoints:
//   - GET /api/sessions: lists every session, newest first.
//   - POST /api/sessions: creates a session. Body: {"name","teamId",
//     "creatorName"}; the creator is the authenticated caller.
//   - GET /api/sessions/{id}: returns the full session state.
//   - POST /api/sessions/{id}/end: ends the session. Creator or privileged
//     callers only. Response: {"ended":bool}; ending a missing session
//     reports {"ended":false}.
//   - PUT /api/sessions/{id}/settings: patches individual settings flags.
//     Creator or privileged callers only.
//   - GET /api/sessions/{id}/export: point-in-time export with
//     exportedAt/formatVersion annotations.
//   - GET /api/sessions/{id}/votes: per-item tallies for the whole session.
//   - POST /api/sessions/{id}/schedule: exports scheduled itinerary items to
//     the configured calendar connector. Body: {"credential"} (optional).
//   - POST /api/sessions/{id}/share: builds a join link and message and posts
//     it to the external chat webhook when one is configured.
//   - GET /api/users/{id}/sessions: sessions the user participates in.
//   - GET /healthz: liveness probe.
//   - GET /ws: WebSocket upgrade, handled by the transport package.
//
// Caller identity comes from the X-User-ID header. Privilege is granted in
// development mode or by an X-Operator-Key header matching the configured
// argon2id hash; the engine itself never inspects credentials.
package http
