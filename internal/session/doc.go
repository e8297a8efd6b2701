// Package session provides conversation persistence with PostgreSQL.
//
// A session represents one conversation thread owned by a caller and
// containing ordered messages. The [Store] owns the persistence
// contracts; conversation logic lives in the chat package.
//
// Key operations:
//
//   - Session lifecycle: [Store.CreateSession], [Store.Session], [Store.SessionsByOwner]
//   - Message persistence: [Store.AddMessage], [Store.RecentMessages], [Store.SessionMessages]
//
// # Concurrency
//
// Store is safe for concurrent use. All state lives in PostgreSQL; no
// shared Go-side state exists. Each append is a single atomic insert;
// serializing concurrent turns on one session is the caller's concern.
package session
