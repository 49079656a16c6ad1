// Package ingest turns received packets into stored peers and messages.
//
// Every packet goes Received → Decoded → Resolved → Persisted, or is
// Rejected with a typed error. Resolving a sender is idempotent by public
// key: re-announcing an identity refreshes its last-seen time and never
// creates a second peer. Messages are not deduplicated; every accepted
// message packet becomes a new row.
package ingest
