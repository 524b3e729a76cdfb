// Package logging provides structured logging for taskvoiced.
//
// The package wraps Zap with context-aware methods so every log line
// carries the request, conversation session, and user correlation fields
// stored in the request context. Handlers never pass correlation fields
// explicitly; they attach them to the context once at the edge.
package logging
