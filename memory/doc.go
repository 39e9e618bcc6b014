// Package memory provides the persistent per-user preference store and the
// similarity-based retrieval over it.
//
// The subsystem has three layers:
//   - Store: owns the User -> Conversation -> Preference tree and exposes
//     create/append/lookup operations. Persistence is delegated to an
//     optional Backend (BadgerDB for durable deployments, nil for tests).
//   - Engine: selects the preference records most relevant to the active
//     conversation. Long-term mode ranks every conversation of the user by
//     context similarity; short-term mode returns the most recent
//     preferences of the active conversation only.
//   - ContextEmbedder: renders a Context into one natural-language sentence
//     and turns it into a unit-norm vector through an Embedder.
//
// Similarity queries run against a ContextIndex (chromem-go embedded vector
// database). Because every embedding is unit-norm, cosine similarity
// reduces to the dot product.
//
// Concurrency: the store guards its tree with a read-write mutex and the
// engine serializes index maintenance, so one store and one engine can
// back many simultaneous sessions. A single controller is still
// single-threaded; only the shared store is contended.
package memory
