// Package application wires the deckle planner together: capacity storage,
// plan history, the batching allocator, HTTP handlers, the HTML pages and the
// HTTP server. It keeps the main package focused on CLI parsing and
// shutdown orchestration.
package application
