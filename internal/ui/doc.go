// Package ui renders vwsctl output.
//
// Renderer formats target records, reports, query matches and errors with
// Lipgloss using one of the built-in themes (Nightfox, Kanagawa, Slate).
//
// WaitModel is a small Bubble Tea program shown while vwsctl waits for a
// target to leave the processing state. It never talks to the service
// itself: the wait runs in its own goroutine and publishes progress through
// a state.Store, which the model re-reads on every tick. The program quits
// on its own once the store is marked done; pressing q cancels the wait.
package ui
