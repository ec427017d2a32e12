// Package app is the composition root for the vwsctl command line tool.
//
// # Overview
//
// Run loads the environment and configuration, builds a logger and a
// renderer, and dispatches to one subcommand. Each subcommand owns a flag
// set and talks to the Vuforia Web Services through the vws package.
//
// # Startup
//
//  1. Load .env (or the file named by Options.EnvFile) into the environment
//  2. Load ~/.config/vws/config.toml, then apply VWS_* environment overrides
//  3. Build a charmbracelet/log handler behind log/slog at the configured level
//  4. Dispatch args[0] to its subcommand
//
// # Commands
//
//	add            upload a new target, optionally waiting for processing
//	get            show a target record
//	update         change target fields
//	delete         delete a target
//	list           list target ids
//	summary        database summary report
//	target-summary target summary report
//	duplicates     likely duplicates of a target
//	wait           wait until a target finishes processing
//	query          match an image against the cloud database
//	vumark         generate a VuMark instance
//
// # Waiting
//
// StartWait runs the wait loop in a background goroutine and publishes each
// poll to a state.Store. On a terminal the bubbletea view in package ui
// reads snapshots from the store and quitting it cancels the wait. Without a
// terminal, or with -json, each poll is logged instead.
//
// # Output
//
// Results are rendered with lipgloss styles, or encoded as indented JSON
// when Options.JSON is set. Errors are returned to the caller; errors
// caused by bad input wrap ErrUsage.
package app
