// Package main hosts the jamsync CLI entrypoint and command graph.
//
// The Cobra command tree loads worksheet exports and song catalogs from
// disk, runs the extraction and matching pipeline, publishes session
// datasets, and surfaces the run ledger. Configuration resolution and logger
// setup live in the command context so subcommands only describe what they
// print.
package main
