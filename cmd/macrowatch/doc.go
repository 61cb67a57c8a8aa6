// Command macrowatch is the CLI entry point: it runs the release-processing
// daemon, executes single passes, reports pipeline status, and manages
// configuration.
package main
