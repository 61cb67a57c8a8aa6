// Package daemon assembles the pipeline collaborators and runs the tick
// scheduler as a long-lived, single-instance process with signal-driven
// shutdown.
package daemon
