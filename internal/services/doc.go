// Package services holds the shared plumbing every external collaborator
// integration uses: the sentinel error taxonomy with Wrap/Details, and the
// context keys that carry event/run/step/request correlation through the
// workflow into structured logs.
package services
