// Package reports defines the official-report collaborator contract and its
// HTTP implementation.
package reports
