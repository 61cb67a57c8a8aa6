// Package calendar defines the economic calendar collaborator contract and
// its HTTP implementation. The workflow only ever sees normalized Row values.
package calendar
