// Package dashboard holds the client-side state of the AutoSDLC dashboard
// and the actions that change it.
//
// The Store is the single source of truth. The Controller runs the submit,
// prototype and chat actions against the backend and records their outcome.
// Everything a renderer shows comes from Derive, which is a pure function of
// a Snapshot; nothing derived is cached between polls.
package dashboard
