// Package state owns the session slot shared between the UI, the API
// client and the player launcher. Only the slot itself is locked; the
// credential value inside is handed out by copy and never written after
// creation.
package state
