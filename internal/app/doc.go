// Package app wires configuration, credentials, the API client, and the
// UI into a runnable bilitui application.
package app
