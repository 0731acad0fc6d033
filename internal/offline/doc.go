// Package offline replays requests captured while the device had no connectivity.
//
// Requests are stored in the storage.Store queue in insertion order. A Drainer walks
// that queue, re-issues each call with its stored method, headers and JSON body, and
// removes only the entries whose replay succeeded. Anything that fails stays queued
// and later entries are still attempted.
//
// Drains are triggered by the app controller when the network comes back and, when a
// cron spec is configured, by a Schedule. Both paths share one in-flight pass.
package offline
