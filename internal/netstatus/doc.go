// Package netstatus observes network connectivity.
//
// A Source answers "are we online right now" and pushes transitions to subscribers.
// Subscribe returns a Subscription that the owner closes when it shuts down, so no
// listener outlives the component that registered it. Listeners run on the goroutine
// that observed the transition and should hand long work off to their own goroutine.
//
// Prober is the production Source: it issues HEAD requests against a probe URL on a
// fixed interval, mirroring the poller in package app, and flips to offline only after
// two consecutive failures so a single dropped probe does not flap the UI. Static is a
// caller-driven Source used for forced-offline runs and tests.
package netstatus
