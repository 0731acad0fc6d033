// Package nav carries product selections out of the list app.
//
// When the app runs inside a container, a versioned NAVIGATE_TO_APP2 message with the
// selected product is written to the container over a websocket. The container's
// origin must be allow-listed. Running standalone, the detail app is asked directly
// to open /product/<id> with the product as navigation state.
package nav
