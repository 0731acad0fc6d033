// Package bridge exposes the device capabilities the product list relies on: camera,
// geolocation, local notifications, permission checks and the platform name.
//
// Client speaks to a native-bridge daemon over HTTP JSON. Simulator implements the same
// Features interface in process and can serve the daemon's API, which is what tests and
// the bridge-sim command use.
package bridge
