package bridge

import (
	"context"
	"errors"
)

// ErrPermissionDenied is returned when the bridge refuses an action for lack of a grant.
var ErrPermissionDenied = errors.New("permission denied")

// Capability names a permission-gated native feature.
type Capability string

const (
	Camera        Capability = "camera"
	Location      Capability = "location"
	Notifications Capability = "notifications"
)

// PermissionState mirrors the states reported by native permission APIs.
type PermissionState string

const (
	Granted PermissionState = "granted"
	Denied  PermissionState = "denied"
	Prompt  PermissionState = "prompt"
)

// Permissions is a snapshot of every capability's permission state.
type Permissions struct {
	Camera        PermissionState `json:"camera"`
	Location      PermissionState `json:"location"`
	Notifications PermissionState `json:"notifications"`
	Platform      string          `json:"platform,omitempty"`
}

// PictureOptions configure a camera capture.
type PictureOptions struct {
	Quality      int  `json:"quality"`
	AllowEditing bool `json:"allowEditing"`
}

// Notification is a local notification request.
type Notification struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Coords is a geographic coordinate pair in decimal degrees.
type Coords struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
}

// Position is a device location fix.
type Position struct {
	Coords    Coords `json:"coords"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// Features is the native capability surface the product list uses.
// Implemented by *Client (remote bridge daemon) and *Simulator (in process).
type Features interface {
	CheckAllPermissions(ctx context.Context) (Permissions, error)

	CheckCameraPermissions(ctx context.Context) (bool, error)
	RequestCameraPermissions(ctx context.Context) (bool, error)
	// TakePicture returns a URL for the captured image.
	TakePicture(ctx context.Context, opts PictureOptions) (string, error)

	SendLocalNotification(ctx context.Context, n Notification) error

	CheckLocationPermissions(ctx context.Context) (bool, error)
	RequestLocationPermissions(ctx context.Context) (bool, error)
	GetCurrentLocation(ctx context.Context) (Position, error)

	// Platform reports the host platform name, e.g. "web", "ios" or "android".
	Platform() string
}
