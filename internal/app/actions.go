package app

import (
	"context"
	"fmt"

	"github.com/luxury-retail/productlist/internal/bridge"
	"github.com/luxury-retail/productlist/internal/state"
)

const (
	cameraAction   = "camera"
	locationAction = "location"

	cameraDenied   = "Camera permission is required"
	locationDenied = "Location permission is required"

	photoQuality = 90
)

// CaptureProductPhoto takes a picture through the native bridge after securing camera
// permission, then sends a local notification.
func (c *Controller) CaptureProductPhoto(ctx context.Context) state.Notice {
	features := c.deps.Features

	granted, err := ensurePermission(ctx, features.CheckCameraPermissions, features.RequestCameraPermissions)
	if err != nil {
		return c.actionFailed(cameraAction, "Camera", "Failed to access camera: ", err)
	}
	if !granted {
		c.deps.Recorder.ObserveAction(cameraAction, bridge.ErrPermissionDenied)
		return state.Notice{Kind: state.NoticeWarning, Title: "Camera", Message: cameraDenied, Err: bridge.ErrPermissionDenied}
	}

	imageURL, err := features.TakePicture(ctx, bridge.PictureOptions{Quality: photoQuality, AllowEditing: true})
	if err != nil {
		return c.actionFailed(cameraAction, "Camera", "Failed to access camera: ", err)
	}
	c.log.Info().Str("image", imageURL).Msg("captured image")

	err = features.SendLocalNotification(ctx, bridge.Notification{
		ID:    c.deps.Now().UnixMilli(),
		Title: "Photo Captured",
		Body:  "Your product photo has been saved",
	})
	if err != nil {
		return c.actionFailed(cameraAction, "Camera", "Failed to access camera: ", err)
	}

	c.deps.Recorder.ObserveAction(cameraAction, nil)
	return state.Notice{Kind: state.NoticeInfo, Title: "Camera", Message: "Photo captured successfully!"}
}

// ShowLocation fetches the device position after securing location permission.
func (c *Controller) ShowLocation(ctx context.Context) state.Notice {
	features := c.deps.Features

	granted, err := ensurePermission(ctx, features.CheckLocationPermissions, features.RequestLocationPermissions)
	if err != nil {
		return c.actionFailed(locationAction, "Location", "Failed to get location: ", err)
	}
	if !granted {
		c.deps.Recorder.ObserveAction(locationAction, bridge.ErrPermissionDenied)
		return state.Notice{Kind: state.NoticeWarning, Title: "Location", Message: locationDenied, Err: bridge.ErrPermissionDenied}
	}

	pos, err := features.GetCurrentLocation(ctx)
	if err != nil {
		return c.actionFailed(locationAction, "Location", "Failed to get location: ", err)
	}
	c.log.Info().Float64("latitude", pos.Coords.Latitude).Float64("longitude", pos.Coords.Longitude).Msg("current location")

	c.deps.Recorder.ObserveAction(locationAction, nil)
	return state.Notice{
		Kind:    state.NoticeInfo,
		Title:   "Location",
		Message: fmt.Sprintf("Location:\nLatitude: %.4f\nLongitude: %.4f", pos.Coords.Latitude, pos.Coords.Longitude),
	}
}

// ensurePermission checks first and only asks when the check says no.
func ensurePermission(ctx context.Context, check, request func(context.Context) (bool, error)) (bool, error) {
	granted, err := check(ctx)
	if err != nil {
		return false, err
	}
	if granted {
		return true, nil
	}
	return request(ctx)
}

func (c *Controller) actionFailed(action, title, prefix string, err error) state.Notice {
	c.log.Error().Err(err).Str("action", action).Msg("native action failed")
	c.deps.Recorder.ObserveAction(action, err)
	return state.Notice{Kind: state.NoticeError, Title: title, Message: prefix + err.Error(), Err: err}
}
