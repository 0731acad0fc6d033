package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

// Ensure Simulator implements Features at compile time.
var _ Features = (*Simulator)(nil)

// SimulatorOptions seed a Simulator.
type SimulatorOptions struct {
	Platform string
	// GrantOnRequest controls the answer to permission requests.
	GrantOnRequest bool
	// Granted lists capabilities that start out granted.
	Granted  []Capability
	Location Coords
}

// Simulator is an in-process stand-in for the native bridge. It implements Features
// directly and serves the same HTTP API as the bridge daemon through Handler.
type Simulator struct {
	mu             sync.Mutex
	platform       string
	grantOnRequest bool
	states         map[Capability]PermissionState
	failures       map[Capability]error
	location       Coords
	pictures       int
	notifications  []Notification
	now            func() time.Time
}

// NewSimulator builds a Simulator. Capabilities not listed in opts.Granted start in
// the Prompt state.
func NewSimulator(opts SimulatorOptions) *Simulator {
	platform := strings.TrimSpace(opts.Platform)
	if platform == "" {
		platform = defaultPlatform
	}
	s := &Simulator{
		platform:       platform,
		grantOnRequest: opts.GrantOnRequest,
		states: map[Capability]PermissionState{
			Camera:        Prompt,
			Location:      Prompt,
			Notifications: Prompt,
		},
		failures: make(map[Capability]error),
		location: opts.Location,
		now:      time.Now,
	}
	for _, c := range opts.Granted {
		s.states[c] = Granted
	}
	return s
}

// SetPermission forces the permission state of a capability.
func (s *Simulator) SetPermission(c Capability, state PermissionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[c] = state
}

// SetGrantOnRequest changes how future permission requests are answered.
func (s *Simulator) SetGrantOnRequest(grant bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grantOnRequest = grant
}

// FailNext makes the next camera or location action fail with err.
func (s *Simulator) FailNext(c Capability, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[c] = err
}

// Notifications returns the notifications sent so far.
func (s *Simulator) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.notifications...)
}

// Pictures returns how many pictures have been taken.
func (s *Simulator) Pictures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pictures
}

func (s *Simulator) CheckAllPermissions(context.Context) (Permissions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Permissions{
		Camera:        s.states[Camera],
		Location:      s.states[Location],
		Notifications: s.states[Notifications],
		Platform:      s.platform,
	}, nil
}

func (s *Simulator) CheckCameraPermissions(context.Context) (bool, error) {
	return s.granted(Camera), nil
}

func (s *Simulator) RequestCameraPermissions(context.Context) (bool, error) {
	return s.requestGrant(Camera), nil
}

func (s *Simulator) CheckLocationPermissions(context.Context) (bool, error) {
	return s.granted(Location), nil
}

func (s *Simulator) RequestLocationPermissions(context.Context) (bool, error) {
	return s.requestGrant(Location), nil
}

func (s *Simulator) TakePicture(_ context.Context, opts PictureOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(Camera); err != nil {
		return "", err
	}
	if s.states[Camera] != Granted {
		return "", fmt.Errorf("take picture: %w", ErrPermissionDenied)
	}
	if opts.Quality < 0 || opts.Quality > 100 {
		return "", fmt.Errorf("take picture: quality %d out of range", opts.Quality)
	}
	s.pictures++
	return fmt.Sprintf("file:///simulator/photos/%d.jpg", s.pictures), nil
}

func (s *Simulator) SendLocalNotification(_ context.Context, n Notification) error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("notification title required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
	return nil
}

func (s *Simulator) GetCurrentLocation(context.Context) (Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(Location); err != nil {
		return Position{}, err
	}
	if s.states[Location] != Granted {
		return Position{}, fmt.Errorf("get location: %w", ErrPermissionDenied)
	}
	return Position{Coords: s.location, Timestamp: s.now().UnixMilli()}, nil
}

func (s *Simulator) Platform() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.platform
}

func (s *Simulator) granted(c Capability) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[c] == Granted
}

func (s *Simulator) requestGrant(c Capability) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.states[c] == Granted {
		return true
	}
	if s.grantOnRequest {
		s.states[c] = Granted
		return true
	}
	s.states[c] = Denied
	return false
}

// takeFailure pops an injected failure. Callers hold s.mu.
func (s *Simulator) takeFailure(c Capability) error {
	err, ok := s.failures[c]
	if !ok {
		return nil
	}
	delete(s.failures, c)
	return err
}

// Handler serves the bridge HTTP API backed by s.
func (s *Simulator) Handler() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/permissions", s.handlePermissions).Methods(http.MethodGet)
	api.HandleFunc("/permissions/{capability}", s.handleCheck).Methods(http.MethodGet)
	api.HandleFunc("/permissions/{capability}/request", s.handleRequest).Methods(http.MethodPost)
	api.HandleFunc("/camera/picture", s.handlePicture).Methods(http.MethodPost)
	api.HandleFunc("/notifications", s.handleNotification).Methods(http.MethodPost)
	api.HandleFunc("/location", s.handleLocation).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Simulator) handlePermissions(w http.ResponseWriter, r *http.Request) {
	perms, _ := s.CheckAllPermissions(r.Context())
	writeJSON(w, http.StatusOK, perms)
}

func (s *Simulator) handleCheck(w http.ResponseWriter, r *http.Request) {
	c, ok := capabilityVar(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, grantResponse{Granted: s.granted(c)})
}

func (s *Simulator) handleRequest(w http.ResponseWriter, r *http.Request) {
	c, ok := capabilityVar(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, grantResponse{Granted: s.requestGrant(c)})
}

func (s *Simulator) handlePicture(w http.ResponseWriter, r *http.Request) {
	var opts PictureOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid picture options"})
		return
	}
	imageURL, err := s.TakePicture(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pictureResponse{ImageURL: imageURL})
}

func (s *Simulator) handleNotification(w http.ResponseWriter, r *http.Request) {
	var n Notification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid notification"})
		return
	}
	if err := s.SendLocalNotification(r.Context(), n); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Simulator) handleLocation(w http.ResponseWriter, r *http.Request) {
	pos, err := s.GetCurrentLocation(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pos)
}

func capabilityVar(w http.ResponseWriter, r *http.Request) (Capability, bool) {
	switch c := Capability(mux.Vars(r)["capability"]); c {
	case Camera, Location, Notifications:
		return c, true
	default:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("unknown capability %q", c)})
		return "", false
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, ErrPermissionDenied) {
		status = http.StatusForbidden
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
