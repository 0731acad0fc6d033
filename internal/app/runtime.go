package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/luxury-retail/productlist/internal/bridge"
	"github.com/luxury-retail/productlist/internal/config"
	"github.com/luxury-retail/productlist/internal/metrics"
	"github.com/luxury-retail/productlist/internal/nav"
	"github.com/luxury-retail/productlist/internal/netstatus"
	"github.com/luxury-retail/productlist/internal/offline"
	"github.com/luxury-retail/productlist/internal/storage"
)

// Options configure a product list run.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/productlist/prefs.toml
	EnvFile    string // empty uses ./.env when present
	// Offline pins the network state to disconnected.
	Offline bool
	// Ephemeral keeps the cache in memory for this run only.
	Ephemeral bool
	PollEvery time.Duration
}

// Flagship store coordinates reported by the simulated bridge.
var simulatedLocation = bridge.Coords{Latitude: 48.867500, Longitude: 2.329400}

// Runtime is the assembled set of components behind one run.
type Runtime struct {
	Config     config.Config
	Log        zerolog.Logger
	Store      storage.Store
	Features   bridge.Features
	Network    netstatus.Source
	Navigator  *nav.Navigator
	Drainer    *offline.Drainer
	Metrics    *metrics.Metrics
	Controller *Controller

	prober   *netstatus.Prober
	schedule *offline.Schedule
}

// LoadConfig loads the .env file and then the TOML config named by opts.
func LoadConfig(opts Options) (config.Config, error) {
	if err := config.LoadDotEnv(opts.EnvFile); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Open builds every component named by cfg. The caller owns the result and must Close it.
func Open(ctx context.Context, cfg config.Config, opts Options, log zerolog.Logger) (*Runtime, error) {
	rt := &Runtime{Config: cfg, Log: log, Metrics: metrics.New()}

	storeCfg := storage.Config{
		Driver:    cfg.Storage.Driver,
		Path:      cfg.CachePath(),
		DSN:       cfg.Storage.DSN,
		RedisAddr: cfg.Storage.RedisAddr,
		RedisDB:   cfg.Storage.RedisDB,
	}
	if opts.Ephemeral {
		storeCfg.Driver = storage.DriverMemory
	}
	store, err := storage.Open(ctx, storeCfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", storeCfg.Driver, err)
	}
	rt.Store = store

	if err := rt.openBridge(); err != nil {
		rt.Close()
		return nil, err
	}
	if err := rt.openNetwork(opts.Offline); err != nil {
		rt.Close()
		return nil, err
	}
	if err := rt.openNavigator(); err != nil {
		rt.Close()
		return nil, err
	}

	rt.Drainer = offline.NewDrainer(store, offline.Options{
		ReplaysPerSecond: cfg.Sync.ReplaysPerSecond,
		Observer:         rt.Metrics,
		Logger:           log.With().Str("component", "offline").Logger(),
	})

	rt.Controller, err = NewController(Deps{
		Store:    store,
		Features: rt.Features,
		Network:  rt.Network,
		Selector: rt.Navigator,
		Drainer:  rt.Drainer,
		Recorder: rt.Metrics,
		Logger:   log.With().Str("component", "controller").Logger(),
	})
	if err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func (rt *Runtime) openBridge() error {
	if strings.TrimSpace(rt.Config.Bridge.URL) == "" {
		rt.Features = bridge.NewSimulator(bridge.SimulatorOptions{
			Platform:       rt.Config.Bridge.Platform,
			GrantOnRequest: true,
			Location:       simulatedLocation,
		})
		return nil
	}
	client, err := bridge.NewClient(rt.Config.Bridge.URL, rt.Config.Bridge.Platform)
	if err != nil {
		return fmt.Errorf("init bridge client: %w", err)
	}
	rt.Features = client
	return nil
}

func (rt *Runtime) openNetwork(forceOffline bool) error {
	switch {
	case forceOffline:
		rt.Network = netstatus.NewStatic(false)
	case strings.TrimSpace(rt.Config.Network.ProbeURL) == "":
		rt.Network = netstatus.NewStatic(true)
	default:
		prober, err := netstatus.NewProber(rt.Config.Network.ProbeURL, rt.Config.Network.ProbeInterval,
			rt.Log.With().Str("component", "netstatus").Logger())
		if err != nil {
			return fmt.Errorf("init network prober: %w", err)
		}
		rt.prober = prober
		rt.Network = prober
	}
	return nil
}

func (rt *Runtime) openNavigator() error {
	var container *nav.Container
	if rt.Config.Embedded() {
		c, err := nav.NewContainer(rt.Config.Container.URL, rt.Config.Container.AllowedOrigins)
		if err != nil {
			return fmt.Errorf("init container channel: %w", err)
		}
		container = c
	}
	comm, err := nav.NewHTTPCommunicator(rt.Config.Apps)
	if err != nil {
		return fmt.Errorf("init communicator: %w", err)
	}
	rt.Navigator = nav.NewNavigator(container, comm, rt.Log.With().Str("component", "nav").Logger())
	rt.Navigator.OnNavigate = func(mode nav.Mode, err error) {
		rt.Metrics.ObserveNavigation(string(mode), err)
	}
	return nil
}

// StartServices launches the background work of an interactive run on g: network
// probing, scheduled syncs, queue polling and the metrics listener. Everything stops
// when ctx ends.
func (rt *Runtime) StartServices(ctx context.Context, g *errgroup.Group, pollEvery time.Duration) error {
	if rt.prober != nil {
		rt.prober.Start(ctx)
	}

	schedule, err := offline.StartSchedule(ctx, rt.Config.Sync.Schedule, rt.Drainer, rt.Log)
	if err != nil {
		return err
	}
	rt.schedule = schedule

	StartPoller(ctx, rt.Controller, pollEvery)

	if addr := strings.TrimSpace(rt.Config.Metrics.Addr); addr != "" {
		g.Go(func() error {
			if err := rt.Metrics.Serve(ctx, addr, rt.Log); err != nil {
				return fmt.Errorf("metrics listener: %w", err)
			}
			return nil
		})
	}
	return nil
}

// Close releases every component. It is safe to call on a partially opened Runtime.
func (rt *Runtime) Close() error {
	if rt == nil {
		return nil
	}
	if rt.Controller != nil {
		rt.Controller.Close()
	}
	rt.schedule.Stop()

	var errs []error
	if rt.Navigator != nil {
		if err := rt.Navigator.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close navigator: %w", err))
		}
	}
	if rt.Store != nil {
		if err := rt.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	return errors.Join(errs...)
}
