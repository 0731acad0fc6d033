package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/luxury-retail/productlist/internal/logging"
	"github.com/luxury-retail/productlist/internal/nav"
	"github.com/luxury-retail/productlist/internal/prefs"
	"github.com/luxury-retail/productlist/internal/ui"
)

// Run boots the product list TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log, logFile, err := logging.OpenFile(cfg.LogPath(), level)
	if err != nil {
		return err
	}
	defer logFile.Close()
	ctx = logging.WithContext(ctx, log)

	rt, err := Open(ctx, cfg, opts, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if err := rt.StartServices(gctx, g, opts.PollEvery); err != nil {
		return fmt.Errorf("start services: %w", err)
	}

	// Load before the UI starts so the first frame has products.
	if err := rt.Controller.Start(gctx); err != nil {
		return err
	}
	rt.Controller.RestoreCategory(userPrefs.Category)

	g.Go(func() error {
		defer cancel()
		return ui.Run(ui.Options{
			Context:    gctx,
			Controller: rt.Controller,
			ThemeName:  userPrefs.Theme,
			PrefsPath:  opts.PrefsPath,
			LogPath:    cfg.LogPath(),
			Embedded:   rt.Navigator.Mode() == nav.Embedded,
		})
	})
	return g.Wait()
}
