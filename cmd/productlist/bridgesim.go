package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/luxury-retail/productlist/internal/bridge"
)

func newBridgeSimCmd() *cobra.Command {
	var (
		addr     string
		platform string
		deny     bool
		granted  []string
	)

	cmd := &cobra.Command{
		Use:   "bridge-sim",
		Short: "Serve a simulated native bridge over HTTP",
		Long: `bridge-sim serves the native bridge API backed by an in-memory simulator.
Point bridge.url at it to exercise the camera and location flows.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caps := make([]bridge.Capability, 0, len(granted))
			for _, g := range granted {
				caps = append(caps, bridge.Capability(g))
			}
			sim := bridge.NewSimulator(bridge.SimulatorOptions{
				Platform:       platform,
				GrantOnRequest: !deny,
				Granted:        caps,
				Location:       bridge.Coords{Latitude: 48.867500, Longitude: 2.329400},
			})

			srv := &http.Server{
				Addr:              addr,
				Handler:           sim.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()
			fmt.Fprintf(cmd.OutOrStdout(), "bridge simulator listening on %s\n", addr)

			select {
			case err := <-errCh:
				return fmt.Errorf("bridge simulator: %w", err)
			case <-cmd.Context().Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:7420", "listen address")
	cmd.Flags().StringVar(&platform, "platform", "web", "platform name reported to clients")
	cmd.Flags().BoolVar(&deny, "deny", false, "deny permission requests")
	cmd.Flags().StringSliceVar(&granted, "granted", nil, "capabilities granted at start (camera, location, notifications)")
	return cmd
}
