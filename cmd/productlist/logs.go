package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luxury-retail/productlist/internal/app"
	"github.com/luxury-retail/productlist/internal/logtail"
)

func newLogsCmd(flags *rootFlags) *cobra.Command {
	var (
		lines int
		path  string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the tail of the activity log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				cfg, err := app.LoadConfig(flags.options())
				if err != nil {
					return err
				}
				path = cfg.LogPath()
			}

			tail, err := logtail.Read(path, lines)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range tail {
				if strings.TrimSpace(line) == "" {
					continue
				}
				fmt.Fprintln(out, logtail.Format(logtail.Parse(line)))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines to show (0 for all)")
	cmd.Flags().StringVar(&path, "file", "", "log file to read (default from config)")
	return cmd
}
