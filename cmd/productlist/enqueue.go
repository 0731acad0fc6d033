package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luxury-retail/productlist/internal/offline"
)

func newEnqueueCmd(flags *rootFlags) *cobra.Command {
	var headers []string

	cmd := &cobra.Command{
		Use:   "enqueue METHOD URL [BODY]",
		Short: "Queue a request for replay on the next sync",
		Example: `  productlist enqueue POST https://api.example.com/wishlist '{"productId":"1"}'
  productlist enqueue DELETE https://api.example.com/wishlist/1 -H "Authorization=Bearer abc"`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			hdrs, err := parseHeaders(headers)
			if err != nil {
				return err
			}
			var body any
			if len(args) == 3 {
				body = json.RawMessage(args[2])
			}

			rt, err := openRuntime(cmd.Context(), flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			req, err := offline.Enqueue(cmd.Context(), rt.Store, args[0], args[1], hdrs, body)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queued %s %s %s\n", req.ID, req.Method, req.URL)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "request header as name=value (repeatable)")
	return cmd
}

func parseHeaders(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("header %q: want name=value", v)
		}
		out[name] = strings.TrimSpace(value)
	}
	return out, nil
}
