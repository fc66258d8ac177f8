package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tubetext/tubetext/internal/config"
	"github.com/tubetext/tubetext/internal/resolver"
)

// newExtractCmd is the one-shot form: resolve a single video and print
// the same JSON the HTTP endpoint would return.
func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <video-id-or-url>",
		Short: "Extract a single transcript and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			res, err := buildResolver(cfg)
			if err != nil {
				return err
			}

			result, err := res.Resolve(context.Background(), args[0])
			if err != nil {
				var failure *resolver.Failure
				if errors.As(err, &failure) {
					printJSON(cmd, failure)
				}
				return err
			}

			printJSON(cmd, result)
			return nil
		},
	}
}

func printJSON(cmd *cobra.Command, v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
}
