package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/deskpilot/api/schemas"
	"github.com/xkilldash9x/deskpilot/internal/mcp"
	"github.com/xkilldash9x/deskpilot/internal/observability"
)

// newRunCmd creates the `run` command: attach, execute a single action, print
// its result, and exit non-zero if the action failed.
func newRunCmd() *cobra.Command {
	var params []string

	runCmd := &cobra.Command{
		Use:   "run <action>",
		Short: "Execute one action against the terminal and print its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			parsed, err := parseParams(params)
			if err != nil {
				return err
			}

			core, err := mcp.NewCore(cfg, logger)
			if err != nil {
				return err
			}
			if err := core.Manager.Attach(ctx); err != nil {
				return err
			}

			result := core.Exec.Execute(ctx, schemas.ActionRequest{
				Name:   args[0],
				Params: parsed,
			})

			out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, string(out))

			if !result.Success {
				// The result was printed; signal failure without re-printing.
				cmd.SilenceErrors = true
				cmd.SilenceUsage = true
				return fmt.Errorf("action %s failed: %s", args[0], result.Error)
			}
			return nil
		},
	}

	runCmd.Flags().StringArrayVarP(&params, "param", "p", nil,
		"action parameter as key=value (repeatable)")
	return runCmd
}

// parseParams converts repeated key=value flags into action parameters,
// coercing obvious booleans and numbers so `--param quantity=100` arrives as
// a number the way a JSON boundary would deliver it.
func parseParams(pairs []string) (schemas.Params, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(schemas.Params, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("malformed parameter %q, expected key=value", pair)
		}
		out[key] = coerceParam(value)
	}
	return out, nil
}

func coerceParam(value string) any {
	// Numbers before booleans: ParseBool accepts "1" and "0".
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return value
}

func init() {
	rootCmd.AddCommand(newRunCmd())
}
