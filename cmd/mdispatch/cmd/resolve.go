package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	mdwlog "github.com/msto63/mdispatch/foundation/core/log"
	"github.com/msto63/mdispatch/pkg/dispatch"
)

var (
	keywordArgs []string
	showKeys    bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <function> [args...]",
	Short: "Call a generic function and print its result",
	Long: `Resolves a call against the loaded manifests and prints the result of
the selected registration.

Examples:
  mdispatch resolve -m zoo.yaml greet class:Dog
  mdispatch resolve -m zoo.yaml greet class:Cat --kw mode=fast`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringArrayVar(&keywordArgs, "kw", nil, "keyword argument name=value, repeatable")
	resolveCmd.Flags().BoolVar(&showKeys, "keys", false, "also print the extracted key tuple")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	built, err := loadManifests()
	if err != nil {
		return err
	}
	call, err := callArgs(built, args[1:], keywordArgs)
	if err != nil {
		return err
	}

	gf, err := built.Registry.Function(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if showKeys {
		keys, err := gf.Keys(call)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, subtitleStyle.Render("keys "+dispatch.FormatKeys(keys)))
	}

	result, err := gf.Call(call)
	if err != nil {
		fields := mdwlog.Fields{"function": args[0], "args": call.String()}
		if errors.Is(err, dispatch.ErrNoImplementation) {
			logger.WarnWithErr("call not resolved", err, fields)
			return fmt.Errorf("%s%s: no implementation matches", args[0], call)
		}
		logger.ErrorWithErr("call failed", err, fields)
		return err
	}
	fmt.Fprintln(out, result)
	return nil
}
