package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	mdwlog "github.com/msto63/mdispatch/foundation/core/log"
	"github.com/msto63/mdispatch/pkg/core/config"
	"github.com/msto63/mdispatch/pkg/core/logging"
	"github.com/msto63/mdispatch/pkg/dispatch"
	"github.com/msto63/mdispatch/pkg/manifest"
)

var (
	cfgFile       string
	manifestPaths []string
	verbose       bool

	cfg    *config.Config
	logger *mdwlog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mdispatch",
	Short: "mdispatch - predicate dispatch from declarative manifests",
	Long: `mdispatch loads classes, generic functions and registrations from
YAML or TOML manifests and resolves calls against them.

Arguments are YAML scalars; class:<Name> passes an instance of a class.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
			if err == nil {
				err = cfg.ApplyEnv()
			}
		} else {
			cfg, err = config.LoadFromEnv()
		}
		if err != nil {
			return err
		}

		lc := logging.FromConfig(cfg)
		lc.Output = cmd.ErrOrStderr()
		logger = logging.NewLogger(lc)
		if verbose {
			logger.SetLevel(mdwlog.LevelDebug)
		}
		mdwlog.SetDefault(logger)
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $MDISPATCH_CONFIG or ./mdispatch.toml)")
	rootCmd.PersistentFlags().StringArrayVarP(&manifestPaths, "manifest", "m", nil, "manifest file, repeatable; added to those in the config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadManifests builds every manifest named in the config and on the
// command line into one registry.
func loadManifests() (*manifest.Built, error) {
	paths := append(append([]string(nil), cfg.Dispatch.Manifests...), manifestPaths...)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no manifest given, use --manifest or dispatch.manifests in the config")
	}

	ms := make([]*manifest.Manifest, 0, len(paths))
	for _, p := range paths {
		m, err := manifest.Load(p)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}

	built, err := manifest.Merge(ms...).Build(logger, dispatch.WithRegistryCache(cfg.CacheConfig()))
	if err != nil {
		return nil, err
	}
	if cfg.Dispatch.Seal {
		built.Registry.Seal()
	}
	return built, nil
}

// callArgs parses positional arguments and key=value keywords.
func callArgs(built *manifest.Built, positional, keywords []string) (dispatch.Args, error) {
	args := dispatch.NewArgs()
	for _, raw := range positional {
		v, err := built.ParseArg(raw)
		if err != nil {
			return args, err
		}
		args.Positional = append(args.Positional, v)
	}
	for _, kv := range keywords {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return args, fmt.Errorf("keyword %q is not of the form name=value", kv)
		}
		v, err := built.ParseArg(raw)
		if err != nil {
			return args, err
		}
		args = args.With(name, v)
	}
	return args, nil
}
