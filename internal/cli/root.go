package cli

import (
	"github.com/spf13/cobra"

	"github.com/couchcryptid/quake-report/internal/adapter/usgs"
	"github.com/couchcryptid/quake-report/internal/config"
	"github.com/couchcryptid/quake-report/internal/observability"
	"github.com/couchcryptid/quake-report/internal/pipeline"
)

var version = "dev" // set with -ldflags "-X .../internal/cli.version=..."

// queryFlags override the environment's feed query for one invocation.
type queryFlags struct {
	url          string
	minMagnitude float64
	orderBy      string
	limit        int
}

func (f *queryFlags) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&f.url, "url", config.DefaultUSGSURL, "USGS event query endpoint")
	flags.Float64Var(&f.minMagnitude, "min-magnitude", 6, "smallest magnitude to include")
	flags.StringVar(&f.orderBy, "order-by", "time", "result order: time, time-asc, magnitude, magnitude-asc")
	flags.IntVar(&f.limit, "limit", 10, "maximum number of earthquakes")
}

// apply copies flags the user actually set; unset flags keep the env value.
func (f *queryFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.USGSURL = f.url
	}
	if flags.Changed("min-magnitude") {
		cfg.MinMagnitude = f.minMagnitude
	}
	if flags.Changed("order-by") {
		cfg.OrderBy = f.orderBy
	}
	if flags.Changed("limit") {
		cfg.Limit = f.limit
	}
}

func newRootCmd(a *app) *cobra.Command {
	var (
		verbose bool
		query   queryFlags
	)

	root := &cobra.Command{
		Use:          "quakereport",
		Short:        "Recent earthquakes from the USGS event feed",
		Long:         `quakereport fetches recent earthquakes from the USGS GeoJSON event API and shows them as a colour-coded list, an interactive browser, an HTTP service, or Kafka messages.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			query.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			if verbose {
				cfg.LogLevel = "debug"
			}
			a.cfg = cfg
			a.logger = observability.NewLogger(a.stderr, cfg)
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	query.register(root)

	root.AddCommand(newListCmd(a))
	root.AddCommand(newBrowseCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newPublishCmd(a))

	return root
}

// newLoader wires the USGS client to a Loader for the configured query.
// publisher may be nil.
func (a *app) newLoader(metrics *observability.Metrics, publisher pipeline.Publisher) *pipeline.Loader {
	client := usgs.NewClient(a.cfg.ConnectTimeout, a.cfg.ReadTimeout, metrics, a.logger)
	return pipeline.NewLoader(client, publisher, a.cfg.QueryURL(), a.logger, metrics)
}
