package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jiaming2012/skew-entropy/src/cmd/entropy/run"
	"github.com/jiaming2012/skew-entropy/src/eventmodels"
	"github.com/jiaming2012/skew-entropy/src/logger"
	"github.com/jiaming2012/skew-entropy/src/telemetry"
)

var rootCmd = &cobra.Command{
	Use:   "entropy",
	Short: "Computes the approximate entropy of the options skewness premium",
	Long: `Loads option quotes between two dates and runs the pipeline:
1.) One skewness premium per quote date, from the deepest out-of-the-money call and put inside the DTE band
2.) Approximate entropy of the skewness series over a sliding window
The result is printed as a table and optionally written to csv and stored in postgres.
	`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			log.Fatalf("error getting config flag: %v", err)
		}

		config, err := eventmodels.LoadPipelineConfig(configPath)
		if err != nil {
			log.Fatalf("error loading config: %v", err)
		}

		if err := applyFlagOverrides(cmd, config); err != nil {
			log.Fatalf("error reading flags: %v", err)
		}

		if err := config.Validate(); err != nil {
			log.Fatalf("invalid configuration: %v", err)
		}

		if err := logger.Setup(config.Log, telemetry.Enabled()); err != nil {
			log.Fatalf("error setting up logger: %v", err)
		}

		startDate, endDate, err := parseDates(cmd)
		if err != nil {
			log.Fatalf("error parsing dates: %v", err)
		}

		goEnv, _ := cmd.Flags().GetString("go-env")
		envDir, _ := cmd.Flags().GetString("env-dir")
		csvFolder, _ := cmd.Flags().GetString("csv-folder")
		year, _ := cmd.Flags().GetInt("year")
		output, _ := cmd.Flags().GetString("output")
		save, _ := cmd.Flags().GetBool("save")
		rows, _ := cmd.Flags().GetInt("rows")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if telemetry.Enabled() {
			shutdown, err := telemetry.SetupOTelSDK(ctx, "entropy")
			if err != nil {
				log.Fatalf("error setting up telemetry: %v", err)
			}
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					log.Warnf("error shutting down telemetry: %v", err)
				}
			}()
		}

		if _, err := run.Run(ctx, run.RunArgs{
			GoEnv:      goEnv,
			EnvDir:     envDir,
			Config:     config,
			StartDate:  startDate,
			EndDate:    endDate,
			CsvFolder:  csvFolder,
			Year:       year,
			OutputPath: output,
			Save:       save,
			ReportRows: rows,
			Report:     os.Stdout,
		}); err != nil {
			log.Errorf("error running command: %v", err)
			cancel()
			os.Exit(1)
		}
	},
}

func parseDates(cmd *cobra.Command) (time.Time, time.Time, error) {
	startStr, err := cmd.Flags().GetString("start-date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	startDate, err := time.Parse(eventmodels.DateLayout, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	endStr, err := cmd.Flags().GetString("end-date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if endStr == "" {
		return startDate, time.Time{}, nil
	}

	endDate, err := time.Parse(eventmodels.DateLayout, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	return startDate, endDate, nil
}

func applyFlagOverrides(cmd *cobra.Command, config *eventmodels.PipelineConfigYAML) error {
	flags := cmd.Flags()

	intFlags := map[string]*int{
		"min-dte":       &config.Skewness.MinDte,
		"max-dte":       &config.Skewness.MaxDte,
		"window":        &config.Entropy.WindowWidth,
		"step":          &config.Entropy.SlidingStep,
		"embedding-dim": &config.Entropy.EmbeddingDim,
		"workers":       &config.Entropy.Workers,
	}

	for name, dst := range intFlags {
		if !flags.Changed(name) {
			continue
		}

		v, err := flags.GetInt(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	if flags.Changed("tolerance") {
		r, err := flags.GetFloat64("tolerance")
		if err != nil {
			return err
		}
		config.Entropy.Tolerance = &r
	}

	if flags.Changed("log-level") {
		level, err := flags.GetString("log-level")
		if err != nil {
			return err
		}
		config.Log.Level = level
	}

	return nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(new(string), "start-date", "s", "", "First quote date, e.g. 2024-01-01. This flag is required.")
	rootCmd.PersistentFlags().StringVarP(new(string), "end-date", "e", "", "Last quote date. Defaults to today.")
	rootCmd.PersistentFlags().StringVarP(new(string), "config", "c", "", "Path to the pipeline yaml config.")
	rootCmd.PersistentFlags().StringVarP(new(string), "go-env", "g", "development", "The go environment to run the command in.")
	rootCmd.PersistentFlags().StringVar(new(string), "env-dir", "", "Directory holding the .env files. Defaults to $PROJECTS_DIR/skew-entropy.")
	rootCmd.PersistentFlags().StringVar(new(string), "csv-folder", "", "Read chain csv files from this folder instead of postgres.")
	rootCmd.PersistentFlags().IntVar(new(int), "year", 2024, "Year of the quote dates in chain csv file names.")
	rootCmd.PersistentFlags().StringVarP(new(string), "output", "o", "", "Write the entropy series to this csv file.")
	rootCmd.PersistentFlags().BoolVar(new(bool), "save", false, "Store the run in postgres.")
	rootCmd.PersistentFlags().IntVar(new(int), "rows", 20, "Number of rows in the printed table. 0 prints all rows.")

	rootCmd.PersistentFlags().IntVar(new(int), "min-dte", eventmodels.DefaultMinDte, "Lower bound (exclusive) of days to expiry.")
	rootCmd.PersistentFlags().IntVar(new(int), "max-dte", eventmodels.DefaultMaxDte, "Upper bound (exclusive) of days to expiry.")
	rootCmd.PersistentFlags().IntVarP(new(int), "window", "w", eventmodels.DefaultWindowWidth, "Sliding window width.")
	rootCmd.PersistentFlags().IntVar(new(int), "step", eventmodels.DefaultSlidingStep, "Sliding window step.")
	rootCmd.PersistentFlags().IntVarP(new(int), "embedding-dim", "m", eventmodels.DefaultEmbeddingDim, "Embedding dimension.")
	rootCmd.PersistentFlags().Float64Var(new(float64), "tolerance", 0, "Similarity tolerance. Defaults to 0.15 times the series standard deviation.")
	rootCmd.PersistentFlags().IntVar(new(int), "workers", eventmodels.DefaultWorkers, "Number of windows computed concurrently.")
	rootCmd.PersistentFlags().StringVar(new(string), "log-level", "", "Overrides the configured log level.")

	rootCmd.MarkPersistentFlagRequired("start-date")

	cobra.CheckErr(rootCmd.Execute())
}
