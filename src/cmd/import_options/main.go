package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jiaming2012/skew-entropy/src/data"
	"github.com/jiaming2012/skew-entropy/src/dbutils"
	"github.com/jiaming2012/skew-entropy/src/eventmodels"
	"github.com/jiaming2012/skew-entropy/src/eventservices"
	"github.com/jiaming2012/skew-entropy/src/logger"
	"github.com/jiaming2012/skew-entropy/src/utils"
)

var rootCmd = &cobra.Command{
	Use:   "import_options",
	Short: "Loads daily options chain csv files into postgres",
	Long: `Every *.csv file in the daily folder is parsed and stored in the options_data table,
replacing any rows already stored for its quote date. Imported files are moved to the archive folder.
Files with rows missing a bid or ask are left in place.
	`,
	Run: func(cmd *cobra.Command, args []string) {
		goEnv, _ := cmd.Flags().GetString("go-env")
		envDir, _ := cmd.Flags().GetString("env-dir")
		year, _ := cmd.Flags().GetInt("year")
		logLevel, _ := cmd.Flags().GetString("log-level")

		if err := logger.Setup(eventmodels.LogConfigYAML{Level: logLevel}, false); err != nil {
			log.Fatalf("error setting up logger: %v", err)
		}

		if err := utils.InitEnvironmentVariables(envDir, goEnv); err != nil {
			log.Warnf("error loading environment variables: %v", err)
		}

		dailyFolder, err := utils.GetEnv("DAILY_DATA_FOLDER")
		if err != nil {
			log.Fatalf("error getting daily data folder: %v", err)
		}

		archiveFolder, err := utils.GetEnv("ARCHIVE_FOLDER")
		if err != nil {
			log.Fatalf("error getting archive folder: %v", err)
		}

		cfg, err := dbutils.NewPostgresConfigFromEnv()
		if err != nil {
			log.Fatalf("error reading postgres config: %v", err)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		store := data.NewPostgresStore(cfg)
		if err := store.Migrate(ctx); err != nil {
			log.Fatalf("error migrating database: %v", err)
		}

		result, err := eventservices.ImportDailyOptions(ctx, store, eventservices.ImportDailyOptionsArgs{
			DailyFolder:   dailyFolder,
			ArchiveFolder: archiveFolder,
			Year:          year,
		})
		if err != nil {
			log.Fatalf("error importing options: %v", err)
		}

		log.Infof("Imported %d files (%d rows), skipped %d files", len(result.Imported), result.Rows, len(result.Skipped))
	},
}

func main() {
	rootCmd.PersistentFlags().StringVarP(new(string), "go-env", "g", "development", "The go environment to run the command in.")
	rootCmd.PersistentFlags().StringVar(new(string), "env-dir", "", "Directory holding the .env files. Defaults to $PROJECTS_DIR/skew-entropy.")
	rootCmd.PersistentFlags().IntVar(new(int), "year", eventservices.DefaultQuoteYear, "Year of the quote dates in the file names.")
	rootCmd.PersistentFlags().StringVar(new(string), "log-level", "info", "Log level.")

	cobra.CheckErr(rootCmd.Execute())
}
