package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jiaming2012/skew-entropy/src/data"
	"github.com/jiaming2012/skew-entropy/src/dbutils"
	"github.com/jiaming2012/skew-entropy/src/eventmodels"
	"github.com/jiaming2012/skew-entropy/src/eventproducers/entropyapi"
	"github.com/jiaming2012/skew-entropy/src/logger"
	"github.com/jiaming2012/skew-entropy/src/telemetry"
	"github.com/jiaming2012/skew-entropy/src/utils"
)

var rootCmd = &cobra.Command{
	Use:   "entropy_api",
	Short: "Serves skewness and entropy series over http",
	Run: func(cmd *cobra.Command, args []string) {
		goEnv, _ := cmd.Flags().GetString("go-env")
		envDir, _ := cmd.Flags().GetString("env-dir")
		configPath, _ := cmd.Flags().GetString("config")

		config, err := eventmodels.LoadPipelineConfig(configPath)
		if err != nil {
			log.Fatalf("error loading config: %v", err)
		}

		if err := utils.InitEnvironmentVariables(envDir, goEnv); err != nil {
			log.Warnf("error loading environment variables: %v", err)
		}

		if err := logger.Setup(config.Log, telemetry.Enabled()); err != nil {
			log.Fatalf("error setting up logger: %v", err)
		}

		port := utils.GetEnvOrDefault("PORT", "8080")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if telemetry.Enabled() {
			shutdown, err := telemetry.SetupOTelSDK(ctx, "entropy_api")
			if err != nil {
				log.Fatalf("error setting up telemetry: %v", err)
			}
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					log.Warnf("error shutting down telemetry: %v", err)
				}
			}()
		}

		dbConfig, err := dbutils.NewPostgresConfigFromEnv()
		if err != nil {
			log.Fatalf("error reading postgres config: %v", err)
		}

		store := data.NewPostgresStore(dbConfig)
		if err := store.Migrate(ctx); err != nil {
			log.Fatalf("error migrating database: %v", err)
		}

		router := mux.NewRouter()
		entropyapi.SetupHandler(router, entropyapi.NewHandler(store, store, config))

		srv := &http.Server{
			Handler:           otelhttp.NewHandler(router, "entropy_api"),
			Addr:              fmt.Sprintf(":%s", port),
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext: func(_ net.Listener) context.Context {
				return ctx
			},
		}

		go func() {
			log.Infof("listening on :%s", port)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		log.Info("Main: init complete")

		<-stop

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("failed to shut down server: %v", err)
		}

		cancel()

		log.Info("Main: gracefully stopped!")
	},
}

func main() {
	rootCmd.PersistentFlags().StringVarP(new(string), "go-env", "g", "development", "The go environment to run the command in.")
	rootCmd.PersistentFlags().StringVar(new(string), "env-dir", "", "Directory holding the .env files. Defaults to $PROJECTS_DIR/skew-entropy.")
	rootCmd.PersistentFlags().StringVarP(new(string), "config", "c", "", "Path to the pipeline yaml config.")

	cobra.CheckErr(rootCmd.Execute())
}
