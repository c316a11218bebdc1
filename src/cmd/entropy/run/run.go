package run

import (
	"context"
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/skew-entropy/src/data"
	"github.com/jiaming2012/skew-entropy/src/dbutils"
	"github.com/jiaming2012/skew-entropy/src/eventmodels"
	"github.com/jiaming2012/skew-entropy/src/eventservices"
	"github.com/jiaming2012/skew-entropy/src/utils"
)

type RunArgs struct {
	GoEnv     string
	EnvDir    string
	Config    *eventmodels.PipelineConfigYAML
	StartDate time.Time
	EndDate   time.Time

	// CsvFolder reads chain files directly instead of the quote store.
	CsvFolder  string
	Year       int
	OutputPath string
	Save       bool
	ReportRows int
	Report     io.Writer
}

func Run(ctx context.Context, args RunArgs) (*eventservices.EntropyPipelineResult, error) {
	var source data.OptionQuoteSource
	var store *data.PostgresStore

	if args.Year == 0 {
		args.Year = eventservices.DefaultQuoteYear
	}

	if args.CsvFolder == "" || args.Save {
		if err := utils.InitEnvironmentVariables(args.EnvDir, args.GoEnv); err != nil {
			log.Warnf("Run: %v", err)
		}

		cfg, err := dbutils.NewPostgresConfigFromEnv()
		if err != nil {
			return nil, fmt.Errorf("Run: failed to read postgres config: %w", err)
		}

		store = data.NewPostgresStore(cfg)
		if err := store.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("Run: %w", err)
		}
	}

	if args.CsvFolder != "" {
		quotes, err := eventservices.LoadOptionQuotesFromFolder(args.CsvFolder, args.Year)
		if err != nil {
			return nil, fmt.Errorf("Run: %w", err)
		}
		source = data.NewInMemoryOptionQuoteSource(quotes)
	} else {
		source = store
	}

	pipeline, err := eventservices.NewEntropyPipeline(source, args.Config)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	result, err := pipeline.Run(ctx, args.StartDate, args.EndDate)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	if args.OutputPath != "" {
		if err := eventservices.ExportEntropyCsv(args.OutputPath, result.Run.Points); err != nil {
			return nil, fmt.Errorf("Run: %w", err)
		}
	}

	if args.Save {
		if err := store.SaveEntropyRun(ctx, result.Run); err != nil {
			return nil, fmt.Errorf("Run: %w", err)
		}
		log.Infof("Saved entropy run %s", result.Run.ID)
	}

	if args.Report != nil {
		eventservices.WriteEntropyReport(args.Report, result, args.ReportRows)
	}

	return result, nil
}
