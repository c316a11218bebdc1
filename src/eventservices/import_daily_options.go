package eventservices

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/skew-entropy/src/data"
	"github.com/jiaming2012/skew-entropy/src/eventmodels"
)

type ImportDailyOptionsArgs struct {
	DailyFolder   string
	ArchiveFolder string
	Year          int
}

type ImportDailyOptionsResult struct {
	Imported []string
	Skipped  []string
	Rows     int64
}

// ImportDailyOptions loads every chain file in the daily folder into the quote
// store. A file is moved to the archive folder only after its rows are stored;
// incomplete or failing files stay in place.
func ImportDailyOptions(ctx context.Context, writer data.OptionQuoteWriter, args ImportDailyOptionsArgs) (*ImportDailyOptionsResult, error) {
	if args.Year == 0 {
		args.Year = DefaultQuoteYear
	}

	if err := os.MkdirAll(args.ArchiveFolder, 0755); err != nil {
		return nil, fmt.Errorf("ImportDailyOptions: failed to create archive folder: %w", err)
	}

	files, err := listChainFiles(args.DailyFolder)
	if err != nil {
		return nil, fmt.Errorf("ImportDailyOptions: %w", err)
	}

	result := &ImportDailyOptionsResult{}

	if len(files) == 0 {
		log.Info("No new files to process.")
		return result, nil
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("ImportDailyOptions: %w", err)
		}

		rows, err := importChainFile(ctx, writer, path, args.Year)
		if err != nil {
			log.Errorf("Error processing %s: %v", path, err)
			result.Skipped = append(result.Skipped, path)
			continue
		}

		archivePath := filepath.Join(args.ArchiveFolder, filepath.Base(path))
		if err := os.Rename(path, archivePath); err != nil {
			return result, fmt.Errorf("ImportDailyOptions: failed to archive %s: %w", path, err)
		}

		log.Infof("File %s moved to archive folder.", filepath.Base(path))

		result.Imported = append(result.Imported, path)
		result.Rows += rows
	}

	return result, nil
}

func importChainFile(ctx context.Context, writer data.OptionQuoteWriter, path string, year int) (int64, error) {
	chain, err := ReadOptionChainFile(path, year)
	if err != nil {
		return 0, err
	}

	log.Infof("Processing file: %s with quote date: %s", path, chain.QuoteDate.Format(eventmodels.DateLayout))

	if !chain.IsComplete() {
		return 0, fmt.Errorf("row count mismatch: expected %d, found %d", chain.DataRowCount, chain.ValidRowCount)
	}

	rows, err := writer.ReplaceQuoteDate(ctx, chain.QuoteDate, chain.Rows)
	if err != nil {
		return 0, err
	}

	log.Infof("Data from %s inserted successfully. %d rows added.", path, rows)

	return rows, nil
}
