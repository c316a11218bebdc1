package eventservices

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/skew-entropy/src/eventmodels"
)

const (
	// DefaultQuoteYear is used for file names that only carry month and day.
	DefaultQuoteYear = 2024

	chainPreambleLines = 4
	chainColumnCount   = 22
	underlyingLastKey  = "Last:"
)

// OptionChainFile is a parsed daily chain export.
type OptionChainFile struct {
	Path           string
	QuoteDate      time.Time
	UnderlyingLast float64
	// Rows holds every row with a parseable expire date, sorted by expire date then strike.
	Rows []*eventmodels.OptionChainRow
	// DataRowCount is the number of non-blank data rows in the file.
	DataRowCount int
	// ValidRowCount is the number of rows carrying every required field.
	ValidRowCount int
}

// IsComplete reports whether every data row of the file is usable.
func (f *OptionChainFile) IsComplete() bool {
	return f.ValidRowCount == f.DataRowCount
}

func (f *OptionChainFile) Quotes() []*eventmodels.OptionQuote {
	quotes := make([]*eventmodels.OptionQuote, 0, len(f.Rows))
	for _, row := range f.Rows {
		q := row.OptionQuote
		quotes = append(quotes, &q)
	}
	return quotes
}

// ParseQuoteDateFromFileName reads the quote date from names ending in _<MM>_<DD>.csv.
func ParseQuoteDateFromFileName(name string, year int) (time.Time, error) {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	parts := strings.Split(base, "_")
	if len(parts) < 2 {
		return time.Time{}, fmt.Errorf("ParseQuoteDateFromFileName: no month and day in %q", name)
	}

	month, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("ParseQuoteDateFromFileName: invalid month in %q", name)
	}

	day, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("ParseQuoteDateFromFileName: invalid day in %q", name)
	}

	quoteDate := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if quoteDate.Day() != day {
		return time.Time{}, fmt.Errorf("ParseQuoteDateFromFileName: %d-%02d-%02d is not a date", year, month, day)
	}

	return quoteDate, nil
}

// ParseUnderlyingLast reads the price from the second preamble line, e.g.
// `SPX,Last: 5503.4102,Change: -12.1`.
func ParseUnderlyingLast(line string) (float64, error) {
	fields := strings.Split(line, ",")
	if len(fields) < 2 {
		return 0, fmt.Errorf("ParseUnderlyingLast: unexpected quote line %q", line)
	}

	value := strings.Trim(strings.TrimSpace(fields[1]), `"`)
	value = strings.TrimSpace(strings.TrimPrefix(value, underlyingLastKey))

	last, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("ParseUnderlyingLast: failed to parse %q: %w", value, err)
	}

	return last, nil
}

func ReadOptionChainFile(path string, year int) (*OptionChainFile, error) {
	quoteDate, err := ParseQuoteDateFromFileName(path, year)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ReadOptionChainFile: failed to open %s: %w", path, err)
	}
	defer f.Close()

	chain, err := ParseOptionChain(f, quoteDate)
	if err != nil {
		return nil, fmt.Errorf("ReadOptionChainFile: %s: %w", path, err)
	}

	chain.Path = path
	return chain, nil
}

// ParseOptionChain reads a chain export: four preamble lines, a header and the data rows.
func ParseOptionChain(r io.Reader, quoteDate time.Time) (*OptionChainFile, error) {
	reader := bufio.NewReader(r)

	var preamble []string
	for i := 0; i <= chainPreambleLines; i++ {
		line, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return nil, fmt.Errorf("ParseOptionChain: file ends inside the preamble at line %d", i+1)
		}
		preamble = append(preamble, strings.TrimRight(line, "\r\n"))
	}

	underlyingLast, err := ParseUnderlyingLast(preamble[1])
	if err != nil {
		return nil, err
	}

	rest, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("ParseOptionChain: failed to read rows: %w", err)
	}

	var dtos []*eventmodels.OptionChainCsvDTO
	if len(bytes.TrimSpace(rest)) > 0 {
		if err := gocsv.UnmarshalCSVWithoutHeaders(newChainRecordReader(bytes.NewReader(rest)), &dtos); err != nil {
			return nil, fmt.Errorf("ParseOptionChain: failed to unmarshal rows: %w", err)
		}
	}

	chain := &OptionChainFile{
		QuoteDate:      quoteDate,
		UnderlyingLast: underlyingLast,
	}

	for _, dto := range dtos {
		if dto.IsBlank() {
			continue
		}

		chain.DataRowCount++

		row, err := dto.ToModel(quoteDate, underlyingLast)
		if err != nil {
			log.Debugf("ParseOptionChain: dropping row: %v", err)
			continue
		}

		if row.HasRequiredFields() {
			chain.ValidRowCount++
		}

		chain.Rows = append(chain.Rows, row)
	}

	sort.SliceStable(chain.Rows, func(i, j int) bool {
		a, b := chain.Rows[i], chain.Rows[j]
		if !a.ExpireDate.Equal(b.ExpireDate) {
			return a.ExpireDate.Before(b.ExpireDate)
		}
		return a.Strike.LessThan(b.Strike)
	})

	return chain, nil
}

// LoadOptionQuotesFromFolder parses every chain file in folder.
func LoadOptionQuotesFromFolder(folder string, year int) ([]*eventmodels.OptionQuote, error) {
	files, err := listChainFiles(folder)
	if err != nil {
		return nil, err
	}

	var quotes []*eventmodels.OptionQuote
	for _, path := range files {
		chain, err := ReadOptionChainFile(path, year)
		if err != nil {
			return nil, fmt.Errorf("LoadOptionQuotesFromFolder: %w", err)
		}

		quotes = append(quotes, chain.Quotes()...)
	}

	log.Infof("Loaded %d quotes from %d files in %s", len(quotes), len(files), folder)

	return quotes, nil
}

func listChainFiles(folder string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(folder, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("listChainFiles: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

// chainRecordReader pads or truncates every record to the chain column count.
type chainRecordReader struct {
	r *csv.Reader
}

func newChainRecordReader(in io.Reader) *chainRecordReader {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	return &chainRecordReader{r: r}
}

func (c *chainRecordReader) Read() ([]string, error) {
	record, err := c.r.Read()
	if err != nil {
		return nil, err
	}

	return normalizeRecord(record), nil
}

func (c *chainRecordReader) ReadAll() ([][]string, error) {
	var records [][]string
	for {
		record, err := c.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

func normalizeRecord(record []string) []string {
	if len(record) >= chainColumnCount {
		return record[:chainColumnCount]
	}

	padded := make([]string, chainColumnCount)
	copy(padded, record)
	return padded
}
