package eventservices

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/skew-entropy/src/eventmodels"
)

// ExportEntropyCsv writes the series as a Date,Entropy,Skewness file.
func ExportEntropyCsv(path string, points []eventmodels.EntropyPoint) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("ExportEntropyCsv: failed to create %s: %w", dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ExportEntropyCsv: failed to create %s: %w", path, err)
	}
	defer file.Close()

	dtos := make([]*eventmodels.EntropyPointDTO, len(points))
	for i, p := range points {
		dto := p.ToDTO()
		dtos[i] = &dto
	}

	if err := gocsv.MarshalFile(&dtos, file); err != nil {
		return fmt.Errorf("ExportEntropyCsv: failed to write %s: %w", path, err)
	}

	log.Infof("Exported %d entropy points to %s", len(points), path)

	return nil
}

// ImportEntropyCsv reads a file written by ExportEntropyCsv.
func ImportEntropyCsv(path string) ([]eventmodels.EntropyPoint, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ImportEntropyCsv: failed to open %s: %w", path, err)
	}
	defer file.Close()

	var dtos []*eventmodels.EntropyPointDTO
	if err := gocsv.UnmarshalFile(file, &dtos); err != nil {
		return nil, fmt.Errorf("ImportEntropyCsv: failed to read %s: %w", path, err)
	}

	points := make([]eventmodels.EntropyPoint, 0, len(dtos))
	for _, dto := range dtos {
		p, err := dto.ToModel()
		if err != nil {
			return nil, fmt.Errorf("ImportEntropyCsv: %w", err)
		}
		points = append(points, p)
	}

	return points, nil
}
