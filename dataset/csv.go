package dataset

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/YuminosukeSato/pkgraph/pkg/errors"
	"github.com/YuminosukeSato/pkgraph/pkg/log"
)

// ReadCSV reads a comma-separated dataset with a header row into a Frame.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "dataset: failed to read CSV header")
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "dataset: failed to read CSV record")
		}
		rows = append(rows, record)
	}

	return NewFrame(header, rows)
}

// LoadCSV reads a dataset from a file path.
func LoadCSV(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: failed to open %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.GetLoggerWithName("dataset").Warn("failed to close dataset file", "path", path, "error", cerr)
		}
	}()

	frame, err := ReadCSV(f)
	if err != nil {
		return nil, err
	}

	log.GetLoggerWithName("dataset").Info("dataset loaded",
		"path", path,
		log.SamplesKey, frame.NumRows(),
		log.FeaturesKey, len(frame.Columns()),
	)
	return frame, nil
}
