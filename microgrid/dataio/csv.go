package dataio

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// TimeSeries is one (timestamp, value) sequence read from a CSV file.
type TimeSeries struct {
	Timestamps []time.Time
	Values     []float64
}

// LoadSeries reads a two-column "timestamp,value" CSV (no header row
// assumed skipped unless skipHeader is true) using the provided layout
// to parse timestamps, returning an index-aligned TimeSeries.
func LoadSeries(r io.Reader, layout string, skipHeader bool) (TimeSeries, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2

	records, err := reader.ReadAll()
	if err != nil {
		return TimeSeries{}, errors.Wrap(err, "failed to read CSV series")
	}
	if skipHeader && len(records) > 0 {
		records = records[1:]
	}

	series := TimeSeries{
		Timestamps: make([]time.Time, 0, len(records)),
		Values:     make([]float64, 0, len(records)),
	}
	for i, rec := range records {
		ts, err := time.Parse(layout, rec[0])
		if err != nil {
			return TimeSeries{}, errors.Wrapf(err, "row %d: invalid timestamp %q", i, rec[0])
		}
		v, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return TimeSeries{}, errors.Wrapf(err, "row %d: invalid value %q", i, rec[1])
		}
		series.Timestamps = append(series.Timestamps, ts)
		series.Values = append(series.Values, v)
	}
	return series, nil
}
