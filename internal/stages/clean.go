package stages

import (
	"context"

	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/pipeline"
)

// measurementColumns are the columns cleaned for outliers and nulls.
var measurementColumns = []string{"temperature", "humidity", "pressure"}

// Clean removes IQR outliers from the measurement columns and fills the
// remaining nulls forward (then backward for leading gaps). Nulls survive
// the outlier pass: they are gaps to fill, not outliers to drop.
func Clean() pipeline.Transform {
	return func(_ context.Context, ds *domain.Dataset) (*domain.Dataset, map[string]any, error) {
		out := ds.Clone()
		initial := out.Len()

		for _, col := range measurementColumns {
			out = removeOutliersIQR(out, col)
		}
		removed := initial - out.Len()

		filled := 0
		for _, col := range measurementColumns {
			filled += fillColumn(out, col)
		}

		metrics := map[string]any{
			"rows_removed":          removed,
			"missing_values_filled": filled,
			"final_row_count":       out.Len(),
		}
		return out, metrics, nil
	}
}

// removeOutliersIQR drops rows whose value falls outside
// [Q1 - 1.5*IQR, Q3 + 1.5*IQR] for the column. Null cells keep their row.
func removeOutliersIQR(ds *domain.Dataset, column string) *domain.Dataset {
	values := ds.FloatColumn(column)
	if len(values) < 4 {
		return ds
	}

	q1 := quantile(values, 0.25)
	q3 := quantile(values, 0.75)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	kept := &domain.Dataset{Columns: ds.Columns}
	for i, row := range ds.Rows {
		v, ok := ds.Float(i, column)
		if ok && (v < lower || v > upper) {
			continue
		}
		kept.AppendRow(row)
	}
	return kept
}

// fillColumn forward-fills nulls with the last valid observation, then
// backward-fills any leading nulls. Returns the number of cells filled.
func fillColumn(ds *domain.Dataset, column string) int {
	filled := 0

	var last any
	for i := range ds.Rows {
		if v := ds.Rows[i][column]; v != nil {
			last = v
			continue
		}
		if last != nil {
			ds.Rows[i][column] = last
			filled++
		}
	}

	last = nil
	for i := len(ds.Rows) - 1; i >= 0; i-- {
		if v := ds.Rows[i][column]; v != nil {
			last = v
			continue
		}
		if last != nil {
			ds.Rows[i][column] = last
			filled++
		}
	}

	return filled
}
