package stages

import (
	"context"
	"sort"
	"time"

	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/pipeline"
)

// Ingest normalizes the collector drop into the pipeline's canonical form:
// rows ordered by timestamp. The input contract already guarantees types;
// the rolling features downstream depend on the ordering.
func Ingest() pipeline.Transform {
	return func(_ context.Context, ds *domain.Dataset) (*domain.Dataset, map[string]any, error) {
		out := ds.Clone()
		sort.SliceStable(out.Rows, func(a, b int) bool {
			ta, okA := out.Rows[a]["timestamp"].(time.Time)
			tb, okB := out.Rows[b]["timestamp"].(time.Time)
			if !okA || !okB {
				return false
			}
			return ta.Before(tb)
		})

		metrics := map[string]any{
			"total_rows": out.Len(),
		}
		return out, metrics, nil
	}
}
