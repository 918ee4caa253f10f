package stages

import (
	"context"
	"errors"
	"sort"

	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/pipeline"
)

// Survival runs a Kaplan-Meier estimate over the evaluation rows, treating
// an absolute error above the configured threshold as the failure event and
// the row's position in time order as its duration. Rows that never exceed
// the threshold are censored at the end of the observation window.
func Survival(p Params) pipeline.Transform {
	return func(_ context.Context, ds *domain.Dataset) (*domain.Dataset, map[string]any, error) {
		if ds.Len() == 0 {
			return nil, nil, errors.New("survival: empty evaluation input")
		}

		order := make([]int, ds.Len())
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			ta, okA := ds.Time(order[a], "timestamp")
			tb, okB := ds.Time(order[b], "timestamp")
			if !okA || !okB {
				return false
			}
			return ta.Before(tb)
		})

		n := ds.Len()
		out := domain.NewDataset(
			"station_id", "timestamp", "duration", "event",
			"survival_probability", "hazard_ratio",
		)

		survival := 1.0
		cumulativeEvents := 0
		eventsCount := 0
		medianSurvival := any(nil)

		for i, r := range order {
			absErr, _ := ds.Float(r, "abs_error")
			var event int64
			if absErr > p.SurvivalErrorThreshold {
				event = 1
				eventsCount++
			}

			atRisk := float64(n - i)
			if event == 1 {
				cumulativeEvents++
				survival *= 1 - 1/atRisk
			}
			hazard := float64(cumulativeEvents) / atRisk

			duration := int64(i + 1)
			if medianSurvival == nil && survival <= 0.5 {
				medianSurvival = duration
			}

			out.AppendRow(domain.Row{
				"station_id":           ds.Rows[r]["station_id"],
				"timestamp":            ds.Rows[r]["timestamp"],
				"duration":             duration,
				"event":                event,
				"survival_probability": survival,
				"hazard_ratio":         hazard,
			})
		}

		metrics := map[string]any{
			"total_observations":         n,
			"events_count":               eventsCount,
			"censored_count":             n - eventsCount,
			"event_rate":                 float64(eventsCount) / float64(n),
			"median_survival_time":       medianSurvival,
			"final_survival_probability": survival,
		}
		return out, metrics, nil
	}
}
