// Command genmock generates a synthetic observation drop for one logical
// date: hourly weather readings with a diurnal temperature cycle, seeded
// noise, and optional gaps and outliers to exercise the cleaning stage. The
// output lands where the ingest stage expects the collector drop.
//
// Usage:
//
//	go run ./cmd/genmock -data-dir data -date 20240426
//	go run ./cmd/genmock -data-dir data -date 20240426 -days 30 -outliers 3 -missing 5
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/IsakLindberger/Weather-Predict-Model/internal/artifact"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dataDir := flag.String("data-dir", "data", "pipeline data root")
	date := flag.String("date", "", "logical date (YYYYMMDD)")
	station := flag.String("station", "STATION_001", "station identifier")
	days := flag.Int("days", 30, "days of hourly history ending at the date")
	seed := flag.Int64("seed", 42, "random seed")
	outliers := flag.Int("outliers", 0, "number of extreme temperature readings to inject")
	missing := flag.Int("missing", 0, "number of null measurement cells to inject")
	flag.Parse()

	if *date == "" || !artifact.ValidDate(*date) {
		flag.Usage()
		return fmt.Errorf("-date is required and must be YYYYMMDD")
	}
	if *days < 1 {
		return fmt.Errorf("-days must be at least 1")
	}

	end, _ := time.Parse("20060102", *date)
	end = end.Add(24 * time.Hour) // last reading is 23:00 on the date
	start := end.Add(-time.Duration(*days) * 24 * time.Hour)

	rnd := rand.New(rand.NewSource(*seed))
	ds := domain.NewDataset("timestamp", "station_id", "temperature", "humidity", "pressure")

	for ts := start; ts.Before(end); ts = ts.Add(time.Hour) {
		// Diurnal cycle: coldest at 04:00, warmest at 16:00.
		hourAngle := 2 * math.Pi * float64(ts.Hour()-4) / 24
		temp := 12 - 8*math.Cos(hourAngle) + rnd.NormFloat64()*1.5
		humidity := clamp(65+20*math.Cos(hourAngle)+rnd.NormFloat64()*5, 0, 100)
		pressure := 1013 + rnd.NormFloat64()*4

		ds.AppendRow(domain.Row{
			"timestamp":   ts.UTC(),
			"station_id":  *station,
			"temperature": round1(temp),
			"humidity":    round1(humidity),
			"pressure":    round1(pressure),
		})
	}

	for i := 0; i < *outliers && ds.Len() > 0; i++ {
		ds.Rows[rnd.Intn(ds.Len())]["temperature"] = 55.0 + rnd.Float64()*4
	}
	cols := []string{"temperature", "humidity", "pressure"}
	for i := 0; i < *missing && ds.Len() > 0; i++ {
		ds.Rows[rnd.Intn(ds.Len())][cols[rnd.Intn(len(cols))]] = nil
	}

	store := artifact.NewStore(*dataDir)
	ref := artifact.SourceReference(*date)
	if err := store.WriteDataset(ref, ds); err != nil {
		return err
	}

	log.Printf("wrote %d observations to %s", ds.Len(), store.AbsPath(ref))
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
