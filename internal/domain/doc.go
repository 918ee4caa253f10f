// Package domain models weather-station observation data and the contract
// records the pipeline produces around it.
//
// # Data Source
//
// Observations are hourly readings from a single weather station, delivered
// as dated CSV drops (observations_<YYYYMMDD>.csv) by an external collector.
// Each row carries a timestamp, the station identifier, and the three core
// measurements: temperature (°C), relative humidity (%), and barometric
// pressure (hPa).
//
// # Artifact Conventions
//
// Every pipeline stage reads one dated artifact and writes one dated
// artifact, named <entity>_<YYYYMMDD>.<ext>:
//
//	raw/weather_<date>.csv              ingest output
//	processed/weather_cleaned_<date>.csv
//	processed/weather_features_<date>.csv
//	processed/training_data_<date>.csv
//	processed/evaluation_results_<date>.csv
//	processed/failure_analysis_<date>.csv
//	processed/survival_analysis_<date>.csv
//	models/model_<date>.gob             fitted forest, side artifact of train
//
// Each artifact has a JSON metadata sidecar with the same basename holding
// the RunMetadata record for the stage execution that produced it. Artifacts
// and sidecars are immutable once written; a re-run for the same date
// supersedes both.
//
// # Value Model
//
// Dataset cells hold one of: float64, int64, string, time.Time, or nil
// (null/missing). The artifact store infers these types when reading CSV
// (int before float before timestamp before string), so a numeric column
// containing whole numbers round-trips as int64; schema validation widens
// int64 to float where a float column is declared.
//
// # Run Identity
//
// Every stage execution gets a UUID run id stamped into its RunMetadata,
// making each artifact traceable to exactly one recorded run. Metadata
// timestamps come from the package clock, which tests freeze via [SetClock].
package domain
