// Package config resolves the immutable PipelineConfig for one jsonflow run.
//
// Values are layered, lowest precedence first:
//
//  1. defaults (ApplyDefaults)
//  2. the YAML file (explicit path, or ./jsonflow.yml, ./config.yml, ./config/config.yml)
//  3. a .env file next to the config file or in the working directory
//  4. JSONFLOW_* environment variables (JSONFLOW_BATCH_WORKERS -> batch.workers)
//  5. CLI Overrides
//
// Load validates the result and returns a configuration error before any
// record is processed. The returned value is never mutated afterwards.
package config
