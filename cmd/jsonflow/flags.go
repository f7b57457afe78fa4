package main

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/kbukum/jsonflow/config"
)

type options struct {
	configPath string
	input      string
	imageDir   string
	numSamples int
	output     string
	errorsPath string

	workers  int
	deadline time.Duration
	ordered  bool
	apiKey   string
	model    string
	baseURL  string
	logLevel string
	verbose  bool
	quiet    bool

	showVersion bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := pflag.NewFlagSet("jsonflow", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVarP(&o.configPath, "config", "c", "", "pipeline configuration file (YAML)")
	fs.StringVarP(&o.input, "input", "i", "", "JSONL file (.jsonl, .ndjson), text file, or literal text")
	fs.StringVar(&o.imageDir, "image-dir", "", "directory of images to process")
	fs.IntVarP(&o.numSamples, "num-samples", "n", 0, "process at most this many records (0 = all)")
	fs.StringVarP(&o.output, "output", "o", "", "result file (default stdout)")
	fs.StringVar(&o.errorsPath, "errors", "", "error file (default <output>.errors.jsonl, or stderr)")

	fs.IntVarP(&o.workers, "workers", "w", 0, "records processed concurrently")
	fs.DurationVar(&o.deadline, "deadline", 0, "wall-clock limit for the whole run")
	fs.BoolVar(&o.ordered, "ordered", false, "write results in input order")
	fs.StringVarP(&o.apiKey, "api-key", "k", "", "model API key")
	fs.StringVar(&o.model, "model", "", "model name")
	fs.StringVar(&o.baseURL, "base-url", "", "model API base URL")
	fs.StringVar(&o.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "shorthand for --log-level debug")
	fs.BoolVarP(&o.quiet, "quiet", "q", false, "do not print the run summary")
	fs.BoolVar(&o.showVersion, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.verbose && o.logLevel == "" {
		o.logLevel = "debug"
	}
	return o, nil
}

func (o options) overrides() config.Overrides {
	return config.Overrides{
		APIKey:   o.apiKey,
		Model:    o.model,
		BaseURL:  o.baseURL,
		Workers:  o.workers,
		Deadline: o.deadline,
		Ordered:  o.ordered,
		LogLevel: o.logLevel,
	}
}

// errorsFile returns the error stream path; "" means stderr.
func (o options) errorsFile() string {
	if o.errorsPath != "" || o.output == "" {
		return o.errorsPath
	}
	ext := filepath.Ext(o.output)
	return strings.TrimSuffix(o.output, ext) + ".errors.jsonl"
}
