package config

import (
	"os"
	"strconv"

	"github.com/privata-io/privata/internal/scan"
)

const (
	EnvPipelineSampleSize = "PRIVATA_PIPELINE_SAMPLE_SIZE"
	EnvPipelineWorkers    = "PRIVATA_PIPELINE_WORKERS"
)

// FinalizePipeline applies defaults then environment variable overrides to
// the scan pipeline config.
func FinalizePipeline(c *scan.Config) error {
	c.Finalize()
	loadPipelineEnv(c)
	return nil
}

func loadPipelineEnv(c *scan.Config) {
	if v := os.Getenv(EnvPipelineSampleSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.SampleSize = n
		}
	}
	if v := os.Getenv(EnvPipelineWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Workers = n
		}
	}
}
