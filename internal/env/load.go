package env

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/yeongki/memprof/pkg/memprof"
)

// Options is everything the demo reads from the process environment.
type Options struct {
	EnableDecorator string `env:"ENABLE_MEMORY_PROFILING_DECORATOR"`

	ArtifactsDir string `env:"MEMPROF_ARTIFACTS_DIR"`
	RunID        string `env:"MEMPROF_RUN_ID"`
	Metrics      bool   `env:"MEMPROF_METRICS" envDefault:"false"`
}

// Enabled applies the strict "true"-only rule to the raw flag value.
func (o Options) Enabled() bool {
	return memprof.IsEnabled(o.EnableDecorator)
}

// LoadDotenv loads KEY=value pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadDotenv(paths ...string) error {
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func LoadOptions() (Options, error) {
	var o Options
	if err := env.Parse(&o); err != nil {
		return Options{}, fmt.Errorf("parse env: %w", err)
	}
	return o, nil
}
