package report

import (
	"fmt"
	"path/filepath"
	"strings"
)

type ArtifactOptions struct {
	ArtifactsDir        string
	RunID               string
	DefaultArtifactsDir string
}

// Normalize fills safe defaults (caller can override defaults by setting Default* fields).
func (o ArtifactOptions) Normalize() ArtifactOptions {
	out := o
	if out.DefaultArtifactsDir == "" {
		out.DefaultArtifactsDir = "/tmp"
	}
	if out.ArtifactsDir == "" {
		out.ArtifactsDir = out.DefaultArtifactsDir
	}
	return out
}

// SummaryPath returns memprof-summary.<run>.json under the artifacts dir, or
// memprof-summary.json when there is no run id.
func (o ArtifactOptions) SummaryPath() string {
	v := o.Normalize()
	name := "memprof-summary.json"
	if id := SanitizeFilename(v.RunID); id != "" {
		name = fmt.Sprintf("memprof-summary.%s.json", id)
	}
	return filepath.Join(v.ArtifactsDir, name)
}

// SanitizeFilename keeps [A-Za-z0-9._-] and maps everything else to '_'.
func SanitizeFilename(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}
