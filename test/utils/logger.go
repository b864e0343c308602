package utils

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"

	"github.com/yeongki/memprof/pkg/memprof"
)

// GinkgoLogger adapts memprof.Logger to GinkgoWriter.
type GinkgoLogger struct{}

func (GinkgoLogger) Logf(format string, args ...any) {
	_, _ = fmt.Fprintf(GinkgoWriter, format+"\n", args...)
}

var _ memprof.Logger = (*GinkgoLogger)(nil)

// GinkgoSink returns a sink that echoes every record to GinkgoWriter
// (visible with -v or on failure) and keeps it in rec.
func GinkgoSink(rec *memprof.Recorder) memprof.Sink {
	return memprof.MultiSink(memprof.NewLogfSink(GinkgoLogger{}), rec)
}
