package memprof

import "go.uber.org/zap"

// ZapSink logs records through zap: sync calls at info, async calls at warn.
// The message is Record.Line; the same values are attached as fields.
type ZapSink struct {
	log *zap.Logger
}

func NewZapSink(l *zap.Logger) *ZapSink {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapSink{log: l}
}

func (s *ZapSink) Info(rec Record) {
	s.log.Info(rec.Line(), recordFields(rec)...)
}

func (s *ZapSink) Warn(rec Record) {
	s.log.Warn(rec.Line(), recordFields(rec)...)
}

func recordFields(rec Record) []zap.Field {
	return []zap.Field{
		zap.String("function", rec.Name),
		zap.Stringer("kind", rec.Kind),
		zap.Float64("startMemoryMB", rec.StartMemoryMB),
		zap.Float64("endMemoryMB", rec.EndMemoryMB),
		zap.String("memoryConsumedMB", rec.DeltaString()),
		zap.Int64("executionTimeMs", rec.DurationMs),
	}
}

var _ Sink = (*ZapSink)(nil)
