package memprof

import "sync"

// Sink receives one Record per successful wrapped call. Sync calls arrive on
// Info, async calls on Warn.
//
// Sinks are called inline on the caller's goroutine (sync) or on the goroutine
// that settled the future (async), so they must be fast and safe for
// concurrent use.
type Sink interface {
	Info(rec Record)
	Warn(rec Record)
}

// Logger is the minimal logging contract for LogfSink.
// Keep it tiny so core stays independent from zap/logr/Ginkgo.
type Logger interface {
	Logf(format string, args ...any)
}

// NewLogf returns a safe log function.
// If l is nil, it returns a no-op func.
func NewLogf(l Logger) func(string, ...any) {
	if l == nil {
		return func(string, ...any) {}
	}
	return l.Logf
}

// LogfSink writes each record's Line through a Logger, prefixed with its severity.
type LogfSink struct {
	logf func(string, ...any)
}

func NewLogfSink(l Logger) LogfSink {
	return LogfSink{logf: NewLogf(l)}
}

func (s LogfSink) Info(rec Record) { s.logf("INFO%s", rec.Line()) }
func (s LogfSink) Warn(rec Record) { s.logf("WARN%s", rec.Line()) }

type NopSink struct{}

func (NopSink) Info(Record) {}
func (NopSink) Warn(Record) {}

type multiSink []Sink

// MultiSink fans every record out to sinks in order. Nil entries are dropped.
func MultiSink(sinks ...Sink) Sink {
	out := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multiSink) Info(rec Record) {
	for _, s := range m {
		s.Info(rec)
	}
}

func (m multiSink) Warn(rec Record) {
	for _, s := range m {
		s.Warn(rec)
	}
}

type Severity string

const (
	SeverityInfo Severity = "info"
	SeverityWarn Severity = "warn"
)

// Entry is a Record as seen by a Recorder.
type Entry struct {
	Severity Severity `json:"severity"`
	Record   Record   `json:"record"`
}

// Recorder keeps every record in memory, in arrival order.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Info(rec Record) { r.add(SeverityInfo, rec) }
func (r *Recorder) Warn(rec Record) { r.add(SeverityWarn, rec) }

func (r *Recorder) add(sev Severity, rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Severity: sev, Record: rec})
}

// Entries returns a copy of what has been recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}

var (
	_ Sink = NopSink{}
	_ Sink = LogfSink{}
	_ Sink = (*Recorder)(nil)
	_ Sink = multiSink(nil)
)
