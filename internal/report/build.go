package report

import (
	"math"
	"time"

	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/yeongki/memprof/pkg/memprof"
)

// Build assembles a Summary from the entries a Recorder collected during the
// window [start, end].
func Build(meta SessionMeta, labels Labels, start, end time.Time, entries []memprof.Entry) Summary {
	res := Summary{
		Meta:            meta,
		Labels:          labels,
		StartTimeUnixMs: start.UnixMilli(),
		EndTimeUnixMs:   end.UnixMilli(),
		Records:         entries,
		Totals: Totals{
			Calls: map[string]int{},
		},
	}
	if res.Records == nil {
		res.Records = []memprof.Entry{}
	}

	var peakMB float64
	for _, e := range entries {
		res.Totals.Calls[e.Record.Kind.String()]++
		res.Totals.TotalDurationMs += e.Record.DurationMs
		peakMB = math.Max(peakMB, math.Max(e.Record.StartMemoryMB, e.Record.EndMemoryMB))
	}
	res.Totals.PeakHeap = HeapQuantity(peakMB)
	return res
}

// HeapQuantity renders megabytes as a binary-SI quantity ("1536Ki", "12Mi").
func HeapQuantity(mb float64) string {
	b := int64(math.Round(mb * 1024 * 1024))
	return resource.NewQuantity(b, resource.BinarySI).String()
}
