package memprof

import "runtime/metrics"

// HeapReader returns the bytes currently occupied by live and not yet swept
// heap objects.
type HeapReader func() uint64

const heapObjectsMetric = "/memory/classes/heap/objects:bytes"

// RuntimeHeap reads heap usage through runtime/metrics, which does not stop
// the world the way runtime.ReadMemStats does.
func RuntimeHeap() uint64 {
	s := []metrics.Sample{{Name: heapObjectsMetric}}
	metrics.Read(s)
	if s[0].Value.Kind() != metrics.KindUint64 {
		return 0
	}
	return s[0].Value.Uint64()
}
