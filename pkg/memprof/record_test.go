package memprof_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/yeongki/memprof/pkg/memprof"
)

var _ = Describe("Record", func() {
	It("renders the sync log line", func() {
		rec := memprof.Record{
			Name:          "compute",
			StartMemoryMB: 10,
			EndMemoryMB:   12.5,
			DeltaMemoryMB: 2.5,
			DurationMs:    25,
			Kind:          memprof.KindSync,
		}
		Expect(rec.Line()).To(Equal(" Sync -> Function: compute, startMemory: 10, endMemory: 12.5, memoryConsumed: 2.50, executionTime : 25 ms"))
	})

	It("renders the async log line with raw start/end values", func() {
		rec := memprof.Record{
			Name:          "fetch",
			StartMemoryMB: 4.123456789,
			EndMemoryMB:   3.5,
			DeltaMemoryMB: 3.5 - 4.123456789,
			DurationMs:    0,
			Kind:          memprof.KindAsync,
		}
		Expect(rec.Line()).To(Equal(" Async -> Function: fetch, startMemory: 4.123456789, endMemory: 3.5, memoryConsumed: -0.62, executionTime : 0 ms"))
	})

	DescribeTable("DeltaString keeps two decimals",
		func(delta float64, want string) {
			Expect(memprof.Record{DeltaMemoryMB: delta}.DeltaString()).To(Equal(want))
		},
		Entry("rounds", 3.2749, "3.27"),
		Entry("pads", 2.5, "2.50"),
		Entry("zero", 0.0, "0.00"),
		Entry("tiny negative", -0.0009765625, "-0.00"),
		Entry("negative", -2.0, "-2.00"),
		Entry("tie rounds up", 0.125, "0.13"),
		Entry("tie rounds up past even", 0.625, "0.63"),
		Entry("odd tie", 0.375, "0.38"),
		Entry("tie carries into units", 1.875, "1.88"),
		Entry("negative tie rounds away from zero", -0.125, "-0.13"),
		Entry("below-tie binary value stays down", 1.005, "1.00"),
		Entry("128 KiB delta", float64(128<<10)/1024/1024, "0.13"),
		Entry("large", 1536.999, "1537.00"),
	)
})

var _ = Describe("FuncName", func() {
	It("uses the declared name of package funcs", func() {
		Expect(memprof.FuncName(compute)).To(Equal("compute"))
	})

	It("uses the method name of method expressions and values", func() {
		c := &counter{}
		Expect(memprof.FuncName((*counter).Add)).To(Equal("Add"))
		Expect(memprof.FuncName(c.Add)).To(Equal("Add"))
	})

	It("returns empty for anonymous funcs", func() {
		Expect(memprof.FuncName(func() {})).To(BeEmpty())
		Expect(memprof.FuncName(func(n int) int { return n + 1 })).To(BeEmpty())
	})

	It("returns empty for non-funcs", func() {
		var nilFn func()
		Expect(memprof.FuncName(nil)).To(BeEmpty())
		Expect(memprof.FuncName(nilFn)).To(BeEmpty())
		Expect(memprof.FuncName("compute")).To(BeEmpty())
	})
})
