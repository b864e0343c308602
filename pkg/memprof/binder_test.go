package memprof_test

import (
	"context"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/yeongki/memprof/pkg/memprof"
)

func mixedOps() memprof.Operations {
	return memprof.Operations{
		memprof.ConstructorName: func() int { return 0 },

		"Fetch": func(id int) *memprof.Future[int] { return memprof.Resolved(id) },
		"Save":  func(id int) *memprof.Future[int] { return memprof.Resolved(id + 1) },

		"Get":   func(id int) int { return id },
		"List":  func() []int { return []int{1, 2} },
		"Count": func() (int, error) { return 2, nil },

		"version": "1.0",
	}
}

func callAll(ops memprof.Operations) {
	ctx := context.Background()
	Expect(ops["Fetch"].(func(int) *memprof.Future[int])(1).Await(ctx)).To(Equal(1))
	Expect(ops["Save"].(func(int) *memprof.Future[int])(1).Await(ctx)).To(Equal(2))
	Expect(ops["Get"].(func(int) int)(3)).To(Equal(3))
	Expect(ops["List"].(func() []int)()).To(Equal([]int{1, 2}))
	Expect(ops["Count"].(func() (int, error))()).To(Equal(2))
}

func expectSameOps(got, want memprof.Operations) {
	GinkgoHelper()
	for name, fn := range want {
		if name == "version" {
			Expect(got[name]).To(Equal(fn))
			continue
		}
		Expect(funcPtr(got[name])).To(Equal(funcPtr(fn)), name)
	}
}

func severities(rec *memprof.Recorder) map[string]memprof.Severity {
	out := map[string]memprof.Severity{}
	for _, e := range rec.Entries() {
		out[e.Record.Name] = e.Severity
	}
	return out
}

var _ = Describe("Binder", func() {
	var rec *memprof.Recorder

	BeforeEach(func() {
		rec = memprof.NewRecorder()
	})

	Context("disabled", func() {
		var b *memprof.Binder

		BeforeEach(func() {
			b = memprof.NewBinder(memprof.Options{Enabled: false, Sink: rec})
		})

		It("hands back the very same operations in every mode", func() {
			ops := mixedOps()

			for _, out := range []memprof.Operations{b.All(ops), b.One(ops, "Get"), b.OneAs(ops, "Fetch", memprof.KindAsync)} {
				Expect(funcPtr(out)).To(Equal(funcPtr(ops)))
				expectSameOps(out, ops)
			}

			callAll(ops)
			Expect(rec.Len()).To(BeZero())
		})

		It("does not pick up a flag flipped after binding", func() {
			prev, had := os.LookupEnv(memprof.EnvEnableDecorator)
			DeferCleanup(func() {
				if had {
					_ = os.Setenv(memprof.EnvEnableDecorator, prev)
					return
				}
				_ = os.Unsetenv(memprof.EnvEnableDecorator)
			})
			Expect(os.Unsetenv(memprof.EnvEnableDecorator)).To(Succeed())

			b = memprof.NewBinder(memprof.Options{
				Enabled: memprof.IsEnabled(os.Getenv(memprof.EnvEnableDecorator)),
				Sink:    rec,
			})
			Expect(os.Setenv(memprof.EnvEnableDecorator, "true")).To(Succeed())

			ops := mixedOps()
			expectSameOps(b.All(ops), ops)
		})

		It("leaves struct components untouched", func() {
			svc := newService()
			bound := memprof.BindStruct(b, svc)

			Expect(funcPtr(bound.Compute)).To(Equal(funcPtr(svc.Compute)))
			Expect(funcPtr(bound.Fetch)).To(Equal(funcPtr(svc.Fetch)))
			Expect(funcPtr(memprof.BindField(b, svc, "Compute").Compute)).To(Equal(funcPtr(svc.Compute)))
		})
	})

	Context("enabled", func() {
		var b *memprof.Binder

		BeforeEach(func() {
			b = memprof.NewBinder(memprof.Options{Enabled: true, Sink: rec})
		})

		It("partitions operations by kind", func() {
			async, sync := memprof.Partition(mixedOps())
			Expect(async).To(Equal([]string{"Fetch", "Save"}))
			Expect(sync).To(Equal([]string{"Count", "Get", "List"}))
		})

		It("wraps 2 async operations at warn and 3 sync operations at info", func() {
			ops := mixedOps()
			out := b.All(ops)

			for _, name := range []string{"Fetch", "Save", "Get", "List", "Count"} {
				Expect(funcPtr(out[name])).NotTo(Equal(funcPtr(ops[name])), name)
			}
			Expect(funcPtr(out[memprof.ConstructorName])).To(Equal(funcPtr(ops[memprof.ConstructorName])))
			Expect(out["version"]).To(Equal("1.0"))

			callAll(out)
			Expect(rec.Len()).To(Equal(5))
			Expect(severities(rec)).To(Equal(map[string]memprof.Severity{
				"Fetch": memprof.SeverityWarn,
				"Save":  memprof.SeverityWarn,
				"Get":   memprof.SeverityInfo,
				"List":  memprof.SeverityInfo,
				"Count": memprof.SeverityInfo,
			}))
		})

		It("never modifies the input set", func() {
			ops := mixedOps()
			before := memprof.Operations{}
			for k, v := range ops {
				before[k] = v
			}

			_ = b.All(ops)
			_ = b.One(ops, "Get")
			expectSameOps(ops, before)

			callAll(ops)
			Expect(rec.Len()).To(BeZero())
		})

		It("wraps a single operation", func() {
			ops := mixedOps()
			out := b.One(ops, "Get")

			Expect(funcPtr(out["Get"])).NotTo(Equal(funcPtr(ops["Get"])))
			Expect(funcPtr(out["List"])).To(Equal(funcPtr(ops["List"])))

			Expect(out["Get"].(func(int) int)(9)).To(Equal(9))
			Expect(rec.Entries()).To(ConsistOf(HaveField("Record.Name", "Get")))
		})

		It("wraps a single operation with an explicit kind", func() {
			out := b.OneAs(mixedOps(), "Fetch", memprof.KindAsync)

			Expect(out["Fetch"].(func(int) *memprof.Future[int])(4).Await(context.Background())).To(Equal(4))
			Expect(rec.Entries()).To(ConsistOf(HaveField("Severity", memprof.SeverityWarn)))
		})

		It("ignores unknown and non-func names", func() {
			ops := mixedOps()
			Expect(funcPtr(b.One(ops, "Missing"))).To(Equal(funcPtr(ops)))
			Expect(funcPtr(b.One(ops, "version"))).To(Equal(funcPtr(ops)))
		})

		It("wraps own func fields of a struct component", func() {
			svc := newService()
			bound := memprof.BindStruct(b, svc)

			Expect(funcPtr(bound.Compute)).NotTo(Equal(funcPtr(svc.Compute)))
			Expect(funcPtr(bound.Fetch)).NotTo(Equal(funcPtr(svc.Fetch)))
			Expect(funcPtr(bound.New)).To(Equal(funcPtr(svc.New)))
			Expect(funcPtr(bound.Ping)).To(Equal(funcPtr(svc.Ping)))
			Expect(funcPtr(bound.hidden)).To(Equal(funcPtr(svc.hidden)))
			Expect(bound.Missing).To(BeNil())

			Expect(bound.Compute(3)).To(Equal(9))
			Expect(bound.Fetch(5).Await(context.Background())).To(Equal(5))
			Expect(bound.Ping()).To(Equal("pong"))
			Expect(bound.New()).NotTo(BeNil())
			Expect(severities(rec)).To(Equal(map[string]memprof.Severity{
				"Compute": memprof.SeverityInfo,
				"Fetch":   memprof.SeverityWarn,
			}))
		})

		It("wraps a single struct field", func() {
			svc := newService()
			bound := memprof.BindField(b, svc, "Fetch")

			Expect(funcPtr(bound.Fetch)).NotTo(Equal(funcPtr(svc.Fetch)))
			Expect(funcPtr(bound.Compute)).To(Equal(funcPtr(svc.Compute)))
			Expect(func() { memprof.BindField(b, svc, "Nope") }).To(Panic())
		})
	})
})

type pinger struct {
	Ping func() string
}

type service struct {
	pinger

	New     func() *service
	Compute func(n int) int
	Fetch   func(n int) *memprof.Future[int]
	Missing func()
	Label   string

	hidden func() int
}

func newService() service {
	return service{
		pinger:  pinger{Ping: func() string { return "pong" }},
		New:     func() *service { return &service{} },
		Compute: func(n int) int { return n * n },
		Fetch:   func(n int) *memprof.Future[int] { return memprof.Resolved(n) },
		Label:   "svc",
		hidden:  func() int { return 1 },
	}
}
