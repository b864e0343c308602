package memprof

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"runtime"
	"strconv"
	"strings"
)

// Record is one invocation's measurement. It is handed to a Sink right after
// the call succeeds and is not retained.
type Record struct {
	Name          string  `json:"name"`
	StartMemoryMB float64 `json:"startMemoryMB"`
	EndMemoryMB   float64 `json:"endMemoryMB"`
	DeltaMemoryMB float64 `json:"deltaMemoryMB"`
	DurationMs    int64   `json:"durationMs"`
	Kind          Kind    `json:"kind"`
}

// DeltaString renders the delta with exactly two decimals ("-0.00" included).
// Exact ties round away from zero, so 0.125 becomes "0.13".
func (r Record) DeltaString() string {
	return fixed2(r.DeltaMemoryMB)
}

// fixed2 rounds the exact binary value of v to hundredths, half away from
// zero.
func fixed2(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}

	// v*100 needs at most 106 mantissa bits, so prec 128 keeps it exact.
	scaled := new(big.Float).SetPrec(128).SetFloat64(v)
	scaled.Mul(scaled, big.NewFloat(100))
	hundredths, _ := scaled.Int(nil)
	frac := new(big.Float).SetPrec(128).Sub(scaled, new(big.Float).SetInt(hundredths))
	if frac.Cmp(big.NewFloat(0.5)) >= 0 {
		hundredths.Add(hundredths, big.NewInt(1))
	}

	digits := hundredths.String()
	if len(digits) < 3 {
		digits = strings.Repeat("0", 3-len(digits)) + digits
	}
	return sign + digits[:len(digits)-2] + "." + digits[len(digits)-2:]
}

// Line renders the record in the log line format downstream parsers expect:
//
//	 Sync -> Function: compute, startMemory: 10, endMemory: 12.5, memoryConsumed: 2.50, executionTime : 25 ms
func (r Record) Line() string {
	return fmt.Sprintf(" %s -> Function: %s, startMemory: %s, endMemory: %s, memoryConsumed: %s, executionTime : %d ms",
		r.Kind, r.Name, formatMB(r.StartMemoryMB), formatMB(r.EndMemoryMB), r.DeltaString(), r.DurationMs)
}

func formatMB(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func bytesToMB(b uint64) float64 {
	return float64(b) / 1024 / 1024
}

// FuncName returns fn's declared name without package or receiver, or ""
// for closures and other anonymous funcs.
func FuncName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return ""
	}
	return shortFuncName(rf.Name())
}

func shortFuncName(full string) string {
	// funcs built by reflect.MakeFunc (including our own wrappers) carry no name
	if full == "reflect.makeFuncStub" {
		return ""
	}
	name := strings.TrimSuffix(full, "-fm")
	name = strings.ReplaceAll(name, "[...]", "")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if isAnonymousName(name) {
		return ""
	}
	return name
}

// isAnonymousName matches the compiler's closure names: "func1", "2", "gowrap3".
func isAnonymousName(name string) bool {
	for _, prefix := range []string{"func", "gowrap"} {
		if rest, ok := strings.CutPrefix(name, prefix); ok && allDigits(rest) {
			return true
		}
	}
	return allDigits(name)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
