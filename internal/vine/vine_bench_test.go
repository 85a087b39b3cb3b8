package vine

import (
	"fmt"
	"strings"
	"testing"
)

// chainDocument builds a document of n tasks where each task depends on the
// one before it.
func chainDocument(n int) string {
	var b strings.Builder
	b.WriteString("vine 1.0.0\ntitle: Bench\n---\n")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString("---\n")
		}
		fmt.Fprintf(&b, "[t%04d] Task %d (started) @size(s)\nSome description.\n", i, i)
		if i > 0 {
			fmt.Fprintf(&b, "-> t%04d\n", i-1)
		}
	}
	return b.String()
}

// BenchmarkParse benchmarks parsing and validating a small plan.
func BenchmarkParse(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := Parse(planText); err != nil {
			b.Fatalf("Parse failed: %v", err)
		}
	}
}

// BenchmarkParseLarge benchmarks parsing a 1000 task chain.
func BenchmarkParseLarge(b *testing.B) {
	text := chainDocument(1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Parse(text); err != nil {
			b.Fatalf("Parse failed: %v", err)
		}
	}
}

// BenchmarkSerializeLarge benchmarks writing a 1000 task chain.
func BenchmarkSerializeLarge(b *testing.B) {
	g, err := Parse(chainDocument(1000))
	if err != nil {
		b.Fatalf("Parse failed: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Serialize(g); err != nil {
			b.Fatalf("Serialize failed: %v", err)
		}
	}
}

// BenchmarkSetStatus benchmarks a validated mutation on a large graph.
func BenchmarkSetStatus(b *testing.B) {
	g, err := Parse(chainDocument(1000))
	if err != nil {
		b.Fatalf("Parse failed: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := g.SetStatus("t0500", StatusComplete); err != nil {
			b.Fatalf("SetStatus failed: %v", err)
		}
	}
}
