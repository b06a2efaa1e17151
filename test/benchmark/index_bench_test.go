// Package benchmark contains Go benchmarks for the index builder and the
// query engine, measuring throughput and allocation behaviour.
package benchmark

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/saket-vr/permafind/internal/index"
	"github.com/saket-vr/permafind/internal/query"
)

var sampleTexts = []string{
	"side effects of malaria vaccines reported in the trial",
	"malaria vaccine side effects remain mild for most patients",
	"no relation between the two studies was established",
	"vaccination campaigns reduced malaria cases across the region",
	"researchers published preliminary effects data this week",
}

func buildCorpus(docs int) *index.Index {
	b := index.NewBuilder(nil)
	for i := 0; i < docs; i++ {
		text := sampleTexts[i%len(sampleTexts)]
		b.AddDocument(fmt.Sprintf("doc-%06d", i), strings.Fields(text))
	}
	return b.Build()
}

// BenchmarkBuilderAddDocument measures per-document insert throughput.
func BenchmarkBuilderAddDocument(b *testing.B) {
	builder := index.NewBuilder(nil)
	tokens := strings.Fields(sampleTexts[0])
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		builder.AddDocument(fmt.Sprintf("doc-%d", i), tokens)
	}
}

// BenchmarkBuild measures the full build-and-seal cost at a fixed corpus
// size, permuterm registration included.
func BenchmarkBuild(b *testing.B) {
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ix := buildCorpus(1000)
		_ = ix
	}
}

// BenchmarkRotations measures rotation key generation for a typical term.
func BenchmarkRotations(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		keys := index.Rotations("malaria")
		_ = keys
	}
}

// BenchmarkQueryLiteral measures AND-query latency over 10 000 documents.
func BenchmarkQueryLiteral(b *testing.B) {
	engine := query.New(buildCorpus(10000), nil)
	ctx := context.Background()
	terms := []string{"side", "effects", "malaria"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result, err := engine.Execute(ctx, terms)
		if err != nil {
			b.Fatal(err)
		}
		_ = result
	}
}

// BenchmarkQueryWildcard measures wildcard expansion plus intersection over
// 10 000 documents.
func BenchmarkQueryWildcard(b *testing.B) {
	engine := query.New(buildCorpus(10000), nil)
	ctx := context.Background()
	terms := []string{"mal*", "effects"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result, err := engine.Execute(ctx, terms)
		if err != nil {
			b.Fatal(err)
		}
		_ = result
	}
}

// BenchmarkQueryParallel measures concurrent read throughput on the sealed
// index.
func BenchmarkQueryParallel(b *testing.B) {
	engine := query.New(buildCorpus(10000), nil)
	terms := []string{"malaria", "vaccine*"}
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		for pb.Next() {
			result, err := engine.Execute(ctx, terms)
			if err != nil {
				b.Fatal(err)
			}
			_ = result
		}
	})
}
