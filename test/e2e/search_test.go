// Package e2e exercises the full pipeline in-process: corpus file → builder
// → sealed index → query engine. No external services are required.
package e2e

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/saket-vr/permafind/internal/corpus"
	"github.com/saket-vr/permafind/internal/index"
	"github.com/saket-vr/permafind/internal/query"
	"github.com/saket-vr/permafind/pkg/config"
)

const corpusData = "" +
	"2024-01-01\tdoc1\tuser1\ten\tSide effects of malaria vaccines\n" +
	"2024-01-02\tdoc2\tuser2\ten\tMalaria vaccine side effects\n" +
	"bad-record\n" +
	"2024-01-03\tdoc3\tuser3\ten\tNo relation here\n"

func buildFromFile(t *testing.T) *query.Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tweets.tsv")
	if err := os.WriteFile(path, []byte(corpusData), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.CorpusConfig{
		Path:       path,
		Delimiter:  "\t",
		IDColumn:   1,
		TextColumn: 4,
		MinFields:  5,
	}
	src := corpus.NewFileSource(cfg, nil)
	builder := index.NewBuilder(nil)
	err := src.Read(context.Background(), func(doc corpus.Document) error {
		builder.AddDocument(doc.ID, doc.Tokens)
		return nil
	})
	if err != nil {
		t.Fatalf("building index: %v", err)
	}
	if got := src.Skipped(); got != 1 {
		t.Fatalf("skipped records = %d, want 1", got)
	}
	return query.New(builder.Build(), nil)
}

func TestEndToEndLiteralQuery(t *testing.T) {
	engine := buildFromFile(t)
	result, err := engine.Execute(context.Background(), []string{"side", "effects", "malaria"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"doc1", "doc2"}
	if !reflect.DeepEqual(result.DocIDs, want) {
		t.Fatalf("DocIDs = %v, want %v", result.DocIDs, want)
	}
}

func TestEndToEndMissingLiteral(t *testing.T) {
	engine := buildFromFile(t)
	result, err := engine.Execute(context.Background(), []string{"mal*", "disease"})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.DocIDs) != 0 {
		t.Fatalf("DocIDs = %v, want empty", result.DocIDs)
	}
	if len(result.Misses) != 1 || result.Misses[0].Token != "disease" {
		t.Fatalf("Misses = %v, want single miss for disease", result.Misses)
	}
}

func TestEndToEndWildcardNoMatch(t *testing.T) {
	engine := buildFromFile(t)
	// No indexed term ends in exactly "ffect", so "*ffect" must not match
	// "effects".
	result, err := engine.Execute(context.Background(), []string{"*ffect", "vaccine"})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.DocIDs) != 0 {
		t.Fatalf("DocIDs = %v, want empty", result.DocIDs)
	}
	if len(result.Misses) != 1 || result.Misses[0].Reason != query.MissWildcardNoMatch {
		t.Fatalf("Misses = %v, want wildcard_no_match", result.Misses)
	}
}

func TestEndToEndWildcardHit(t *testing.T) {
	engine := buildFromFile(t)
	result, err := engine.Execute(context.Background(), []string{"vaccine*", "malaria"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"doc1", "doc2"}
	if !reflect.DeepEqual(result.DocIDs, want) {
		t.Fatalf("DocIDs = %v, want %v", result.DocIDs, want)
	}
}
