// Package corpus feeds (documentID, tokens) pairs to the index builder. Two
// sources ship: a delimited text file and a PostgreSQL table. Both resolve
// the [NEWLINE]/[TAB] placeholders the corpus dumps use and split text on
// whitespace; term normalization is the builder's job, not the source's.
package corpus

import (
	"context"
	"strings"
)

// Document is one corpus record after parsing: an opaque document ID and its
// raw whitespace tokens.
type Document struct {
	ID     string
	Tokens []string
}

// Source streams documents in corpus order. Read aborts on the first error
// returned by fn.
type Source interface {
	Read(ctx context.Context, fn func(doc Document) error) error
}

var unescaper = strings.NewReplacer(
	"[NEWLINE]", "\n",
	"[TAB]", "\t",
)

// Tokenize resolves placeholder escapes and splits on whitespace.
func Tokenize(text string) []string {
	return strings.Fields(unescaper.Replace(text))
}
