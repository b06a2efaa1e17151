package corpus

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/saket-vr/permafind/pkg/config"
	apperrors "github.com/saket-vr/permafind/pkg/errors"
	"github.com/saket-vr/permafind/pkg/logger"
	"github.com/saket-vr/permafind/pkg/metrics"
)

// FileSource reads a delimited corpus file. The shipped tweet dumps are
// tab-separated: the ID sits in column 1 and the text in column 4, and
// records with fewer than five fields are incomplete. All of that is
// configurable.
type FileSource struct {
	cfg     config.CorpusConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
	skipped int
}

// NewFileSource returns a source over cfg.Path. m may be nil.
func NewFileSource(cfg config.CorpusConfig, m *metrics.Metrics) *FileSource {
	return &FileSource{
		cfg:     cfg,
		metrics: m,
		logger:  logger.WithComponent("corpus-file"),
	}
}

// Read streams every well-formed record to fn. An unreadable file wraps
// ErrCorpusRead and aborts; a record with too few fields is skipped and
// ingestion continues.
func (s *FileSource) Read(ctx context.Context, fn func(doc Document) error) error {
	f, err := os.Open(s.cfg.Path)
	if err != nil {
		return apperrors.Newf(apperrors.ErrCorpusRead, "opening %s: %v", s.cfg.Path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = rune(s.cfg.Delimiter[0])
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.skip(line, err.Error())
			continue
		}
		if len(record) < s.cfg.MinFields {
			s.skip(line, "too few fields")
			continue
		}
		doc := Document{
			ID:     record[s.cfg.IDColumn],
			Tokens: Tokenize(record[s.cfg.TextColumn]),
		}
		if err := fn(doc); err != nil {
			return err
		}
	}

	if s.skipped > 0 {
		s.logger.Warn("malformed records skipped", "count", s.skipped, "path", s.cfg.Path)
	}
	return nil
}

// Skipped reports how many malformed records were dropped so far.
func (s *FileSource) Skipped() int {
	return s.skipped
}

func (s *FileSource) skip(line int, reason string) {
	s.skipped++
	s.logger.Debug("skipping record",
		"error", apperrors.Newf(apperrors.ErrMalformedRecord, "line %d: %s", line, reason),
	)
	if s.metrics != nil {
		s.metrics.RecordsSkippedTotal.Inc()
	}
}
