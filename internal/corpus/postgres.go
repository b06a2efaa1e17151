package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/saket-vr/permafind/pkg/config"
	apperrors "github.com/saket-vr/permafind/pkg/errors"
	"github.com/saket-vr/permafind/pkg/logger"
	"github.com/saket-vr/permafind/pkg/postgres"
)

// PostgresSource streams documents out of a table. Rows are ordered by the
// ID column so repeated builds see the corpus in the same order.
type PostgresSource struct {
	client *postgres.Client
	cfg    config.PostgresConfig
	logger *slog.Logger
}

// NewPostgresSource returns a source over cfg.Table.
func NewPostgresSource(client *postgres.Client, cfg config.PostgresConfig) *PostgresSource {
	return &PostgresSource{
		client: client,
		cfg:    cfg,
		logger: logger.WithComponent("corpus-postgres"),
	}
}

// Read streams every row to fn. Query and scan failures wrap ErrCorpusRead;
// rows with a NULL text column count as zero-token documents.
func (s *PostgresSource) Read(ctx context.Context, fn func(doc Document) error) error {
	stmt := fmt.Sprintf(
		"SELECT %s, %s FROM %s ORDER BY %s",
		pq.QuoteIdentifier(s.cfg.IDColumn),
		pq.QuoteIdentifier(s.cfg.TextColumn),
		pq.QuoteIdentifier(s.cfg.Table),
		pq.QuoteIdentifier(s.cfg.IDColumn),
	)
	rows, err := s.client.DB.QueryContext(ctx, stmt)
	if err != nil {
		return apperrors.Newf(apperrors.ErrCorpusRead, "querying %s: %v", s.cfg.Table, err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var id string
		var text sql.NullString
		if err := rows.Scan(&id, &text); err != nil {
			return apperrors.Newf(apperrors.ErrCorpusRead, "scanning row: %v", err)
		}
		doc := Document{ID: id, Tokens: Tokenize(text.String)}
		if err := fn(doc); err != nil {
			return err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return apperrors.Newf(apperrors.ErrCorpusRead, "iterating rows: %v", err)
	}
	s.logger.Info("corpus table read", "table", s.cfg.Table, "rows", count)
	return nil
}
