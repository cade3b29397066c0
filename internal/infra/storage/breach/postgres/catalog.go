package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/breachcheck/internal/domain/breach"
	"github.com/ahrav/breachcheck/internal/infra/storage"
)

var _ breach.CatalogStore = (*catalogStore)(nil)

// catalogStore persists public breach metadata in PostgreSQL so breach detail
// lookups survive restarts and are shared between replicas.
type catalogStore struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

// NewCatalogStore creates a new PostgreSQL-backed breach catalog.
func NewCatalogStore(pool *pgxpool.Pool, tracer trace.Tracer) *catalogStore {
	return &catalogStore{pool: pool, tracer: tracer}
}

const getBreach = `
SELECT name, title, domain, breach_date, added_date, modified_date, pwn_count,
       description, logo_path, data_classes, is_verified, is_fabricated,
       is_sensitive, is_retired, is_spam_list, is_malware, fetched_at
FROM breach_catalog
WHERE name = $1`

const upsertBreach = `
INSERT INTO breach_catalog (
    name, title, domain, breach_date, added_date, modified_date, pwn_count,
    description, logo_path, data_classes, is_verified, is_fabricated,
    is_sensitive, is_retired, is_spam_list, is_malware, fetched_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
ON CONFLICT (name) DO UPDATE SET
    title = EXCLUDED.title,
    domain = EXCLUDED.domain,
    breach_date = EXCLUDED.breach_date,
    added_date = EXCLUDED.added_date,
    modified_date = EXCLUDED.modified_date,
    pwn_count = EXCLUDED.pwn_count,
    description = EXCLUDED.description,
    logo_path = EXCLUDED.logo_path,
    data_classes = EXCLUDED.data_classes,
    is_verified = EXCLUDED.is_verified,
    is_fabricated = EXCLUDED.is_fabricated,
    is_sensitive = EXCLUDED.is_sensitive,
    is_retired = EXCLUDED.is_retired,
    is_spam_list = EXCLUDED.is_spam_list,
    is_malware = EXCLUDED.is_malware,
    fetched_at = EXCLUDED.fetched_at`

// Get returns the catalog entry for name or breach.ErrNotFound.
func (s *catalogStore) Get(ctx context.Context, name string) (breach.CatalogEntry, error) {
	dbAttrs := []attribute.KeyValue{
		attribute.String("repository", "BreachCatalogStore"),
		attribute.String("method", "Get"),
		attribute.String("breach_name", name),
	}

	var e breach.CatalogEntry
	err := storage.ExecuteAndTrace(ctx, s.tracer, "postgres.breach_catalog.get", dbAttrs, func(ctx context.Context) error {
		b := &e.Breach
		err := s.pool.QueryRow(ctx, getBreach, name).Scan(
			&b.Name, &b.Title, &b.Domain, &b.BreachDate, &b.AddedDate, &b.ModifiedDate, &b.PwnCount,
			&b.Description, &b.LogoPath, &b.DataClasses, &b.IsVerified, &b.IsFabricated,
			&b.IsSensitive, &b.IsRetired, &b.IsSpamList, &b.IsMalware, &e.FetchedAt,
		)
		if errors.Is(err, pgx.ErrNoRows) {
			return breach.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("query error: %w", err)
		}
		return nil
	})
	if err != nil {
		return breach.CatalogEntry{}, err
	}

	return e, nil
}

// Upsert inserts or replaces entries in a single batch.
func (s *catalogStore) Upsert(ctx context.Context, entries ...breach.CatalogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	dbAttrs := []attribute.KeyValue{
		attribute.String("repository", "BreachCatalogStore"),
		attribute.String("method", "Upsert"),
		attribute.Int("entry_count", len(entries)),
	}

	return storage.ExecuteAndTrace(ctx, s.tracer, "postgres.breach_catalog.upsert", dbAttrs, func(ctx context.Context) error {
		batch := new(pgx.Batch)
		for _, e := range entries {
			b := e.Breach
			dataClasses := b.DataClasses
			if dataClasses == nil {
				dataClasses = []string{}
			}
			batch.Queue(upsertBreach,
				b.Name, b.Title, b.Domain, b.BreachDate, b.AddedDate, b.ModifiedDate, b.PwnCount,
				b.Description, b.LogoPath, dataClasses, b.IsVerified, b.IsFabricated,
				b.IsSensitive, b.IsRetired, b.IsSpamList, b.IsMalware, e.FetchedAt,
			)
		}

		if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("upsert error: %w", err)
		}
		return nil
	})
}
