package category

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/finanzio/statement-core/internal/domain"
)

// categoryRow mirrors the finance.categories table schema.
type categoryRow struct {
	CategoryID string              `bigquery:"category_id"`
	Name       string              `bigquery:"name"`
	Kind       string              `bigquery:"kind"`
	Icon       bigquery.NullString `bigquery:"icon"`
	IsActive   bigquery.NullBool   `bigquery:"is_active"`
}

// Provider loads the user category taxonomy from BigQuery. Library callers
// normally pass their own []domain.CategoryRef; the provider exists for the
// CLI and batch entry points.
type Provider struct {
	client *bigquery.Client
	table  string
}

// NewProvider creates a provider for the given project and fully qualified
// table name (dataset.table).
func NewProvider(ctx context.Context, projectID, table string) (*Provider, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("category provider: bigquery client: %w", err)
	}
	return &Provider{client: client, table: table}, nil
}

// Close releases the underlying client.
func (p *Provider) Close() error {
	return p.client.Close()
}

// ListCategories returns all active categories ordered by kind and name.
func (p *Provider) ListCategories(ctx context.Context) ([]domain.CategoryRef, error) {
	q := p.client.Query(fmt.Sprintf(`
		SELECT
		  category_id,
		  name,
		  kind,
		  icon,
		  is_active
		FROM %s
		WHERE is_active = TRUE
		ORDER BY kind, name
	`, p.table))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListCategories: query read: %w", err)
	}

	var refs []domain.CategoryRef
	for {
		var r categoryRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListCategories: iter next: %w", err)
		}
		ref := domain.CategoryRef{
			ID:   r.CategoryID,
			Name: r.Name,
			Kind: domain.Kind(r.Kind),
		}
		if r.Icon.Valid {
			ref.IconHint = r.Icon.StringVal
		}
		refs = append(refs, ref)
	}

	return refs, nil
}
