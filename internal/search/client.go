package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/meilisearch/meilisearch-go"
	"golang.org/x/sync/errgroup"

	"github.com/estately/estately/internal/domain"
	"github.com/estately/estately/internal/observability/metrics"
)

// Client wraps the Meilisearch index holding property listings. Indexing is
// best-effort: the database row is the source of truth and a failed index
// write never fails the originating request.
type Client struct {
	client *meilisearch.Client
	index  string
	logger *slog.Logger
}

// NewClient creates a search client. Returns nil when host is empty so
// callers can treat search as disabled.
func NewClient(host, apiKey string, logger *slog.Logger) *Client {
	if host == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		client: meilisearch.NewClient(meilisearch.ClientConfig{
			Host:   host,
			APIKey: apiKey,
		}),
		index:  "properties",
		logger: logger,
	}
}

// InitIndex creates the index and configures its attributes
func (c *Client) InitIndex() error {
	_, err := c.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        c.index,
		PrimaryKey: "id",
	})
	if err != nil && err.Error() != "index already exists" {
		return fmt.Errorf("create index: %w", err)
	}

	_, err = c.client.Index(c.index).UpdateSearchableAttributes(&[]string{
		"title",
		"description",
		"address",
		"city",
	})
	if err != nil {
		return fmt.Errorf("update searchable attributes: %w", err)
	}

	_, err = c.client.Index(c.index).UpdateFilterableAttributes(&[]string{
		"id",
		"city",
		"propertyKind",
		"rentMonthly",
		"bedrooms",
		"available",
	})
	if err != nil {
		return fmt.Errorf("update filterable attributes: %w", err)
	}

	_, err = c.client.Index(c.index).UpdateSortableAttributes(&[]string{
		"rentMonthly",
		"areaSqm",
		"createdAt",
	})
	if err != nil {
		return fmt.Errorf("update sortable attributes: %w", err)
	}

	return nil
}

// IndexProperty upserts a single property document
func (c *Client) IndexProperty(p *domain.Property) error {
	_, err := c.client.Index(c.index).AddDocuments([]*domain.Property{p})
	if err != nil {
		metrics.ObserveSearchIndex("upsert", "error")
		return fmt.Errorf("index property %s: %w", p.ID, err)
	}
	metrics.ObserveSearchIndex("upsert", "ok")
	return nil
}

// DeleteProperty removes a property document
func (c *Client) DeleteProperty(id string) error {
	_, err := c.client.Index(c.index).DeleteDocument(id)
	if err != nil {
		metrics.ObserveSearchIndex("delete", "error")
		return fmt.Errorf("delete property %s from index: %w", id, err)
	}
	metrics.ObserveSearchIndex("delete", "ok")
	return nil
}

// Request narrows a full-text search
type Request struct {
	Query  string
	Filter []string
	Sort   []string
	Limit  int64
	Offset int64
}

// Result carries hits plus paging totals
type Result struct {
	Hits      []*domain.Property `json:"hits"`
	TotalHits int64              `json:"totalHits"`
}

// Search runs a full-text query with optional filters
func (c *Client) Search(req Request) (*Result, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	searchReq := &meilisearch.SearchRequest{
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if len(req.Filter) > 0 {
		filterStr := ""
		for i, f := range req.Filter {
			if i > 0 {
				filterStr += " AND "
			}
			filterStr += f
		}
		searchReq.Filter = filterStr
	}
	if len(req.Sort) > 0 {
		searchReq.Sort = req.Sort
	}

	searchRes, err := c.client.Index(c.index).Search(req.Query, searchReq)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]*domain.Property, 0, len(searchRes.Hits))
	for _, hit := range searchRes.Hits {
		hits = append(hits, propertyFromHit(hit))
	}

	return &Result{
		Hits:      hits,
		TotalHits: searchRes.EstimatedTotalHits,
	}, nil
}

// ReindexAll rebuilds the index from the repository in parallel batches
func (c *Client) ReindexAll(ctx context.Context, repo domain.PropertyRepository) (int, error) {
	const batchSize = 100

	var (
		g, gctx = errgroup.WithContext(ctx)
		total   = 0
	)
	g.SetLimit(4)

	for offset := 0; ; offset += batchSize {
		properties, err := repo.List(gctx, domain.PropertyFilters{Limit: batchSize, Offset: offset})
		if err != nil {
			return total, fmt.Errorf("list properties for reindex: %w", err)
		}
		if len(properties) == 0 {
			break
		}
		total += len(properties)

		batch := properties
		g.Go(func() error {
			_, err := c.client.Index(c.index).AddDocuments(batch)
			if err != nil {
				metrics.ObserveSearchIndex("reindex", "error")
				return fmt.Errorf("reindex batch: %w", err)
			}
			metrics.ObserveSearchIndex("reindex", "ok")
			return nil
		})

		if len(properties) < batchSize {
			break
		}
	}

	if err := g.Wait(); err != nil {
		return total, err
	}

	c.logger.Info("search reindex complete", slog.Int("documents", total))
	return total, nil
}

func propertyFromHit(hit interface{}) *domain.Property {
	hitMap, ok := hit.(map[string]interface{})
	if !ok {
		return &domain.Property{}
	}
	p := &domain.Property{
		ID:           getString(hitMap, "id"),
		OwnerID:      getString(hitMap, "ownerId"),
		Title:        getString(hitMap, "title"),
		Description:  getString(hitMap, "description"),
		Address:      getString(hitMap, "address"),
		City:         getString(hitMap, "city"),
		PropertyKind: getString(hitMap, "propertyKind"),
	}
	if rent, ok := hitMap["rentMonthly"].(float64); ok {
		p.RentMonthly = int64(rent)
	}
	if area, ok := hitMap["areaSqm"].(float64); ok {
		p.AreaSqm = area
	}
	if bedrooms, ok := hitMap["bedrooms"].(float64); ok {
		p.Bedrooms = int(bedrooms)
	}
	if available, ok := hitMap["available"].(bool); ok {
		p.Available = available
	}
	if count, ok := hitMap["favoriteCount"].(float64); ok {
		p.FavoriteCount = int64(count)
	}
	return p
}

func getString(m map[string]interface{}, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}
