package catalog

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"slices"
	"strings"
	"sync"
	"time"
)

// ErrUnavailable means the product list could not be fetched. It is retryable.
var ErrUnavailable = errors.New("catalog unavailable")

const (
	SortName      = "name"
	SortPriceLow  = "price_low"
	SortPriceHigh = "price_high"

	CategoryAll = "all"

	loadTimeout = 10 * time.Second
)

type Query struct {
	Category string
	Search   string
	Sort     string
}

type Service struct {
	repo        port.ProductRepository
	ttl         time.Duration
	loadTimeout time.Duration
	logger      *zap.Logger
	now         func() time.Time

	group singleflight.Group

	mu       sync.RWMutex
	snapshot domain.Catalog
	loadedAt time.Time
}

// NewService caches the product list for ttl. A non-positive ttl disables caching.
func NewService(repo port.ProductRepository, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{
		repo:        repo,
		ttl:         ttl,
		loadTimeout: loadTimeout,
		logger:      logger,
		now:         time.Now,
	}
}

// Snapshot returns the current catalog, loading it when the cached copy is stale.
// Concurrent loads share one repository call. The shared call is not bound to
// any caller's context; a caller whose ctx ends stops waiting for it.
func (s *Service) Snapshot(ctx context.Context) (domain.Catalog, error) {
	if c, ok := s.cached(); ok {
		return c, nil
	}

	ch := s.group.DoChan("catalog", func() (any, error) {
		if c, ok := s.cached(); ok {
			return c, nil
		}

		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
		defer cancel()

		products, err := s.repo.ListProducts(loadCtx)
		if err != nil {
			return domain.Catalog{}, err
		}

		c := domain.NewCatalog(products)

		s.mu.Lock()
		s.snapshot = c
		s.loadedAt = s.now()
		s.mu.Unlock()

		s.logger.Debug("catalog loaded", zap.Int("products", c.Len()))

		return c, nil
	})

	select {
	case <-ctx.Done():
		return domain.Catalog{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			s.logger.Error("catalog load failed", zap.Error(res.Err), zap.Bool("shared", res.Shared))
			return domain.Catalog{}, fmt.Errorf("%w: repo.ListProducts: %w", ErrUnavailable, res.Err)
		}
		return res.Val.(domain.Catalog), nil
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	c, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return c.Products(), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	if id == uuid.Nil {
		return domain.Product{}, fmt.Errorf("productID is empty")
	}

	c, err := s.Snapshot(ctx)
	if err != nil {
		return domain.Product{}, err
	}

	p, ok := c.Lookup(id)
	if !ok {
		return domain.Product{}, port.ErrProductNotFound
	}

	return p, nil
}

// Browse filters the catalog by category and a case-insensitive name search, then sorts it.
func (s *Service) Browse(ctx context.Context, q Query) ([]domain.Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	return Filter(products, q), nil
}

// Invalidate drops the cached snapshot so the next read reloads it.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.loadedAt = time.Time{}
	s.mu.Unlock()
}

func (s *Service) cached() (domain.Catalog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.loadedAt.IsZero() || s.ttl <= 0 {
		return domain.Catalog{}, false
	}
	if s.now().Sub(s.loadedAt) >= s.ttl {
		return domain.Catalog{}, false
	}

	return s.snapshot, true
}

func Filter(products []domain.Product, q Query) []domain.Product {
	category := strings.TrimSpace(q.Category)
	search := strings.ToLower(strings.TrimSpace(q.Search))

	result := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if category != "" && category != CategoryAll && p.Category.String() != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		result = append(result, p)
	}

	Sort(result, q.Sort)

	return result
}

// Sort orders products in place. Unknown keys sort by name.
func Sort(products []domain.Product, key string) {
	switch key {
	case SortPriceLow:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return a.Price.Amount.Cmp(b.Price.Amount)
		})
	case SortPriceHigh:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return b.Price.Amount.Cmp(a.Price.Amount)
		})
	default:
		// collate.Collator is not safe for concurrent use
		col := collate.New(language.English, collate.IgnoreCase)
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return col.CompareString(a.Name, b.Name)
		})
	}
}
