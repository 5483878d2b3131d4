package catering

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lemamita/mamita/internal/store"
)

// Option configures Catalog and Quotes.
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDs replaces the uuid generator used for new documents.
func WithIDs(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

func newOptions(opts []Option) options {
	o := options{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Catalog manages the menuItems collection. References are unique; writes
// that check uniqueness are serialized within the process.
type Catalog struct {
	docs store.Documents
	opts options
	mu   sync.Mutex
}

// NewCatalog returns a catalog backed by docs.
func NewCatalog(docs store.Documents, opts ...Option) *Catalog {
	return &Catalog{docs: docs, opts: newOptions(opts)}
}

// List returns the products ordered by category then name. A non-empty
// category keeps only that category.
func (c *Catalog) List(ctx context.Context, category string) ([]MenuItem, error) {
	docs, err := c.docs.List(ctx, MenuItemsCollection)
	if err != nil {
		return nil, err
	}
	category = NormalizeCategory(category)

	items := make([]MenuItem, 0, len(docs))
	for _, d := range docs {
		var it MenuItem
		if err := d.Decode(&it); err != nil {
			return nil, err
		}
		it.ID = d.ID
		if category != "" && it.Category != category {
			continue
		}
		items = append(items, it)
	}
	slices.SortFunc(items, func(a, b MenuItem) int {
		return cmp.Or(cmp.Compare(a.Category, b.Category), cmp.Compare(a.Name, b.Name))
	})
	return items, nil
}

// Get returns one product or store.ErrNotFound.
func (c *Catalog) Get(ctx context.Context, id string) (*MenuItem, error) {
	var it MenuItem
	if err := c.docs.Get(ctx, MenuItemsCollection, id, &it); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: menu item %s", store.ErrNotFound, id)
		}
		return nil, err
	}
	it.ID = id
	return &it, nil
}

// Create validates and stores a new product under a fresh id.
func (c *Catalog) Create(ctx context.Context, it MenuItem) (*MenuItem, error) {
	it.Normalize()
	if err := it.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, err := c.byReference(ctx, it.Reference); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateReference, it.Reference)
	}

	it.ID = c.opts.newID()
	it.CreatedAt = c.opts.now().UTC()
	if err := c.docs.Put(ctx, MenuItemsCollection, it.ID, it); err != nil {
		return nil, err
	}
	return &it, nil
}

// Update replaces the product fields, keeping its id and creation time.
func (c *Catalog) Update(ctx context.Context, id string, it MenuItem) (*MenuItem, error) {
	it.Normalize()
	if err := it.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, err := c.byReference(ctx, it.Reference); err != nil {
		return nil, err
	} else if existing != nil && existing.ID != id {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateReference, it.Reference)
	}

	var stored MenuItem
	err := c.docs.Update(ctx, MenuItemsCollection, id, &stored, func(exists bool) error {
		if !exists {
			return fmt.Errorf("%w: menu item %s", store.ErrNotFound, id)
		}
		it.ID = id
		it.CreatedAt = stored.CreatedAt
		stored = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// Delete removes a product. Existing quotes keep their copied lines.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	if err := c.docs.Delete(ctx, MenuItemsCollection, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: menu item %s", store.ErrNotFound, id)
		}
		return err
	}
	return nil
}

// ImportResult counts the outcome of Import.
type ImportResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// Import upserts products by reference. Invalid rows are skipped and counted.
func (c *Catalog) Import(ctx context.Context, rows []MenuItem) (ImportResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var res ImportResult
	for _, it := range rows {
		it.Normalize()
		if err := it.Validate(); err != nil {
			res.Skipped++
			continue
		}

		existing, err := c.byReference(ctx, it.Reference)
		if err != nil {
			return res, err
		}
		if existing != nil {
			it.ID, it.CreatedAt = existing.ID, existing.CreatedAt
			res.Updated++
		} else {
			it.ID, it.CreatedAt = c.opts.newID(), c.opts.now().UTC()
			res.Added++
		}
		if err := c.docs.Put(ctx, MenuItemsCollection, it.ID, it); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (c *Catalog) byReference(ctx context.Context, ref string) (*MenuItem, error) {
	items, err := c.List(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Reference == ref {
			return &items[i], nil
		}
	}
	return nil, nil
}
