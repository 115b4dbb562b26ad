// Package catalog is the catalog store: products and categories held in
// memory and persisted as two JSON snapshots after every mutation.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	appshared "github.com/brewline/storefront/internal/application/shared"
	"github.com/brewline/storefront/internal/domain/catalog"
	"github.com/brewline/storefront/internal/domain/shared"
	"github.com/brewline/storefront/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrProductNotFound is returned for an unknown product id
	ErrProductNotFound = shared.NotFound("Product not found")
	// ErrCategoryNotFound is returned for an unknown category id
	ErrCategoryNotFound = shared.NotFound("Category not found")
	// ErrCategoryInUse blocks deleting a category that products still reference
	ErrCategoryInUse = shared.NewDomainError("CATEGORY_IN_USE", "Category is still assigned to products")
)

// Seed is the initial catalog used when no snapshot exists yet
type Seed struct {
	Categories []*catalog.Category
	Products   []*catalog.Product
}

// SeedSource provides the first-run catalog
type SeedSource interface {
	Seed() (*Seed, error)
}

// Store owns the product and category collections.
// Reads return clones; mutations apply then persist under the write lock.
type Store struct {
	mu         sync.RWMutex
	products   []*catalog.Product
	categories []*catalog.Category

	snapshots *appshared.SnapshotWriter
	images    ImageHost
	events    shared.EventPublisher
	seed      SeedSource
	logger    *zap.Logger
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithImageHost sets the image host used by SaveProductWithImage and UploadImage
func WithImageHost(h ImageHost) StoreOption {
	return func(s *Store) { s.images = h }
}

// WithEventPublisher sets the publisher for catalog domain events
func WithEventPublisher(p shared.EventPublisher) StoreOption {
	return func(s *Store) { s.events = p }
}

// WithSeed sets the first-run catalog source
func WithSeed(src SeedSource) StoreOption {
	return func(s *Store) { s.seed = src }
}

// WithLogger sets the store logger
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// NewStore creates an empty store writing through snapshots
func NewStore(snapshots *appshared.SnapshotWriter, opts ...StoreOption) *Store {
	s := &Store{
		products:   []*catalog.Product{},
		categories: []*catalog.Category{},
		snapshots:  snapshots,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory catalog with the persisted snapshots.
// Absent or unparseable blobs leave that collection empty; when neither blob
// exists the seed (if any) is applied and persisted.
func (s *Store) Load(ctx context.Context) appshared.Warnings {
	s.mu.Lock()
	defer s.mu.Unlock()

	var warnings appshared.Warnings
	log := logger.WithLogger(ctx, s.logger)

	categories, foundCategories, w := loadCollection[*catalog.Category](ctx, s.snapshots, shared.StateKeyCategories, log)
	warnings.Merge(w)
	products, foundProducts, w := loadCollection[*catalog.Product](ctx, s.snapshots, shared.StateKeyProducts, log)
	warnings.Merge(w)

	s.categories = categories
	s.products = products
	sortCategories(s.categories)

	if !foundCategories && !foundProducts && len(warnings) == 0 && s.seed != nil {
		seed, err := s.seed.Seed()
		if err != nil {
			log.Warn("Failed to read catalog seed", zap.Error(err))
			warnings.Add("SEED_FAILED", "%v", err)
			return warnings
		}
		s.categories = seed.Categories
		s.products = seed.Products
		sortCategories(s.categories)
		clearEvents(s.categories, s.products)

		warnings.Merge(s.persistCategories(ctx))
		warnings.Merge(s.persistProducts(ctx))
		log.Info("Catalog seeded",
			zap.Int("categories", len(s.categories)),
			zap.Int("products", len(s.products)),
		)
	}

	log.Info("Catalog loaded",
		zap.Int("categories", len(s.categories)),
		zap.Int("products", len(s.products)),
	)
	return warnings
}

func loadCollection[T any](ctx context.Context, snapshots *appshared.SnapshotWriter, key string, log *logger.ContextLogger) ([]T, bool, appshared.Warnings) {
	data, ok, warnings := snapshots.Read(ctx, key)
	if !ok {
		return []T{}, false, warnings
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		log.Warn("Discarding unparseable snapshot", zap.String("key", key), zap.Error(err))
		warnings.Add("STATE_CORRUPT", "%s snapshot could not be parsed", key)
		return []T{}, true, warnings
	}
	if items == nil {
		items = []T{}
	}
	return items, true, warnings
}

// ListProducts returns all products, or those in categoryID when it is set
func (s *Store) ListProducts(_ context.Context, categoryID *uuid.UUID) []*catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		if categoryID != nil && !p.InCategory(*categoryID) {
			continue
		}
		out = append(out, p.Clone())
	}
	return out
}

// GetProduct returns the product with id
func (s *Store) GetProduct(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.productIndex(id)
	if idx < 0 {
		return nil, ErrProductNotFound
	}
	return s.products[idx].Clone(), nil
}

// AddProduct validates and appends a new product
func (s *Store) AddProduct(ctx context.Context, details catalog.ProductDetails) (*catalog.Product, appshared.Warnings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkCategories(details.CategoryIDs); err != nil {
		return nil, nil, err
	}
	product, err := catalog.NewProduct(details)
	if err != nil {
		return nil, nil, err
	}

	s.products = append(s.products, product)
	warnings := s.persistProducts(ctx)
	s.publish(ctx, product)

	logger.WithLogger(ctx, s.logger).Info("Product added",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name),
	)
	return product.Clone(), warnings, nil
}

// UpdateProduct replaces every editable field of the product with id
func (s *Store) UpdateProduct(ctx context.Context, id uuid.UUID, details catalog.ProductDetails) (*catalog.Product, appshared.Warnings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.productIndex(id)
	if idx < 0 {
		return nil, nil, ErrProductNotFound
	}
	if err := s.checkCategories(details.CategoryIDs); err != nil {
		return nil, nil, err
	}

	// validate on a copy so a rejected update leaves the stored product untouched
	updated := s.products[idx].Clone()
	if err := updated.Update(details); err != nil {
		return nil, nil, err
	}

	s.products[idx] = updated
	warnings := s.persistProducts(ctx)
	s.publish(ctx, updated)

	return updated.Clone(), warnings, nil
}

// DeleteProduct removes the product with id
func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) (appshared.Warnings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.productIndex(id)
	if idx < 0 {
		return nil, ErrProductNotFound
	}

	product := s.products[idx]
	s.products = append(s.products[:idx:idx], s.products[idx+1:]...)
	product.MarkDeleted()

	warnings := s.persistProducts(ctx)
	s.publish(ctx, product)

	logger.WithLogger(ctx, s.logger).Info("Product deleted", zap.String("product_id", id.String()))
	return warnings, nil
}

// SaveProductWithImage uploads the image first and only then sets it on the
// product. A failed upload aborts the save and leaves the catalog unchanged.
func (s *Store) SaveProductWithImage(ctx context.Context, id uuid.UUID, img ImageUpload) (*catalog.Product, appshared.Warnings, error) {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return nil, nil, err
	}

	img.Folder = FolderProducts
	url, err := s.UploadImage(ctx, img)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// the product may have been deleted while the upload was in flight
	idx := s.productIndex(id)
	if idx < 0 {
		return nil, nil, ErrProductNotFound
	}

	updated := s.products[idx].Clone()
	updated.SetImage(url)
	s.products[idx] = updated

	warnings := s.persistProducts(ctx)
	s.publish(ctx, updated)
	return updated.Clone(), warnings, nil
}

// UploadImage sends an image to the host and returns its URL
func (s *Store) UploadImage(ctx context.Context, img ImageUpload) (string, error) {
	if len(img.Data) == 0 {
		return "", ErrImageEmpty
	}
	if !IsValidFolder(img.Folder) {
		return "", shared.NewDomainError("INVALID_FOLDER", fmt.Sprintf("Unknown image folder %q", img.Folder))
	}
	if s.images == nil {
		return "", shared.WrapDomainError(ErrImageHostFailure.Code, "No image host is configured", nil)
	}

	url, err := s.images.Upload(ctx, img)
	if err != nil {
		logger.WithLogger(ctx, s.logger).Warn("Image upload failed",
			zap.String("folder", img.Folder),
			zap.Int("bytes", len(img.Data)),
			zap.Error(err),
		)
		if _, ok := shared.AsDomainError(err); ok {
			return "", err
		}
		return "", shared.WrapDomainError(ErrImageHostFailure.Code, ErrImageHostFailure.Message, err)
	}
	return url, nil
}

// ListCategories returns categories ordered by sort order then name
func (s *Store) ListCategories(context.Context) []*catalog.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*catalog.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c.Clone())
	}
	return out
}

// GetCategory returns the category with id
func (s *Store) GetCategory(_ context.Context, id uuid.UUID) (*catalog.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.categoryIndex(id)
	if idx < 0 {
		return nil, ErrCategoryNotFound
	}
	return s.categories[idx].Clone(), nil
}

// AddCategory appends a category at the end of the menu
func (s *Store) AddCategory(ctx context.Context, name string, theme *catalog.Theme) (*catalog.Category, appshared.Warnings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.categoryNameTaken(name, uuid.Nil) {
		return nil, nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "A category with this name already exists")
	}
	category, err := catalog.NewCategory(name, theme)
	if err != nil {
		return nil, nil, err
	}
	category.SortOrder = s.nextSortOrder()

	s.categories = append(s.categories, category)
	sortCategories(s.categories)
	warnings := s.persistCategories(ctx)
	s.publish(ctx, category)

	return category.Clone(), warnings, nil
}

// UpdateCategory renames the category and replaces its theme.
// A non-nil sortOrder also moves it in the menu.
func (s *Store) UpdateCategory(ctx context.Context, id uuid.UUID, name string, theme *catalog.Theme, sortOrder *int) (*catalog.Category, appshared.Warnings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.categoryIndex(id)
	if idx < 0 {
		return nil, nil, ErrCategoryNotFound
	}
	if s.categoryNameTaken(name, id) {
		return nil, nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "A category with this name already exists")
	}

	updated := s.categories[idx].Clone()
	if err := updated.Update(name, theme); err != nil {
		return nil, nil, err
	}
	if sortOrder != nil {
		updated.SetSortOrder(*sortOrder)
	}

	s.categories[idx] = updated
	sortCategories(s.categories)
	warnings := s.persistCategories(ctx)
	s.publish(ctx, updated)

	return updated.Clone(), warnings, nil
}

// DeleteCategory removes an unused category
func (s *Store) DeleteCategory(ctx context.Context, id uuid.UUID) (appshared.Warnings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.categoryIndex(id)
	if idx < 0 {
		return nil, ErrCategoryNotFound
	}
	for _, p := range s.products {
		if p.InCategory(id) {
			return nil, ErrCategoryInUse
		}
	}

	category := s.categories[idx]
	s.categories = append(s.categories[:idx:idx], s.categories[idx+1:]...)
	category.MarkDeleted()

	warnings := s.persistCategories(ctx)
	s.publish(ctx, category)
	return warnings, nil
}

// Counts returns the number of products and categories
func (s *Store) Counts() (products, categories int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products), len(s.categories)
}

// Ping checks the durable state backend
func (s *Store) Ping(ctx context.Context) error {
	return s.snapshots.Ping(ctx)
}

func (s *Store) persistProducts(ctx context.Context) appshared.Warnings {
	return s.snapshots.Write(ctx, shared.StateKeyProducts, s.products)
}

func (s *Store) persistCategories(ctx context.Context) appshared.Warnings {
	return s.snapshots.Write(ctx, shared.StateKeyCategories, s.categories)
}

func (s *Store) publish(ctx context.Context, agg shared.AggregateRoot) {
	events := agg.GetDomainEvents()
	agg.ClearDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		logger.WithLogger(ctx, s.logger).Warn("Failed to publish catalog events", zap.Error(err))
	}
}

func (s *Store) checkCategories(ids []uuid.UUID) error {
	for _, id := range ids {
		if id != uuid.Nil && s.categoryIndex(id) < 0 {
			return shared.NewDomainError("INVALID_CATEGORY", fmt.Sprintf("Category %s does not exist", id))
		}
	}
	return nil
}

func (s *Store) categoryNameTaken(name string, except uuid.UUID) bool {
	name = strings.TrimSpace(name)
	for _, c := range s.categories {
		if c.ID != except && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func (s *Store) nextSortOrder() int {
	next := 0
	for _, c := range s.categories {
		if c.SortOrder >= next {
			next = c.SortOrder + 1
		}
	}
	return next
}

func (s *Store) productIndex(id uuid.UUID) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) categoryIndex(id uuid.UUID) int {
	for i, c := range s.categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func sortCategories(categories []*catalog.Category) {
	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].SortOrder != categories[j].SortOrder {
			return categories[i].SortOrder < categories[j].SortOrder
		}
		return strings.ToLower(categories[i].Name) < strings.ToLower(categories[j].Name)
	})
}

func clearEvents(categories []*catalog.Category, products []*catalog.Product) {
	for _, c := range categories {
		c.ClearDomainEvents()
	}
	for _, p := range products {
		p.ClearDomainEvents()
	}
}
