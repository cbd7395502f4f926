package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"catalog-service/catalog"
	"catalog-service/models"
	"catalog-service/repository"
)

// --- In-memory repositories ---

type memCategoryRepo struct {
	mu    sync.Mutex
	items map[string]models.Category
	err   error
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{items: make(map[string]models.Category)}
}

var _ repository.CategoryRepo = (*memCategoryRepo)(nil)

func (m *memCategoryRepo) FindByID(_ context.Context, id string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (m *memCategoryRepo) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, c := range m.items {
		if c.Slug == slug {
			c := c
			return &c, nil
		}
	}
	return nil, fmt.Errorf("category %q: %w", slug, repository.ErrNotFound)
}

func (m *memCategoryRepo) List(_ context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Category, 0, len(m.items))
	for _, c := range m.items {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memCategoryRepo) Create(_ context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.Slug == c.Slug {
			return repository.ErrDuplicateSlug
		}
	}
	m.items[c.ID] = *c
	return nil
}

func (m *memCategoryRepo) AppendAttributeField(_ context.Context, id string, f models.FieldDef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	for _, existing := range c.AttributeFields {
		if existing.Slug == f.Slug {
			return repository.ErrDuplicateFieldSlug
		}
	}
	c.AttributeFields = append(c.AttributeFields, f)
	m.items[id] = c
	return nil
}

func (m *memCategoryRepo) AppendAxis(_ context.Context, id string, a models.AxisDef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	for _, existing := range c.VariationAxes {
		if existing.Slug == a.Slug {
			return repository.ErrDuplicateFieldSlug
		}
	}
	c.VariationAxes = append(c.VariationAxes, a)
	m.items[id] = c
	return nil
}

func (m *memCategoryRepo) EnsureIndexes(context.Context) error { return nil }

type memProductRepo struct {
	mu      sync.Mutex
	items   map[string]models.Product
	findErr error
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{items: make(map[string]models.Product)}
}

var _ repository.ProductRepo = (*memProductRepo)(nil)

// clone deep-copies through JSON so callers never share slices with the store.
func clone(p models.Product) models.Product {
	b, err := json.Marshal(p)
	if err != nil {
		panic(err)
	}
	var out models.Product
	if err := json.Unmarshal(b, &out); err != nil {
		panic(err)
	}
	return out
}

func (m *memProductRepo) checkUnique(p *models.Product) error {
	skus := make(map[string]bool)
	for _, v := range p.Variants {
		skus[v.SKU] = true
	}
	for id, existing := range m.items {
		if id == p.ID {
			continue
		}
		if existing.Slug == p.Slug {
			return repository.ErrDuplicateSlug
		}
		for _, v := range existing.Variants {
			if skus[v.SKU] {
				return repository.ErrDuplicateSKU
			}
		}
	}
	return nil
}

func (m *memProductRepo) Create(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkUnique(p); err != nil {
		return err
	}
	m.items[p.ID] = clone(*p)
	return nil
}

func (m *memProductRepo) Update(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[p.ID]; !ok {
		return repository.ErrNotFound
	}
	if err := m.checkUnique(p); err != nil {
		return err
	}
	m.items[p.ID] = clone(*p)
	return nil
}

func (m *memProductRepo) FindBySlug(_ context.Context, slug string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.items {
		if p.Slug == slug {
			out := clone(p)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memProductRepo) FindMany(_ context.Context, pred catalog.Predicate, s catalog.Sort, limit int) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	all := make([]models.Product, 0, len(m.items))
	for _, p := range m.items {
		all = append(all, clone(p))
	}
	q := &catalog.Query{Predicate: pred, Sort: s, Limit: limit}
	return q.Apply(all), nil
}

func (m *memProductRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memProductRepo) SlugsExist(_ context.Context, slugs []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		want[s] = true
	}
	var taken []string
	for _, p := range m.items {
		if want[p.Slug] {
			taken = append(taken, p.Slug)
		}
	}
	return taken, nil
}

func (m *memProductRepo) EnsureIndexes(context.Context) error { return nil }

// --- Mock SNS Publisher ---

type mockSNSPublisher struct {
	mu        sync.Mutex
	published []map[string]interface{}
}

func (m *mockSNSPublisher) Publish(_ context.Context, _ string, message []byte, attributes map[string]string) error {
	var payload map[string]interface{}
	if err := json.Unmarshal(message, &payload); err != nil {
		return err
	}
	payload["attr_event_type"] = attributes["event_type"]
	m.mu.Lock()
	m.published = append(m.published, payload)
	m.mu.Unlock()
	return nil
}

func (m *mockSNSPublisher) eventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, p := range m.published {
		out = append(out, p["event_type"].(string))
	}
	return out
}

// --- Fake presigner ---

type fakePresigner struct {
	fail bool
}

func (f *fakePresigner) ObjectKey(name string) string { return "products/" + name }

func (f *fakePresigner) PresignPut(_ context.Context, key, _ string, expires time.Duration) (string, error) {
	if f.fail {
		return "", errors.New("presign failed")
	}
	return fmt.Sprintf("https://bucket.example/%s?expires=%d", key, int(expires.Seconds())), nil
}

func (f *fakePresigner) PublicURL(key string) string { return "https://cdn.example/" + key }
