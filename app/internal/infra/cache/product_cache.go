package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	domproduct "example.com/voltcart/app/internal/domain/product"
)

const maxJitter = time.Minute

// ProductCache keeps catalog products in redis, keyed by product id.
type ProductCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewProductCache(client *redis.Client, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProductCache{client: client, baseTTL: ttl}
}

func (c *ProductCache) Get(ctx context.Context, id int64) (*domproduct.Product, error) {
	data, err := c.client.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var p domproduct.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal product failed: %w", err)
	}
	return &p, nil
}

// Set stores p with a jittered TTL so entries written together do not all
// expire together.
func (c *ProductCache) Set(ctx context.Context, p *domproduct.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal product failed: %w", err)
	}

	ttl := c.baseTTL + time.Duration(rand.Int63n(int64(maxJitter)))
	if err := c.client.Set(ctx, productKey(p.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *ProductCache) Delete(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, productKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func productKey(id int64) string {
	return fmt.Sprintf("catalog:product:%d", id)
}

// CachedProductRepository reads products through the cache. Lookups by id are
// cached; listings always go to the source. A redis outage degrades to
// reading the source directly.
type CachedProductRepository struct {
	source domproduct.Repository
	cache  *ProductCache
}

func NewCachedProductRepository(source domproduct.Repository, cache *ProductCache) *CachedProductRepository {
	return &CachedProductRepository{source: source, cache: cache}
}

func (r *CachedProductRepository) GetByID(ctx context.Context, id int64) (*domproduct.Product, error) {
	p, err := r.cache.Get(ctx, id)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		log.Printf("[cache] product %d: %v", id, err)
	}

	p, err = r.source.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, p); err != nil {
		log.Printf("[cache] store product %d: %v", id, err)
	}
	return p, nil
}

func (r *CachedProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domproduct.Product, error) {
	products := make([]*domproduct.Product, 0, len(ids))
	var missing []int64
	for _, id := range ids {
		p, err := r.cache.Get(ctx, id)
		if err != nil {
			missing = append(missing, id)
			continue
		}
		products = append(products, p)
	}
	if len(missing) == 0 {
		return products, nil
	}

	loaded, err := r.source.GetByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, p := range loaded {
		if err := r.cache.Set(ctx, p); err != nil {
			log.Printf("[cache] store product %d: %v", p.ID, err)
		}
	}
	return append(products, loaded...), nil
}

func (r *CachedProductRepository) List(ctx context.Context, filter domproduct.ListFilter) ([]*domproduct.Product, error) {
	return r.source.List(ctx, filter)
}

// EvictingWriter applies catalog writes to the source and drops the cached
// copy so carts see the new price on their next add.
type EvictingWriter struct {
	source domproduct.Writer
	cache  *ProductCache
}

func NewEvictingWriter(source domproduct.Writer, cache *ProductCache) *EvictingWriter {
	return &EvictingWriter{source: source, cache: cache}
}

func (w *EvictingWriter) Create(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	return w.source.Create(ctx, p)
}

func (w *EvictingWriter) Update(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	updated, err := w.source.Update(ctx, p)
	if err != nil {
		return nil, err
	}
	w.evict(ctx, p.ID)
	return updated, nil
}

func (w *EvictingWriter) Delete(ctx context.Context, id int64) error {
	if err := w.source.Delete(ctx, id); err != nil {
		return err
	}
	w.evict(ctx, id)
	return nil
}

func (w *EvictingWriter) evict(ctx context.Context, id int64) {
	if err := w.cache.Delete(ctx, id); err != nil {
		log.Printf("[cache] evict product %d: %v", id, err)
	}
}
