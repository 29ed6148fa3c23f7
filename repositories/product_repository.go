package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"storefront/models"
)

var ErrProductNotFound = errors.New("product not found")

type ProductRepository interface {
	List(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
}

func DefaultCatalog() []models.Product {
	return []models.Product{
		{ID: "scratcher", Title: "Когтеточка", Description: "Столбик с джутовой обмоткой", Price: 1200, Image: "images/scratcher.jpg"},
		{ID: "bed", Title: "Лежанка", Description: "Мягкая лежанка для котёнка", Price: 2500, Image: "images/bed.jpg"},
		{ID: "mouse", Title: "Игрушка-мышь", Description: "Мышь с кошачьей мятой", Price: 300, Image: "images/mouse.jpg"},
		{ID: "food", Title: "Корм для котят", Description: "Сухой корм, 2 кг", Price: 900, Image: "images/food.jpg"},
		{ID: "carrier", Title: "Переноска", Description: "Пластиковая переноска", Price: 3100, Image: "images/carrier.jpg"},
	}
}

type MemoryProductRepository struct {
	products []models.Product
}

func NewMemoryProductRepository(products ...models.Product) *MemoryProductRepository {
	return &MemoryProductRepository{products: products}
}

func (r *MemoryProductRepository) List(ctx context.Context) ([]models.Product, error) {
	out := make([]models.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

func (r *MemoryProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	return findProduct(r.products, id)
}

type PostgresProductRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresProductRepository(pool *pgxpool.Pool) *PostgresProductRepository {
	return &PostgresProductRepository{pool: pool}
}

func (r *PostgresProductRepository) List(ctx context.Context) ([]models.Product, error) {
	query := `SELECT id, title, COALESCE(description, ''), price, COALESCE(image, '')
	          FROM products WHERE is_active = true ORDER BY position, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Image); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *PostgresProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	query := `SELECT id, title, COALESCE(description, ''), price, COALESCE(image, '')
	          FROM products WHERE id = $1 AND is_active = true`

	var p models.Product
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Image)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query product %s: %w", id, err)
	}
	return &p, nil
}

const productCacheKey = "products_list"

// CachedProductRepository serves the catalog listing from Redis and falls
// back to the wrapped repository on a miss or a Redis failure.
type CachedProductRepository struct {
	inner  ProductRepository
	client *redis.Client
	ttl    time.Duration
}

func NewCachedProductRepository(inner ProductRepository, client *redis.Client, ttl time.Duration) *CachedProductRepository {
	return &CachedProductRepository{inner: inner, client: client, ttl: ttl}
}

func (r *CachedProductRepository) List(ctx context.Context) ([]models.Product, error) {
	if cached, err := r.client.Get(ctx, productCacheKey).Result(); err == nil {
		var products []models.Product
		if json.Unmarshal([]byte(cached), &products) == nil {
			return products, nil
		}
	}

	products, err := r.inner.List(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(products); err == nil {
		r.client.Set(ctx, productCacheKey, string(data), r.ttl)
	}
	return products, nil
}

func (r *CachedProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	products, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return findProduct(products, id)
}

func (r *CachedProductRepository) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, productCacheKey).Err()
}

func findProduct(products []models.Product, id string) (*models.Product, error) {
	for i := range products {
		if products[i].ID == id {
			p := products[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
}
