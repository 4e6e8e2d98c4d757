package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	domproduct "example.com/voltcart/app/internal/domain/product"
)

type productDTO struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int64           `json:"stock"`
	CategoryID  int64           `json:"category_id"`
	Images      []string        `json:"images"`
	IsActive    bool            `json:"is_active"`
}

func (d productDTO) toDomain() *domproduct.Product {
	return &domproduct.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Stock:       d.Stock,
		CategoryID:  d.CategoryID,
		ImageRefs:   d.Images,
		IsActive:    d.IsActive,
	}
}

// CatalogClient reads products from the storefront backend's REST API.
type CatalogClient struct {
	c *client
}

func NewCatalogClient(opts Options) *CatalogClient {
	return &CatalogClient{c: newClient("catalog", opts)}
}

func (cc *CatalogClient) GetByID(ctx context.Context, id int64) (*domproduct.Product, error) {
	const op = "get product"
	r, err := cc.c.do(ctx, op, http.MethodGet, "/products/"+strconv.FormatInt(id, 10), nil, nil)
	if err != nil {
		return nil, err
	}
	switch r.status {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, domproduct.ErrProductNotFound
	default:
		return nil, fmt.Errorf("%s: unexpected status %d: %s", op, r.status, reason(r))
	}

	var dto productDTO
	if err := decode(op, r, &dto); err != nil {
		return nil, err
	}
	if dto.Price.IsNegative() {
		return nil, domproduct.ErrInvalidPrice
	}
	return dto.toDomain(), nil
}

func (cc *CatalogClient) GetByIDs(ctx context.Context, ids []int64) ([]*domproduct.Product, error) {
	products := make([]*domproduct.Product, 0, len(ids))
	for _, id := range ids {
		p, err := cc.GetByID(ctx, id)
		if errors.Is(err, domproduct.ErrProductNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (cc *CatalogClient) List(ctx context.Context, filter domproduct.ListFilter) ([]*domproduct.Product, error) {
	const op = "list products"
	q := url.Values{}
	if filter.CategoryID != nil {
		q.Set("category_id", strconv.FormatInt(*filter.CategoryID, 10))
	}
	if filter.Search != "" {
		q.Set("q", filter.Search)
	}
	if filter.OnlyActive {
		q.Set("active", "true")
	}
	path := "/products"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	r, err := cc.c.do(ctx, op, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	if r.status != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d: %s", op, r.status, reason(r))
	}

	var dtos []productDTO
	if err := decode(op, r, &dtos); err != nil {
		return nil, err
	}
	products := make([]*domproduct.Product, 0, len(dtos))
	for _, d := range dtos {
		products = append(products, d.toDomain())
	}
	return products, nil
}
