package http

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"shopadmin/internal/domain"
)

var (
	errProductNotFound = errors.New("product not found")
	errProductInvalid  = errors.New("name is required and price must not be negative")
)

const (
	productStatusActive   = "ACTIVE"
	productStatusInactive = "INACTIVE"
)

// Catalog is the in-memory product and order data behind the development
// backend.
type Catalog struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	orders   []domain.Order
}

func NewCatalog() *Catalog {
	return &Catalog{products: make(map[string]domain.Product)}
}

// Seed fills the catalog with a handful of products and orders dated relative
// to now.
func (c *Catalog) Seed(now time.Time) {
	for _, p := range []domain.Product{
		{Name: "Linen Shirt", Price: 349000, Stock: 40, Status: productStatusActive},
		{Name: "Canvas Tote", Price: 129000, Stock: 120, Status: productStatusActive},
		{Name: "Leather Belt", Price: 259000, Stock: 15, Status: productStatusInactive},
	} {
		_, _ = c.Create(p, now)
	}
	c.AddOrder(domain.Order{Status: domain.OrderStatusCompleted, Gross: 700000, Discount: 50000, Cost: 400000, CreatedAt: now.Add(-72 * time.Hour)})
	c.AddOrder(domain.Order{Status: domain.OrderStatusCompleted, Gross: 300000, Discount: 0, Cost: 150000, CreatedAt: now.Add(-48 * time.Hour)})
	c.AddOrder(domain.Order{Status: domain.OrderStatusPending, Gross: 129000, Discount: 0, Cost: 60000, CreatedAt: now.Add(-24 * time.Hour)})
	c.AddOrder(domain.Order{Status: domain.OrderStatusCancelled, Gross: 259000, Discount: 0, Cost: 120000, CreatedAt: now.Add(-12 * time.Hour)})
}

func (c *Catalog) List(search, status string) []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if status != "" && !strings.EqualFold(p.Status, status) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (c *Catalog) Get(id string) (domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	if !ok {
		return domain.Product{}, errProductNotFound
	}
	return p, nil
}

func (c *Catalog) Create(p domain.Product, now time.Time) (domain.Product, error) {
	if err := validateProduct(p); err != nil {
		return domain.Product{}, err
	}
	p.ID = uuid.NewString()
	if p.Status == "" {
		p.Status = productStatusActive
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = p
	return p, nil
}

// Replace overwrites every mutable field of an existing product.
func (c *Catalog) Replace(id string, p domain.Product, now time.Time) (domain.Product, error) {
	if err := validateProduct(p); err != nil {
		return domain.Product{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	existing, ok := c.products[id]
	if !ok {
		return domain.Product{}, errProductNotFound
	}
	p.ID = id
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = existing.Status
	}
	c.products[id] = p
	return p, nil
}

type productPatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	BrandID     *string  `json:"brandId"`
	CategoryID  *string  `json:"categoryId"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	Status      *string  `json:"status"`
}

func (c *Catalog) Patch(id string, patch productPatch, now time.Time) (domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok {
		return domain.Product{}, errProductNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.BrandID != nil {
		p.BrandID = *patch.BrandID
	}
	if patch.CategoryID != nil {
		p.CategoryID = *patch.CategoryID
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if err := validateProduct(p); err != nil {
		return domain.Product{}, err
	}
	p.UpdatedAt = now
	c.products[id] = p
	return p, nil
}

func (c *Catalog) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.products[id]; !ok {
		return errProductNotFound
	}
	delete(c.products, id)
	return nil
}

func (c *Catalog) AddOrder(o domain.Order) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders = append(c.orders, o)
}

// Summary aggregates orders created in [from, to). Zero bounds are open.
// Revenue, discount and cost only count completed orders.
func (c *Catalog) Summary(from, to time.Time) domain.FinancialSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var s domain.FinancialSummary
	var total, completed, pending int
	for _, o := range c.orders {
		if !from.IsZero() && o.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !o.CreatedAt.Before(to) {
			continue
		}
		total++
		switch o.Status {
		case domain.OrderStatusCompleted:
			completed++
			s.GrossRevenue += o.Gross
			s.TotalDiscount += o.Discount
			s.ProcurementCost += o.Cost
		case domain.OrderStatusPending:
			pending++
		}
	}
	for _, p := range c.products {
		if p.Status == productStatusActive {
			s.InventoryCost += p.Price * float64(p.Stock)
		}
	}

	s.TotalRevenue = s.GrossRevenue - s.TotalDiscount
	s.TotalProfit = s.TotalRevenue - s.ProcurementCost
	s.ProfitMargin = ratio(s.TotalProfit, s.TotalRevenue)
	s.ProfitMarginPercent = s.ProfitMargin * 100
	s.ProcurementCostPercent = ratio(s.ProcurementCost, s.TotalRevenue) * 100
	s.InventoryCostPercent = ratio(s.InventoryCost, s.InventoryCost+s.ProcurementCost) * 100
	s.CompletedOrderRate = ratio(float64(completed), float64(total)) * 100
	s.PendingOrderRate = ratio(float64(pending), float64(total)) * 100
	s.DiscountRate = ratio(s.TotalDiscount, s.GrossRevenue) * 100
	return s
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func validateProduct(p domain.Product) error {
	if strings.TrimSpace(p.Name) == "" || p.Price < 0 || p.Stock < 0 {
		return errProductInvalid
	}
	return nil
}
