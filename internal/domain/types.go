package domain

import "time"

// SessionKey is the fixed key the signed-in operator's credentials live under.
const SessionKey = "authUser"

// Credentials is the access/refresh token pair persisted for a signed-in
// operator. Token mirrors AccessToken for readers of the older layout.
type Credentials struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Token        string `json:"token,omitempty"`
}

// Access returns the access token, falling back to the legacy alias.
func (c Credentials) Access() string {
	if c.AccessToken != "" {
		return c.AccessToken
	}
	return c.Token
}

// Normalize fills AccessToken from the legacy alias and keeps the alias in sync.
func (c Credentials) Normalize() Credentials {
	c.AccessToken = c.Access()
	c.Token = c.AccessToken
	return c
}

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	BrandID     string    `json:"brandId,omitempty"`
	CategoryID  string    `json:"categoryId,omitempty"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type FinancialSummary struct {
	GrossRevenue           float64 `json:"grossRevenue"`
	TotalRevenue           float64 `json:"totalRevenue"`
	TotalDiscount          float64 `json:"totalDiscount"`
	TotalProfit            float64 `json:"totalProfit"`
	ProfitMargin           float64 `json:"profitMargin"`
	ProfitMarginPercent    float64 `json:"profitMarginPercent"`
	ProcurementCost        float64 `json:"procurementCost"`
	ProcurementCostPercent float64 `json:"procurementCostPercent"`
	InventoryCost          float64 `json:"inventoryCost"`
	InventoryCostPercent   float64 `json:"inventoryCostPercent"`
	CompletedOrderRate     float64 `json:"completedOrderRate"`
	PendingOrderRate       float64 `json:"pendingOrderRate"`
	DiscountRate           float64 `json:"discountRate"`
}

// Order is the minimal order shape the development backend aggregates into a
// FinancialSummary.
type Order struct {
	ID        string  `json:"id"`
	Status    string  `json:"status"`
	Gross     float64 `json:"gross"`
	Discount  float64 `json:"discount"`
	Cost      float64 `json:"cost"`
	CreatedAt time.Time
}

const (
	OrderStatusCompleted = "COMPLETED"
	OrderStatusPending   = "PENDING"
	OrderStatusCancelled = "CANCELLED"
)
