package api

import (
	"context"
	"time"

	"github.com/kapu/messenger-api-go/pkg/errors"
)

// SubscriptionType is the account subscription code the server stores.
type SubscriptionType int

const (
	SubscriptionTrial      SubscriptionType = 1
	SubscriptionSubscriber SubscriptionType = 2
	SubscriptionLifetime   SubscriptionType = 3
)

type ProductType int

const (
	ProductSubscription ProductType = iota
	ProductSingleItem
)

func (t ProductType) String() string {
	if t == ProductSubscription {
		return "subscription"
	}
	return "single_item"
}

// Product is one purchasable account plan.
type Product struct {
	ID     string
	Type   ProductType
	Months int
}

var products = []Product{
	{ID: "subscriber_monthly", Type: ProductSubscription, Months: 1},
	{ID: "subscriber_three_months", Type: ProductSubscription, Months: 3},
	{ID: "subscriber_yearly", Type: ProductSubscription, Months: 12},
	{ID: "lifetime", Type: ProductSingleItem},
}

// Products returns the catalog in the order the plans are offered.
func Products() []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

func ProductByID(id string) (Product, error) {
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, errors.NewValidationError("unknown product", "product_id", id)
}

func (p Product) SubscriptionType() SubscriptionType {
	if p.Type == ProductSingleItem {
		return SubscriptionLifetime
	}
	return SubscriptionSubscriber
}

// Expiration is zero for lifetime purchases.
func (p Product) Expiration(purchasedAt time.Time) time.Time {
	if p.Type == ProductSingleItem {
		return time.Time{}
	}
	return purchasedAt.AddDate(0, p.Months, 0)
}

// ApplyPurchase records a completed purchase on the account.
func (s *AccountService) ApplyPurchase(ctx context.Context, accountID string, product Product, purchasedAt time.Time) error {
	var expiration int64
	if exp := product.Expiration(purchasedAt); !exp.IsZero() {
		expiration = exp.UnixMilli()
	}
	return s.UpdateSubscription(ctx, accountID, product.SubscriptionType(), expiration)
}
