package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("order not found")

// Order is a storefront order. Status is free text owned by the admins.
type Order struct {
	ID        int64
	Status    string
	CreatedAt time.Time
	UserID    *uuid.UUID
	Items     []Item // Loaded by Get only
}

// Item is a single order line.
type Item struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// Total sums quantity * unit price across the loaded items.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	return total
}

// MonthlyBucket counts orders created in a calendar month, all years merged.
type MonthlyBucket struct {
	Month string
	Count int
}

type ListFilter struct {
	Status *string
	Limit  int
}
