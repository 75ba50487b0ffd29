package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/barkeep/internal/order"
)

type orderResponse struct {
	ID        int64           `json:"id"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UserID    *uuid.UUID      `json:"user_id,omitempty"`
	Items     []itemResponse  `json:"items,omitempty"`
	Total     decimal.Decimal `json:"total"`
}

type itemResponse struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type monthlyResponse struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

func toResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		ID:        o.ID,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
		UserID:    o.UserID,
		Total:     o.Total(),
	}

	for _, it := range o.Items {
		resp.Items = append(resp.Items, itemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	return resp
}

func toResponseList(orders []*order.Order) []orderResponse {
	list := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		list = append(list, toResponse(o))
	}

	return list
}
