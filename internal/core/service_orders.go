package core

import (
	"context"
	"errors"

	db "github.com/JonMunkholm/storefront/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PlaceOrder writes an order and all of its items in one transaction.
// An item referencing a missing product fails the whole order with a
// foreign key violation and nothing is stored.
func (s *Service) PlaceOrder(ctx context.Context, userID uuid.UUID, req OrderRequest) (OrderResult, error) {
	plan, err := NormalizeOrderRequest(userID, req)
	if err != nil {
		return OrderResult{}, err
	}
	return s.writer.WriteOrder(ctx, plan)
}

// ListOrders returns the user's orders with their items, newest first.
func (s *Service) ListOrders(ctx context.Context, userID uuid.UUID) ([]OrderResult, error) {
	q := db.New(s.db)
	key := userID.String()

	orders, err := q.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, classify(err, "order", key, "list orders", false)
	}
	if len(orders) == 0 {
		return []OrderResult{}, nil
	}

	ids := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		ids[i] = o.OrderID
	}
	items, err := q.ListOrderItems(ctx, ids)
	if err != nil {
		return nil, classify(err, "order", key, "list order items", false)
	}

	byOrder := make(map[uuid.UUID][]db.OrderItem, len(orders))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}

	out := make([]OrderResult, len(orders))
	for i, o := range orders {
		its := byOrder[o.OrderID]
		if its == nil {
			its = []db.OrderItem{}
		}
		out[i] = OrderResult{Order: o, Items: its}
	}
	return out, nil
}

// OrderStatusUpdate changes an order's status fields. Nil fields keep their value.
type OrderStatusUpdate struct {
	Status        *string `json:"status" validate:"omitempty,oneof=pending confirmed shipped delivered cancelled"`
	PaymentStatus *string `json:"payment_status" validate:"omitempty,oneof=unpaid paid refunded failed"`
}

// UpdateOrderStatus applies a coalesce update to an order's status fields.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, upd OrderStatusUpdate) (db.Order, error) {
	key := orderID.String()
	if err := validateRequest("order", key, upd); err != nil {
		return db.Order{}, err
	}

	order, err := db.New(s.db).UpdateOrderStatus(ctx, db.UpdateOrderStatusParams{
		OrderID:       orderID,
		Status:        optionalText(upd.Status),
		PaymentStatus: optionalText(upd.PaymentStatus),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return db.Order{}, notFound("order", key)
		}
		return db.Order{}, classify(err, "order", key, "update order status", false)
	}
	return order, nil
}

// DeleteOrder removes one of the user's orders together with its items.
func (s *Service) DeleteOrder(ctx context.Context, userID, orderID uuid.UUID) error {
	key := orderID.String()

	n, err := db.New(s.db).DeleteOrder(ctx, db.DeleteOrderParams{OrderID: orderID, UserID: userID})
	if err != nil {
		return classify(err, "order", key, "delete order", false)
	}
	if n == 0 {
		return notFound("order", key)
	}
	return nil
}
