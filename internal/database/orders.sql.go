package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `order_id, user_id, address_id, total_amount, status, payment_status, created_at, updated_at`

const insertOrder = `-- name: InsertOrder :one
INSERT INTO orders (order_id, user_id, address_id, total_amount, status, payment_status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + orderColumns

type InsertOrderParams struct {
	OrderID       uuid.UUID
	UserID        uuid.UUID
	AddressID     pgtype.UUID
	TotalAmount   pgtype.Numeric
	Status        string
	PaymentStatus string
}

func (q *Queries) InsertOrder(ctx context.Context, arg InsertOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, insertOrder,
		arg.OrderID,
		arg.UserID,
		arg.AddressID,
		arg.TotalAmount,
		arg.Status,
		arg.PaymentStatus,
	)
	var i Order
	err := row.Scan(
		&i.OrderID,
		&i.UserID,
		&i.AddressID,
		&i.TotalAmount,
		&i.Status,
		&i.PaymentStatus,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const insertOrderItem = `-- name: InsertOrderItem :one
INSERT INTO order_items (order_id, product_id, variant_id, quantity, price_at_purchase)
VALUES ($1, $2, $3, $4, $5)
RETURNING order_item_id, order_id, product_id, variant_id, quantity, price_at_purchase`

type InsertOrderItemParams struct {
	OrderID         uuid.UUID
	ProductID       uuid.UUID
	VariantID       pgtype.UUID
	Quantity        int32
	PriceAtPurchase pgtype.Numeric
}

func (q *Queries) InsertOrderItem(ctx context.Context, arg InsertOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, insertOrderItem,
		arg.OrderID,
		arg.ProductID,
		arg.VariantID,
		arg.Quantity,
		arg.PriceAtPurchase,
	)
	var i OrderItem
	err := row.Scan(
		&i.OrderItemID,
		&i.OrderID,
		&i.ProductID,
		&i.VariantID,
		&i.Quantity,
		&i.PriceAtPurchase,
	)
	return i, err
}

const listOrdersByUser = `-- name: ListOrdersByUser :many
SELECT ` + orderColumns + `
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC`

func (q *Queries) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByUser, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Order])
}

const listOrderItems = `-- name: ListOrderItems :many
SELECT order_item_id, order_id, product_id, variant_id, quantity, price_at_purchase
FROM order_items
WHERE order_id = ANY($1::uuid[])
ORDER BY order_id, order_item_id`

func (q *Queries) ListOrderItems(ctx context.Context, orderIDs []uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItems, orderIDs)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[OrderItem])
}

const updateOrderStatus = `-- name: UpdateOrderStatus :one
UPDATE orders SET
	status         = COALESCE($2, status),
	payment_status = COALESCE($3, payment_status),
	updated_at     = NOW()
WHERE order_id = $1
RETURNING ` + orderColumns

type UpdateOrderStatusParams struct {
	OrderID       uuid.UUID
	Status        pgtype.Text
	PaymentStatus pgtype.Text
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	rows, err := q.db.Query(ctx, updateOrderStatus, arg.OrderID, arg.Status, arg.PaymentStatus)
	if err != nil {
		return Order{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Order])
}

const deleteOrder = `-- name: DeleteOrder :execrows
DELETE FROM orders
WHERE order_id = $1 AND user_id = $2`

type DeleteOrderParams struct {
	OrderID uuid.UUID
	UserID  uuid.UUID
}

func (q *Queries) DeleteOrder(ctx context.Context, arg DeleteOrderParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteOrder, arg.OrderID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
