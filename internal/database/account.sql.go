package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const upsertCartItem = `-- name: UpsertCartItem :one
INSERT INTO cart_items (user_id, variant_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, variant_id)
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
RETURNING cart_item_id, user_id, variant_id, quantity, created_at, updated_at`

type UpsertCartItemParams struct {
	UserID    uuid.UUID
	VariantID uuid.UUID
	Quantity  int32
}

func (q *Queries) UpsertCartItem(ctx context.Context, arg UpsertCartItemParams) (CartItem, error) {
	rows, err := q.db.Query(ctx, upsertCartItem, arg.UserID, arg.VariantID, arg.Quantity)
	if err != nil {
		return CartItem{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[CartItem])
}

const listCart = `-- name: ListCart :many
SELECT c.cart_item_id, c.variant_id, c.quantity, v.sku, v.price, p.product_id, p.title AS product_title
FROM cart_items c
JOIN product_variants v ON v.variant_id = c.variant_id
JOIN products p ON p.product_id = v.product_id
WHERE c.user_id = $1
ORDER BY c.created_at`

func (q *Queries) ListCart(ctx context.Context, userID uuid.UUID) ([]CartLine, error) {
	rows, err := q.db.Query(ctx, listCart, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[CartLine])
}

const updateCartQuantity = `-- name: UpdateCartQuantity :one
UPDATE cart_items SET quantity = $3, updated_at = NOW()
WHERE cart_item_id = $1 AND user_id = $2
RETURNING cart_item_id, user_id, variant_id, quantity, created_at, updated_at`

type UpdateCartQuantityParams struct {
	CartItemID uuid.UUID
	UserID     uuid.UUID
	Quantity   int32
}

func (q *Queries) UpdateCartQuantity(ctx context.Context, arg UpdateCartQuantityParams) (CartItem, error) {
	rows, err := q.db.Query(ctx, updateCartQuantity, arg.CartItemID, arg.UserID, arg.Quantity)
	if err != nil {
		return CartItem{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[CartItem])
}

const deleteCartItem = `-- name: DeleteCartItem :execrows
DELETE FROM cart_items
WHERE cart_item_id = $1 AND user_id = $2`

func (q *Queries) DeleteCartItem(ctx context.Context, cartItemID, userID uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCartItem, cartItemID, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const insertWishlistItem = `-- name: InsertWishlistItem :one
INSERT INTO wishlist (user_id, variant_id)
VALUES ($1, $2)
ON CONFLICT (user_id, variant_id) DO NOTHING
RETURNING wishlist_id, user_id, variant_id, created_at`

// InsertWishlistItem returns pgx.ErrNoRows when the variant is already on the list.
func (q *Queries) InsertWishlistItem(ctx context.Context, userID, variantID uuid.UUID) (WishlistItem, error) {
	rows, err := q.db.Query(ctx, insertWishlistItem, userID, variantID)
	if err != nil {
		return WishlistItem{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[WishlistItem])
}

const listWishlist = `-- name: ListWishlist :many
SELECT wishlist_id, user_id, variant_id, created_at
FROM wishlist
WHERE user_id = $1
ORDER BY created_at DESC`

func (q *Queries) ListWishlist(ctx context.Context, userID uuid.UUID) ([]WishlistItem, error) {
	rows, err := q.db.Query(ctx, listWishlist, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[WishlistItem])
}

const deleteWishlistItem = `-- name: DeleteWishlistItem :execrows
DELETE FROM wishlist
WHERE wishlist_id = $1 AND user_id = $2`

func (q *Queries) DeleteWishlistItem(ctx context.Context, wishlistID, userID uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteWishlistItem, wishlistID, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const addressColumns = `address_id, user_id, address_line_1, address_line_2, city, state, postal_code, country, is_default, created_at`

const clearDefaultAddress = `-- name: ClearDefaultAddress :exec
UPDATE addresses SET is_default = FALSE
WHERE user_id = $1 AND is_default AND address_id <> $2`

func (q *Queries) ClearDefaultAddress(ctx context.Context, userID, keepID uuid.UUID) error {
	_, err := q.db.Exec(ctx, clearDefaultAddress, userID, keepID)
	return err
}

const insertAddress = `-- name: InsertAddress :one
INSERT INTO addresses (address_id, user_id, address_line_1, address_line_2, city, state, postal_code, country, is_default)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + addressColumns

type InsertAddressParams struct {
	AddressID    uuid.UUID
	UserID       uuid.UUID
	AddressLine1 string
	AddressLine2 pgtype.Text
	City         pgtype.Text
	State        pgtype.Text
	PostalCode   pgtype.Text
	Country      pgtype.Text
	IsDefault    bool
}

func (q *Queries) InsertAddress(ctx context.Context, arg InsertAddressParams) (Address, error) {
	rows, err := q.db.Query(ctx, insertAddress,
		arg.AddressID,
		arg.UserID,
		arg.AddressLine1,
		arg.AddressLine2,
		arg.City,
		arg.State,
		arg.PostalCode,
		arg.Country,
		arg.IsDefault,
	)
	if err != nil {
		return Address{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Address])
}

const listAddresses = `-- name: ListAddresses :many
SELECT ` + addressColumns + `
FROM addresses
WHERE user_id = $1
ORDER BY is_default DESC, created_at`

func (q *Queries) ListAddresses(ctx context.Context, userID uuid.UUID) ([]Address, error) {
	rows, err := q.db.Query(ctx, listAddresses, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Address])
}

const updateAddress = `-- name: UpdateAddress :one
UPDATE addresses SET
	address_line_1 = COALESCE($3, address_line_1),
	address_line_2 = COALESCE($4, address_line_2),
	city           = COALESCE($5, city),
	state          = COALESCE($6, state),
	postal_code    = COALESCE($7, postal_code),
	country        = COALESCE($8, country),
	is_default     = COALESCE($9, is_default)
WHERE address_id = $1 AND user_id = $2
RETURNING ` + addressColumns

type UpdateAddressParams struct {
	AddressID    uuid.UUID
	UserID       uuid.UUID
	AddressLine1 pgtype.Text
	AddressLine2 pgtype.Text
	City         pgtype.Text
	State        pgtype.Text
	PostalCode   pgtype.Text
	Country      pgtype.Text
	IsDefault    pgtype.Bool
}

func (q *Queries) UpdateAddress(ctx context.Context, arg UpdateAddressParams) (Address, error) {
	rows, err := q.db.Query(ctx, updateAddress,
		arg.AddressID,
		arg.UserID,
		arg.AddressLine1,
		arg.AddressLine2,
		arg.City,
		arg.State,
		arg.PostalCode,
		arg.Country,
		arg.IsDefault,
	)
	if err != nil {
		return Address{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Address])
}

const deleteAddress = `-- name: DeleteAddress :execrows
DELETE FROM addresses
WHERE address_id = $1 AND user_id = $2`

func (q *Queries) DeleteAddress(ctx context.Context, addressID, userID uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteAddress, addressID, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
