package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const productColumns = `product_id, handle, title, body_html, vendor, product_category, product_type,
	tags, published, status, seo_title, seo_description, is_gift_card,
	category_id, subcategory_id, product_type_id, created_at, updated_at`

const insertProduct = `-- name: InsertProduct :exec
INSERT INTO products (
	product_id, handle, title, body_html, vendor, product_category, product_type,
	tags, published, status, seo_title, seo_description, is_gift_card,
	category_id, subcategory_id, product_type_id
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
)`

type InsertProductParams struct {
	ProductID       uuid.UUID
	Handle          string
	Title           pgtype.Text
	BodyHTML        pgtype.Text
	Vendor          pgtype.Text
	ProductCategory pgtype.Text
	ProductType     pgtype.Text
	Tags            []string
	Published       bool
	Status          string
	SeoTitle        pgtype.Text
	SeoDescription  pgtype.Text
	IsGiftCard      bool
	CategoryID      pgtype.UUID
	SubcategoryID   pgtype.UUID
	ProductTypeID   pgtype.UUID
}

func (q *Queries) InsertProduct(ctx context.Context, arg InsertProductParams) error {
	tags := arg.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := q.db.Exec(ctx, insertProduct,
		arg.ProductID,
		arg.Handle,
		arg.Title,
		arg.BodyHTML,
		arg.Vendor,
		arg.ProductCategory,
		arg.ProductType,
		tags,
		arg.Published,
		arg.Status,
		arg.SeoTitle,
		arg.SeoDescription,
		arg.IsGiftCard,
		arg.CategoryID,
		arg.SubcategoryID,
		arg.ProductTypeID,
	)
	return err
}

const insertProductMetafields = `-- name: InsertProductMetafields :exec
INSERT INTO product_metafields (product_id, attributes)
VALUES ($1, $2)
ON CONFLICT (product_id) DO NOTHING`

func (q *Queries) InsertProductMetafields(ctx context.Context, productID uuid.UUID, attributes map[string]string) error {
	_, err := q.db.Exec(ctx, insertProductMetafields, productID, attributes)
	return err
}

const getProduct = `-- name: GetProduct :one
SELECT ` + productColumns + `
FROM products
WHERE product_id = $1`

func (q *Queries) GetProduct(ctx context.Context, productID uuid.UUID) (Product, error) {
	rows, err := q.db.Query(ctx, getProduct, productID)
	if err != nil {
		return Product{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Product])
}

const listProducts = `-- name: ListProducts :many
SELECT p.product_id, p.handle, p.title, p.body_html, p.vendor, p.product_category, p.product_type,
	p.tags, p.published, p.status, p.seo_title, p.seo_description, p.is_gift_card,
	p.category_id, p.subcategory_id, p.product_type_id, p.created_at, p.updated_at,
	c.name AS category_name
FROM products p
LEFT JOIN categories c ON c.category_id = p.category_id
ORDER BY p.created_at DESC, p.handle
LIMIT $1 OFFSET $2`

type ListProductsParams struct {
	Limit  int32
	Offset int32
}

// ListProductsRow is a product with the name of its category, if any.
type ListProductsRow struct {
	Product
	CategoryName pgtype.Text `db:"category_name" json:"category_name"`
}

func (q *Queries) ListProducts(ctx context.Context, arg ListProductsParams) ([]ListProductsRow, error) {
	rows, err := q.db.Query(ctx, listProducts, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[ListProductsRow])
}

const getProductMetafields = `-- name: GetProductMetafields :one
SELECT product_id, attributes
FROM product_metafields
WHERE product_id = $1`

func (q *Queries) GetProductMetafields(ctx context.Context, productID uuid.UUID) (ProductMetafields, error) {
	rows, err := q.db.Query(ctx, getProductMetafields, productID)
	if err != nil {
		return ProductMetafields{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[ProductMetafields])
}

// Absent parameters leave the stored value untouched.
const updateProduct = `-- name: UpdateProduct :one
UPDATE products SET
	handle           = COALESCE($2, handle),
	title            = COALESCE($3, title),
	body_html        = COALESCE($4, body_html),
	vendor           = COALESCE($5, vendor),
	product_category = COALESCE($6, product_category),
	product_type     = COALESCE($7, product_type),
	tags             = COALESCE($8, tags),
	published        = COALESCE($9, published),
	status           = COALESCE($10, status),
	seo_title        = COALESCE($11, seo_title),
	seo_description  = COALESCE($12, seo_description),
	is_gift_card     = COALESCE($13, is_gift_card),
	category_id      = COALESCE($14, category_id),
	subcategory_id   = COALESCE($15, subcategory_id),
	product_type_id  = COALESCE($16, product_type_id),
	updated_at       = NOW()
WHERE product_id = $1
RETURNING ` + productColumns

type UpdateProductParams struct {
	ProductID       uuid.UUID
	Handle          pgtype.Text
	Title           pgtype.Text
	BodyHTML        pgtype.Text
	Vendor          pgtype.Text
	ProductCategory pgtype.Text
	ProductType     pgtype.Text
	Tags            []string
	Published       pgtype.Bool
	Status          pgtype.Text
	SeoTitle        pgtype.Text
	SeoDescription  pgtype.Text
	IsGiftCard      pgtype.Bool
	CategoryID      pgtype.UUID
	SubcategoryID   pgtype.UUID
	ProductTypeID   pgtype.UUID
}

func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error) {
	rows, err := q.db.Query(ctx, updateProduct,
		arg.ProductID,
		arg.Handle,
		arg.Title,
		arg.BodyHTML,
		arg.Vendor,
		arg.ProductCategory,
		arg.ProductType,
		arg.Tags,
		arg.Published,
		arg.Status,
		arg.SeoTitle,
		arg.SeoDescription,
		arg.IsGiftCard,
		arg.CategoryID,
		arg.SubcategoryID,
		arg.ProductTypeID,
	)
	if err != nil {
		return Product{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Product])
}

const deleteProduct = `-- name: DeleteProduct :execrows
DELETE FROM products
WHERE product_id = $1`

func (q *Queries) DeleteProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteProduct, productID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const existingHandles = `-- name: ExistingHandles :many
SELECT handle FROM products
WHERE handle = ANY($1::text[])`

// ExistingHandles returns the subset of handles already stored.
func (q *Queries) ExistingHandles(ctx context.Context, handles []string) ([]string, error) {
	rows, err := q.db.Query(ctx, existingHandles, handles)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
