package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const variantColumns = `variant_id, product_id, sku, barcode,
	option1_name, option1_value, option2_name, option2_value, option3_name, option3_value,
	price, compare_at_price, cost_per_item, inventory_qty, inventory_policy, inventory_tracker,
	requires_shipping, taxable, weight, weight_unit, created_at`

const insertVariant = `-- name: InsertVariant :execrows
INSERT INTO product_variants (
	variant_id, product_id, sku, barcode,
	option1_name, option1_value, option2_name, option2_value, option3_name, option3_value,
	price, compare_at_price, cost_per_item, inventory_qty, inventory_policy, inventory_tracker,
	requires_shipping, taxable, weight, weight_unit
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20
)
ON CONFLICT (sku) DO NOTHING`

type InsertVariantParams struct {
	VariantID        uuid.UUID
	ProductID        uuid.UUID
	Sku              pgtype.Text
	Barcode          pgtype.Text
	Option1Name      pgtype.Text
	Option1Value     pgtype.Text
	Option2Name      pgtype.Text
	Option2Value     pgtype.Text
	Option3Name      pgtype.Text
	Option3Value     pgtype.Text
	Price            pgtype.Numeric
	CompareAtPrice   pgtype.Numeric
	CostPerItem      pgtype.Numeric
	InventoryQty     pgtype.Int4
	InventoryPolicy  pgtype.Text
	InventoryTracker pgtype.Text
	RequiresShipping bool
	Taxable          bool
	Weight           pgtype.Numeric
	WeightUnit       pgtype.Text
}

// InsertVariant returns 0 when a variant with the same SKU already exists.
func (q *Queries) InsertVariant(ctx context.Context, arg InsertVariantParams) (int64, error) {
	result, err := q.db.Exec(ctx, insertVariant,
		arg.VariantID,
		arg.ProductID,
		arg.Sku,
		arg.Barcode,
		arg.Option1Name,
		arg.Option1Value,
		arg.Option2Name,
		arg.Option2Value,
		arg.Option3Name,
		arg.Option3Value,
		arg.Price,
		arg.CompareAtPrice,
		arg.CostPerItem,
		arg.InventoryQty,
		arg.InventoryPolicy,
		arg.InventoryTracker,
		arg.RequiresShipping,
		arg.Taxable,
		arg.Weight,
		arg.WeightUnit,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listVariantsByProduct = `-- name: ListVariantsByProduct :many
SELECT ` + variantColumns + `
FROM product_variants
WHERE product_id = $1
ORDER BY created_at, sku`

func (q *Queries) ListVariantsByProduct(ctx context.Context, productID uuid.UUID) ([]ProductVariant, error) {
	rows, err := q.db.Query(ctx, listVariantsByProduct, productID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[ProductVariant])
}

const getVariantPrice = `-- name: GetVariantPrice :one
SELECT product_id, price
FROM product_variants
WHERE variant_id = $1`

type GetVariantPriceRow struct {
	ProductID uuid.UUID
	Price     pgtype.Numeric
}

func (q *Queries) GetVariantPrice(ctx context.Context, variantID uuid.UUID) (GetVariantPriceRow, error) {
	row := q.db.QueryRow(ctx, getVariantPrice, variantID)
	var i GetVariantPriceRow
	err := row.Scan(&i.ProductID, &i.Price)
	return i, err
}

const insertProductImage = `-- name: InsertProductImage :exec
INSERT INTO product_images (product_id, variant_id, image_src, image_position, image_alt_text)
VALUES ($1, $2, $3, $4, $5)`

type InsertProductImageParams struct {
	ProductID     uuid.UUID
	VariantID     pgtype.UUID
	ImageSrc      string
	ImagePosition pgtype.Int4
	ImageAltText  pgtype.Text
}

func (q *Queries) InsertProductImage(ctx context.Context, arg InsertProductImageParams) error {
	_, err := q.db.Exec(ctx, insertProductImage,
		arg.ProductID,
		arg.VariantID,
		arg.ImageSrc,
		arg.ImagePosition,
		arg.ImageAltText,
	)
	return err
}

const listImagesByProduct = `-- name: ListImagesByProduct :many
SELECT image_id, product_id, variant_id, image_src, image_position, image_alt_text
FROM product_images
WHERE product_id = $1
ORDER BY image_position NULLS LAST, image_src`

func (q *Queries) ListImagesByProduct(ctx context.Context, productID uuid.UUID) ([]ProductImage, error) {
	rows, err := q.db.Query(ctx, listImagesByProduct, productID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[ProductImage])
}

const insertVariantPrice = `-- name: InsertVariantPrice :execrows
INSERT INTO variant_prices (variant_id, country_code, included, price, compare_at_price)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (variant_id, country_code) DO NOTHING`

type InsertVariantPriceParams struct {
	VariantID      uuid.UUID
	CountryCode    string
	Included       bool
	Price          pgtype.Numeric
	CompareAtPrice pgtype.Numeric
}

// InsertVariantPrice returns 0 when the variant already has a price for the country.
func (q *Queries) InsertVariantPrice(ctx context.Context, arg InsertVariantPriceParams) (int64, error) {
	result, err := q.db.Exec(ctx, insertVariantPrice,
		arg.VariantID,
		arg.CountryCode,
		arg.Included,
		arg.Price,
		arg.CompareAtPrice,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listPricesByProduct = `-- name: ListPricesByProduct :many
SELECT vp.variant_id, vp.country_code, vp.included, vp.price, vp.compare_at_price
FROM variant_prices vp
JOIN product_variants v ON v.variant_id = vp.variant_id
WHERE v.product_id = $1
ORDER BY vp.variant_id, vp.country_code`

func (q *Queries) ListPricesByProduct(ctx context.Context, productID uuid.UUID) ([]VariantPrice, error) {
	rows, err := q.db.Query(ctx, listPricesByProduct, productID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[VariantPrice])
}

const insertShippingDetail = `-- name: InsertShippingDetail :exec
INSERT INTO shipping_details (variant_id, length_cm, width_cm, height_cm)
VALUES ($1, $2, $3, $4)
ON CONFLICT (variant_id) DO NOTHING`

type InsertShippingDetailParams struct {
	VariantID uuid.UUID
	LengthCm  pgtype.Numeric
	WidthCm   pgtype.Numeric
	HeightCm  pgtype.Numeric
}

func (q *Queries) InsertShippingDetail(ctx context.Context, arg InsertShippingDetailParams) error {
	_, err := q.db.Exec(ctx, insertShippingDetail,
		arg.VariantID,
		arg.LengthCm,
		arg.WidthCm,
		arg.HeightCm,
	)
	return err
}

const listShippingByProduct = `-- name: ListShippingByProduct :many
SELECT s.variant_id, s.length_cm, s.width_cm, s.height_cm
FROM shipping_details s
JOIN product_variants v ON v.variant_id = s.variant_id
WHERE v.product_id = $1
ORDER BY s.variant_id`

func (q *Queries) ListShippingByProduct(ctx context.Context, productID uuid.UUID) ([]ShippingDetail, error) {
	rows, err := q.db.Query(ctx, listShippingByProduct, productID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[ShippingDetail])
}

const existingSKUs = `-- name: ExistingSKUs :many
SELECT sku FROM product_variants
WHERE sku = ANY($1::text[])`

// ExistingSKUs returns the subset of skus already stored.
func (q *Queries) ExistingSKUs(ctx context.Context, skus []string) ([]string, error) {
	rows, err := q.db.Query(ctx, existingSKUs, skus)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
