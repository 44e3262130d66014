package core

import (
	"context"
	"errors"
	"strings"

	db "github.com/JonMunkholm/storefront/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// CreateProduct writes a product and its variants in one transaction and
// returns the stored rows. A variant whose SKU already exists is skipped
// and listed in SkippedSKUs.
func (s *Service) CreateProduct(ctx context.Context, req ProductRequest) (ProductDetail, error) {
	plan, err := NormalizeProductRequest(req)
	if err != nil {
		return ProductDetail{}, err
	}

	res, err := s.writer.WriteProduct(ctx, plan)
	if err != nil {
		return ProductDetail{}, err
	}

	detail, err := s.GetProduct(ctx, res.ProductID)
	if err != nil {
		return ProductDetail{}, err
	}
	detail.SkippedSKUs = res.SkippedSKUs
	return detail, nil
}

// GetProduct returns a product with its metafields, variants, images, prices and shipping rows.
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (ProductDetail, error) {
	q := db.New(s.db)
	key := id.String()

	product, err := q.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProductDetail{}, notFound("product", key)
		}
		return ProductDetail{}, classify(err, "product", key, "get product", false)
	}

	detail := ProductDetail{Product: product}

	meta, err := q.GetProductMetafields(ctx, id)
	switch {
	case err == nil:
		detail.Attributes = meta.Attributes
	case !errors.Is(err, pgx.ErrNoRows):
		return ProductDetail{}, classify(err, "product", key, "get metafields", false)
	}

	if detail.Variants, err = q.ListVariantsByProduct(ctx, id); err != nil {
		return ProductDetail{}, classify(err, "product", key, "list variants", false)
	}
	if detail.Images, err = q.ListImagesByProduct(ctx, id); err != nil {
		return ProductDetail{}, classify(err, "product", key, "list images", false)
	}
	if detail.Prices, err = q.ListPricesByProduct(ctx, id); err != nil {
		return ProductDetail{}, classify(err, "product", key, "list prices", false)
	}
	if detail.Shipping, err = q.ListShippingByProduct(ctx, id); err != nil {
		return ProductDetail{}, classify(err, "product", key, "list shipping", false)
	}

	return detail, nil
}

// ListProducts returns one page of products, newest first, with their
// category names.
func (s *Service) ListProducts(ctx context.Context, limit, offset int) ([]db.ListProductsRow, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	products, err := db.New(s.db).ListProducts(ctx, db.ListProductsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, classify(err, "product", "", "list products", false)
	}
	return products, nil
}

// ProductUpdate changes product fields. Nil fields keep their stored value,
// so a nullable column cannot be cleared through an update.
type ProductUpdate struct {
	Handle          *string   `json:"handle" validate:"omitempty,min=1,max=255"`
	Title           *string   `json:"title" validate:"omitempty,min=1"`
	BodyHTML        *string   `json:"body_html"`
	Vendor          *string   `json:"vendor"`
	ProductCategory *string   `json:"product_category"`
	ProductType     *string   `json:"product_type"`
	Tags            *[]string `json:"tags"`
	Published       *bool     `json:"published"`
	Status          *string   `json:"status" validate:"omitempty,oneof=active draft archived"`
	SeoTitle        *string   `json:"seo_title"`
	SeoDescription  *string   `json:"seo_description"`
	IsGiftCard      *bool     `json:"is_gift_card"`
	CategoryID      *string   `json:"category_id" validate:"omitempty,uuid"`
	SubcategoryID   *string   `json:"subcategory_id" validate:"omitempty,uuid"`
	ProductTypeID   *string   `json:"product_type_id" validate:"omitempty,uuid"`
}

// UpdateProduct applies a coalesce update: absent fields are left as they are.
// An explicit empty string is also treated as absent, so a column cannot be
// cleared through this call.
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, upd ProductUpdate) (db.Product, error) {
	key := id.String()
	if err := validateRequest("product", key, upd); err != nil {
		return db.Product{}, err
	}

	params := db.UpdateProductParams{
		ProductID:       id,
		Handle:          optionalText(upd.Handle),
		Title:           optionalText(upd.Title),
		BodyHTML:        optionalText(upd.BodyHTML),
		Vendor:          optionalText(upd.Vendor),
		ProductCategory: optionalText(upd.ProductCategory),
		ProductType:     optionalText(upd.ProductType),
		Published:       optionalBool(upd.Published),
		Status:          optionalText(upd.Status),
		SeoTitle:        optionalText(upd.SeoTitle),
		SeoDescription:  optionalText(upd.SeoDescription),
		IsGiftCard:      optionalBool(upd.IsGiftCard),
		CategoryID:      optionalUUID(upd.CategoryID),
		SubcategoryID:   optionalUUID(upd.SubcategoryID),
		ProductTypeID:   optionalUUID(upd.ProductTypeID),
	}
	if upd.Tags != nil {
		params.Tags = make([]string, 0, len(*upd.Tags))
		for _, t := range *upd.Tags {
			if t = strings.TrimSpace(t); t != "" {
				params.Tags = append(params.Tags, t)
			}
		}
	}

	product, err := db.New(s.db).UpdateProduct(ctx, params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return db.Product{}, notFound("product", key)
		}
		return db.Product{}, classify(err, "product", key, "update product", true)
	}
	return product, nil
}

// DeleteProduct removes a product; its variants, images, prices, shipping
// and metafields go with it. A product referenced by an order cannot be
// deleted and fails with a foreign key violation.
func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	key := id.String()

	n, err := db.New(s.db).DeleteProduct(ctx, id)
	if err != nil {
		return classify(err, "product", key, "delete product", false)
	}
	if n == 0 {
		return notFound("product", key)
	}
	return nil
}

func optionalText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return ToPgText(*s)
}

func optionalBool(b *bool) pgtype.Bool {
	if b == nil {
		return pgtype.Bool{Valid: false}
	}
	return pgtype.Bool{Bool: *b, Valid: true}
}

func optionalUUID(s *string) pgtype.UUID {
	if s == nil {
		return pgtype.UUID{Valid: false}
	}
	return ToPgUUID(*s)
}

// ParseID parses an entity identifier from user input.
func ParseID(entity, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, validationError(entity, raw, "invalid id: %v", err)
	}
	return id, nil
}
