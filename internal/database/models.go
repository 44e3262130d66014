package database

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Product struct {
	ProductID       uuid.UUID          `db:"product_id" json:"product_id"`
	Handle          string             `db:"handle" json:"handle"`
	Title           pgtype.Text        `db:"title" json:"title"`
	BodyHTML        pgtype.Text        `db:"body_html" json:"body_html"`
	Vendor          pgtype.Text        `db:"vendor" json:"vendor"`
	ProductCategory pgtype.Text        `db:"product_category" json:"product_category"`
	ProductType     pgtype.Text        `db:"product_type" json:"product_type"`
	Tags            []string           `db:"tags" json:"tags"`
	Published       bool               `db:"published" json:"published"`
	Status          string             `db:"status" json:"status"`
	SeoTitle        pgtype.Text        `db:"seo_title" json:"seo_title"`
	SeoDescription  pgtype.Text        `db:"seo_description" json:"seo_description"`
	IsGiftCard      bool               `db:"is_gift_card" json:"is_gift_card"`
	CategoryID      pgtype.UUID        `db:"category_id" json:"category_id"`
	SubcategoryID   pgtype.UUID        `db:"subcategory_id" json:"subcategory_id"`
	ProductTypeID   pgtype.UUID        `db:"product_type_id" json:"product_type_id"`
	CreatedAt       pgtype.Timestamptz `db:"created_at" json:"created_at"`
	UpdatedAt       pgtype.Timestamptz `db:"updated_at" json:"updated_at"`
}

type ProductMetafields struct {
	ProductID  uuid.UUID         `db:"product_id" json:"product_id"`
	Attributes map[string]string `db:"attributes" json:"attributes"`
}

type ProductVariant struct {
	VariantID        uuid.UUID          `db:"variant_id" json:"variant_id"`
	ProductID        uuid.UUID          `db:"product_id" json:"product_id"`
	Sku              pgtype.Text        `db:"sku" json:"sku"`
	Barcode          pgtype.Text        `db:"barcode" json:"barcode"`
	Option1Name      pgtype.Text        `db:"option1_name" json:"option1_name"`
	Option1Value     pgtype.Text        `db:"option1_value" json:"option1_value"`
	Option2Name      pgtype.Text        `db:"option2_name" json:"option2_name"`
	Option2Value     pgtype.Text        `db:"option2_value" json:"option2_value"`
	Option3Name      pgtype.Text        `db:"option3_name" json:"option3_name"`
	Option3Value     pgtype.Text        `db:"option3_value" json:"option3_value"`
	Price            pgtype.Numeric     `db:"price" json:"price"`
	CompareAtPrice   pgtype.Numeric     `db:"compare_at_price" json:"compare_at_price"`
	CostPerItem      pgtype.Numeric     `db:"cost_per_item" json:"cost_per_item"`
	InventoryQty     pgtype.Int4        `db:"inventory_qty" json:"inventory_qty"`
	InventoryPolicy  pgtype.Text        `db:"inventory_policy" json:"inventory_policy"`
	InventoryTracker pgtype.Text        `db:"inventory_tracker" json:"inventory_tracker"`
	RequiresShipping bool               `db:"requires_shipping" json:"requires_shipping"`
	Taxable          bool               `db:"taxable" json:"taxable"`
	Weight           pgtype.Numeric     `db:"weight" json:"weight"`
	WeightUnit       pgtype.Text        `db:"weight_unit" json:"weight_unit"`
	CreatedAt        pgtype.Timestamptz `db:"created_at" json:"created_at"`
}

type ProductImage struct {
	ImageID       uuid.UUID   `db:"image_id" json:"image_id"`
	ProductID     uuid.UUID   `db:"product_id" json:"product_id"`
	VariantID     pgtype.UUID `db:"variant_id" json:"variant_id"`
	ImageSrc      string      `db:"image_src" json:"image_src"`
	ImagePosition pgtype.Int4 `db:"image_position" json:"image_position"`
	ImageAltText  pgtype.Text `db:"image_alt_text" json:"image_alt_text"`
}

type VariantPrice struct {
	VariantID      uuid.UUID      `db:"variant_id" json:"variant_id"`
	CountryCode    string         `db:"country_code" json:"country_code"`
	Included       bool           `db:"included" json:"included"`
	Price          pgtype.Numeric `db:"price" json:"price"`
	CompareAtPrice pgtype.Numeric `db:"compare_at_price" json:"compare_at_price"`
}

type ShippingDetail struct {
	VariantID uuid.UUID      `db:"variant_id" json:"variant_id"`
	LengthCm  pgtype.Numeric `db:"length_cm" json:"length_cm"`
	WidthCm   pgtype.Numeric `db:"width_cm" json:"width_cm"`
	HeightCm  pgtype.Numeric `db:"height_cm" json:"height_cm"`
}

type Address struct {
	AddressID    uuid.UUID          `db:"address_id" json:"address_id"`
	UserID       uuid.UUID          `db:"user_id" json:"user_id"`
	AddressLine1 string             `db:"address_line_1" json:"address_line_1"`
	AddressLine2 pgtype.Text        `db:"address_line_2" json:"address_line_2"`
	City         pgtype.Text        `db:"city" json:"city"`
	State        pgtype.Text        `db:"state" json:"state"`
	PostalCode   pgtype.Text        `db:"postal_code" json:"postal_code"`
	Country      pgtype.Text        `db:"country" json:"country"`
	IsDefault    bool               `db:"is_default" json:"is_default"`
	CreatedAt    pgtype.Timestamptz `db:"created_at" json:"created_at"`
}

type Order struct {
	OrderID       uuid.UUID          `db:"order_id" json:"order_id"`
	UserID        uuid.UUID          `db:"user_id" json:"user_id"`
	AddressID     pgtype.UUID        `db:"address_id" json:"address_id"`
	TotalAmount   pgtype.Numeric     `db:"total_amount" json:"total_amount"`
	Status        string             `db:"status" json:"status"`
	PaymentStatus string             `db:"payment_status" json:"payment_status"`
	CreatedAt     pgtype.Timestamptz `db:"created_at" json:"created_at"`
	UpdatedAt     pgtype.Timestamptz `db:"updated_at" json:"updated_at"`
}

type OrderItem struct {
	OrderItemID     uuid.UUID      `db:"order_item_id" json:"order_item_id"`
	OrderID         uuid.UUID      `db:"order_id" json:"order_id"`
	ProductID       uuid.UUID      `db:"product_id" json:"product_id"`
	VariantID       pgtype.UUID    `db:"variant_id" json:"variant_id"`
	Quantity        int32          `db:"quantity" json:"quantity"`
	PriceAtPurchase pgtype.Numeric `db:"price_at_purchase" json:"price_at_purchase"`
}

type CartItem struct {
	CartItemID uuid.UUID          `db:"cart_item_id" json:"cart_item_id"`
	UserID     uuid.UUID          `db:"user_id" json:"user_id"`
	VariantID  uuid.UUID          `db:"variant_id" json:"variant_id"`
	Quantity   int32              `db:"quantity" json:"quantity"`
	CreatedAt  pgtype.Timestamptz `db:"created_at" json:"created_at"`
	UpdatedAt  pgtype.Timestamptz `db:"updated_at" json:"updated_at"`
}

// CartLine is a cart item joined with the variant and product it points at.
type CartLine struct {
	CartItemID   uuid.UUID      `db:"cart_item_id" json:"cart_item_id"`
	VariantID    uuid.UUID      `db:"variant_id" json:"variant_id"`
	Quantity     int32          `db:"quantity" json:"quantity"`
	Sku          pgtype.Text    `db:"sku" json:"sku"`
	Price        pgtype.Numeric `db:"price" json:"price"`
	ProductID    uuid.UUID      `db:"product_id" json:"product_id"`
	ProductTitle pgtype.Text    `db:"product_title" json:"product_title"`
}

type WishlistItem struct {
	WishlistID uuid.UUID          `db:"wishlist_id" json:"wishlist_id"`
	UserID     uuid.UUID          `db:"user_id" json:"user_id"`
	VariantID  uuid.UUID          `db:"variant_id" json:"variant_id"`
	CreatedAt  pgtype.Timestamptz `db:"created_at" json:"created_at"`
}

type ImportRun struct {
	ImportID        uuid.UUID          `db:"import_id" json:"import_id"`
	FileName        pgtype.Text        `db:"file_name" json:"file_name"`
	Policy          string             `db:"policy" json:"policy"`
	Processed       int32              `db:"processed" json:"processed"`
	Succeeded       int32              `db:"succeeded" json:"succeeded"`
	Failed          int32              `db:"failed" json:"failed"`
	Skipped         int32              `db:"skipped" json:"skipped"`
	SkippedVariants int32              `db:"skipped_variants" json:"skipped_variants"`
	DroppedRows     int32              `db:"dropped_rows" json:"dropped_rows"`
	Aborted         bool               `db:"aborted" json:"aborted"`
	DurationMs      int32              `db:"duration_ms" json:"duration_ms"`
	CreatedAt       pgtype.Timestamptz `db:"created_at" json:"created_at"`
}
