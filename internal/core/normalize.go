package core

// normalize.go expands grouped spreadsheet rows and typed requests into
// write plans. Nothing here touches storage: every identifier is generated
// up front, and validation failures are returned before a transaction opens.

import (
	"strings"

	db "github.com/JonMunkholm/storefront/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Spreadsheet columns of a product export.
const (
	ColHandle          = "Handle"
	ColTitle           = "Title"
	ColBodyHTML        = "Body (HTML)"
	ColVendor          = "Vendor"
	ColProductCategory = "Product Category"
	ColType            = "Type"
	ColTags            = "Tags"
	ColPublished       = "Published"
	ColStatus          = "Status"
	ColSeoTitle        = "SEO Title"
	ColSeoDescription  = "SEO Description"
	ColGiftCard        = "Gift Card"

	ColOption1Name  = "Option1 Name"
	ColOption1Value = "Option1 Value"
	ColOption2Name  = "Option2 Name"
	ColOption2Value = "Option2 Value"
	ColOption3Name  = "Option3 Name"
	ColOption3Value = "Option3 Value"

	ColVariantSKU              = "Variant SKU"
	ColVariantBarcode          = "Variant Barcode"
	ColVariantPrice            = "Variant Price"
	ColVariantCompareAtPrice   = "Variant Compare At Price"
	ColCostPerItem             = "Cost per item"
	ColVariantInventoryQty     = "Variant Inventory Qty"
	ColVariantInventoryPolicy  = "Variant Inventory Policy"
	ColVariantInventoryTracker = "Variant Inventory Tracker"
	ColVariantRequiresShipping = "Variant Requires Shipping"
	ColVariantTaxable          = "Variant Taxable"
	ColVariantGrams            = "Variant Grams"
	ColVariantWeightUnit       = "Variant Weight Unit"

	ColImageSrc      = "Image Src"
	ColImagePosition = "Image Position"
	ColImageAltText  = "Image Alt Text"

	ColIncludedIndia       = "Included / India"
	ColPriceIndia          = "Price / India"
	ColCompareAtPriceIndia = "Compare At Price / India"
	ColIncludedAll         = "Included / all"
	ColPriceAll            = "Price / all"
	ColCompareAtPriceAll   = "Compare At Price / all"

	ColLengthCm = "Length (cm)"
	ColWidthCm  = "Width (cm)"
	ColHeightCm = "Height (cm)"
)

// Country codes of the per-variant price pair.
const (
	CountryIndia = "IN"
	CountryAll   = "ALL"
)

// DefaultProductStatus is used when a product has no status.
const DefaultProductStatus = "active"

// metafieldColumns maps product metafield attributes to their export columns.
var metafieldColumns = []struct {
	attribute string
	column    string
}{
	{"color", "Color (product.metafields.shopify.color-pattern)"},
	{"fabric", "Fabric (product.metafields.shopify.fabric)"},
	{"size", "Size (product.metafields.shopify.size)"},
	{"occasion", "Dress occasion (product.metafields.shopify.dress-occasion)"},
	{"sleeve_length", "Sleeve length type (product.metafields.shopify.sleeve-length-type)"},
	{"target_gender", "Target gender (product.metafields.shopify.target-gender)"},
}

// TemplateColumns lists the columns of a blank import template, in order.
func TemplateColumns() []string {
	cols := []string{
		ColHandle, ColTitle, ColBodyHTML, ColVendor, ColProductCategory, ColType, ColTags,
		ColPublished, ColOption1Name, ColOption1Value, ColOption2Name, ColOption2Value,
		ColOption3Name, ColOption3Value, ColVariantSKU, ColVariantGrams, ColVariantInventoryTracker,
		ColVariantInventoryQty, ColVariantInventoryPolicy, ColVariantPrice, ColVariantCompareAtPrice,
		ColVariantRequiresShipping, ColVariantTaxable, ColVariantBarcode, ColImageSrc,
		ColImagePosition, ColImageAltText, ColGiftCard, ColSeoTitle, ColSeoDescription,
	}
	for _, m := range metafieldColumns {
		cols = append(cols, m.column)
	}
	return append(cols,
		ColVariantWeightUnit, ColCostPerItem,
		ColIncludedIndia, ColPriceIndia, ColCompareAtPriceIndia,
		ColIncludedAll, ColPriceAll, ColCompareAtPriceAll,
		ColLengthCm, ColWidthCm, ColHeightCm,
		ColStatus,
	)
}

// NormalizeProductGroup turns one handle's rows into a ProductPlan.
// Product fields come from the first row; every row yields one variant.
func NormalizeProductGroup(g Group) (ProductPlan, error) {
	handle := strings.TrimSpace(g.Key)
	if handle == "" {
		return ProductPlan{}, validationError("product", "", "handle is required")
	}
	if len(g.Rows) == 0 {
		return ProductPlan{}, validationError("product", handle, "group has no rows")
	}

	first := g.Rows[0]
	productID := uuid.New()

	status := first.Value(ColStatus)
	if status == "" {
		status = DefaultProductStatus
	}

	plan := ProductPlan{
		Key:  handle,
		Rows: len(g.Rows),
		Product: db.InsertProductParams{
			ProductID:       productID,
			Handle:          handle,
			Title:           ToPgText(first.Value(ColTitle)),
			BodyHTML:        ToPgText(first.Value(ColBodyHTML)),
			Vendor:          ToPgText(first.Value(ColVendor)),
			ProductCategory: ToPgText(first.Value(ColProductCategory)),
			ProductType:     ToPgText(first.Value(ColType)),
			Tags:            SplitList(first.Value(ColTags)),
			Published:       ParseFlag(first.Value(ColPublished)),
			Status:          status,
			SeoTitle:        ToPgText(first.Value(ColSeoTitle)),
			SeoDescription:  ToPgText(first.Value(ColSeoDescription)),
			IsGiftCard:      ParseFlag(first.Value(ColGiftCard)),
		},
		Metafields: rowMetafields(first),
		Variants:   make([]VariantPlan, 0, len(g.Rows)),
	}

	for _, row := range g.Rows {
		plan.Variants = append(plan.Variants, rowVariant(productID, row))
	}

	return plan, nil
}

func rowMetafields(r Record) map[string]string {
	attrs := make(map[string]string)
	for _, m := range metafieldColumns {
		if v := r.Value(m.column); v != "" {
			attrs[m.attribute] = v
		}
	}
	return attrs
}

func rowVariant(productID uuid.UUID, r Record) VariantPlan {
	variantID := uuid.New()

	vp := VariantPlan{
		Variant: db.InsertVariantParams{
			VariantID:        variantID,
			ProductID:        productID,
			Sku:              ToPgText(r.Value(ColVariantSKU)),
			Barcode:          ToPgText(r.Value(ColVariantBarcode)),
			Option1Name:      ToPgText(r.Value(ColOption1Name)),
			Option1Value:     ToPgText(r.Value(ColOption1Value)),
			Option2Name:      ToPgText(r.Value(ColOption2Name)),
			Option2Value:     ToPgText(r.Value(ColOption2Value)),
			Option3Name:      ToPgText(r.Value(ColOption3Name)),
			Option3Value:     ToPgText(r.Value(ColOption3Value)),
			Price:            ToPgNumeric(r.Value(ColVariantPrice)),
			CompareAtPrice:   ToPgNumeric(r.Value(ColVariantCompareAtPrice)),
			CostPerItem:      ToPgNumeric(r.Value(ColCostPerItem)),
			InventoryQty:     ToPgInt4(r.Value(ColVariantInventoryQty)),
			InventoryPolicy:  ToPgText(r.Value(ColVariantInventoryPolicy)),
			InventoryTracker: ToPgText(r.Value(ColVariantInventoryTracker)),
			RequiresShipping: ParseFlag(r.Value(ColVariantRequiresShipping)),
			Taxable:          ParseFlag(r.Value(ColVariantTaxable)),
			Weight:           ToPgNumeric(r.Value(ColVariantGrams)),
			WeightUnit:       ToPgText(r.Value(ColVariantWeightUnit)),
		},
		Prices: [2]db.InsertVariantPriceParams{
			{
				VariantID:      variantID,
				CountryCode:    CountryIndia,
				Included:       ParseFlag(r.Value(ColIncludedIndia)),
				Price:          ToPgNumeric(r.Value(ColPriceIndia)),
				CompareAtPrice: ToPgNumeric(r.Value(ColCompareAtPriceIndia)),
			},
			{
				VariantID:      variantID,
				CountryCode:    CountryAll,
				Included:       ParseFlag(r.Value(ColIncludedAll)),
				Price:          ToPgNumeric(r.Value(ColPriceAll)),
				CompareAtPrice: ToPgNumeric(r.Value(ColCompareAtPriceAll)),
			},
		},
		Shipping: &db.InsertShippingDetailParams{
			VariantID: variantID,
			LengthCm:  ToPgNumeric(r.Value(ColLengthCm)),
			WidthCm:   ToPgNumeric(r.Value(ColWidthCm)),
			HeightCm:  ToPgNumeric(r.Value(ColHeightCm)),
		},
	}

	if src := r.Value(ColImageSrc); src != "" {
		vp.Image = &db.InsertProductImageParams{
			ProductID:     productID,
			VariantID:     pgtype.UUID{Bytes: variantID, Valid: true},
			ImageSrc:      src,
			ImagePosition: ToPgInt4(r.Value(ColImagePosition)),
			ImageAltText:  ToPgText(r.Value(ColImageAltText)),
		}
	}

	return vp
}

// ----------------------------------------------------------------------------
// Requests
// ----------------------------------------------------------------------------

// ProductRequest creates one product with its variants in a single request.
// A request without Variants gets one variant built from SKU, Price and
// InventoryQuantity.
type ProductRequest struct {
	Handle          string            `json:"handle" validate:"required,max=255"`
	Title           string            `json:"title" validate:"required"`
	BodyHTML        string            `json:"body_html"`
	Vendor          string            `json:"vendor"`
	ProductCategory string            `json:"product_category"`
	ProductType     string            `json:"product_type"`
	Tags            []string          `json:"tags"`
	Published       bool              `json:"published"`
	Status          string            `json:"status" validate:"omitempty,oneof=active draft archived"`
	SeoTitle        string            `json:"seo_title"`
	SeoDescription  string            `json:"seo_description"`
	IsGiftCard      bool              `json:"is_gift_card"`
	CategoryID      string            `json:"category_id" validate:"omitempty,uuid"`
	SubcategoryID   string            `json:"subcategory_id" validate:"omitempty,uuid"`
	ProductTypeID   string            `json:"product_type_id" validate:"omitempty,uuid"`
	Attributes      map[string]string `json:"attributes"`

	SKU               string           `json:"sku"`
	Price             *decimal.Decimal `json:"price"`
	InventoryQuantity *int32           `json:"inventory_quantity" validate:"omitempty,min=0"`

	Variants []VariantRequest `json:"variants" validate:"dive"`
}

// VariantRequest is one variant of a ProductRequest.
type VariantRequest struct {
	SKU               string           `json:"sku" validate:"max=255"`
	Barcode           string           `json:"barcode"`
	Option1Name       string           `json:"option1_name"`
	Option1Value      string           `json:"option1_value"`
	Option2Name       string           `json:"option2_name"`
	Option2Value      string           `json:"option2_value"`
	Option3Name       string           `json:"option3_name"`
	Option3Value      string           `json:"option3_value"`
	Price             *decimal.Decimal `json:"price"`
	CompareAtPrice    *decimal.Decimal `json:"compare_at_price"`
	CostPerItem       *decimal.Decimal `json:"cost_per_item"`
	InventoryQuantity *int32           `json:"inventory_quantity" validate:"omitempty,min=0"`
	InventoryPolicy   string           `json:"inventory_policy" validate:"omitempty,oneof=deny continue"`
	InventoryTracker  string           `json:"inventory_tracker"`
	RequiresShipping  bool             `json:"requires_shipping"`
	Taxable           bool             `json:"taxable"`
	Weight            *decimal.Decimal `json:"weight"`
	WeightUnit        string           `json:"weight_unit" validate:"omitempty,oneof=g kg lb oz"`

	ImageSrc      string `json:"image_src"`
	ImagePosition *int32 `json:"image_position" validate:"omitempty,min=1"`
	ImageAltText  string `json:"image_alt_text"`

	PriceIndia CountryPriceRequest `json:"price_india"`
	PriceAll   CountryPriceRequest `json:"price_all"`

	Shipping *ShippingRequest `json:"shipping"`
}

// CountryPriceRequest is the price of a variant in one market.
type CountryPriceRequest struct {
	Included       bool             `json:"included"`
	Price          *decimal.Decimal `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price"`
}

// ShippingRequest holds package dimensions in centimetres.
type ShippingRequest struct {
	LengthCm *decimal.Decimal `json:"length_cm"`
	WidthCm  *decimal.Decimal `json:"width_cm"`
	HeightCm *decimal.Decimal `json:"height_cm"`
}

// NormalizeProductRequest validates req and builds its ProductPlan.
func NormalizeProductRequest(req ProductRequest) (ProductPlan, error) {
	req.Handle = strings.TrimSpace(req.Handle)
	req.Title = strings.TrimSpace(req.Title)
	if err := validateRequest("product", req.Handle, req); err != nil {
		return ProductPlan{}, err
	}

	variants := req.Variants
	if len(variants) == 0 {
		variants = []VariantRequest{{
			SKU:               req.SKU,
			Price:             req.Price,
			InventoryQuantity: req.InventoryQuantity,
		}}
	}

	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = DefaultProductStatus
	}

	tags := make([]string, 0, len(req.Tags))
	for _, t := range req.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	productID := uuid.New()
	plan := ProductPlan{
		Key:  req.Handle,
		Rows: 1,
		Product: db.InsertProductParams{
			ProductID:       productID,
			Handle:          req.Handle,
			Title:           ToPgText(req.Title),
			BodyHTML:        ToPgText(req.BodyHTML),
			Vendor:          ToPgText(req.Vendor),
			ProductCategory: ToPgText(req.ProductCategory),
			ProductType:     ToPgText(req.ProductType),
			Tags:            tags,
			Published:       req.Published,
			Status:          status,
			SeoTitle:        ToPgText(req.SeoTitle),
			SeoDescription:  ToPgText(req.SeoDescription),
			IsGiftCard:      req.IsGiftCard,
			CategoryID:      ToPgUUID(req.CategoryID),
			SubcategoryID:   ToPgUUID(req.SubcategoryID),
			ProductTypeID:   ToPgUUID(req.ProductTypeID),
		},
		Variants: make([]VariantPlan, 0, len(variants)),
	}
	if len(req.Attributes) > 0 {
		plan.Metafields = req.Attributes
	}

	seen := make(map[string]bool, len(variants))
	for _, v := range variants {
		sku := strings.TrimSpace(v.SKU)
		if sku != "" {
			if seen[sku] {
				return ProductPlan{}, validationError("product", req.Handle, "sku %q appears more than once", sku)
			}
			seen[sku] = true
		}
		plan.Variants = append(plan.Variants, requestVariant(productID, v))
	}

	return plan, nil
}

func requestVariant(productID uuid.UUID, v VariantRequest) VariantPlan {
	variantID := uuid.New()

	// Absent inventory means none on hand for directly created products.
	qty := pgtype.Int4{Int32: 0, Valid: true}
	if v.InventoryQuantity != nil {
		qty.Int32 = *v.InventoryQuantity
	}

	vp := VariantPlan{
		Variant: db.InsertVariantParams{
			VariantID:        variantID,
			ProductID:        productID,
			Sku:              ToPgText(v.SKU),
			Barcode:          ToPgText(v.Barcode),
			Option1Name:      ToPgText(v.Option1Name),
			Option1Value:     ToPgText(v.Option1Value),
			Option2Name:      ToPgText(v.Option2Name),
			Option2Value:     ToPgText(v.Option2Value),
			Option3Name:      ToPgText(v.Option3Name),
			Option3Value:     ToPgText(v.Option3Value),
			Price:            optionalNumeric(v.Price),
			CompareAtPrice:   optionalNumeric(v.CompareAtPrice),
			CostPerItem:      optionalNumeric(v.CostPerItem),
			InventoryQty:     qty,
			InventoryPolicy:  ToPgText(v.InventoryPolicy),
			InventoryTracker: ToPgText(v.InventoryTracker),
			RequiresShipping: v.RequiresShipping,
			Taxable:          v.Taxable,
			Weight:           optionalNumeric(v.Weight),
			WeightUnit:       ToPgText(v.WeightUnit),
		},
		Prices: [2]db.InsertVariantPriceParams{
			countryPrice(variantID, CountryIndia, v.PriceIndia),
			countryPrice(variantID, CountryAll, v.PriceAll),
		},
	}

	if src := strings.TrimSpace(v.ImageSrc); src != "" {
		vp.Image = &db.InsertProductImageParams{
			ProductID:     productID,
			VariantID:     pgtype.UUID{Bytes: variantID, Valid: true},
			ImageSrc:      src,
			ImagePosition: optionalInt4(v.ImagePosition),
			ImageAltText:  ToPgText(v.ImageAltText),
		}
	}

	if v.Shipping != nil {
		vp.Shipping = &db.InsertShippingDetailParams{
			VariantID: variantID,
			LengthCm:  optionalNumeric(v.Shipping.LengthCm),
			WidthCm:   optionalNumeric(v.Shipping.WidthCm),
			HeightCm:  optionalNumeric(v.Shipping.HeightCm),
		}
	}

	return vp
}

func countryPrice(variantID uuid.UUID, country string, p CountryPriceRequest) db.InsertVariantPriceParams {
	return db.InsertVariantPriceParams{
		VariantID:      variantID,
		CountryCode:    country,
		Included:       p.Included,
		Price:          optionalNumeric(p.Price),
		CompareAtPrice: optionalNumeric(p.CompareAtPrice),
	}
}

func optionalNumeric(d *decimal.Decimal) pgtype.Numeric {
	if d == nil {
		return pgtype.Numeric{Valid: false}
	}
	return DecimalToPgNumeric(*d)
}

func optionalInt4(i *int32) pgtype.Int4 {
	if i == nil {
		return pgtype.Int4{Valid: false}
	}
	return pgtype.Int4{Int32: *i, Valid: true}
}

// OrderRequest places an order for the authenticated user.
type OrderRequest struct {
	AddressID   string             `json:"address_id" validate:"omitempty,uuid"`
	TotalAmount *decimal.Decimal   `json:"total_amount"`
	Items       []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// OrderItemRequest is one line of an order.
type OrderItemRequest struct {
	ProductID string           `json:"product_id" validate:"required,uuid"`
	VariantID string           `json:"variant_id" validate:"omitempty,uuid"`
	Quantity  int32            `json:"quantity" validate:"required,min=1"`
	Price     *decimal.Decimal `json:"price" validate:"required"`
}

// Order statuses.
const (
	OrderStatusPending  = "pending"
	PaymentStatusUnpaid = "unpaid"
)

// NormalizeOrderRequest validates req and builds its OrderPlan.
// When TotalAmount is absent it is the sum of price * quantity over all items.
func NormalizeOrderRequest(userID uuid.UUID, req OrderRequest) (OrderPlan, error) {
	if userID == uuid.Nil {
		return OrderPlan{}, validationError("order", "", "user is required")
	}
	if err := validateRequest("order", "", req); err != nil {
		return OrderPlan{}, err
	}

	orderID := uuid.New()
	plan := OrderPlan{
		Order: db.InsertOrderParams{
			OrderID:       orderID,
			UserID:        userID,
			AddressID:     ToPgUUID(req.AddressID),
			Status:        OrderStatusPending,
			PaymentStatus: PaymentStatusUnpaid,
		},
		Items: make([]db.InsertOrderItemParams, 0, len(req.Items)),
	}

	total := decimal.Zero
	for i, item := range req.Items {
		if item.Price.IsNegative() {
			return OrderPlan{}, validationError("order", orderID.String(), "items[%d].price must not be negative", i)
		}
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return OrderPlan{}, validationError("order", orderID.String(), "items[%d].product_id: %v", i, err)
		}

		total = total.Add(item.Price.Mul(decimal.NewFromInt32(item.Quantity)))
		plan.Items = append(plan.Items, db.InsertOrderItemParams{
			OrderID:         orderID,
			ProductID:       productID,
			VariantID:       ToPgUUID(item.VariantID),
			Quantity:        item.Quantity,
			PriceAtPurchase: DecimalToPgNumeric(*item.Price),
		})
	}

	if req.TotalAmount != nil {
		if req.TotalAmount.IsNegative() {
			return OrderPlan{}, validationError("order", orderID.String(), "total_amount must not be negative")
		}
		total = *req.TotalAmount
	}
	plan.Order.TotalAmount = DecimalToPgNumeric(total.Round(2))

	return plan, nil
}
