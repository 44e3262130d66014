package web

import (
	"context"

	"github.com/google/uuid"

	"github.com/JonMunkholm/storefront/internal/core"
	db "github.com/JonMunkholm/storefront/internal/database"
)

// Service is the part of *core.Service the HTTP layer calls.
type Service interface {
	ImportRows(ctx context.Context, rows []core.Record, opts core.ImportOptions) (core.ImportReport, error)
	PreviewImport(ctx context.Context, rows []core.Record, keyColumn string) (*core.ImportPreview, error)
	ListImportRuns(ctx context.Context, limit int) ([]db.ImportRun, error)
	ImportLimiterStatus() core.ImportLimiterStatus

	CreateProduct(ctx context.Context, req core.ProductRequest) (core.ProductDetail, error)
	GetProduct(ctx context.Context, id uuid.UUID) (core.ProductDetail, error)
	ListProducts(ctx context.Context, limit, offset int) ([]db.ListProductsRow, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, upd core.ProductUpdate) (db.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	PlaceOrder(ctx context.Context, userID uuid.UUID, req core.OrderRequest) (core.OrderResult, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]core.OrderResult, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, upd core.OrderStatusUpdate) (db.Order, error)
	DeleteOrder(ctx context.Context, userID, orderID uuid.UUID) error

	AddToCart(ctx context.Context, userID uuid.UUID, req core.CartItemRequest) (db.CartItem, error)
	GetCart(ctx context.Context, userID uuid.UUID) (core.Cart, error)
	UpdateCartQuantity(ctx context.Context, userID, cartItemID uuid.UUID, quantity int32) (db.CartItem, error)
	RemoveFromCart(ctx context.Context, userID, cartItemID uuid.UUID) error

	AddToWishlist(ctx context.Context, userID uuid.UUID, req core.WishlistRequest) (core.WishlistResult, error)
	ListWishlist(ctx context.Context, userID uuid.UUID) ([]db.WishlistItem, error)
	RemoveFromWishlist(ctx context.Context, userID, wishlistID uuid.UUID) error

	CreateAddress(ctx context.Context, userID uuid.UUID, req core.AddressRequest) (db.Address, error)
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]db.Address, error)
	UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, upd core.AddressUpdate) (db.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error
}

var _ Service = (*core.Service)(nil)
