package core

import (
	"context"
	"errors"
	"strings"

	db "github.com/JonMunkholm/storefront/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ----------------------------------------------------------------------------
// Cart
// ----------------------------------------------------------------------------

// CartItemRequest adds a variant to the cart.
type CartItemRequest struct {
	VariantID string `json:"variant_id" validate:"required,uuid"`
	Quantity  int32  `json:"quantity" validate:"omitempty,min=1"`
}

// Cart is the user's cart with its lines.
type Cart struct {
	Items []db.CartLine `json:"cart_items"`
	Count int           `json:"count"`
}

// AddToCart adds quantity (default 1) of a variant. Adding a variant that
// is already in the cart increases its quantity.
func (s *Service) AddToCart(ctx context.Context, userID uuid.UUID, req CartItemRequest) (db.CartItem, error) {
	if err := validateRequest("cart item", req.VariantID, req); err != nil {
		return db.CartItem{}, err
	}
	variantID := uuid.MustParse(req.VariantID)
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	q := db.New(s.db)
	if err := s.requireVariant(ctx, q, variantID); err != nil {
		return db.CartItem{}, err
	}

	item, err := q.UpsertCartItem(ctx, db.UpsertCartItemParams{
		UserID:    userID,
		VariantID: variantID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return db.CartItem{}, classify(err, "cart item", req.VariantID, "upsert cart item", false)
	}
	return item, nil
}

// GetCart returns the user's cart.
func (s *Service) GetCart(ctx context.Context, userID uuid.UUID) (Cart, error) {
	lines, err := db.New(s.db).ListCart(ctx, userID)
	if err != nil {
		return Cart{}, classify(err, "cart item", userID.String(), "list cart", false)
	}
	return Cart{Items: lines, Count: len(lines)}, nil
}

// UpdateCartQuantity sets the quantity of one cart item.
func (s *Service) UpdateCartQuantity(ctx context.Context, userID, cartItemID uuid.UUID, quantity int32) (db.CartItem, error) {
	key := cartItemID.String()
	if quantity < 1 {
		return db.CartItem{}, validationError("cart item", key, "quantity must be at least 1")
	}

	item, err := db.New(s.db).UpdateCartQuantity(ctx, db.UpdateCartQuantityParams{
		CartItemID: cartItemID,
		UserID:     userID,
		Quantity:   quantity,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return db.CartItem{}, notFound("cart item", key)
		}
		return db.CartItem{}, classify(err, "cart item", key, "update cart item", false)
	}
	return item, nil
}

// RemoveFromCart deletes one of the user's cart items.
func (s *Service) RemoveFromCart(ctx context.Context, userID, cartItemID uuid.UUID) error {
	key := cartItemID.String()
	n, err := db.New(s.db).DeleteCartItem(ctx, cartItemID, userID)
	if err != nil {
		return classify(err, "cart item", key, "delete cart item", false)
	}
	if n == 0 {
		return notFound("cart item", key)
	}
	return nil
}

func (s *Service) requireVariant(ctx context.Context, q *db.Queries, variantID uuid.UUID) error {
	if _, err := q.GetVariantPrice(ctx, variantID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound("variant", variantID.String())
		}
		return classify(err, "variant", variantID.String(), "get variant", false)
	}
	return nil
}

// ----------------------------------------------------------------------------
// Wishlist
// ----------------------------------------------------------------------------

// WishlistRequest adds a variant to the wishlist.
type WishlistRequest struct {
	VariantID string `json:"variant_id" validate:"required,uuid"`
}

// WishlistResult reports whether the variant was newly added.
type WishlistResult struct {
	Item    *db.WishlistItem `json:"item,omitempty"`
	Already bool             `json:"already"`
}

// AddToWishlist adds a variant to the user's wishlist. Adding it twice is a no-op.
func (s *Service) AddToWishlist(ctx context.Context, userID uuid.UUID, req WishlistRequest) (WishlistResult, error) {
	if err := validateRequest("wishlist item", req.VariantID, req); err != nil {
		return WishlistResult{}, err
	}
	variantID := uuid.MustParse(req.VariantID)

	q := db.New(s.db)
	if err := s.requireVariant(ctx, q, variantID); err != nil {
		return WishlistResult{}, err
	}

	item, err := q.InsertWishlistItem(ctx, userID, variantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return WishlistResult{Already: true}, nil
		}
		return WishlistResult{}, classify(err, "wishlist item", req.VariantID, "insert wishlist item", false)
	}
	return WishlistResult{Item: &item}, nil
}

// ListWishlist returns the user's wishlist, newest first.
func (s *Service) ListWishlist(ctx context.Context, userID uuid.UUID) ([]db.WishlistItem, error) {
	items, err := db.New(s.db).ListWishlist(ctx, userID)
	if err != nil {
		return nil, classify(err, "wishlist item", userID.String(), "list wishlist", false)
	}
	return items, nil
}

// RemoveFromWishlist deletes one of the user's wishlist entries.
func (s *Service) RemoveFromWishlist(ctx context.Context, userID, wishlistID uuid.UUID) error {
	key := wishlistID.String()
	n, err := db.New(s.db).DeleteWishlistItem(ctx, wishlistID, userID)
	if err != nil {
		return classify(err, "wishlist item", key, "delete wishlist item", false)
	}
	if n == 0 {
		return notFound("wishlist item", key)
	}
	return nil
}

// ----------------------------------------------------------------------------
// Addresses
// ----------------------------------------------------------------------------

// AddressRequest creates an address.
type AddressRequest struct {
	AddressLine1 string `json:"address_line_1" validate:"required"`
	AddressLine2 string `json:"address_line_2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	IsDefault    bool   `json:"is_default"`
}

// AddressUpdate changes an address. Nil fields keep their value.
type AddressUpdate struct {
	AddressLine1 *string `json:"address_line_1" validate:"omitempty,min=1"`
	AddressLine2 *string `json:"address_line_2"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	PostalCode   *string `json:"postal_code"`
	Country      *string `json:"country"`
	IsDefault    *bool   `json:"is_default"`
}

// CreateAddress stores a new address. A default address replaces the
// user's previous default in the same transaction.
func (s *Service) CreateAddress(ctx context.Context, userID uuid.UUID, req AddressRequest) (db.Address, error) {
	req.AddressLine1 = strings.TrimSpace(req.AddressLine1)
	if err := validateRequest("address", "", req); err != nil {
		return db.Address{}, err
	}

	addressID := uuid.New()
	key := addressID.String()

	var out db.Address
	err := s.writer.inTx(ctx, s.writer.txTimeout, func(ctx context.Context, q *db.Queries) error {
		if req.IsDefault {
			if err := q.ClearDefaultAddress(ctx, userID, addressID); err != nil {
				return classify(err, "address", key, "clear default address", false)
			}
		}

		var err error
		out, err = q.InsertAddress(ctx, db.InsertAddressParams{
			AddressID:    addressID,
			UserID:       userID,
			AddressLine1: req.AddressLine1,
			AddressLine2: ToPgText(req.AddressLine2),
			City:         ToPgText(req.City),
			State:        ToPgText(req.State),
			PostalCode:   ToPgText(req.PostalCode),
			Country:      ToPgText(req.Country),
			IsDefault:    req.IsDefault,
		})
		if err != nil {
			return classify(err, "address", key, "insert address", true)
		}
		return nil
	})
	if err != nil {
		return db.Address{}, classify(err, "address", key, "commit", false)
	}
	return out, nil
}

// ListAddresses returns the user's addresses, default first.
func (s *Service) ListAddresses(ctx context.Context, userID uuid.UUID) ([]db.Address, error) {
	addrs, err := db.New(s.db).ListAddresses(ctx, userID)
	if err != nil {
		return nil, classify(err, "address", userID.String(), "list addresses", false)
	}
	return addrs, nil
}

// UpdateAddress applies a coalesce update to one of the user's addresses.
func (s *Service) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, upd AddressUpdate) (db.Address, error) {
	key := addressID.String()
	if err := validateRequest("address", key, upd); err != nil {
		return db.Address{}, err
	}

	var out db.Address
	err := s.writer.inTx(ctx, s.writer.txTimeout, func(ctx context.Context, q *db.Queries) error {
		if upd.IsDefault != nil && *upd.IsDefault {
			if err := q.ClearDefaultAddress(ctx, userID, addressID); err != nil {
				return classify(err, "address", key, "clear default address", false)
			}
		}

		var err error
		out, err = q.UpdateAddress(ctx, db.UpdateAddressParams{
			AddressID:    addressID,
			UserID:       userID,
			AddressLine1: optionalText(upd.AddressLine1),
			AddressLine2: optionalText(upd.AddressLine2),
			City:         optionalText(upd.City),
			State:        optionalText(upd.State),
			PostalCode:   optionalText(upd.PostalCode),
			Country:      optionalText(upd.Country),
			IsDefault:    optionalBool(upd.IsDefault),
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return notFound("address", key)
			}
			return classify(err, "address", key, "update address", false)
		}
		return nil
	})
	if err != nil {
		return db.Address{}, classify(err, "address", key, "commit", false)
	}
	return out, nil
}

// DeleteAddress removes one of the user's addresses. Orders that used it keep no address.
func (s *Service) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	key := addressID.String()
	n, err := db.New(s.db).DeleteAddress(ctx, addressID, userID)
	if err != nil {
		return classify(err, "address", key, "delete address", false)
	}
	if n == 0 {
		return notFound("address", key)
	}
	return nil
}
