package web

import (
	"net/http"

	"github.com/JonMunkholm/storefront/internal/core"
)

// ----------------------------------------------------------------------------
// Cart
// ----------------------------------------------------------------------------

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req core.CartItemRequest
	if err := decodeJSON(w, r, "cart item", &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	item, err := s.service.AddToCart(r.Context(), uid, req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	cart, err := s.service.GetCart(r.Context(), uid)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

type cartQuantity struct {
	Quantity int32 `json:"quantity"`
}

func (s *Server) handleUpdateCart(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	id, err := pathID(r, "cart item")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var body cartQuantity
	if err := decodeJSON(w, r, "cart item", &body); err != nil {
		s.respondError(w, r, err)
		return
	}

	item, err := s.service.UpdateCartQuantity(r.Context(), uid, id, body.Quantity)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	id, err := pathID(r, "cart item")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.service.RemoveFromCart(r.Context(), uid, id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ----------------------------------------------------------------------------
// Wishlist
// ----------------------------------------------------------------------------

// handleAddToWishlist returns 201 for a new entry and 200 when the variant
// was already on the list.
func (s *Server) handleAddToWishlist(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req core.WishlistRequest
	if err := decodeJSON(w, r, "wishlist item", &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	result, err := s.service.AddToWishlist(r.Context(), uid, req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	status := http.StatusCreated
	if result.Already {
		status = http.StatusOK
	}
	writeJSON(w, status, result)
}

func (s *Server) handleListWishlist(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	items, err := s.service.ListWishlist(r.Context(), uid)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"wishlist": items, "count": len(items)})
}

func (s *Server) handleRemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	id, err := pathID(r, "wishlist item")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.service.RemoveFromWishlist(r.Context(), uid, id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ----------------------------------------------------------------------------
// Addresses
// ----------------------------------------------------------------------------

func (s *Server) handleCreateAddress(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req core.AddressRequest
	if err := decodeJSON(w, r, "address", &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	addr, err := s.service.CreateAddress(r.Context(), uid, req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, addr)
}

func (s *Server) handleListAddresses(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	addrs, err := s.service.ListAddresses(r.Context(), uid)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"addresses": addrs, "count": len(addrs)})
}

func (s *Server) handleUpdateAddress(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	id, err := pathID(r, "address")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var upd core.AddressUpdate
	if err := decodeJSON(w, r, "address", &upd); err != nil {
		s.respondError(w, r, err)
		return
	}

	addr, err := s.service.UpdateAddress(r.Context(), uid, id, upd)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, addr)
}

func (s *Server) handleDeleteAddress(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	id, err := pathID(r, "address")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.service.DeleteAddress(r.Context(), uid, id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
