package web

import (
	"net/http"

	"github.com/JonMunkholm/storefront/internal/core"
)

// handlePlaceOrder writes the order and its items in one transaction.
func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req core.OrderRequest
	if err := decodeJSON(w, r, "order", &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	result, err := s.service.PlaceOrder(r.Context(), uid, req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	orders, err := s.service.ListOrders(r.Context(), uid)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders, "count": len(orders)})
}

// handleUpdateOrderStatus is an admin route; it is not scoped to a user.
func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "order")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var upd core.OrderStatusUpdate
	if err := decodeJSON(w, r, "order", &upd); err != nil {
		s.respondError(w, r, err)
		return
	}

	order, err := s.service.UpdateOrderStatus(r.Context(), id, upd)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	id, err := pathID(r, "order")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.service.DeleteOrder(r.Context(), uid, id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
