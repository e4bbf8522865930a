package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jl681/order-processing/order-service/application"
	"github.com/jl681/order-processing/order-service/domain"
	"github.com/pkg/errors"
)

// OrderHandlers contains order HTTP handlers
type OrderHandlers struct {
	processOrder      *application.ProcessOrder
	getOrder          *application.GetOrder
	listPendingOrders *application.ListPendingOrders
	async             application.Async
}

// NewOrderHandlers creates new order handlers
func NewOrderHandlers(
	processOrder *application.ProcessOrder,
	getOrder *application.GetOrder,
	listPendingOrders *application.ListPendingOrders,
	async application.Async,
) *OrderHandlers {
	if async == nil {
		async = func(fn func()) { go fn() }
	}
	return &OrderHandlers{
		processOrder:      processOrder,
		getOrder:          getOrder,
		listPendingOrders: listPendingOrders,
		async:             async,
	}
}

// CreateOrder accepts an order request and runs the saga in the background.
// The response is 202; the terminal status is observable via GET /orders/{id}.
func (h *OrderHandlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var cmd application.ProcessOrderCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := cmd.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The request context dies with this response, so the saga runs on its
	// own context.
	h.async(func() {
		h.processOrder.Execute(context.Background(), &cmd)
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Order Processing Started",
	})
}

// GetOrder handles order retrieval requests
func (h *OrderHandlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		http.Error(w, "Order ID is required", http.StatusBadRequest)
		return
	}

	query := &application.GetOrderQuery{OrderID: orderID}

	response, err := h.getOrder.Execute(r.Context(), query)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			http.Error(w, "order not found", http.StatusNotFound)
			return
		}
		if domain.IsValidation(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// ListPendingOrders handles listing orders that never reached a terminal
// status, typically because the process died mid saga
func (h *OrderHandlers) ListPendingOrders(w http.ResponseWriter, r *http.Request) {
	response, err := h.listPendingOrders.Execute(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if response == nil {
		response = []*application.OrderView{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// RegisterRoutes registers order routes
func (h *OrderHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/pending", h.ListPendingOrders)
		r.Get("/{id}", h.GetOrder)
	})
}
