package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/corregomitas/storefront/internal/auth"
	kafkax "github.com/corregomitas/storefront/internal/kafka"
	"github.com/corregomitas/storefront/internal/orders"
	"github.com/corregomitas/storefront/internal/redisx"
)

// EventPublisher is satisfied by *kafka.Producer; tests swap in a recorder.
type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type StatusCache interface {
	Get(ctx context.Context, orderID string) (redisx.StatusEntry, bool, error)
	Set(ctx context.Context, orderID string, e redisx.StatusEntry) error
}

type OrdersHandler struct {
	Svc     *orders.Service
	Cache   StatusCache
	Created EventPublisher // orders.created topic
	Changed EventPublisher // orders.status.changed topic
	Service string
}

type placeOrderReq struct {
	Items []orders.LineItem `json:"lineItems"`
	Total *decimal.Decimal  `json:"total"`
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) Register(r *chi.Mux, authn, admin func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Post("/", h.place)
			r.Get("/mine", h.mine)
			r.Get("/{id}/status", h.status)
		})
		r.Group(func(r chi.Router) {
			r.Use(authn, admin)
			r.Get("/", h.listAll)
			r.Put("/{id}/status", h.updateStatus)
		})
	})
}

func (h *OrdersHandler) place(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var req placeOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.Items) == 0 || req.Total == nil {
		writeMessage(w, http.StatusBadRequest, "line items and total are required")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Svc.PlaceOrder(ctx, id.UserID, req.Items, *req.Total)
	if err != nil {
		writeError(w, err)
		return
	}

	_ = h.Cache.Set(ctx, o.ID, redisx.StatusEntry{Status: string(o.Status), UserID: o.UserID})
	h.publishCreated(r, o)

	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) mine(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	os, err := h.Svc.ListOrders(ctx, id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	if os == nil {
		os = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, os)
}

func (h *OrdersHandler) listAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	os, err := h.Svc.ListAllOrders(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	if os == nil {
		os = []orders.OrderWithUser{}
	}
	writeJSON(w, http.StatusOK, os)
}

// status serves the order's current status, cache first. Customers can
// only look at their own orders.
func (h *OrdersHandler) status(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if e, hit, err := h.Cache.Get(ctx, orderID); err == nil && hit {
		if e.UserID != id.UserID && !id.IsAdmin() {
			writeMessage(w, http.StatusForbidden, "not your order")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": e.Status})
		return
	}

	st, ownerID, err := h.Svc.GetStatus(ctx, orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	if ownerID != id.UserID && !id.IsAdmin() {
		writeMessage(w, http.StatusForbidden, "not your order")
		return
	}
	_ = h.Cache.Set(ctx, orderID, redisx.StatusEntry{Status: string(st), UserID: ownerID})
	writeJSON(w, http.StatusOK, map[string]string{"status": string(st)})
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Svc.UpdateOrderStatus(ctx, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	_ = h.Cache.Set(ctx, o.ID, redisx.StatusEntry{Status: string(o.Status), UserID: o.UserID})
	h.publishStatusChanged(r, o)

	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) publishCreated(r *http.Request, o *orders.Order) {
	items := make([]orders.ItemQty, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orders.ItemQty{ProductID: it.ProductID, Qty: it.Qty})
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(orders.OrderCreatedPayload{
			OrderID: o.ID, UserID: o.UserID, Items: items, Total: o.Total.String(),
		}),
	}
	h.Created.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) publishStatusChanged(r *http.Request, o *orders.Order) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(orders.OrderStatusChangedPayload{
			OrderID: o.ID, UserID: o.UserID, Status: string(o.Status),
		}),
	}
	h.Changed.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderStatusChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
