// Package httpapi — HTTP-фасад сервиса: JSON поверх chi.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/overiq429/cafe-orders/internal/domain"
	"github.com/overiq429/cafe-orders/internal/report"
	"github.com/overiq429/cafe-orders/internal/service/composer"
	"github.com/overiq429/cafe-orders/internal/service/menu"
	"github.com/overiq429/cafe-orders/internal/service/orders"
)

// Handler связывает HTTP-маршруты с сервисами.
type Handler struct {
	logger    *log.Entry
	menu      *menu.Service
	orders    *orders.Service
	composer  composer.Composer
	customers domain.CustomerRepository
}

// NewHandler создаёт HTTP-обработчик.
func NewHandler(
	menuSvc *menu.Service,
	ordersSvc *orders.Service,
	composerSvc composer.Composer,
	customers domain.CustomerRepository,
	logger *log.Entry,
) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "http")
	}
	return &Handler{
		logger:    logger,
		menu:      menuSvc,
		orders:    ordersSvc,
		composer:  composerSvc,
		customers: customers,
	}
}

// Routes собирает роутер сервиса.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/dishes", func(r chi.Router) {
		r.Post("/", h.createDish)
		r.Get("/", h.listDishes)
		r.Get("/print", h.printDishes)
		r.Get("/{id}", h.getDish)
		r.Patch("/{id}/price", h.updateDishPrice)
		r.Delete("/{id}", h.deactivateDish)
	})

	r.Route("/customers", func(r chi.Router) {
		r.Post("/", h.createCustomer)
		r.Get("/", h.listCustomers)
		r.Get("/{id}", h.getCustomer)
		r.Patch("/{id}/loyalty", h.updateCustomerLoyalty)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.createOrder)
		r.Get("/", h.listOrders)
		r.Get("/print", h.printOrders)
		r.Get("/{id}", h.getOrder)
		r.Get("/{id}/receipt", h.orderReceipt)
		r.Patch("/{id}/status", h.updateOrderStatus)
		r.Post("/{id}/items", h.addOrderItem)
	})

	return r
}

type dishPayload struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	PriceMinor   int64  `json:"price_minor"`
	CategoryID   string `json:"category_id,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
	Active       bool   `json:"active"`
}

func dishToPayload(dish domain.Dish) dishPayload {
	return dishPayload{
		ID:           dish.ID,
		Name:         dish.Name,
		Description:  dish.Description,
		PriceMinor:   dish.PriceMinor,
		CategoryID:   dish.CategoryID,
		CategoryName: dish.CategoryName,
		Active:       dish.Active,
	}
}

func (h *Handler) createDish(w http.ResponseWriter, r *http.Request) {
	var req dishPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	dish, err := h.menu.CreateDish(menu.CreateDishInput{
		Name:        req.Name,
		Description: req.Description,
		PriceMinor:  req.PriceMinor,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, dishToPayload(dish))
}

func (h *Handler) listDishes(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.menu.ListDishes(r.URL.Query().Get("category_id"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	payload := make([]dishPayload, 0, len(dishes))
	for _, dish := range dishes {
		payload = append(payload, dishToPayload(dish))
	}
	h.writeJSON(w, http.StatusOK, payload)
}

// printDishes отдаёт меню строками для печати, как в бумажной версии.
func (h *Handler) printDishes(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.menu.ListDishes(r.URL.Query().Get("category_id"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	var b strings.Builder
	for _, dish := range dishes {
		b.WriteString(report.DishLine(dish))
		b.WriteByte('\n')
	}
	h.writeText(w, b.String())
}

func (h *Handler) getDish(w http.ResponseWriter, r *http.Request) {
	dish, err := h.menu.GetDish(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dishToPayload(dish))
}

func (h *Handler) updateDishPrice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PriceMinor int64 `json:"price_minor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	if err := h.menu.UpdatePrice(chi.URLParam(r, "id"), req.PriceMinor); err != nil {
		h.respondError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deactivateDish(w http.ResponseWriter, r *http.Request) {
	if err := h.menu.Deactivate(chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

type customerPayload struct {
	ID            string    `json:"id,omitempty"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name,omitempty"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email,omitempty"`
	LoyaltyPoints int32     `json:"loyalty_points"`
	RegisteredAt  time.Time `json:"registered_at,omitempty"`
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	customer := domain.Customer{
		ID:           uuid.NewString(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Email:        req.Email,
		RegisteredAt: time.Now().UTC(),
	}
	if errs := customer.Validate(); len(errs) > 0 {
		h.respondError(w, errors.Join(errs...))
		return
	}

	if err := h.customers.Create(customer); err != nil {
		h.respondError(w, err)
		return
	}

	req.ID = customer.ID
	req.RegisteredAt = customer.RegisteredAt
	h.writeJSON(w, http.StatusCreated, req)
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List()
	if err != nil {
		h.respondError(w, err)
		return
	}

	payload := make([]customerPayload, 0, len(customers))
	for _, c := range customers {
		payload = append(payload, customerPayload{
			ID:            c.ID,
			FirstName:     c.FirstName,
			LastName:      c.LastName,
			Phone:         c.Phone,
			Email:         c.Email,
			LoyaltyPoints: c.LoyaltyPoints,
			RegisteredAt:  c.RegisteredAt,
		})
	}
	h.writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.customers.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, customerPayload{
		ID:            c.ID,
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		Phone:         c.Phone,
		Email:         c.Email,
		LoyaltyPoints: c.LoyaltyPoints,
		RegisteredAt:  c.RegisteredAt,
	})
}

func (h *Handler) updateCustomerLoyalty(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LoyaltyPoints int32 `json:"loyalty_points"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.LoyaltyPoints < 0 {
		h.writeError(w, http.StatusBadRequest, "loyalty_points must be non-negative")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.customers.UpdateLoyalty(id, req.LoyaltyPoints); err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":             id,
		"loyalty_points": req.LoyaltyPoints,
	})
}

type lineItemPayload struct {
	ID         string `json:"id"`
	ItemID     string `json:"item_id"`
	Qty        int32  `json:"qty"`
	PriceMinor int64  `json:"price_minor"`
}

type orderPayload struct {
	ID         string            `json:"id"`
	EmployeeID string            `json:"employee_id"`
	TableID    string            `json:"table_id"`
	CustomerID string            `json:"customer_id,omitempty"`
	Status     string            `json:"status"`
	TotalMinor int64             `json:"total_minor"`
	Items      []lineItemPayload `json:"items"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func orderToPayload(order domain.Order) orderPayload {
	items := make([]lineItemPayload, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, lineItemPayload{
			ID:         item.ID,
			ItemID:     item.ItemID,
			Qty:        item.Qty,
			PriceMinor: item.PriceMinor,
		})
	}
	return orderPayload{
		ID:         order.ID,
		EmployeeID: order.EmployeeID,
		TableID:    order.TableID,
		CustomerID: order.CustomerID,
		Status:     string(order.Status),
		TotalMinor: order.TotalMinor,
		Items:      items,
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeID string `json:"employee_id"`
		TableID    string `json:"table_id"`
		CustomerID string `json:"customer_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	order, err := h.orders.Create(orders.CreateOrderInput{
		EmployeeID: req.EmployeeID,
		TableID:    req.TableID,
		CustomerID: req.CustomerID,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, orderToPayload(order))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	list, err := h.orders.List(domain.OrderStatus(r.URL.Query().Get("status")), limit)
	if err != nil {
		h.respondError(w, err)
		return
	}

	payload := make([]orderPayload, 0, len(list))
	for _, order := range list {
		payload = append(payload, orderToPayload(order))
	}
	h.writeJSON(w, http.StatusOK, payload)
}

// printOrders отдаёт краткую сводку заказов строками для печати.
func (h *Handler) printOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.List(domain.OrderStatus(r.URL.Query().Get("status")), 50)
	if err != nil {
		h.respondError(w, err)
		return
	}

	var b strings.Builder
	for _, order := range list {
		b.WriteString(report.OrderLine(order))
		b.WriteByte('\n')
	}
	h.writeText(w, b.String())
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	details, err := h.orders.Details(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	resp := struct {
		orderPayload
		ItemNames       map[string]string `json:"item_names,omitempty"`
		CatalogDegraded bool              `json:"catalog_degraded,omitempty"`
		History         []historyPayload  `json:"history,omitempty"`
	}{
		orderPayload:    orderToPayload(details.Order),
		ItemNames:       details.ItemNames,
		CatalogDegraded: details.CatalogDegraded,
	}
	for _, event := range details.History {
		resp.History = append(resp.History, historyPayload{
			Status:   string(event.Status),
			Reason:   event.Reason,
			Occurred: event.Occurred,
		})
	}

	h.writeJSON(w, http.StatusOK, resp)
}

type historyPayload struct {
	Status   string    `json:"status"`
	Reason   string    `json:"reason,omitempty"`
	Occurred time.Time `json:"occurred"`
}

func (h *Handler) orderReceipt(w http.ResponseWriter, r *http.Request) {
	details, err := h.orders.Details(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeText(w, report.Receipt(details.Order, details.ItemNames))
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	order, err := h.orders.UpdateStatus(chi.URLParam(r, "id"), domain.OrderStatus(req.Status), req.Reason)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, orderToPayload(order))
}

func (h *Handler) addOrderItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID string `json:"item_id"`
		Qty    int32  `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	result, err := h.composer.AddItemToOrder(chi.URLParam(r, "id"), req.ItemID, req.Qty)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, struct {
		Item          lineItemPayload `json:"item"`
		ItemName      string          `json:"item_name"`
		NewTotalMinor int64           `json:"new_total_minor"`
	}{
		Item: lineItemPayload{
			ID:         result.Item.ID,
			ItemID:     result.Item.ItemID,
			Qty:        result.Item.Qty,
			PriceMinor: result.Item.PriceMinor,
		},
		ItemName:      result.ItemName,
		NewTotalMinor: result.NewTotalMinor,
	})
}

// statusForError переводит доменную ошибку в HTTP-код.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrDishNameRequired),
		errors.Is(err, domain.ErrDishPriceNegative),
		errors.Is(err, domain.ErrEmployeeRequired),
		errors.Is(err, domain.ErrTableRequired),
		errors.Is(err, domain.ErrCustomerPhoneRequired):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrItemUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrStatusFinal):
		return http.StatusConflict
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrDishNotFound),
		errors.Is(err, domain.ErrCustomerNotFound),
		errors.Is(err, domain.ErrEmployeeNotFound),
		errors.Is(err, domain.ErrTableNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCatalogUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).Error("request failed")
	}
	h.writeJSON(w, status, map[string]interface{}{
		"error":     err.Error(),
		"retryable": domain.IsRetryable(err),
	})
}

func (h *Handler) writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.WithError(err).Warn("encode response failed")
	}
}
