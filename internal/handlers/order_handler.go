package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/northwind/internal/domain"
	"github.com/vladislavdragonenkov/northwind/internal/service/orders"
)

// OrderHandler обслуживает HTTP-операции над заказами.
type OrderHandler struct {
	svc    *orders.Service
	logger *log.Entry
}

// NewOrderHandler создаёт handler поверх прикладного сервиса.
func NewOrderHandler(svc *orders.Service, logger *log.Entry) *OrderHandler {
	if logger == nil {
		logger = log.WithField("component", "order-handler")
	}
	return &OrderHandler{svc: svc, logger: logger}
}

// RegisterRoutes подключает маршруты заказов к роутеру.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.Post("/", h.CreateOrder)
		r.Get("/{orderID}", h.GetOrder)
		r.Get("/{orderID}/details", h.GetOrderDetails)
		r.Put("/{orderID}", h.UpdateOrder)
		r.Delete("/{orderID}", h.DeleteOrder)
	})
	r.Get("/customers/{customerID}/orders", h.ListCustomerOrders)
}

type detailCreateRequest struct {
	ProductID int64           `json:"product_id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int32           `json:"quantity"`
	Discount  float64         `json:"discount"`
}

type orderCreateRequest struct {
	CustomerID     *string               `json:"customer_id"`
	EmployeeID     *int64                `json:"employee_id"`
	OrderDate      *time.Time            `json:"order_date"`
	RequiredDate   time.Time             `json:"required_date"`
	ShippedDate    *time.Time            `json:"shipped_date"`
	Freight        decimal.Decimal       `json:"freight"`
	ShipName       string                `json:"ship_name"`
	ShipAddress    string                `json:"ship_address"`
	ShipCity       string                `json:"ship_city"`
	ShipRegion     string                `json:"ship_region"`
	ShipPostalCode string                `json:"ship_postal_code"`
	ShipCountry    string                `json:"ship_country"`
	Details        []detailCreateRequest `json:"details"`
}

type detailUpdateRequest struct {
	ID        string          `json:"id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int32           `json:"quantity"`
	Discount  float64         `json:"discount"`
}

type orderUpdateRequest struct {
	CustomerID     *string               `json:"customer_id"`
	EmployeeID     *int64                `json:"employee_id"`
	OrderDate      *time.Time            `json:"order_date"`
	RequiredDate   *time.Time            `json:"required_date"`
	ShippedDate    *time.Time            `json:"shipped_date"`
	Freight        *decimal.Decimal      `json:"freight"`
	ShipName       *string               `json:"ship_name"`
	ShipAddress    *string               `json:"ship_address"`
	ShipCity       *string               `json:"ship_city"`
	ShipRegion     *string               `json:"ship_region"`
	ShipPostalCode *string               `json:"ship_postal_code"`
	ShipCountry    *string               `json:"ship_country"`
	Details        []detailUpdateRequest `json:"details"`
}

// GetOrder обрабатывает GET /orders/{orderID}: заказ вместе с позициями.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.GetOrderWithDetails(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "failed to get order")
		return
	}

	writeJSON(w, http.StatusOK, orderWithDetailsResponse{
		Order:   toOrderResponse(result.Order),
		Details: toDetailResponses(result.Details),
	}, h.logger)
}

// GetOrderDetails обрабатывает GET /orders/{orderID}/details.
func (h *OrderHandler) GetOrderDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	details, err := h.svc.GetOrderDetails(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "failed to get order details")
		return
	}

	writeJSON(w, http.StatusOK, toDetailResponses(details), h.logger)
}

// CreateOrder обрабатывает POST /orders.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}
	if req.RequiredDate.IsZero() {
		writeError(w, http.StatusBadRequest, "required_date is required", h.logger)
		return
	}

	order := domain.Order{
		CustomerID:     req.CustomerID,
		EmployeeID:     req.EmployeeID,
		OrderDate:      req.OrderDate,
		RequiredDate:   req.RequiredDate,
		ShippedDate:    req.ShippedDate,
		Freight:        req.Freight,
		ShipName:       req.ShipName,
		ShipAddress:    req.ShipAddress,
		ShipCity:       req.ShipCity,
		ShipRegion:     req.ShipRegion,
		ShipPostalCode: req.ShipPostalCode,
		ShipCountry:    req.ShipCountry,
	}
	details := make([]domain.OrderDetail, 0, len(req.Details))
	for _, d := range req.Details {
		details = append(details, domain.OrderDetail{
			ProductID: d.ProductID,
			UnitPrice: d.UnitPrice,
			Quantity:  d.Quantity,
			Discount:  d.Discount,
		})
	}

	id, err := h.svc.CreateOrder(r.Context(), order, details)
	if err != nil {
		h.writeServiceError(w, err, "failed to create order")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id}, h.logger)
}

// UpdateOrder обрабатывает PUT /orders/{orderID}.
func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	var req orderUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	patch := domain.OrderPatch{
		CustomerID:     req.CustomerID,
		EmployeeID:     req.EmployeeID,
		OrderDate:      req.OrderDate,
		RequiredDate:   req.RequiredDate,
		ShippedDate:    req.ShippedDate,
		Freight:        req.Freight,
		ShipName:       req.ShipName,
		ShipAddress:    req.ShipAddress,
		ShipCity:       req.ShipCity,
		ShipRegion:     req.ShipRegion,
		ShipPostalCode: req.ShipPostalCode,
		ShipCountry:    req.ShipCountry,
	}
	details := make([]domain.OrderDetail, 0, len(req.Details))
	for _, d := range req.Details {
		details = append(details, domain.OrderDetail{
			ID:        d.ID,
			OrderID:   id,
			UnitPrice: d.UnitPrice,
			Quantity:  d.Quantity,
			Discount:  d.Discount,
		})
	}

	if err := h.svc.UpdateOrder(r.Context(), id, patch, details); err != nil {
		h.writeServiceError(w, err, "failed to update order")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"id": id}, h.logger)
}

// DeleteOrder обрабатывает DELETE /orders/{orderID}.
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteOrder(r.Context(), id); err != nil {
		h.writeServiceError(w, err, "failed to delete order")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListOrders обрабатывает GET /orders с параметрами пагинации и сортировки.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptionsFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	items, err := h.svc.ListOrders(r.Context(), opts)
	if err != nil {
		h.writeServiceError(w, err, "failed to list orders")
		return
	}

	writeJSON(w, http.StatusOK, toListItemResponses(items), h.logger)
}

// ListCustomerOrders обрабатывает GET /customers/{customerID}/orders.
func (h *OrderHandler) ListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")
	if customerID == "" {
		writeError(w, http.StatusBadRequest, "customer id is required", h.logger)
		return
	}

	opts, err := listOptionsFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	items, err := h.svc.ListCustomerOrders(r.Context(), customerID, opts)
	if err != nil {
		h.writeServiceError(w, err, "failed to list customer orders")
		return
	}

	writeJSON(w, http.StatusOK, toListItemResponses(items), h.logger)
}

func (h *OrderHandler) orderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "orderID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid order id", h.logger)
		return 0, false
	}
	return id, true
}

func (h *OrderHandler) writeServiceError(w http.ResponseWriter, err error, message string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.WithError(err).Error(message)
		writeError(w, status, "internal server error", h.logger)
		return
	}
	writeError(w, status, err.Error(), h.logger)
}

// listOptionsFromQuery собирает опции выборки из query-параметров;
// отсутствующие параметры остаются нулевыми и заменятся значениями
// по умолчанию при нормализации.
func listOptionsFromQuery(r *http.Request) (domain.OrderListOptions, error) {
	var opts domain.OrderListOptions

	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return domain.OrderListOptions{}, errors.New("page must be an integer")
		}
		opts.Page = page
	}
	if v := q.Get("per_page"); v != "" {
		perPage, err := strconv.Atoi(v)
		if err != nil {
			return domain.OrderListOptions{}, errors.New("per_page must be an integer")
		}
		opts.PerPage = perPage
	}
	opts.Sort = q.Get("sort")
	opts.Order = domain.SortOrder(q.Get("order"))
	opts.CustomerID = q.Get("customer_id")

	return opts, nil
}
