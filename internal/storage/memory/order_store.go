package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/northwind/internal/domain"
)

// Справочные сущности, достаточные для обогащения выборок.
type customer struct {
	CompanyName string
}

type employee struct {
	FirstName string
	LastName  string
}

type product struct {
	Name string
}

// Store — in-memory реализация OrderRepository и OrderQuery для локальной
// разработки и тестов. Повторяет семантику PostgreSQL-реализации: проверки
// ссылочной целостности, атомарность пакетной записи, выдача идентификаторов.
type Store struct {
	mu          sync.RWMutex
	nextOrderID int64
	orders      map[int64]domain.Order
	details     map[int64][]domain.OrderDetail
	customers   map[string]customer
	employees   map[int64]employee
	products    map[int64]product
}

// NewStore возвращает пустое in-memory хранилище.
func NewStore() *Store {
	return &Store{
		orders:    make(map[int64]domain.Order),
		details:   make(map[int64][]domain.OrderDetail),
		customers: make(map[string]customer),
		employees: make(map[int64]employee),
		products:  make(map[int64]product),
	}
}

// SeedCustomer регистрирует клиента в справочнике.
func (s *Store) SeedCustomer(id, companyName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[id] = customer{CompanyName: companyName}
}

// SeedEmployee регистрирует сотрудника в справочнике.
func (s *Store) SeedEmployee(id int64, firstName, lastName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[id] = employee{FirstName: firstName, LastName: lastName}
}

// SeedProduct регистрирует товар в справочнике.
func (s *Store) SeedProduct(id int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[id] = product{Name: name}
}

func (s *Store) GetOrder(_ context.Context, id int64) (domain.OrderInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return domain.OrderInfo{}, domain.ErrOrderNotFound
	}

	return s.enrichOrder(order), nil
}

func (s *Store) GetOrderDetails(_ context.Context, id int64) ([]domain.OrderDetailInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.enrichDetails(id), nil
}

func (s *Store) GetOrderWithDetails(ctx context.Context, id int64) (domain.OrderWithDetails, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return domain.OrderWithDetails{}, err
	}
	details, err := s.GetOrderDetails(ctx, id)
	if err != nil {
		return domain.OrderWithDetails{}, err
	}
	return domain.OrderWithDetails{Order: order, Details: details}, nil
}

// CreateOrder проверяет весь пакет до первой записи, поэтому частично
// сохранённых заказов не бывает: либо заказ с позициями, либо ничего.
func (s *Store) CreateOrder(_ context.Context, order domain.Order, details []domain.OrderDetail) (int64, error) {
	for _, d := range details {
		if errs := d.ValidateInvariants(); len(errs) > 0 {
			return 0, errs[0]
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOrderRefs(order); err != nil {
		return 0, err
	}
	seen := make(map[int64]struct{}, len(details))
	for _, d := range details {
		if _, ok := s.products[d.ProductID]; !ok {
			return 0, domain.ErrInvalidReference
		}
		if _, dup := seen[d.ProductID]; dup {
			return 0, domain.ErrDuplicateDetail
		}
		seen[d.ProductID] = struct{}{}
	}

	s.nextOrderID++
	newID := s.nextOrderID
	order.ID = newID
	s.orders[newID] = order

	stored := make([]domain.OrderDetail, 0, len(details))
	for _, d := range details {
		d.ID = domain.DetailID(newID, d.ProductID)
		d.OrderID = newID
		stored = append(stored, d)
	}
	s.details[newID] = stored

	return newID, nil
}

// UpdateOrder применяет patch и обновления позиций как один пакет: любые
// проверки выполняются до первой мутации.
func (s *Store) UpdateOrder(_ context.Context, id int64, patch domain.OrderPatch, details []domain.OrderDetail) error {
	if patch.IsEmpty() {
		return domain.ErrEmptyOrderPatch
	}
	for _, d := range details {
		if errs := d.ValidateInvariants(); len(errs) > 0 {
			return errs[0]
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}

	patched := order
	patch.Apply(&patched)
	if err := s.checkOrderRefs(patched); err != nil {
		return err
	}

	current := s.details[id]
	updated := make([]domain.OrderDetail, len(current))
	copy(updated, current)
	for _, d := range details {
		idx := -1
		for i, cur := range updated {
			if cur.ID == d.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("detail %s: %w", d.ID, domain.ErrOrderUpdateFailed)
		}
		updated[idx].UnitPrice = d.UnitPrice
		updated[idx].Quantity = d.Quantity
		updated[idx].Discount = d.Discount
	}

	s.orders[id] = patched
	s.details[id] = updated
	return nil
}

// DeleteOrder удаляет заказ вместе с позициями.
func (s *Store) DeleteOrder(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(s.orders, id)
	delete(s.details, id)
	return nil
}

func (s *Store) ListOrders(_ context.Context, opts domain.OrderListOptions) ([]domain.OrderListItem, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.OrderListItem, 0, len(s.orders))
	for _, order := range s.orders {
		if opts.CustomerID != "" {
			if order.CustomerID == nil || *order.CustomerID != opts.CustomerID {
				continue
			}
		}
		item := domain.OrderListItem{Order: order}
		if order.CustomerID != nil {
			if c, ok := s.customers[*order.CustomerID]; ok {
				company := c.CompanyName
				item.CustomerCompany = &company
			}
		}
		if order.EmployeeID != nil {
			if e, ok := s.employees[*order.EmployeeID]; ok {
				last := e.LastName
				item.EmployeeLastName = &last
			}
		}
		items = append(items, item)
	}

	sortItems(items, opts.Sort, opts.Order)

	offset := opts.Offset()
	if offset >= len(items) {
		return []domain.OrderListItem{}, nil
	}
	end := offset + opts.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end], nil
}

func (s *Store) ListCustomerOrders(ctx context.Context, customerID string, opts domain.OrderListOptions) ([]domain.OrderListItem, error) {
	opts.CustomerID = customerID
	if opts.Sort == "" {
		opts.Sort = domain.SortShippedDate
	}
	return s.ListOrders(ctx, opts)
}

func (s *Store) checkOrderRefs(order domain.Order) error {
	if order.CustomerID != nil {
		if _, ok := s.customers[*order.CustomerID]; !ok {
			return domain.ErrInvalidReference
		}
	}
	if order.EmployeeID != nil {
		if _, ok := s.employees[*order.EmployeeID]; !ok {
			return domain.ErrInvalidReference
		}
	}
	return nil
}

func (s *Store) enrichOrder(order domain.Order) domain.OrderInfo {
	info := domain.OrderInfo{Order: order}
	if order.CustomerID != nil {
		if c, ok := s.customers[*order.CustomerID]; ok {
			company := c.CompanyName
			info.CustomerName = &company
		}
	}
	if order.EmployeeID != nil {
		if e, ok := s.employees[*order.EmployeeID]; ok {
			full := e.FirstName + " " + e.LastName
			info.EmployeeName = &full
		}
	}
	info.Subtotal = domain.SubtotalOf(s.details[order.ID])
	return info
}

func (s *Store) enrichDetails(orderID int64) []domain.OrderDetailInfo {
	details := s.details[orderID]
	infos := make([]domain.OrderDetailInfo, 0, len(details))
	for _, d := range details {
		info := domain.OrderDetailInfo{OrderDetail: d, LineTotal: d.LinePrice()}
		if p, ok := s.products[d.ProductID]; ok {
			name := p.Name
			info.ProductName = &name
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ProductID < infos[j].ProductID })
	return infos
}

// sortItems упорядочивает выборку по провалидированному ключу.
// nil сортируются последними при asc, как NULLS LAST в PostgreSQL.
func sortItems(items []domain.OrderListItem, key string, order domain.SortOrder) {
	sort.SliceStable(items, func(i, j int) bool {
		c := compareItems(items[i], items[j], key)
		if c == 0 {
			// Стабильный полный порядок для детерминированной пагинации.
			c = compareInt64(items[i].ID, items[j].ID)
		}
		if order == domain.SortDesc {
			return c > 0
		}
		return c < 0
	})
}

func compareItems(a, b domain.OrderListItem, key string) int {
	switch key {
	case "id":
		return compareInt64(a.ID, b.ID)
	case "customerid":
		return compareStringPtr(a.CustomerID, b.CustomerID)
	case "employeeid":
		return compareInt64Ptr(a.EmployeeID, b.EmployeeID)
	case "orderdate":
		return compareTimePtr(a.OrderDate, b.OrderDate)
	case "requireddate":
		return compareTime(a.RequiredDate, b.RequiredDate)
	case "shippeddate":
		return compareTimePtr(a.ShippedDate, b.ShippedDate)
	case "freight":
		return a.Freight.Cmp(b.Freight)
	case "shipname":
		return strings.Compare(a.ShipName, b.ShipName)
	case "shipcity":
		return strings.Compare(a.ShipCity, b.ShipCity)
	case "shipcountry":
		return strings.Compare(a.ShipCountry, b.ShipCountry)
	case "companyname":
		return compareStringPtr(a.CustomerCompany, b.CustomerCompany)
	case "lastname":
		return compareStringPtr(a.EmployeeLastName, b.EmployeeLastName)
	default:
		return compareInt64(a.ID, b.ID)
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareInt64Ptr(a, b *int64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return compareInt64(*a, *b)
	}
}

func compareStringPtr(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return strings.Compare(*a, *b)
	}
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func compareTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return compareTime(*a, *b)
	}
}

var (
	_ domain.OrderRepository = (*Store)(nil)
	_ domain.OrderQuery      = (*Store)(nil)
)
