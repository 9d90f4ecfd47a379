package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Order — корневая сущность агрегата заказа. Идентификатор выдаёт
// хранилище при создании, после этого он неизменяем.
type Order struct {
	ID int64
	// CustomerID может быть nil: заказ без привязки к клиенту допустим,
	// но непустая ссылка обязана указывать на существующего клиента.
	CustomerID *string
	EmployeeID *int64
	OrderDate  *time.Time
	// RequiredDate — срок, к которому заказ должен быть исполнен.
	RequiredDate time.Time
	// ShippedDate остаётся nil до фактической отгрузки.
	ShippedDate    *time.Time
	Freight        decimal.Decimal
	ShipName       string
	ShipAddress    string
	ShipCity       string
	ShipRegion     string
	ShipPostalCode string
	ShipCountry    string
}

// OrderDetail представляет одну товарную позицию заказа.
type OrderDetail struct {
	// ID — составной ключ вида "{orderID}/{productID}", исключающий
	// дубль одного товара в одном заказе.
	ID        string
	OrderID   int64
	ProductID int64
	UnitPrice decimal.Decimal
	Quantity  int32
	// Discount — доля скидки в диапазоне [0, 1].
	Discount float64
}

// DetailID собирает составной ключ позиции из идентификаторов заказа и товара.
func DetailID(orderID, productID int64) string {
	return strconv.FormatInt(orderID, 10) + "/" + strconv.FormatInt(productID, 10)
}

// LinePrice возвращает стоимость позиции без учёта скидки: unit_price * quantity.
func (d OrderDetail) LinePrice() decimal.Decimal {
	return d.UnitPrice.Mul(decimal.NewFromInt(int64(d.Quantity)))
}

// Subtotal возвращает стоимость позиции с учётом скидки:
// unit_price * quantity * (1 - discount).
func (d OrderDetail) Subtotal() decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(d.Discount))
	return d.LinePrice().Mul(factor)
}

// ValidateInvariants проверяет базовые инварианты позиции и возвращает список замечаний.
func (d OrderDetail) ValidateInvariants() []error {
	var errs []error

	if d.ProductID <= 0 {
		errs = append(errs, ErrDetailProductRequired)
	}
	if d.Quantity <= 0 {
		errs = append(errs, ErrDetailQtyInvalid)
	}
	if d.UnitPrice.IsNegative() {
		errs = append(errs, ErrDetailPriceInvalid)
	}
	if d.Discount < 0 || d.Discount > 1 {
		errs = append(errs, ErrDetailDiscountInvalid)
	}

	return errs
}

// OrderInfo — заказ, обогащённый данными связанных сущностей для чтения.
// Поля-указатели остаются nil, когда LEFT JOIN не нашёл связанной строки.
type OrderInfo struct {
	Order
	CustomerName *string
	EmployeeName *string
	// Subtotal — сумма unit_price*quantity*(1-discount) по всем позициям;
	// ноль, если позиций нет.
	Subtotal decimal.Decimal
}

// OrderDetailInfo — позиция заказа, обогащённая названием товара
// и рассчитанной стоимостью строки (unit_price * quantity).
type OrderDetailInfo struct {
	OrderDetail
	ProductName *string
	LineTotal   decimal.Decimal
}

// OrderWithDetails объединяет результат двух чтений. Это составная выборка,
// а не снимок: между чтением шапки и чтением позиций возможны конкурентные записи.
type OrderWithDetails struct {
	Order   OrderInfo
	Details []OrderDetailInfo
}

// OrderPatch описывает частичное обновление изменяемых полей заказа.
// Нулевой указатель означает "поле не трогать"; идентификатор заказа
// через patch не меняется.
type OrderPatch struct {
	CustomerID     *string
	EmployeeID     *int64
	OrderDate      *time.Time
	RequiredDate   *time.Time
	ShippedDate    *time.Time
	Freight        *decimal.Decimal
	ShipName       *string
	ShipAddress    *string
	ShipCity       *string
	ShipRegion     *string
	ShipPostalCode *string
	ShipCountry    *string
}

// IsEmpty сообщает, что patch не содержит ни одного поля. Пустой patch
// отклоняется до выполнения каких-либо SQL-операторов.
func (p OrderPatch) IsEmpty() bool {
	return p.CustomerID == nil &&
		p.EmployeeID == nil &&
		p.OrderDate == nil &&
		p.RequiredDate == nil &&
		p.ShippedDate == nil &&
		p.Freight == nil &&
		p.ShipName == nil &&
		p.ShipAddress == nil &&
		p.ShipCity == nil &&
		p.ShipRegion == nil &&
		p.ShipPostalCode == nil &&
		p.ShipCountry == nil
}

// Apply накладывает заполненные поля patch на заказ.
func (p OrderPatch) Apply(o *Order) {
	if p.CustomerID != nil {
		o.CustomerID = p.CustomerID
	}
	if p.EmployeeID != nil {
		o.EmployeeID = p.EmployeeID
	}
	if p.OrderDate != nil {
		o.OrderDate = p.OrderDate
	}
	if p.RequiredDate != nil {
		o.RequiredDate = *p.RequiredDate
	}
	if p.ShippedDate != nil {
		o.ShippedDate = p.ShippedDate
	}
	if p.Freight != nil {
		o.Freight = *p.Freight
	}
	if p.ShipName != nil {
		o.ShipName = *p.ShipName
	}
	if p.ShipAddress != nil {
		o.ShipAddress = *p.ShipAddress
	}
	if p.ShipCity != nil {
		o.ShipCity = *p.ShipCity
	}
	if p.ShipRegion != nil {
		o.ShipRegion = *p.ShipRegion
	}
	if p.ShipPostalCode != nil {
		o.ShipPostalCode = *p.ShipPostalCode
	}
	if p.ShipCountry != nil {
		o.ShipCountry = *p.ShipCountry
	}
}

// SubtotalOf суммирует стоимость позиций с учётом скидок.
func SubtotalOf(details []OrderDetail) decimal.Decimal {
	total := decimal.Zero
	for _, d := range details {
		total = total.Add(d.Subtotal())
	}
	return total
}
