package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/northwind/internal/domain"
)

type orderResponse struct {
	ID             int64           `json:"id"`
	CustomerID     *string         `json:"customer_id"`
	EmployeeID     *int64          `json:"employee_id"`
	OrderDate      *time.Time      `json:"order_date"`
	RequiredDate   time.Time       `json:"required_date"`
	ShippedDate    *time.Time      `json:"shipped_date"`
	Freight        decimal.Decimal `json:"freight"`
	ShipName       string          `json:"ship_name"`
	ShipAddress    string          `json:"ship_address"`
	ShipCity       string          `json:"ship_city"`
	ShipRegion     string          `json:"ship_region"`
	ShipPostalCode string          `json:"ship_postal_code"`
	ShipCountry    string          `json:"ship_country"`
	CustomerName   *string         `json:"customer_name"`
	EmployeeName   *string         `json:"employee_name"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type detailResponse struct {
	ID          string          `json:"id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int32           `json:"quantity"`
	Discount    float64         `json:"discount"`
	ProductName *string         `json:"product_name"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type orderWithDetailsResponse struct {
	Order   orderResponse    `json:"order"`
	Details []detailResponse `json:"details"`
}

type listItemResponse struct {
	ID               int64           `json:"id"`
	CustomerID       *string         `json:"customer_id"`
	EmployeeID       *int64          `json:"employee_id"`
	OrderDate        *time.Time      `json:"order_date"`
	RequiredDate     time.Time       `json:"required_date"`
	ShippedDate      *time.Time      `json:"shipped_date"`
	Freight          decimal.Decimal `json:"freight"`
	ShipName         string          `json:"ship_name"`
	ShipCity         string          `json:"ship_city"`
	ShipCountry      string          `json:"ship_country"`
	CustomerCompany  *string         `json:"customer_company"`
	EmployeeLastName *string         `json:"employee_last_name"`
}

func toOrderResponse(info domain.OrderInfo) orderResponse {
	return orderResponse{
		ID:             info.ID,
		CustomerID:     info.CustomerID,
		EmployeeID:     info.EmployeeID,
		OrderDate:      info.OrderDate,
		RequiredDate:   info.RequiredDate,
		ShippedDate:    info.ShippedDate,
		Freight:        info.Freight,
		ShipName:       info.ShipName,
		ShipAddress:    info.ShipAddress,
		ShipCity:       info.ShipCity,
		ShipRegion:     info.ShipRegion,
		ShipPostalCode: info.ShipPostalCode,
		ShipCountry:    info.ShipCountry,
		CustomerName:   info.CustomerName,
		EmployeeName:   info.EmployeeName,
		Subtotal:       info.Subtotal,
	}
}

func toDetailResponses(details []domain.OrderDetailInfo) []detailResponse {
	out := make([]detailResponse, 0, len(details))
	for _, d := range details {
		out = append(out, detailResponse{
			ID:          d.ID,
			OrderID:     d.OrderID,
			ProductID:   d.ProductID,
			UnitPrice:   d.UnitPrice,
			Quantity:    d.Quantity,
			Discount:    d.Discount,
			ProductName: d.ProductName,
			LineTotal:   d.LineTotal,
		})
	}
	return out
}

func toListItemResponses(items []domain.OrderListItem) []listItemResponse {
	out := make([]listItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, listItemResponse{
			ID:               item.ID,
			CustomerID:       item.CustomerID,
			EmployeeID:       item.EmployeeID,
			OrderDate:        item.OrderDate,
			RequiredDate:     item.RequiredDate,
			ShippedDate:      item.ShippedDate,
			Freight:          item.Freight,
			ShipName:         item.ShipName,
			ShipCity:         item.ShipCity,
			ShipCountry:      item.ShipCountry,
			CustomerCompany:  item.CustomerCompany,
			EmployeeLastName: item.EmployeeLastName,
		})
	}
	return out
}
