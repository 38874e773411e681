package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

type PaymentStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"

	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// Order is the sales order header. Customer name, phone, address and city are
// copied onto the header so list screens never join against customers.
type Order struct {
	ID            int64         `json:"id" db:"id"`
	CustomerID    int64         `json:"customer_id" db:"customer_id"`
	AssignedTo    int64         `json:"assigned_to" db:"assigned_to"`
	CreatedBy     int64         `json:"created_by" db:"created_by"`
	IssueDate     time.Time     `json:"issue_date" db:"issue_date"`
	DueDate       time.Time     `json:"due_date" db:"due_date"`
	Status        OrderStatus   `json:"status" db:"status"`
	PaymentStatus PaymentStatus `json:"payment_status" db:"payment_status"`
	Currency      string        `json:"currency" db:"currency"`
	Channel       string        `json:"channel" db:"channel"`
	Notes         string        `json:"notes" db:"notes"`
	CustomerName  string        `json:"customer_name" db:"customer_name"`
	CustomerPhone string        `json:"customer_phone" db:"customer_phone"`
	Address       string        `json:"address" db:"address"`
	CityName      string        `json:"city_name" db:"city_name"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	Items         []OrderItem   `json:"items,omitempty" db:"-"`
}

// OrderItem is a single order line. Quantity is always 1 for imported leads.
type OrderItem struct {
	ID            int64           `json:"id" db:"id"`
	OrderID       int64           `json:"order_id" db:"order_id"`
	ProductID     int64           `json:"product_id" db:"product_id"`
	Quantity      int             `json:"quantity" db:"quantity"`
	Price         decimal.Decimal `json:"price" db:"price"`
	Discount      decimal.Decimal `json:"discount" db:"discount"`
	Total         decimal.Decimal `json:"total" db:"total"`
	Status        OrderStatus     `json:"status" db:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status" db:"payment_status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}
