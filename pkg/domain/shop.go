package domain

import "time"

// User is a registered chat user.
type User struct {
	ID        int64     `json:"id"` // chat platform user id
	Username  string    `json:"username,omitempty"`
	FirstName string    `json:"first_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Category groups products and subcategories.
type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

// Product is a sellable item. Price is in minor units.
type Product struct {
	ID          int64  `json:"id"`
	CategoryID  int64  `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Image       string `json:"image,omitempty"`
	Stock       int    `json:"stock"`
}

// CartLine is one product in a user's cart.
type CartLine struct {
	ID       int64   `json:"id"`
	UserID   int64   `json:"user_id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Total returns the line total in minor units.
func (l CartLine) Total() int64 {
	return l.Product.Price * int64(l.Quantity)
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPendingPayment OrderStatus = "pending_payment"
	OrderPaid           OrderStatus = "paid"
	OrderProcessing     OrderStatus = "processing"
	OrderShipped        OrderStatus = "shipped"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

// Order is a paid checkout.
type Order struct {
	ID              int64       `json:"id"`
	UserID          int64       `json:"user_id"`
	DeliveryAddress string      `json:"delivery_address"` // JSON document
	Total           int64       `json:"total"`
	Status          OrderStatus `json:"status"`
	PaymentDetails  string      `json:"payment_details,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	Items           []OrderItem `json:"items,omitempty"`
}

// OrderItem snapshots a product at purchase time.
type OrderItem struct {
	ProductName     string `json:"product_name"`
	PriceAtPurchase int64  `json:"price_at_purchase"`
	Quantity        int    `json:"quantity"`
}

// FAQEntry is a question and its answer.
type FAQEntry struct {
	ID       int64  `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Channel is a chat channel users may be required to join.
type Channel struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ChannelID int64  `json:"channel_id"`
	Link      string `json:"link,omitempty"`
	Active    bool   `json:"active"`
}
