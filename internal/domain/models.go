package domain

import "time"

type Store struct {
	ID          string  `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Category    string  `db:"category" json:"category"`
	Description string  `db:"description" json:"description,omitempty"`
	ImageURL    string  `db:"image_url" json:"imageUrl,omitempty"`
	Address     string  `db:"address" json:"address"`
	Pincode     string  `db:"pincode" json:"pincode"`
	Lat         float64 `db:"lat" json:"lat"`
	Lng         float64 `db:"lng" json:"lng"`
	Rating      float64 `db:"rating" json:"rating"`
	Popularity  int     `db:"popularity" json:"-"`
	Delivery    bool    `db:"delivery" json:"delivery"`
	Pickup      bool    `db:"pickup" json:"pickup"`
	Active      bool    `db:"active" json:"-"`
	DistanceKm  float64 `db:"-" json:"distanceKm,omitempty"`
}

type Product struct {
	ID          string  `db:"id" json:"id"`
	StoreID     string  `db:"store_id" json:"storeId"`
	Category    string  `db:"category" json:"category"`
	Name        string  `db:"name" json:"name"`
	Description string  `db:"description" json:"description,omitempty"`
	Price       float64 `db:"price" json:"price"`
	ImageURL    string  `db:"image_url" json:"imageUrl,omitempty"`
	Rating      float64 `db:"rating" json:"rating,omitempty"`
	Stock       int     `db:"stock" json:"-"`
	Active      bool    `db:"active" json:"-"`
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty,omitempty"`
}

const (
	FulfillmentDelivery = "delivery"
	FulfillmentPickup   = "pickup"
)

type CartLine struct {
	ProductID string  `db:"product_id" json:"productId"`
	Name      string  `db:"name" json:"name"`
	ImageURL  string  `db:"image_url" json:"imageUrl,omitempty"`
	Quantity  int     `db:"qty" json:"quantity"`
	UnitPrice float64 `db:"unit_price" json:"unitPrice"`
	LinePrice float64 `db:"line_price" json:"linePrice"`
}

type CartSummary struct {
	Subtotal         float64 `json:"subtotal"`
	ItemDiscount     float64 `json:"itemDiscount"`
	CouponDiscount   float64 `json:"couponDiscount"`
	DeliveryFee      float64 `json:"deliveryFee"`
	DeliveryDiscount float64 `json:"deliveryDiscount"`
	Total            float64 `json:"total"`
	CouponCode       string  `json:"couponCode,omitempty"`
}

type Cart struct {
	StoreID     string      `json:"storeId"`
	Lines       []CartLine  `json:"lines"`
	Summary     CartSummary `json:"summary"`
	Fulfillment string      `json:"fulfillment"`
	AddressID   string      `json:"addressId,omitempty"`
}

// ItemCount sums quantities across lines.
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Clone returns a deep copy so callers can't mutate a container's cache.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := *c
	out.Lines = append([]CartLine(nil), c.Lines...)
	return &out
}

const (
	CouponPercent      = "percent"
	CouponFlat         = "flat"
	CouponFreeDelivery = "free_delivery"
)

type Coupon struct {
	Code        string  `db:"code" json:"code"`
	Description string  `db:"description" json:"description"`
	Kind        string  `db:"kind" json:"kind"`
	Value       float64 `db:"value" json:"value"`
	MaxDiscount float64 `db:"max_discount" json:"maxDiscount,omitempty"`
	MinSubtotal float64 `db:"min_subtotal" json:"minSubtotal,omitempty"`
	Rule        string  `db:"rule" json:"-"`
	StoreID     string  `db:"store_id" json:"storeId,omitempty"`
	Active      bool    `db:"active" json:"-"`
}

const (
	SearchKindStore   = "store"
	SearchKindProduct = "product"
)

type SearchItem struct {
	ID        string   `json:"id"`
	Kind      string   `json:"kind"`
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	ImageURL  string   `json:"imageUrl,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	Rating    *float64 `json:"rating,omitempty"`
	StoreID   string   `json:"storeId,omitempty"`
	StoreName string   `json:"storeName,omitempty"`
}

type FavRoute struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"storeId"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	AddressHome  = "home"
	AddressWork  = "work"
	AddressOther = "other"
)

type Address struct {
	ID        string  `db:"id" json:"id"`
	UserID    string  `db:"user_id" json:"-"`
	Type      string  `db:"type" json:"type"`
	House     string  `db:"house" json:"house"`
	Street    string  `db:"street" json:"street"`
	City      string  `db:"city" json:"city"`
	State     string  `db:"state" json:"state"`
	Pincode   string  `db:"pincode" json:"pincode"`
	Lat       float64 `db:"lat" json:"lat,omitempty"`
	Lng       float64 `db:"lng" json:"lng,omitempty"`
	IsDefault bool    `db:"is_default" json:"isDefault"`
}

const (
	LocationCurrent = "current"
	LocationSearch  = "search"
	LocationSaved   = "saved"
	LocationManual  = "manual"
)

type Location struct {
	Pincode     string    `json:"pincode"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	Country     string    `json:"country"`
	FullAddress string    `json:"fullAddress"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Source      string    `json:"source"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type User struct {
	ID    string `db:"id" json:"id"`
	Phone string `db:"phone" json:"phone"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email,omitempty"`
}

const (
	OrderPendingPayment = "PENDING_PAYMENT"
	OrderPlaced         = "PLACED"
	OrderPaymentFailed  = "PAYMENT_FAILED"
	OrderCanceled       = "CANCELED"
)

type Order struct {
	ID             string      `json:"id"`
	StoreID        string      `json:"storeId"`
	StoreName      string      `json:"storeName,omitempty"`
	UserID         string      `json:"-"`
	Fulfillment    string      `json:"fulfillment"`
	AddressID      string      `json:"addressId,omitempty"`
	Lines          []CartLine  `json:"lines"`
	Summary        CartSummary `json:"summary"`
	Status         string      `json:"status"`
	Currency       string      `json:"currency"`
	PaymentOrderID string      `json:"paymentOrderId,omitempty"`
	PaymentID      string      `json:"paymentId,omitempty"`
	CreatedAt      string      `json:"createdAt"`
}

type Review struct {
	ID        string `db:"id" json:"id"`
	StoreID   string `db:"store_id" json:"storeId"`
	UserID    string `db:"user_id" json:"-"`
	UserName  string `db:"user_name" json:"userName"`
	Rating    int    `db:"rating" json:"rating"`
	Comment   string `db:"comment" json:"comment"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}
