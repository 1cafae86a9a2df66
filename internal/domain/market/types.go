// Package market contains the read-only projections of backend state that the
// client works with: profiles, transaction history, catalog and merchandise.
//
// Values are created from a successful fetch and replaced wholesale on the
// next one. Nothing in this package mutates a projection in place.
package market

import (
	"sort"
	"time"
)

// DateLayout is the date format the backend accepts in range filters.
const DateLayout = "2006-01-02"

// StatusCompleted is the delivery status the backend uses for finished tasks.
const StatusCompleted = "Selesai"

// DateRange filters history endpoints. A zero Start or End leaves that side
// open; a zero range means all time.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// IsAllTime returns true when neither side of the range is set.
func (r DateRange) IsAllTime() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// StartParam returns Start formatted for a query string, or "" when unset.
func (r DateRange) StartParam() string {
	if r.Start.IsZero() {
		return ""
	}
	return r.Start.Format(DateLayout)
}

// EndParam returns End formatted for a query string, or "" when unset.
func (r DateRange) EndParam() string {
	if r.End.IsZero() {
		return ""
	}
	return r.End.Format(DateLayout)
}

// UserProfile is the generic profile returned by /user/profile.
type UserProfile struct {
	ID     int    `json:"id" yaml:"id" validate:"required"`
	Name   string `json:"name" yaml:"name"`
	Email  string `json:"email" yaml:"email"`
	Points int    `json:"points" yaml:"points"`
}

// BuyerProfile is a pembeli's profile. Points are loyalty points used to
// claim merchandise.
type BuyerProfile struct {
	ID     int    `json:"id" yaml:"id" validate:"required"`
	Name   string `json:"name" yaml:"name"`
	Email  string `json:"email" yaml:"email"`
	Points int    `json:"points" yaml:"points"`
}

// ConsignorProfile is a penitip's profile.
type ConsignorProfile struct {
	ID      int    `json:"id" yaml:"id" validate:"required"`
	Name    string `json:"name" yaml:"name"`
	Email   string `json:"email" yaml:"email"`
	Balance int    `json:"balance" yaml:"balance"`
	Points  int    `json:"points" yaml:"points"`
}

// StaffProfile is a pegawai's profile, shared by couriers and hunters.
type StaffProfile struct {
	ID         int    `json:"id" yaml:"id" validate:"required"`
	Name       string `json:"name" yaml:"name"`
	Email      string `json:"email" yaml:"email"`
	Phone      string `json:"phone" yaml:"phone"`
	Commission int    `json:"commission" yaml:"commission"`
	Position   string `json:"position" yaml:"position"`
	BirthDate  string `json:"birth_date,omitempty" yaml:"birth_date,omitempty"`
	Photo      string `json:"photo,omitempty" yaml:"photo,omitempty"`
}

// LineItem is one row inside an order or transaction.
type LineItem struct {
	ItemID    int    `json:"item_id" yaml:"item_id"`
	Name      string `json:"name" yaml:"name"`
	Quantity  int    `json:"quantity" yaml:"quantity"`
	UnitPrice int    `json:"unit_price" yaml:"unit_price"`
	Subtotal  int    `json:"subtotal" yaml:"subtotal"`
}

// Order is one entry of a buyer's order history.
type Order struct {
	ID        int       `json:"id" yaml:"id" validate:"required"`
	Code      string    `json:"code" yaml:"code"`
	Date      time.Time `json:"date" yaml:"date"`
	Status    string    `json:"status" yaml:"status"`
	Total     int       `json:"total" yaml:"total"`
	ItemCount int       `json:"item_count" yaml:"item_count"`
}

// OrderDetail is a single buyer order with its line items.
type OrderDetail struct {
	Order          `yaml:",inline"`
	Address        string     `json:"address,omitempty" yaml:"address,omitempty"`
	PaymentMethod  string     `json:"payment_method,omitempty" yaml:"payment_method,omitempty"`
	DeliveryMethod string     `json:"delivery_method,omitempty" yaml:"delivery_method,omitempty"`
	ProofStatus    string     `json:"proof_status,omitempty" yaml:"proof_status,omitempty"`
	PointsEarned   int        `json:"points_earned" yaml:"points_earned"`
	PointsUsed     int        `json:"points_used" yaml:"points_used"`
	Items          []LineItem `json:"items" yaml:"items"`
}

// Transaction is one entry of /user/transactions.
type Transaction struct {
	ID            int        `json:"id" yaml:"id" validate:"required"`
	Date          time.Time  `json:"date" yaml:"date"`
	Total         int        `json:"total" yaml:"total"`
	PaymentStatus string     `json:"payment_status" yaml:"payment_status"`
	Items         []LineItem `json:"items" yaml:"items"`
}

// Consignment is one entry of a consignor's transaction history.
type Consignment struct {
	ID       int       `json:"id" yaml:"id" validate:"required"`
	ItemName string    `json:"item_name" yaml:"item_name"`
	Date     time.Time `json:"date" yaml:"date"`
	Status   string    `json:"status" yaml:"status"`
	Price    int       `json:"price" yaml:"price"`
}

// ConsignedItem is one barang a consignor handed over.
type ConsignedItem struct {
	ID        int       `json:"id" yaml:"id" validate:"required"`
	Name      string    `json:"name" yaml:"name"`
	Category  string    `json:"category" yaml:"category"`
	Price     int       `json:"price" yaml:"price"`
	EnteredAt time.Time `json:"entered_at" yaml:"entered_at"`
	LeftAt    time.Time `json:"left_at,omitempty" yaml:"left_at,omitempty"`
	Status    string    `json:"status" yaml:"status"`
}

// DeliveryTask is a courier's delivery assignment.
type DeliveryTask struct {
	ID             int       `json:"id" yaml:"id" validate:"required"`
	Status         string    `json:"status" yaml:"status"`
	DeliveryMethod string    `json:"delivery_method" yaml:"delivery_method"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
}

// Terminal reports whether the task can no longer change status.
func (t DeliveryTask) Terminal() bool {
	return t.Status == StatusCompleted
}

// Commission is one commission entry earned by a hunter.
type Commission struct {
	ID            int       `json:"id" yaml:"id" validate:"required"`
	Kind          string    `json:"kind" yaml:"kind"`
	Amount        int       `json:"amount" yaml:"amount"`
	TransactionID int       `json:"transaction_id" yaml:"transaction_id"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
	ItemStatus    string    `json:"item_status" yaml:"item_status"`
}

// Product is a listed used good.
type Product struct {
	ID           int      `json:"id" yaml:"id" validate:"required"`
	Name         string   `json:"name" yaml:"name"`
	Price        string   `json:"price" yaml:"price"`
	Category     string   `json:"category" yaml:"category"`
	Status       string   `json:"status,omitempty" yaml:"status,omitempty"`
	Image        string   `json:"image,omitempty" yaml:"image,omitempty"`
	Images       []string `json:"images,omitempty" yaml:"images,omitempty"`
	Warranty     string   `json:"warranty,omitempty" yaml:"warranty,omitempty"`
	Weight       string   `json:"weight,omitempty" yaml:"weight,omitempty"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	SellerName   string   `json:"seller_name,omitempty" yaml:"seller_name,omitempty"`
	SellerSince  string   `json:"seller_since,omitempty" yaml:"seller_since,omitempty"`
	SellerRating float64  `json:"seller_rating" yaml:"seller_rating"`
	Rating       float64  `json:"rating" yaml:"rating"`
}

// Discussion is a buyer question on a product, optionally answered.
type Discussion struct {
	ID        int       `json:"id" yaml:"id" validate:"required"`
	Question  string    `json:"question" yaml:"question"`
	Answer    string    `json:"answer,omitempty" yaml:"answer,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Author    string    `json:"author" yaml:"author"`
}

// TopSeller is a consignor holding the Top Seller badge for a period.
type TopSeller struct {
	ConsignorID   int    `json:"consignor_id" yaml:"consignor_id" validate:"required"`
	ConsignorName string `json:"consignor_name" yaml:"consignor_name"`
	From          string `json:"from" yaml:"from"`
	To            string `json:"to" yaml:"to"`
}

// Notification is an in-app notification.
type Notification struct {
	ID        int       `json:"id" yaml:"id" validate:"required"`
	Title     string    `json:"title" yaml:"title"`
	Message   string    `json:"message" yaml:"message"`
	Read      bool      `json:"read" yaml:"read"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	ProductID int       `json:"product_id,omitempty" yaml:"product_id,omitempty"`
}

// Merchandise is a reward that can be claimed with loyalty points.
type Merchandise struct {
	ID        int    `json:"id" yaml:"id" validate:"required"`
	Name      string `json:"name" yaml:"name"`
	PointCost int    `json:"point_cost" yaml:"point_cost"`
	Stock     int    `json:"stock" yaml:"stock"`
	Image     string `json:"image,omitempty" yaml:"image,omitempty"`
}

// ClaimRecord is a merchandise claim accepted by the backend.
type ClaimRecord struct {
	ID            int       `json:"id" yaml:"id" validate:"required"`
	MerchandiseID int       `json:"merchandise_id" yaml:"merchandise_id"`
	ActorID       int       `json:"actor_id" yaml:"actor_id"`
	ClaimedAt     time.Time `json:"claimed_at" yaml:"claimed_at"`
	Status        string    `json:"status" yaml:"status"`
	RemainingPts  *int      `json:"remaining_points,omitempty" yaml:"remaining_points,omitempty"`
}

// NewestFirst sorts records by the timestamp returned from at, newest first.
// Records with equal timestamps keep their backend order.
func NewestFirst[T any](records []T, at func(T) time.Time) {
	sort.SliceStable(records, func(i, j int) bool {
		return at(records[i]).After(at(records[j]))
	})
}
