// Package outbound defines the outbound port interfaces the application
// services use to reach the marketplace backend. The adapters in
// internal/adapter/outbound/backend implement them.
package outbound

import (
	"context"

	"github.com/reusemart/reusemart-mobile/internal/domain/market"
	"github.com/reusemart/reusemart-mobile/internal/domain/session"
)

// AuthAPI exchanges credentials for a session token.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (session.LoginResult, error)
}

// BuyerAPI is the pembeli area.
type BuyerAPI interface {
	Profile(ctx context.Context) (market.BuyerProfile, error)
	Orders(ctx context.Context, rng market.DateRange) ([]market.Order, error)
	OrderDetail(ctx context.Context, id int) (market.OrderDetail, error)
	SubmitRating(ctx context.Context, itemID, rating int) error
}

// ProfileAPI is the generic user area shared by every role.
type ProfileAPI interface {
	Profile(ctx context.Context) (market.UserProfile, error)
	Transactions(ctx context.Context, rng market.DateRange) ([]market.Transaction, error)
	TransactionDetail(ctx context.Context, id int) (market.Transaction, error)
}

// ConsignorAPI is the penitip area.
type ConsignorAPI interface {
	Profile(ctx context.Context) (market.ConsignorProfile, error)
	Consignments(ctx context.Context, rng market.DateRange) ([]market.Consignment, error)
	Items(ctx context.Context) ([]market.ConsignedItem, error)
}

// CourierAPI is the kurir area.
type CourierAPI interface {
	Profile(ctx context.Context, id int) (market.StaffProfile, error)
	Tasks(ctx context.Context, id int) ([]market.DeliveryTask, error)
	TaskHistory(ctx context.Context, id int) ([]market.DeliveryTask, error)
	CompleteTask(ctx context.Context, taskID int) error
}

// HunterAPI is the hunter area.
type HunterAPI interface {
	Profile(ctx context.Context, id int) (market.StaffProfile, error)
	Commissions(ctx context.Context, id int) ([]market.Commission, error)
}

// CatalogAPI serves products, discussions and seller badges.
type CatalogAPI interface {
	Products(ctx context.Context) ([]market.Product, error)
	Product(ctx context.Context, id int) (market.Product, error)
	Discussions(ctx context.Context, productID int) ([]market.Discussion, error)
	RateProduct(ctx context.Context, productID, rating int) error
	TopSellers(ctx context.Context) ([]market.TopSeller, error)
}

// NotificationAPI serves in-app notifications.
type NotificationAPI interface {
	List(ctx context.Context) ([]market.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkRead(ctx context.Context, id int) error
}

// MerchandiseAPI serves loyalty merchandise and claims.
type MerchandiseAPI interface {
	List(ctx context.Context) ([]market.Merchandise, error)
	Claims(ctx context.Context) ([]market.ClaimRecord, error)
	Claim(ctx context.Context, merchandiseID, actorID int) (market.ClaimRecord, error)
}
