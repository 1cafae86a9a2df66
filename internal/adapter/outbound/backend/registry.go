package backend

import (
	"fmt"

	"github.com/reusemart/reusemart-mobile/internal/port/outbound"
)

// Endpoints locates the backend. Overrides replaces the base address of
// individual areas for deployments that split hosts.
type Endpoints struct {
	BaseURL   string
	Overrides map[Area]string
}

// URL returns the base address for area.
func (e Endpoints) URL(area Area) string {
	if u, ok := e.Overrides[area]; ok && u != "" {
		return u
	}
	return e.BaseURL
}

// Clients holds exactly one client per backend area. All of them share the
// same token source, so a login or a 401 is seen by every area at once.
type Clients struct {
	Auth          *AuthClient
	Buyer         *BuyerClient
	Profile       *ProfileClient
	Consignor     *ConsignorClient
	Courier       *CourierClient
	Hunter        *HunterClient
	Catalog       *CatalogClient
	Notifications *NotificationClient
	Merchandise   *MerchandiseClient
}

// NewClients builds the per-area registry. opts apply to every area.
func NewClients(ep Endpoints, tokens TokenSource, opts ...Option) (*Clients, error) {
	if ep.BaseURL == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	for area := range ep.Overrides {
		if !area.Valid() {
			return nil, fmt.Errorf("unknown backend area %q", area)
		}
	}
	return &Clients{
		Auth:          NewAuthClient(ep.URL(AreaAuth), tokens, opts...),
		Buyer:         NewBuyerClient(ep.URL(AreaBuyer), tokens, opts...),
		Profile:       NewProfileClient(ep.URL(AreaProfile), tokens, opts...),
		Consignor:     NewConsignorClient(ep.URL(AreaConsignor), tokens, opts...),
		Courier:       NewCourierClient(ep.URL(AreaCourier), tokens, opts...),
		Hunter:        NewHunterClient(ep.URL(AreaHunter), tokens, opts...),
		Catalog:       NewCatalogClient(ep.URL(AreaCatalog), tokens, opts...),
		Notifications: NewNotificationClient(ep.URL(AreaNotifications), tokens, opts...),
		Merchandise:   NewMerchandiseClient(ep.URL(AreaMerchandise), tokens, opts...),
	}, nil
}

// All returns every area client in a fixed order.
func (c *Clients) All() []*Client {
	return []*Client{
		c.Auth.Client, c.Buyer.Client, c.Profile.Client, c.Consignor.Client,
		c.Courier.Client, c.Hunter.Client, c.Catalog.Client,
		c.Notifications.Client, c.Merchandise.Client,
	}
}

// Compile-time interface checks.
var (
	_ outbound.AuthAPI         = (*AuthClient)(nil)
	_ outbound.BuyerAPI        = (*BuyerClient)(nil)
	_ outbound.ProfileAPI      = (*ProfileClient)(nil)
	_ outbound.ConsignorAPI    = (*ConsignorClient)(nil)
	_ outbound.CourierAPI      = (*CourierClient)(nil)
	_ outbound.HunterAPI       = (*HunterClient)(nil)
	_ outbound.CatalogAPI      = (*CatalogClient)(nil)
	_ outbound.NotificationAPI = (*NotificationClient)(nil)
	_ outbound.MerchandiseAPI  = (*MerchandiseClient)(nil)
)
