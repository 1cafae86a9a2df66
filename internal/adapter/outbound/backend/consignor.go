package backend

import (
	"context"
	"net/http"
	"time"

	"github.com/reusemart/reusemart-mobile/internal/domain/market"
)

// ConsignorClient serves the penitip area.
type ConsignorClient struct {
	*Client
}

// NewConsignorClient creates the penitip area client.
func NewConsignorClient(baseURL string, tokens TokenSource, opts ...Option) *ConsignorClient {
	return &ConsignorClient{New(AreaConsignor, baseURL, tokens, opts...)}
}

type consignorProfileWire struct {
	ID       num  `json:"id"`
	IDAlt    num  `json:"ID_PENITIP"`
	Name     text `json:"name"`
	NameAlt  text `json:"NAMA_PENITIP"`
	Email    text `json:"email"`
	EmailAlt text `json:"EMAIL_PENITIP"`
	Saldo    num  `json:"saldo"`
	SaldoAlt num  `json:"SALDO_PENITIP"`
	Point    num  `json:"point"`
	PointAlt num  `json:"POINT_LOYALITAS_PENITIP"`
}

type consignmentWire struct {
	ID        num   `json:"id"`
	IDAlt     num   `json:"ID_TRANSAKSI_PENITIPAN"`
	ItemName  text  `json:"nama_barang"`
	ItemAlt   text  `json:"nama"`
	Date      stamp `json:"tanggal"`
	DateAlt   stamp `json:"TGL_PENITIPAN"`
	CreatedAt stamp `json:"created_at"`
	Status    text  `json:"status"`
	Price     num   `json:"harga"`
}

type consignedItemWire struct {
	ID       num   `json:"id"`
	Name     text  `json:"nama"`
	Category text  `json:"kategori"`
	Price    num   `json:"harga"`
	Entered  stamp `json:"tgl_masuk"`
	Left     stamp `json:"tgl_keluar"`
	Status   text  `json:"status"`
}

// Profile returns the logged-in consignor's profile.
func (p *ConsignorClient) Profile(ctx context.Context) (market.ConsignorProfile, error) {
	r := request{method: http.MethodGet, path: "/penitip/me"}
	var w consignorProfileWire
	if err := p.call(ctx, r, &w); err != nil {
		return market.ConsignorProfile{}, err
	}
	prof := market.ConsignorProfile{
		ID:      firstNum(w.ID, w.IDAlt),
		Name:    firstText(w.Name, w.NameAlt),
		Email:   firstText(w.Email, w.EmailAlt),
		Balance: firstNum(w.Saldo, w.SaldoAlt),
		Points:  firstNum(w.Point, w.PointAlt),
	}
	if err := check(p.Client, r, prof); err != nil {
		return market.ConsignorProfile{}, err
	}
	return prof, nil
}

// Consignments returns the consignor's transactions in rng, newest first.
func (p *ConsignorClient) Consignments(ctx context.Context, rng market.DateRange) ([]market.Consignment, error) {
	r := request{method: http.MethodGet, path: "/penitip/me/transactions", query: rangeQuery(rng, "start", "end")}
	var ws list[consignmentWire]
	if err := p.call(ctx, r, &ws); err != nil {
		return nil, err
	}
	out := make([]market.Consignment, 0, len(ws))
	for _, w := range ws {
		out = append(out, market.Consignment{
			ID:       firstNum(w.ID, w.IDAlt),
			ItemName: firstText(w.ItemName, w.ItemAlt),
			Date:     firstStamp(w.Date, w.DateAlt, w.CreatedAt),
			Status:   string(w.Status),
			Price:    int(w.Price),
		})
	}
	if err := check(p.Client, r, out...); err != nil {
		return nil, err
	}
	market.NewestFirst(out, func(c market.Consignment) time.Time { return c.Date })
	return out, nil
}

// Items returns every item the consignor handed over, newest first.
func (p *ConsignorClient) Items(ctx context.Context) ([]market.ConsignedItem, error) {
	r := request{method: http.MethodGet, path: "/penitip/me/barangs"}
	var ws list[consignedItemWire]
	if err := p.call(ctx, r, &ws); err != nil {
		return nil, err
	}
	out := make([]market.ConsignedItem, 0, len(ws))
	for _, w := range ws {
		out = append(out, market.ConsignedItem{
			ID:        int(w.ID),
			Name:      string(w.Name),
			Category:  string(w.Category),
			Price:     int(w.Price),
			EnteredAt: w.Entered.Time(),
			LeftAt:    w.Left.Time(),
			Status:    string(w.Status),
		})
	}
	if err := check(p.Client, r, out...); err != nil {
		return nil, err
	}
	market.NewestFirst(out, func(c market.ConsignedItem) time.Time { return c.EnteredAt })
	return out, nil
}
