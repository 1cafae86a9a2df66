package backend

import (
	"context"
	"net/http"
	"time"

	"github.com/reusemart/reusemart-mobile/internal/domain/market"
)

// BuyerClient serves the pembeli area.
type BuyerClient struct {
	*Client
}

// NewBuyerClient creates the pembeli area client.
func NewBuyerClient(baseURL string, tokens TokenSource, opts ...Option) *BuyerClient {
	return &BuyerClient{New(AreaBuyer, baseURL, tokens, opts...)}
}

type buyerProfileWire struct {
	ID       num  `json:"id"`
	IDAlt    num  `json:"ID_PEMBELI"`
	Name     text `json:"name"`
	NameAlt  text `json:"NAMA_PEMBELI"`
	Email    text `json:"email"`
	EmailAlt text `json:"EMAIL_PEMBELI"`
	Point    num  `json:"point"`
	Poin     num  `json:"poin"`
	PoinAlt  num  `json:"POIN_PEMBELI"`
}

func (w buyerProfileWire) profile() market.BuyerProfile {
	return market.BuyerProfile{
		ID:     firstNum(w.ID, w.IDAlt),
		Name:   firstText(w.Name, w.NameAlt),
		Email:  firstText(w.Email, w.EmailAlt),
		Points: firstNum(w.Point, w.Poin, w.PoinAlt),
	}
}

type orderWire struct {
	ID        num   `json:"id"`
	Code      text  `json:"kode"`
	Date      stamp `json:"tgl_pesan_pembelian"`
	DateAlt   stamp `json:"tanggal"`
	Status    text  `json:"status_transaksi"`
	Total     num   `json:"total"`
	TotalPaid num   `json:"total_bayar"`
	ItemCount num   `json:"item_count"`
}

func (w orderWire) order() market.Order {
	return market.Order{
		ID:        int(w.ID),
		Code:      string(w.Code),
		Date:      firstStamp(w.Date, w.DateAlt),
		Status:    string(w.Status),
		Total:     firstNum(w.Total, w.TotalPaid),
		ItemCount: int(w.ItemCount),
	}
}

type orderDetailWire struct {
	orderWire
	Address        text `json:"alamat_pengiriman"`
	PaymentMethod  text `json:"metode_pembayaran"`
	DeliveryMethod text `json:"delivery_method"`
	ProofStatus    text `json:"status_bukti_transfer"`
	PointsEarned   num  `json:"poin_didapat"`
	PointsUsed     num  `json:"poin_potongan"`
	Details        list[struct {
		ItemID    num `json:"ID_BARANG"`
		Quantity  num `json:"JUMLAH"`
		UnitPrice num `json:"HARGA_SATUAN"`
		Item      struct {
			Name text `json:"NAMA_BARANG"`
		} `json:"barang"`
	}] `json:"detail_transaksi"`
	Item *struct {
		ID    num  `json:"id"`
		Name  text `json:"nama"`
		Price num  `json:"harga"`
	} `json:"barang"`
}

func (w orderDetailWire) detail() market.OrderDetail {
	d := market.OrderDetail{
		Order:          w.order(),
		Address:        string(w.Address),
		PaymentMethod:  string(w.PaymentMethod),
		DeliveryMethod: string(w.DeliveryMethod),
		ProofStatus:    string(w.ProofStatus),
		PointsEarned:   int(w.PointsEarned),
		PointsUsed:     int(w.PointsUsed),
		Items:          []market.LineItem{},
	}
	// The detail total is total_bayar; the list total is total.
	d.Total = firstNum(w.TotalPaid, w.Total)

	switch {
	case len(w.Details) > 0:
		for _, it := range w.Details {
			name := string(it.Item.Name)
			if name == "" {
				name = "-"
			}
			d.Items = append(d.Items, market.LineItem{
				ItemID:    int(it.ItemID),
				Name:      name,
				Quantity:  int(it.Quantity),
				UnitPrice: int(it.UnitPrice),
				Subtotal:  int(it.Quantity) * int(it.UnitPrice),
			})
		}
	case w.Item != nil:
		d.Items = append(d.Items, market.LineItem{
			ItemID:    int(w.Item.ID),
			Name:      string(w.Item.Name),
			Quantity:  1,
			UnitPrice: int(w.Item.Price),
			Subtotal:  int(w.Item.Price),
		})
	}
	if d.ItemCount == 0 {
		d.ItemCount = len(d.Items)
	}
	return d
}

// Profile returns the logged-in buyer's profile.
func (b *BuyerClient) Profile(ctx context.Context) (market.BuyerProfile, error) {
	r := request{method: http.MethodGet, path: "/pembeli/me"}
	var w buyerProfileWire
	if err := b.call(ctx, r, &w); err != nil {
		return market.BuyerProfile{}, err
	}
	p := w.profile()
	if err := check(b.Client, r, p); err != nil {
		return market.BuyerProfile{}, err
	}
	return p, nil
}

// Orders returns the buyer's orders in rng, newest first. An all-time range
// sends no filter.
func (b *BuyerClient) Orders(ctx context.Context, rng market.DateRange) ([]market.Order, error) {
	r := request{method: http.MethodGet, path: "/pesanan", query: rangeQuery(rng, "start", "end")}
	var ws list[orderWire]
	if err := b.call(ctx, r, &ws); err != nil {
		return nil, err
	}
	orders := make([]market.Order, 0, len(ws))
	for _, w := range ws {
		orders = append(orders, w.order())
	}
	if err := check(b.Client, r, orders...); err != nil {
		return nil, err
	}
	market.NewestFirst(orders, func(o market.Order) time.Time { return o.Date })
	return orders, nil
}

// OrderDetail returns one order with its line items.
func (b *BuyerClient) OrderDetail(ctx context.Context, id int) (market.OrderDetail, error) {
	r := request{method: http.MethodGet, path: pathf("/pesanan/%d", id)}
	var w orderDetailWire
	if err := b.call(ctx, r, &w); err != nil {
		return market.OrderDetail{}, err
	}
	d := w.detail()
	if err := check(b.Client, r, d.Order); err != nil {
		return market.OrderDetail{}, err
	}
	return d, nil
}

// SubmitRating rates a purchased item. rating must be 1..5; anything else
// fails with ErrValidation before a request is sent.
func (b *BuyerClient) SubmitRating(ctx context.Context, itemID, rating int) error {
	if err := checkRating(rating); err != nil {
		return err
	}
	r := request{
		method: http.MethodPost,
		path:   pathf("/barang/%d/rating", itemID),
		body:   map[string]int{"rating": rating},
	}
	return b.call(ctx, r, nil)
}

// checkRating enforces the 1..5 star scale.
func checkRating(rating int) error {
	if err := validate.Var(rating, "min=1,max=5"); err != nil {
		return market.Validationf("rating", "rating must be between 1 and 5, got %d", rating)
	}
	return nil
}
