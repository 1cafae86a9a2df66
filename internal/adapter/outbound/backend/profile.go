package backend

import (
	"context"
	"net/http"
	"time"

	"github.com/reusemart/reusemart-mobile/internal/domain/market"
)

// ProfileClient serves the generic /user area shared by every role.
type ProfileClient struct {
	*Client
}

// NewProfileClient creates the generic profile area client.
func NewProfileClient(baseURL string, tokens TokenSource, opts ...Option) *ProfileClient {
	return &ProfileClient{New(AreaProfile, baseURL, tokens, opts...)}
}

type transactionWire struct {
	ID            num   `json:"ID_TRANSAKSI_PEMBELIAN"`
	Date          stamp `json:"TGL_PESAN_PEMBELIAN"`
	Total         num   `json:"TOT_HARGA_PEMBELIAN"`
	PaymentStatus text  `json:"STATUS_PEMBAYARAN"`
	Details       list[struct {
		ID        num `json:"ID_DETAIL_TRANSAKSI"`
		ItemID    num `json:"ID_BARANG"`
		Quantity  num `json:"JUMLAH"`
		UnitPrice num `json:"HARGA_SATUAN"`
		Item      struct {
			Name text `json:"NAMA_BARANG"`
		} `json:"barang"`
	}] `json:"detailTransaksiPembelians"`
}

func (w transactionWire) transaction() market.Transaction {
	t := market.Transaction{
		ID:            int(w.ID),
		Date:          w.Date.Time(),
		Total:         int(w.Total),
		PaymentStatus: string(w.PaymentStatus),
		Items:         make([]market.LineItem, 0, len(w.Details)),
	}
	for _, d := range w.Details {
		t.Items = append(t.Items, market.LineItem{
			ItemID:    firstNum(d.ItemID, d.ID),
			Name:      string(d.Item.Name),
			Quantity:  int(d.Quantity),
			UnitPrice: int(d.UnitPrice),
			Subtotal:  int(d.Quantity) * int(d.UnitPrice),
		})
	}
	return t
}

// Profile returns the logged-in user's generic profile.
func (p *ProfileClient) Profile(ctx context.Context) (market.UserProfile, error) {
	r := request{method: http.MethodGet, path: "/user/profile"}
	var w buyerProfileWire
	if err := p.call(ctx, r, &w); err != nil {
		return market.UserProfile{}, err
	}
	bp := w.profile()
	up := market.UserProfile{ID: bp.ID, Name: bp.Name, Email: bp.Email, Points: bp.Points}
	if err := check(p.Client, r, up); err != nil {
		return market.UserProfile{}, err
	}
	return up, nil
}

// Transactions returns purchase transactions in rng, newest first.
func (p *ProfileClient) Transactions(ctx context.Context, rng market.DateRange) ([]market.Transaction, error) {
	r := request{method: http.MethodGet, path: "/user/transactions", query: rangeQuery(rng, "start_date", "end_date")}
	var ws list[transactionWire]
	if err := p.call(ctx, r, &ws); err != nil {
		return nil, err
	}
	txs := make([]market.Transaction, 0, len(ws))
	for _, w := range ws {
		txs = append(txs, w.transaction())
	}
	if err := check(p.Client, r, txs...); err != nil {
		return nil, err
	}
	market.NewestFirst(txs, func(t market.Transaction) time.Time { return t.Date })
	return txs, nil
}

// TransactionDetail returns one transaction with its line items.
func (p *ProfileClient) TransactionDetail(ctx context.Context, id int) (market.Transaction, error) {
	r := request{method: http.MethodGet, path: pathf("/user/transactions/%d", id)}
	var w transactionWire
	if err := p.call(ctx, r, &w); err != nil {
		return market.Transaction{}, err
	}
	t := w.transaction()
	if err := check(p.Client, r, t); err != nil {
		return market.Transaction{}, err
	}
	return t, nil
}
