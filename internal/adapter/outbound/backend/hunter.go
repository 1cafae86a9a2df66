package backend

import (
	"context"
	"net/http"
	"time"

	"github.com/reusemart/reusemart-mobile/internal/domain/market"
)

// HunterClient serves the hunter area.
type HunterClient struct {
	*Client
}

// NewHunterClient creates the hunter area client.
func NewHunterClient(baseURL string, tokens TokenSource, opts ...Option) *HunterClient {
	return &HunterClient{New(AreaHunter, baseURL, tokens, opts...)}
}

type commissionWire struct {
	ID            num   `json:"ID_KOMISI"`
	Kind          text  `json:"JENIS_KOMISI"`
	Amount        num   `json:"NOMINAL_KOMISI"`
	TransactionID num   `json:"ID_TRANSAKSI_PEMBELIAN"`
	CreatedAt     stamp `json:"created_at"`
	Transaction   struct {
		ItemStatus text `json:"STATUS_BARANG"`
	} `json:"transaksiPembelian"`
}

// Profile returns hunter id's profile.
func (h *HunterClient) Profile(ctx context.Context, id int) (market.StaffProfile, error) {
	return staffProfile(ctx, h.Client, id)
}

// Commissions returns the hunter's commission entries, newest first.
func (h *HunterClient) Commissions(ctx context.Context, id int) ([]market.Commission, error) {
	if id <= 0 {
		return nil, market.Validationf("pegawai_id", "hunter id is required")
	}
	r := request{method: http.MethodGet, path: pathf("/pegawai/%d/komisi", id)}
	var ws list[commissionWire]
	if err := h.call(ctx, r, &ws); err != nil {
		return nil, err
	}
	out := make([]market.Commission, 0, len(ws))
	for _, w := range ws {
		out = append(out, market.Commission{
			ID:            int(w.ID),
			Kind:          string(w.Kind),
			Amount:        int(w.Amount),
			TransactionID: int(w.TransactionID),
			CreatedAt:     w.CreatedAt.Time(),
			ItemStatus:    string(w.Transaction.ItemStatus),
		})
	}
	if err := check(h.Client, r, out...); err != nil {
		return nil, err
	}
	market.NewestFirst(out, func(c market.Commission) time.Time { return c.CreatedAt })
	return out, nil
}
