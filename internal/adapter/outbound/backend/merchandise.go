package backend

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/reusemart/reusemart-mobile/internal/domain/market"
)

// MerchandiseClient serves loyalty-point merchandise and claims.
type MerchandiseClient struct {
	*Client
}

// NewMerchandiseClient creates the merchandise area client.
func NewMerchandiseClient(baseURL string, tokens TokenSource, opts ...Option) *MerchandiseClient {
	return &MerchandiseClient{New(AreaMerchandise, baseURL, tokens, opts...)}
}

type merchandiseWire struct {
	ID        num  `json:"ID_MERCHANDISE"`
	Name      text `json:"NAMA_MERCHANDISE"`
	PointCost num  `json:"POIN_DIBUTUHKAN"`
	Stock     num  `json:"JUMLAH"`
	Image     text `json:"GAMBAR"`
}

type claimWire struct {
	ID            num   `json:"ID_KLAIM"`
	IDAlt         num   `json:"id"`
	MerchandiseID num   `json:"ID_MERCHANDISE"`
	BuyerID       num   `json:"ID_PEMBELI"`
	ClaimedAt     stamp `json:"TGL_KLAIM"`
	CreatedAt     stamp `json:"created_at"`
	Status        text  `json:"STATUS"`
	StatusAlt     text  `json:"status"`
	Remaining     *num  `json:"sisa_poin"`
}

func (w claimWire) record() market.ClaimRecord {
	return market.ClaimRecord{
		ID:            firstNum(w.ID, w.IDAlt),
		MerchandiseID: int(w.MerchandiseID),
		ActorID:       int(w.BuyerID),
		ClaimedAt:     firstStamp(w.ClaimedAt, w.CreatedAt),
		Status:        firstText(w.Status, w.StatusAlt),
		RemainingPts:  w.Remaining.ptr(),
	}
}

// List returns the merchandise catalog.
func (m *MerchandiseClient) List(ctx context.Context) ([]market.Merchandise, error) {
	r := request{method: http.MethodGet, path: "/merchandises"}
	var ws list[merchandiseWire]
	if err := m.call(ctx, r, &ws); err != nil {
		return nil, err
	}
	out := make([]market.Merchandise, 0, len(ws))
	for _, w := range ws {
		out = append(out, market.Merchandise{
			ID:        int(w.ID),
			Name:      string(w.Name),
			PointCost: int(w.PointCost),
			Stock:     int(w.Stock),
			Image:     string(w.Image),
		})
	}
	if err := check(m.Client, r, out...); err != nil {
		return nil, err
	}
	return out, nil
}

// Claims returns the actor's past claims, newest first.
func (m *MerchandiseClient) Claims(ctx context.Context) ([]market.ClaimRecord, error) {
	r := request{method: http.MethodGet, path: "/klaim-merchandise"}
	var ws list[claimWire]
	if err := m.call(ctx, r, &ws); err != nil {
		return nil, err
	}
	out := make([]market.ClaimRecord, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.record())
	}
	if err := check(m.Client, r, out...); err != nil {
		return nil, err
	}
	market.NewestFirst(out, func(c market.ClaimRecord) time.Time { return c.ClaimedAt })
	return out, nil
}

// Claim redeems points for one merchandise item. A domain rejection fails with
// ErrInsufficientPoints or ErrOutOfStock; the error carries the backend's
// current points or stock when the body reports them. Never retried.
func (m *MerchandiseClient) Claim(ctx context.Context, merchandiseID, actorID int) (market.ClaimRecord, error) {
	r := request{
		method: http.MethodPost,
		path:   "/klaim-merchandise",
		body: map[string]int{
			"ID_MERCHANDISE": merchandiseID,
			"ID_PEMBELI":     actorID,
		},
	}
	var w claimWire
	if err := m.call(ctx, r, &w); err != nil {
		classifyClaimError(err)
		return market.ClaimRecord{}, err
	}
	rec := w.record()
	if rec.MerchandiseID == 0 {
		rec.MerchandiseID = merchandiseID
	}
	if err := check(m.Client, r, rec); err != nil {
		return market.ClaimRecord{}, err
	}
	return rec, nil
}

// classifyClaimError narrows a 4xx validation error into the claim-specific
// kinds, by code first and message keywords second.
func classifyClaimError(err error) {
	var me *market.Error
	if !errors.As(err, &me) || me.Kind != market.ErrValidation {
		return
	}

	code := strings.ToLower(me.Code)
	msg := strings.ToLower(me.Message)
	switch {
	case code == "insufficient_points" || code == "poin_tidak_cukup":
		me.Kind = market.ErrInsufficientPoints
	case code == "out_of_stock" || code == "stok_habis":
		me.Kind = market.ErrOutOfStock
	case containsAny(msg, "insufficient point", "not enough point", "poin tidak cukup", "poin anda tidak mencukupi", "poin kurang"):
		me.Kind = market.ErrInsufficientPoints
	case containsAny(msg, "out of stock", "stok habis", "stok tidak tersedia", "insufficient stock"):
		me.Kind = market.ErrOutOfStock
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
