package backend

import (
	"context"
	"net/http"
	"time"

	"github.com/reusemart/reusemart-mobile/internal/domain/market"
)

// CatalogClient serves product listings, discussions and seller badges.
// Product reads do not require a token.
type CatalogClient struct {
	*Client
}

// NewCatalogClient creates the catalog area client.
func NewCatalogClient(baseURL string, tokens TokenSource, opts ...Option) *CatalogClient {
	return &CatalogClient{New(AreaCatalog, baseURL, tokens, opts...)}
}

type productWire struct {
	ID           num        `json:"id"`
	Name         text       `json:"name"`
	Price        text       `json:"price"`
	Category     text       `json:"category"`
	Status       text       `json:"status"`
	Image        text       `json:"image"`
	Images       list[text] `json:"images"`
	Warranty     text       `json:"garansi"`
	Weight       text       `json:"berat"`
	Description  text       `json:"deskripsi"`
	SellerName   text       `json:"penitip_name"`
	SellerSince  text       `json:"penitip_since"`
	SellerRating float64    `json:"penitip_rating"`
	Rating       float64    `json:"rating"`
}

func (w productWire) product() market.Product {
	p := market.Product{
		ID:           int(w.ID),
		Name:         string(w.Name),
		Price:        string(w.Price),
		Category:     string(w.Category),
		Status:       string(w.Status),
		Image:        string(w.Image),
		Warranty:     string(w.Warranty),
		Weight:       string(w.Weight),
		Description:  string(w.Description),
		SellerName:   string(w.SellerName),
		SellerSince:  string(w.SellerSince),
		SellerRating: w.SellerRating,
		Rating:       w.Rating,
	}
	for _, img := range w.Images {
		p.Images = append(p.Images, string(img))
	}
	return p
}

type discussionWire struct {
	ID           num   `json:"id"`
	IDAlt        num   `json:"ID_DISKUSI"`
	Question     text  `json:"isi"`
	QuestionAlt  text  `json:"PERTANYAAN"`
	Answer       text  `json:"jawaban"`
	AnswerAlt    text  `json:"JAWABAN"`
	CreatedAt    stamp `json:"created_at"`
	CreatedAtAlt stamp `json:"CREATE_AT"`
	Buyer        struct {
		Name    text `json:"nama"`
		NameAlt text `json:"NAMA_PEMBELI"`
	} `json:"pembeli"`
}

type topSellerWire struct {
	ConsignorID   num  `json:"penitip_id"`
	ConsignorName text `json:"penitip_name"`
	From          text `json:"from"`
	To            text `json:"to"`
}

// Products returns the product listing.
func (c *CatalogClient) Products(ctx context.Context) ([]market.Product, error) {
	r := request{method: http.MethodGet, path: "/produk"}
	var ws list[productWire]
	if err := c.call(ctx, r, &ws); err != nil {
		return nil, err
	}
	out := make([]market.Product, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.product())
	}
	if err := check(c.Client, r, out...); err != nil {
		return nil, err
	}
	return out, nil
}

// Product returns one product.
func (c *CatalogClient) Product(ctx context.Context, id int) (market.Product, error) {
	r := request{method: http.MethodGet, path: pathf("/produk/%d", id)}
	var w productWire
	if err := c.call(ctx, r, &w); err != nil {
		return market.Product{}, err
	}
	p := w.product()
	if err := check(c.Client, r, p); err != nil {
		return market.Product{}, err
	}
	return p, nil
}

// Discussions returns the questions asked on a product, newest first.
func (c *CatalogClient) Discussions(ctx context.Context, productID int) ([]market.Discussion, error) {
	r := request{method: http.MethodGet, path: pathf("/produk/%d/diskusi", productID)}
	var ws list[discussionWire]
	if err := c.call(ctx, r, &ws); err != nil {
		return nil, err
	}
	out := make([]market.Discussion, 0, len(ws))
	for _, w := range ws {
		out = append(out, market.Discussion{
			ID:        firstNum(w.ID, w.IDAlt),
			Question:  firstText(w.Question, w.QuestionAlt),
			Answer:    firstText(w.Answer, w.AnswerAlt),
			CreatedAt: firstStamp(w.CreatedAt, w.CreatedAtAlt),
			Author:    firstText(w.Buyer.Name, w.Buyer.NameAlt),
		})
	}
	if err := check(c.Client, r, out...); err != nil {
		return nil, err
	}
	market.NewestFirst(out, func(d market.Discussion) time.Time { return d.CreatedAt })
	return out, nil
}

// RateProduct rates a product 1..5.
func (c *CatalogClient) RateProduct(ctx context.Context, productID, rating int) error {
	if err := checkRating(rating); err != nil {
		return err
	}
	r := request{
		method: http.MethodPost,
		path:   pathf("/produk/%d/rate", productID),
		body:   map[string]int{"rating": rating},
	}
	return c.call(ctx, r, nil)
}

// TopSellers returns the consignors currently holding the Top Seller badge.
func (c *CatalogClient) TopSellers(ctx context.Context) ([]market.TopSeller, error) {
	r := request{method: http.MethodGet, path: "/badges/top-sellers"}
	var ws list[topSellerWire]
	if err := c.call(ctx, r, &ws); err != nil {
		return nil, err
	}
	out := make([]market.TopSeller, 0, len(ws))
	for _, w := range ws {
		out = append(out, market.TopSeller{
			ConsignorID:   int(w.ConsignorID),
			ConsignorName: string(w.ConsignorName),
			From:          string(w.From),
			To:            string(w.To),
		})
	}
	if err := check(c.Client, r, out...); err != nil {
		return nil, err
	}
	return out, nil
}
