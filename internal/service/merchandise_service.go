package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/reusemart/reusemart-mobile/internal/domain/market"
	"github.com/reusemart/reusemart-mobile/internal/port/outbound"
)

// MerchandiseService keeps the buyer's point balance and the merchandise
// stock, checks claims locally, and reconciles with the backend's verdict.
//
// The local check only saves a round trip. The backend decides: a claim it
// rejects fails even when the local check passed, and the local values are
// then corrected from the rejection or by refetching.
type MerchandiseService struct {
	merch  outbound.MerchandiseAPI
	buyer  outbound.BuyerAPI
	logger *slog.Logger

	mu      sync.Mutex
	loaded  bool
	actorID int
	points  int
	items   map[int]market.Merchandise
	order   []int
}

// Catalog is the merchandise list together with the buyer's balance.
type Catalog struct {
	Points int                  `json:"points" yaml:"points"`
	Items  []market.Merchandise `json:"items" yaml:"items"`
}

// NewMerchandiseService creates a MerchandiseService.
func NewMerchandiseService(merch outbound.MerchandiseAPI, buyer outbound.BuyerAPI, logger *slog.Logger) *MerchandiseService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MerchandiseService{
		merch:  merch,
		buyer:  buyer,
		logger: logger,
		items:  make(map[int]market.Merchandise),
	}
}

// Refresh refetches the catalog and the buyer's profile.
func (s *MerchandiseService) Refresh(ctx context.Context) (Catalog, error) {
	items, err := s.merch.List(ctx)
	if err != nil {
		return Catalog{}, err
	}
	profile, err := s.buyer.Profile(ctx)
	if err != nil {
		return Catalog{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	s.actorID = profile.ID
	s.points = profile.Points
	s.items = make(map[int]market.Merchandise, len(items))
	s.order = s.order[:0]
	for _, it := range items {
		s.items[it.ID] = it
		s.order = append(s.order, it.ID)
	}
	return s.catalogLocked(), nil
}

// Catalog returns the last known catalog without a request.
func (s *MerchandiseService) Catalog() Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalogLocked()
}

func (s *MerchandiseService) catalogLocked() Catalog {
	c := Catalog{Points: s.points, Items: make([]market.Merchandise, 0, len(s.order))}
	for _, id := range s.order {
		c.Items = append(c.Items, s.items[id])
	}
	return c
}

// Claims returns the buyer's past claims.
func (s *MerchandiseService) Claims(ctx context.Context) ([]market.ClaimRecord, error) {
	return s.merch.Claims(ctx)
}

// Claim redeems merchandiseID. It fails with ErrOutOfStock or
// ErrInsufficientPoints before any request when the known stock or balance
// rules the claim out, and with the same errors when the backend rejects it.
func (s *MerchandiseService) Claim(ctx context.Context, merchandiseID int, confirm Confirmer) (market.ClaimRecord, error) {
	s.mu.Lock()
	needLoad := !s.loaded
	s.mu.Unlock()
	if needLoad {
		if _, err := s.Refresh(ctx); err != nil {
			return market.ClaimRecord{}, err
		}
	}

	s.mu.Lock()
	item, ok := s.items[merchandiseID]
	points, actorID := s.points, s.actorID
	s.mu.Unlock()

	if !ok {
		return market.ClaimRecord{}, &market.Error{
			Kind:    market.ErrNotFound,
			Area:    "merchandise",
			Message: fmt.Sprintf("merchandise %d is not in the catalog", merchandiseID),
		}
	}
	if item.Stock <= 0 {
		stock := item.Stock
		return market.ClaimRecord{}, &market.Error{
			Kind:    market.ErrOutOfStock,
			Area:    "merchandise",
			Message: fmt.Sprintf("%s is out of stock", item.Name),
			Stock:   &stock,
		}
	}
	if points < item.PointCost {
		return market.ClaimRecord{}, &market.Error{
			Kind:    market.ErrInsufficientPoints,
			Area:    "merchandise",
			Message: fmt.Sprintf("%s needs %d points, you have %d", item.Name, item.PointCost, points),
			Points:  &points,
		}
	}

	if !confirmed(confirm, fmt.Sprintf("Claim %s for %d points?", item.Name, item.PointCost)) {
		return market.ClaimRecord{}, market.ErrNotConfirmed
	}

	rec, err := s.merch.Claim(ctx, merchandiseID, actorID)
	if err != nil {
		s.reconcile(ctx, merchandiseID, err)
		return market.ClaimRecord{}, err
	}

	s.mu.Lock()
	if rec.RemainingPts != nil {
		s.points = *rec.RemainingPts
	} else {
		s.points -= item.PointCost
	}
	if it, ok := s.items[merchandiseID]; ok {
		it.Stock--
		s.items[merchandiseID] = it
	}
	s.mu.Unlock()

	s.logger.Info("merchandise claimed", "merchandise_id", merchandiseID, "claim_id", rec.ID)
	return rec, nil
}

// reconcile corrects the local balance and stock after a rejected claim.
// Values carried on the rejection are used directly; otherwise the catalog
// is refetched.
func (s *MerchandiseService) reconcile(ctx context.Context, merchandiseID int, err error) {
	var me *market.Error
	if !errors.As(err, &me) {
		return
	}
	if !errors.Is(err, market.ErrInsufficientPoints) && !errors.Is(err, market.ErrOutOfStock) {
		return
	}

	if me.Points == nil && me.Stock == nil {
		if _, rerr := s.Refresh(ctx); rerr != nil {
			s.logger.Warn("refetch after rejected claim failed", "error", rerr)
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if me.Points != nil {
		s.points = *me.Points
	}
	if me.Stock != nil {
		if it, ok := s.items[merchandiseID]; ok {
			it.Stock = *me.Stock
			s.items[merchandiseID] = it
		}
	}
}
