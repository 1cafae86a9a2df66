package service

import (
	"context"
	"errors"
	"testing"

	"github.com/reusemart/reusemart-mobile/internal/domain/market"
)

func newMerchFixture(points int, items ...market.Merchandise) (*MerchandiseService, *fakeMerch, *fakeBuyer) {
	merch := &fakeMerch{items: items, claimRec: market.ClaimRecord{ID: 100}}
	buyer := &fakeBuyer{profile: market.BuyerProfile{ID: 1, Points: points}}
	return NewMerchandiseService(merch, buyer, testLogger()), merch, buyer
}

func TestMerchandiseService_InsufficientPointsNoNetwork(t *testing.T) {
	t.Parallel()

	svc, merch, _ := newMerchFixture(10, market.Merchandise{ID: 1, Name: "Mug", PointCost: 50, Stock: 3})

	_, err := svc.Claim(context.Background(), 1, AlwaysConfirm)
	if !errors.Is(err, market.ErrInsufficientPoints) {
		t.Fatalf("Claim() error = %v, want ErrInsufficientPoints", err)
	}
	if n := merch.claims.Load(); n != 0 {
		t.Errorf("claim requests = %d, want 0", n)
	}
}

func TestMerchandiseService_OutOfStockNoNetwork(t *testing.T) {
	t.Parallel()

	svc, merch, _ := newMerchFixture(100, market.Merchandise{ID: 1, Name: "Mug", PointCost: 50, Stock: 0})

	_, err := svc.Claim(context.Background(), 1, AlwaysConfirm)
	if !errors.Is(err, market.ErrOutOfStock) {
		t.Fatalf("Claim() error = %v, want ErrOutOfStock", err)
	}
	if merch.claims.Load() != 0 {
		t.Error("out-of-stock claim reached the network")
	}
}

// Local points are stale: the check passes but the backend rejects.
func TestMerchandiseService_ServerRejectionWinsAndReconciles(t *testing.T) {
	t.Parallel()

	svc, merch, _ := newMerchFixture(100, market.Merchandise{ID: 1, Name: "Mug", PointCost: 50, Stock: 3})
	if _, err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	remaining := 20
	merch.claimErr = &market.Error{Kind: market.ErrInsufficientPoints, Status: 422, Points: &remaining}

	_, err := svc.Claim(context.Background(), 1, AlwaysConfirm)
	if !errors.Is(err, market.ErrInsufficientPoints) {
		t.Fatalf("Claim() error = %v, want ErrInsufficientPoints", err)
	}
	if merch.claims.Load() != 1 {
		t.Errorf("claim requests = %d, want 1", merch.claims.Load())
	}
	if got := svc.Catalog().Points; got != 20 {
		t.Errorf("points after rejection = %d, want 20", got)
	}
}

func TestMerchandiseService_RejectionWithoutValuesRefetches(t *testing.T) {
	t.Parallel()

	svc, merch, buyer := newMerchFixture(100, market.Merchandise{ID: 1, Name: "Mug", PointCost: 50, Stock: 3})
	if _, err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	merch.claimErr = &market.Error{Kind: market.ErrOutOfStock, Status: 422}
	merch.setItems([]market.Merchandise{{ID: 1, Name: "Mug", PointCost: 50, Stock: 0}})
	buyer.setPoints(90)

	if _, err := svc.Claim(context.Background(), 1, AlwaysConfirm); !errors.Is(err, market.ErrOutOfStock) {
		t.Fatalf("Claim() error = %v, want ErrOutOfStock", err)
	}
	cat := svc.Catalog()
	if cat.Points != 90 || len(cat.Items) != 1 || cat.Items[0].Stock != 0 {
		t.Errorf("catalog after refetch = %+v", cat)
	}
	if n := merch.lists.Load(); n != 2 {
		t.Errorf("list requests = %d, want 2", n)
	}
}

func TestMerchandiseService_SuccessUpdatesBalance(t *testing.T) {
	t.Parallel()

	svc, merch, _ := newMerchFixture(100, market.Merchandise{ID: 1, Name: "Mug", PointCost: 30, Stock: 2})

	rec, err := svc.Claim(context.Background(), 1, AlwaysConfirm)
	if err != nil {
		t.Fatalf("Claim() error: %v", err)
	}
	if rec.ActorID != 1 || rec.MerchandiseID != 1 {
		t.Errorf("Claim() = %+v", rec)
	}
	cat := svc.Catalog()
	if cat.Points != 70 || cat.Items[0].Stock != 1 {
		t.Errorf("catalog after claim = %+v", cat)
	}

	remaining := 5
	merch.claimRec = market.ClaimRecord{ID: 101, RemainingPts: &remaining}
	if _, err := svc.Claim(context.Background(), 1, AlwaysConfirm); err != nil {
		t.Fatalf("second Claim() error: %v", err)
	}
	if got := svc.Catalog().Points; got != 5 {
		t.Errorf("points = %d, want server-reported 5", got)
	}
}

func TestMerchandiseService_UnknownAndUnconfirmed(t *testing.T) {
	t.Parallel()

	svc, merch, _ := newMerchFixture(100, market.Merchandise{ID: 1, Name: "Mug", PointCost: 30, Stock: 2})

	if _, err := svc.Claim(context.Background(), 99, AlwaysConfirm); !errors.Is(err, market.ErrNotFound) {
		t.Errorf("Claim(unknown) error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Claim(context.Background(), 1, &confirmCounter{answer: false}); !errors.Is(err, market.ErrNotConfirmed) {
		t.Errorf("Claim(declined) error = %v, want ErrNotConfirmed", err)
	}
	if merch.claims.Load() != 0 {
		t.Error("claim reached the network")
	}
}
