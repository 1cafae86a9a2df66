package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/reusemart/reusemart-mobile/internal/domain/market"
	"github.com/reusemart/reusemart-mobile/internal/domain/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeAuth is an AuthAPI returning a fixed result.
type fakeAuth struct {
	res   session.LoginResult
	err   error
	calls atomic.Int32
}

func (f *fakeAuth) Login(_ context.Context, _, _ string) (session.LoginResult, error) {
	f.calls.Add(1)
	return f.res, f.err
}

// failingStore is a plain Store (no batch capability) that fails writes to
// one key.
type failingStore struct {
	mu      sync.Mutex
	values  map[string]string
	failKey string
}

func newFailingStore(failKey string) *failingStore {
	return &failingStore{values: map[string]string{}, failKey: failKey}
}

func (s *failingStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *failingStore) Set(_ context.Context, key, value string) error {
	if key == s.failKey {
		return errors.New("disk full")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *failingStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *failingStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}

// fakeCourier is a CourierAPI with canned tasks.
type fakeCourier struct {
	tasks       []market.DeliveryTask
	history     []market.DeliveryTask
	profile     market.StaffProfile
	completeErr error
	completes   atomic.Int32
	// gate, when set, blocks CompleteTask until closed.
	gate chan struct{}
}

func (f *fakeCourier) Profile(_ context.Context, id int) (market.StaffProfile, error) {
	p := f.profile
	p.ID = id
	return p, nil
}

func (f *fakeCourier) Tasks(context.Context, int) ([]market.DeliveryTask, error) {
	return f.tasks, nil
}

func (f *fakeCourier) TaskHistory(context.Context, int) ([]market.DeliveryTask, error) {
	return f.history, nil
}

func (f *fakeCourier) CompleteTask(ctx context.Context, _ int) error {
	f.completes.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.completeErr
}

// fakeMerch is a MerchandiseAPI with a configurable claim result.
type fakeMerch struct {
	mu       sync.Mutex
	items    []market.Merchandise
	claimRec market.ClaimRecord
	claimErr error
	claims   atomic.Int32
	lists    atomic.Int32
}

func (f *fakeMerch) List(context.Context) ([]market.Merchandise, error) {
	f.lists.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]market.Merchandise(nil), f.items...), nil
}

func (f *fakeMerch) Claims(context.Context) ([]market.ClaimRecord, error) {
	return []market.ClaimRecord{}, nil
}

func (f *fakeMerch) Claim(_ context.Context, merchandiseID, actorID int) (market.ClaimRecord, error) {
	f.claims.Add(1)
	if f.claimErr != nil {
		return market.ClaimRecord{}, f.claimErr
	}
	rec := f.claimRec
	rec.MerchandiseID = merchandiseID
	rec.ActorID = actorID
	return rec, nil
}

func (f *fakeMerch) setItems(items []market.Merchandise) {
	f.mu.Lock()
	f.items = items
	f.mu.Unlock()
}

// fakeBuyer is a BuyerAPI with a mutable profile.
type fakeBuyer struct {
	mu       sync.Mutex
	profile  market.BuyerProfile
	orders   []market.Order
	profiles atomic.Int32
}

func (f *fakeBuyer) Profile(context.Context) (market.BuyerProfile, error) {
	f.profiles.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profile, nil
}

func (f *fakeBuyer) Orders(context.Context, market.DateRange) ([]market.Order, error) {
	return f.orders, nil
}

func (f *fakeBuyer) OrderDetail(_ context.Context, id int) (market.OrderDetail, error) {
	return market.OrderDetail{Order: market.Order{ID: id}}, nil
}

func (f *fakeBuyer) SubmitRating(context.Context, int, int) error { return nil }

func (f *fakeBuyer) setPoints(p int) {
	f.mu.Lock()
	f.profile.Points = p
	f.mu.Unlock()
}

// fakeConsignor is a ConsignorAPI.
type fakeConsignor struct{}

func (fakeConsignor) Profile(context.Context) (market.ConsignorProfile, error) {
	return market.ConsignorProfile{ID: 2, Name: "Sari"}, nil
}

func (fakeConsignor) Consignments(context.Context, market.DateRange) ([]market.Consignment, error) {
	return []market.Consignment{{ID: 1}}, nil
}

func (fakeConsignor) Items(context.Context) ([]market.ConsignedItem, error) {
	return []market.ConsignedItem{}, nil
}

// fakeHunter is a HunterAPI.
type fakeHunter struct{}

func (fakeHunter) Profile(_ context.Context, id int) (market.StaffProfile, error) {
	return market.StaffProfile{ID: id, Position: "Hunter"}, nil
}

func (fakeHunter) Commissions(context.Context, int) ([]market.Commission, error) {
	return []market.Commission{{ID: 1}, {ID: 2}}, nil
}

// confirmCounter records prompts and answers with answer.
type confirmCounter struct {
	answer  bool
	prompts atomic.Int32
}

func (c *confirmCounter) Confirm(string) bool {
	c.prompts.Add(1)
	return c.answer
}
