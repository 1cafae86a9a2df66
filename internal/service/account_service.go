package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/reusemart/reusemart-mobile/internal/domain/dispatch"
	"github.com/reusemart/reusemart-mobile/internal/domain/market"
	"github.com/reusemart/reusemart-mobile/internal/domain/session"
	"github.com/reusemart/reusemart-mobile/internal/port/outbound"
)

// ErrNotLoggedIn is returned by account screens when there is no session.
var ErrNotLoggedIn = errors.New("not logged in")

// ErrGuest is returned by account screens for a guest session.
var ErrGuest = errors.New("not available for guests")

// AccountAPIs are the per-area ports the account screens read from.
type AccountAPIs struct {
	Buyer     outbound.BuyerAPI
	Consignor outbound.ConsignorAPI
	Courier   outbound.CourierAPI
	Hunter    outbound.HunterAPI
	Profile   outbound.ProfileAPI
}

// AccountService loads the profile and history screen that belongs to the
// resolved view.
type AccountService struct {
	apis AccountAPIs
}

// NewAccountService creates an AccountService.
func NewAccountService(apis AccountAPIs) *AccountService {
	return &AccountService{apis: apis}
}

// Profile is one role's profile screen. Exactly one pointer is set.
type Profile struct {
	View      dispatch.View            `json:"view" yaml:"view"`
	Buyer     *market.BuyerProfile     `json:"buyer,omitempty" yaml:"buyer,omitempty"`
	Consignor *market.ConsignorProfile `json:"consignor,omitempty" yaml:"consignor,omitempty"`
	Staff     *market.StaffProfile     `json:"staff,omitempty" yaml:"staff,omitempty"`
}

// History is one role's history screen. Exactly one slice is set.
type History struct {
	View         dispatch.View         `json:"view" yaml:"view"`
	Orders       []market.Order        `json:"orders,omitempty" yaml:"orders,omitempty"`
	Consignments []market.Consignment  `json:"consignments,omitempty" yaml:"consignments,omitempty"`
	Tasks        []market.DeliveryTask `json:"tasks,omitempty" yaml:"tasks,omitempty"`
	Commissions  []market.Commission   `json:"commissions,omitempty" yaml:"commissions,omitempty"`
}

// Len returns the number of rows.
func (h History) Len() int {
	return len(h.Orders) + len(h.Consignments) + len(h.Tasks) + len(h.Commissions)
}

// Profile loads the profile screen for view.
func (s *AccountService) Profile(ctx context.Context, view dispatch.View, sess session.Session) (Profile, error) {
	out := Profile{View: view}
	switch view {
	case dispatch.LoginPrompt:
		return out, ErrNotLoggedIn
	case dispatch.GuestView:
		return out, ErrGuest
	case dispatch.ConsignorView:
		p, err := s.apis.Consignor.Profile(ctx)
		if err != nil {
			return out, err
		}
		out.Consignor = &p
	case dispatch.CourierView, dispatch.HunterView:
		id, err := actorID(sess)
		if err != nil {
			return out, err
		}
		var p market.StaffProfile
		if view == dispatch.CourierView {
			p, err = s.apis.Courier.Profile(ctx, id)
		} else {
			p, err = s.apis.Hunter.Profile(ctx, id)
		}
		if err != nil {
			return out, err
		}
		out.Staff = &p
	default:
		p, err := s.apis.Buyer.Profile(ctx)
		if err != nil {
			return out, err
		}
		out.Buyer = &p
	}
	return out, nil
}

// History loads the history screen for view within rng. Courier history and
// hunter commissions are not filtered by date on the backend.
func (s *AccountService) History(ctx context.Context, view dispatch.View, sess session.Session, rng market.DateRange) (History, error) {
	out := History{View: view}
	var err error
	switch view {
	case dispatch.LoginPrompt:
		return out, ErrNotLoggedIn
	case dispatch.GuestView:
		return out, ErrGuest
	case dispatch.ConsignorView:
		out.Consignments, err = s.apis.Consignor.Consignments(ctx, rng)
	case dispatch.CourierView:
		var id int
		if id, err = actorID(sess); err == nil {
			out.Tasks, err = s.apis.Courier.TaskHistory(ctx, id)
		}
	case dispatch.HunterView:
		var id int
		if id, err = actorID(sess); err == nil {
			out.Commissions, err = s.apis.Hunter.Commissions(ctx, id)
		}
	default:
		out.Orders, err = s.apis.Buyer.Orders(ctx, rng)
	}
	return out, err
}

// Transactions loads the generic transaction list shared by every role.
func (s *AccountService) Transactions(ctx context.Context, rng market.DateRange) ([]market.Transaction, error) {
	return s.apis.Profile.Transactions(ctx, rng)
}

// actorID parses the stored pegawai id.
func actorID(sess session.Session) (int, error) {
	id, err := strconv.Atoi(sess.ActorID)
	if err != nil || id <= 0 {
		return 0, market.Validationf("pegawai_id", "no staff id stored for this session, log in again")
	}
	return id, nil
}
