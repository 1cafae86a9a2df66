package backend

import (
	"context"
	"net/http"

	"github.com/reusemart/reusemart-mobile/internal/domain/market"
)

// staffProfileWire is /pegawai/{id}/profile, shared by couriers and hunters.
type staffProfileWire struct {
	ID         num  `json:"ID_PEGAWAI"`
	Name       text `json:"NAMA_PEGAWAI"`
	Email      text `json:"EMAIL_PEGAWAI"`
	Phone      text `json:"NO_TELP_PEGAWAI"`
	Commission num  `json:"KOMISI_PEGAWAI"`
	Position   struct {
		Name text `json:"NAMA_JABATAN"`
	} `json:"jabatans"`
	Photo     text `json:"PROFILE_PEGAWAI"`
	BirthDate text `json:"TGL_LAHIR_PEGAWAI"`
}

func (w staffProfileWire) profile() market.StaffProfile {
	return market.StaffProfile{
		ID:         int(w.ID),
		Name:       string(w.Name),
		Email:      string(w.Email),
		Phone:      string(w.Phone),
		Commission: int(w.Commission),
		Position:   string(w.Position.Name),
		BirthDate:  string(w.BirthDate),
		Photo:      string(w.Photo),
	}
}

// staffProfile fetches a pegawai profile through c.
func staffProfile(ctx context.Context, c *Client, id int) (market.StaffProfile, error) {
	if id <= 0 {
		return market.StaffProfile{}, market.Validationf("pegawai_id", "staff id is required")
	}
	r := request{method: http.MethodGet, path: pathf("/pegawai/%d/profile", id)}
	var w staffProfileWire
	if err := c.call(ctx, r, &w); err != nil {
		return market.StaffProfile{}, err
	}
	p := w.profile()
	if err := check(c, r, p); err != nil {
		return market.StaffProfile{}, err
	}
	return p, nil
}
