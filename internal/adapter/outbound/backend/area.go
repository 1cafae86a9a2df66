package backend

// Area names a backend area. Each area owns exactly one Client per process.
type Area string

const (
	AreaAuth          Area = "auth"
	AreaBuyer         Area = "pembeli"
	AreaConsignor     Area = "penitip"
	AreaCourier       Area = "kurir"
	AreaHunter        Area = "hunter"
	AreaProfile       Area = "profile"
	AreaCatalog       Area = "catalog"
	AreaNotifications Area = "notifications"
	AreaMerchandise   Area = "merchandise"
)

// Areas lists every known area.
var Areas = []Area{
	AreaAuth,
	AreaBuyer,
	AreaConsignor,
	AreaCourier,
	AreaHunter,
	AreaProfile,
	AreaCatalog,
	AreaNotifications,
	AreaMerchandise,
}

// Valid reports whether a is a known area.
func (a Area) Valid() bool {
	for _, known := range Areas {
		if a == known {
			return true
		}
	}
	return false
}
