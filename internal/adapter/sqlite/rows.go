package sqlite

import (
	"database/sql"

	"github.com/couchcryptid/upkeep-planner-service/internal/domain"
)

type profileRow struct {
	UserID     string `db:"user_id"`
	FirstName  string `db:"first_name"`
	City       string `db:"city"`
	State      string `db:"state"`
	Country    string `db:"country"`
	LastHomeID string `db:"last_home_id"`
}

func (r profileRow) toDomain() domain.Profile {
	return domain.Profile{
		UserID:     r.UserID,
		FirstName:  r.FirstName,
		City:       r.City,
		State:      r.State,
		Country:    r.Country,
		LastHomeID: r.LastHomeID,
	}
}

type homeRow struct {
	ID          string          `db:"id"`
	UserID      string          `db:"user_id"`
	Nickname    string          `db:"nickname"`
	City        string          `db:"city"`
	State       string          `db:"state"`
	Country     string          `db:"country"`
	Zip         string          `db:"zip"`
	Lat         sql.NullFloat64 `db:"lat"`
	Lon         sql.NullFloat64 `db:"lon"`
	Bedrooms    sql.NullInt64   `db:"bedrooms"`
	Bathrooms   sql.NullInt64   `db:"bathrooms"`
	Floors      sql.NullInt64   `db:"floors"`
	MoveInYear  sql.NullInt64   `db:"move_in_year"`
	ClimateZone string          `db:"climate_zone"`
}

func (r homeRow) toDomain() domain.Home {
	h := domain.Home{
		ID:          r.ID,
		UserID:      r.UserID,
		Nickname:    r.Nickname,
		City:        r.City,
		State:       r.State,
		Country:     r.Country,
		Zip:         r.Zip,
		Bedrooms:    intPtr(r.Bedrooms),
		Bathrooms:   intPtr(r.Bathrooms),
		Floors:      intPtr(r.Floors),
		MoveInYear:  intPtr(r.MoveInYear),
		ClimateZone: domain.ClimateZone(r.ClimateZone),
	}
	if r.Lat.Valid && r.Lon.Valid {
		h.Geo = &domain.Geo{Lat: r.Lat.Float64, Lon: r.Lon.Float64}
	}
	return h
}

type applianceRow struct {
	ID          string        `db:"id"`
	UserID      string        `db:"user_id"`
	HomeID      string        `db:"home_id"`
	Type        string        `db:"type"`
	InstallYear sql.NullInt64 `db:"install_year"`
	Brand       string        `db:"brand"`
	Model       string        `db:"model"`
	Location    string        `db:"location"`
}

func (r applianceRow) toDomain() domain.Appliance {
	return domain.Appliance{
		ID:          r.ID,
		UserID:      r.UserID,
		HomeID:      r.HomeID,
		Type:        r.Type,
		InstallYear: intPtr(r.InstallYear),
		Brand:       r.Brand,
		Model:       r.Model,
		Location:    r.Location,
	}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
