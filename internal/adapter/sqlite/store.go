// Package sqlite reads profiles, homes, and appliances from the SQLite
// database maintained by the CRUD service. The planner never writes to it.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/couchcryptid/upkeep-planner-service/internal/domain"
)

const (
	profilesTable   = "profiles"
	homesTable      = "homes"
	appliancesTable = "appliances"
)

var (
	profileColumns   = []string{"user_id", "first_name", "city", "state", "country", "last_home_id"}
	homeColumns      = []string{"id", "user_id", "nickname", "city", "state", "country", "zip", "lat", "lon", "bedrooms", "bathrooms", "floors", "move_in_year", "climate_zone"}
	applianceColumns = []string{"id", "user_id", "home_id", "type", "install_year", "brand", "model", "location"}
)

// Store is a read-only entity reader. It is safe for concurrent use.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Open connects to the database at dsn and verifies the connection.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// GetProfile returns the user's profile or domain.ErrNotFound.
func (s *Store) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(profileColumns...)
	sb.From(profilesTable)
	sb.Where(sb.Equal("user_id", userID))

	var row profileRow
	if err := s.get(ctx, sb, &row); err != nil {
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}
	p := row.toDomain()
	return &p, nil
}

// ListHomes returns the user's homes, newest first.
func (s *Store) ListHomes(ctx context.Context, userID string) ([]domain.Home, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(homeColumns...)
	sb.From(homesTable)
	sb.Where(sb.Equal("user_id", userID))
	sb.OrderBy("created_at").Desc()

	var rows []homeRow
	if err := s.selectAll(ctx, sb, &rows); err != nil {
		return nil, fmt.Errorf("list homes for %s: %w", userID, err)
	}
	homes := make([]domain.Home, len(rows))
	for i, r := range rows {
		homes[i] = r.toDomain()
	}
	return homes, nil
}

// GetHome returns one of the user's homes or domain.ErrNotFound.
func (s *Store) GetHome(ctx context.Context, userID, homeID string) (*domain.Home, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(homeColumns...)
	sb.From(homesTable)
	sb.Where(sb.Equal("id", homeID), sb.Equal("user_id", userID))

	var row homeRow
	if err := s.get(ctx, sb, &row); err != nil {
		return nil, fmt.Errorf("get home %s: %w", homeID, err)
	}
	h := row.toDomain()
	return &h, nil
}

// ListAppliances returns every appliance the user owns, newest first.
func (s *Store) ListAppliances(ctx context.Context, userID string) ([]domain.Appliance, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(applianceColumns...)
	sb.From(appliancesTable)
	sb.Where(sb.Equal("user_id", userID))
	sb.OrderBy("created_at").Desc()

	return s.appliances(ctx, sb)
}

// ListHomeAppliances returns the appliances installed in one home, newest first.
func (s *Store) ListHomeAppliances(ctx context.Context, userID, homeID string) ([]domain.Appliance, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(applianceColumns...)
	sb.From(appliancesTable)
	sb.Where(sb.Equal("user_id", userID), sb.Equal("home_id", homeID))
	sb.OrderBy("created_at").Desc()

	return s.appliances(ctx, sb)
}

// GetAppliance returns one of the user's appliances or domain.ErrNotFound.
func (s *Store) GetAppliance(ctx context.Context, userID, applianceID string) (*domain.Appliance, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(applianceColumns...)
	sb.From(appliancesTable)
	sb.Where(sb.Equal("id", applianceID), sb.Equal("user_id", userID))

	var row applianceRow
	if err := s.get(ctx, sb, &row); err != nil {
		return nil, fmt.Errorf("get appliance %s: %w", applianceID, err)
	}
	a := row.toDomain()
	return &a, nil
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) appliances(ctx context.Context, sb *sqlbuilder.SelectBuilder) ([]domain.Appliance, error) {
	var rows []applianceRow
	if err := s.selectAll(ctx, sb, &rows); err != nil {
		return nil, fmt.Errorf("list appliances: %w", err)
	}
	out := make([]domain.Appliance, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (s *Store) get(ctx context.Context, sb *sqlbuilder.SelectBuilder, dest any) error {
	query, args := sb.Build()
	err := s.db.GetContext(ctx, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		s.logger.Error("sqlite query failed", "query", query, "error", err)
	}
	return err
}

func (s *Store) selectAll(ctx context.Context, sb *sqlbuilder.SelectBuilder, dest any) error {
	query, args := sb.Build()
	if err := s.db.SelectContext(ctx, dest, query, args...); err != nil {
		s.logger.Error("sqlite query failed", "query", query, "error", err)
		return err
	}
	return nil
}
