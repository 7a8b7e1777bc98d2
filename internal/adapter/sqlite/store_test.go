package sqlite

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/upkeep-planner-service/internal/domain"
)

// newTestStore creates a fresh database from testdata/schema.sql.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "upkeep.db")

	s, err := Open(context.Background(), dsn, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	schema, err := os.ReadFile(filepath.Join("testdata", "schema.sql"))
	require.NoError(t, err)
	_, err = s.db.Exec(string(schema))
	require.NoError(t, err)
	return s
}

func insert(t *testing.T, s *Store, table string, cols []string, values ...any) {
	t.Helper()
	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertInto(table)
	ib.Cols(cols...)
	ib.Values(values...)
	query, args := ib.Build()
	_, err := s.db.Exec(query, args...)
	require.NoError(t, err)
}

func TestStore_GetProfile(t *testing.T) {
	s := newTestStore(t)
	userID := uuid.NewString()
	insert(t, s, profilesTable, profileColumns, userID, "Dana", "Austin", "TX", "US", "")

	p, err := s.GetProfile(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Dana", p.FirstName)
	assert.Equal(t, domain.Location{City: "Austin", State: "TX", Country: "US"}, p.Location())

	_, err = s.GetProfile(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Homes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := uuid.NewString()
	older, newer := uuid.NewString(), uuid.NewString()

	cols := append(append([]string{}, homeColumns...), "created_at")
	insert(t, s, homesTable, cols, older, userID, "Cabin", "Duluth", "MN", "US", "", nil, nil, 1, 1, 1, 1995, "", "2023-01-01 00:00:00")
	insert(t, s, homesTable, cols, newer, userID, "House", "Austin", "TX", "US", "78701", 30.27, -97.74, 3, 2, 2, nil, "harsh", "2024-01-01 00:00:00")
	insert(t, s, homesTable, cols, uuid.NewString(), uuid.NewString(), "", "Elsewhere", "", "", "", nil, nil, nil, nil, nil, nil, "", "2024-06-01 00:00:00")

	homes, err := s.ListHomes(ctx, userID)
	require.NoError(t, err)
	require.Len(t, homes, 2)
	assert.Equal(t, newer, homes[0].ID, "newest first")
	assert.Equal(t, older, homes[1].ID)

	h, err := s.GetHome(ctx, userID, newer)
	require.NoError(t, err)
	require.NotNil(t, h.Geo)
	assert.InDelta(t, 30.27, h.Geo.Lat, 1e-9)
	assert.Equal(t, domain.ZoneHarsh, h.ClimateZone)
	require.NotNil(t, h.Floors)
	assert.Equal(t, 2, *h.Floors)
	assert.Nil(t, h.MoveInYear)

	cabin, err := s.GetHome(ctx, userID, older)
	require.NoError(t, err)
	assert.Nil(t, cabin.Geo)
	require.NotNil(t, cabin.MoveInYear)
	assert.Equal(t, 1995, *cabin.MoveInYear)

	_, err = s.GetHome(ctx, uuid.NewString(), newer)
	require.ErrorIs(t, err, domain.ErrNotFound, "homes are scoped to their owner")
}

func TestStore_Appliances(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID, homeID := uuid.NewString(), uuid.NewString()
	heater, washer, loose := uuid.NewString(), uuid.NewString(), uuid.NewString()

	cols := append(append([]string{}, applianceColumns...), "created_at")
	insert(t, s, appliancesTable, cols, heater, userID, homeID, "Water Heater", 2015, "Rheem", "XE50", "garage", "2023-05-01 00:00:00")
	insert(t, s, appliancesTable, cols, washer, userID, homeID, "washer", nil, "", "", "", "2024-02-01 00:00:00")
	insert(t, s, appliancesTable, cols, loose, userID, "", "microwave", 2020, "", "", "", "2024-03-01 00:00:00")

	all, err := s.ListAppliances(ctx, userID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{loose, washer, heater}, []string{all[0].ID, all[1].ID, all[2].ID})

	inHome, err := s.ListHomeAppliances(ctx, userID, homeID)
	require.NoError(t, err)
	require.Len(t, inHome, 2)
	assert.Nil(t, inHome[0].InstallYear)

	a, err := s.GetAppliance(ctx, userID, heater)
	require.NoError(t, err)
	assert.Equal(t, "Water Heater", a.Type)
	assert.Equal(t, "Rheem", a.Brand)
	require.NotNil(t, a.InstallYear)
	assert.Equal(t, 2015, *a.InstallYear)

	_, err = s.GetAppliance(ctx, userID, uuid.NewString())
	require.ErrorIs(t, err, domain.ErrNotFound)

	empty, err := s.ListAppliances(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStore_CheckReadiness(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CheckReadiness(context.Background()))
}
