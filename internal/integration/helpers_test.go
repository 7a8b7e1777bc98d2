//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/upkeep-planner-service/internal/adapter/sqlite"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node KRaft broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("upkeep-test"))
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start kafka container")

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "connect to kafka")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "find kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "connect to kafka controller")
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// openStore creates a schema-initialized sqlite database and returns the
// planner's read-only store plus a handle for seeding rows.
func openStore(ctx context.Context, t *testing.T) (*sqlite.Store, *sqlx.DB) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "upkeep.db")

	seed, err := sqlx.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = seed.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "adapter", "sqlite", "testdata", "schema.sql"))
	require.NoError(t, err)
	_, err = seed.ExecContext(ctx, string(schema))
	require.NoError(t, err)

	store, err := sqlite.Open(ctx, dsn, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, seed
}

func insertRow(t *testing.T, db *sqlx.DB, table string, row map[string]any) {
	t.Helper()
	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertInto(table)
	cols := make([]string, 0, len(row))
	vals := make([]any, 0, len(row))
	for c, v := range row {
		cols = append(cols, c)
		vals = append(vals, v)
	}
	ib.Cols(cols...)
	ib.Values(vals...)
	query, args := ib.Build()
	_, err := db.Exec(query, args...)
	require.NoError(t, err)
}
