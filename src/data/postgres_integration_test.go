//go:build integration

package data

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jiaming2012/skew-entropy/src/dbutils"
	"github.com/jiaming2012/skew-entropy/src/eventmodels"
)

func setupPostgres(t *testing.T, ctx context.Context) dbutils.PostgresConfig {
	cfg := dbutils.PostgresConfig{
		User:     "postgres",
		Password: "postgres",
		DBName:   "options",
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     cfg.User,
				"POSTGRES_PASSWORD": cfg.Password,
				"POSTGRES_DB":       cfg.DBName,
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForListeningPort("5432/tcp").WithStartupTimeout(60*time.Second),
			),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	cfg.Host, err = container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	cfg.Port = port.Port()

	return cfg
}

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()
	store := NewPostgresStore(setupPostgres(t, ctx))

	require.NoError(t, store.Migrate(ctx))

	t.Run("replace and fetch quotes", func(t *testing.T) {
		rows := []*eventmodels.OptionChainRow{
			newChainRow("2024-07-01", "2024-08-30", 6000),
			newChainRow("2024-07-01", "2024-08-30", 4000),
			newChainRow("2024-07-01", "2024-08-30", 4000),
		}

		n, err := store.ReplaceQuoteDate(ctx, day("2024-07-01"), rows)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = store.ReplaceQuoteDate(ctx, day("2024-07-01"), rows[:1])
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		quotes, err := store.FetchOptionQuotes(ctx, day("2024-07-01"), day("2024-07-01"))
		require.NoError(t, err)
		require.Len(t, quotes, 1)
		assert.Equal(t, day("2024-07-01"), quotes[0].QuoteDate)
		assert.Equal(t, 60, quotes[0].DTE)

		mid, ok := quotes[0].CallMid()
		require.True(t, ok)
		assert.InDelta(t, 1.1, mid, 1e-9)
	})

	t.Run("entropy runs", func(t *testing.T) {
		run := eventmodels.NewEntropyRun(day("2024-01-01"), day("2024-07-01"), 28, 118)
		run.Tolerance = 0.02
		run.Points = []eventmodels.EntropyPoint{
			{Date: day("2024-06-28"), Entropy: 0.42, Skewness: -0.60},
			{Date: day("2024-06-27"), Entropy: 0.41, Skewness: -0.55},
		}

		require.NoError(t, store.SaveEntropyRun(ctx, run))

		found, err := store.FetchEntropyRun(ctx, run.ID)
		require.NoError(t, err)
		require.Len(t, found.Points, 2)
		assert.Equal(t, day("2024-06-27"), found.Points[0].Date)
		assert.InDelta(t, 0.02, found.Tolerance, 1e-12)

		_, err = store.FetchEntropyRun(ctx, uuid.New())
		var webErr *eventmodels.WebError
		assert.True(t, errors.As(err, &webErr))
	})
}
