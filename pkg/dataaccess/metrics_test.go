package dataaccess

import (
	"context"
	"testing"

	"github.com/Jacobbrewer1/satla/pkg/dataaccess/monitoring"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := new(dto.Metric)
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}

func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	m := new(dto.Metric)
	require.NoError(t, o.(prometheus.Metric).Write(m))
	return m.GetHistogram().GetSampleCount()
}

func TestSQLiteStore_RecordsOperations(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	calls := monitoring.StoreOperations.WithLabelValues(DriverSQLite, sqliteDalName, "get_ticket", collectionTickets)
	durations := monitoring.StoreOperationDuration.WithLabelValues(DriverSQLite, sqliteDalName, "get_ticket", collectionTickets)
	beforeCalls := counterValue(t, calls)
	beforeDurations := histogramCount(t, durations)

	// Failed lookups are still counted.
	_, err := s.GetTicket(ctx, "g1", "TICKET-0001")
	require.ErrorIs(t, err, ErrNotFound)

	require.Equal(t, beforeCalls+1, counterValue(t, calls))
	require.Equal(t, beforeDurations+1, histogramCount(t, durations))
}

func TestStartOperation_SeparatesDrivers(t *testing.T) {
	mongoCalls := monitoring.StoreOperations.WithLabelValues(DriverMongo, guildDalName, "get_guild_by_id", collectionGuilds)
	sqliteCalls := monitoring.StoreOperations.WithLabelValues(DriverSQLite, sqliteDalName, "get_guild_by_id", collectionGuilds)
	beforeMongo := counterValue(t, mongoCalls)
	beforeSQLite := counterValue(t, sqliteCalls)

	monitoring.StartOperation(DriverMongo, guildDalName, "get_guild_by_id", collectionGuilds).ObserveDuration()

	require.Equal(t, beforeMongo+1, counterValue(t, mongoCalls))
	require.Equal(t, beforeSQLite, counterValue(t, sqliteCalls))
}
