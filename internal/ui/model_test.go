package ui

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playtab/internal/adapters/memstore"
	"playtab/internal/services"
	"playtab/internal/syncer"
)

func newTestModel(t *testing.T, bus *syncer.Broadcaster) *Model {
	t.Helper()
	store := memstore.New()
	t.Cleanup(func() { store.Close() })

	archiver := services.NewArchiver(store)
	service := services.NewSessionService(store, bus, archiver)
	reports := services.NewReportService(store)
	coord := syncer.New(store, nil, bus, service, syncer.Options{})

	return NewModel(service, reports, coord, bus, decimal.NewFromInt(159))
}

func TestModel_CloseReleasesBusSubscription(t *testing.T) {
	bus := syncer.NewBroadcaster()

	// Several dashboards over one bus, as the SSH server wires them.
	models := make([]*Model, 0, 5)
	for i := 0; i < 5; i++ {
		models = append(models, newTestModel(t, bus))
	}
	require.Equal(t, 5, bus.SubscriberCount())

	// Dropped connections tear down their views without a quit key.
	for _, m := range models {
		m.Close()
	}
	assert.Equal(t, 0, bus.SubscriberCount())
}

func TestModel_CloseEndsListenCommand(t *testing.T) {
	bus := syncer.NewBroadcaster()
	m := newTestModel(t, bus)

	m.Close()

	// The closed channel unblocks the pending listen command.
	msg := m.listenCmd()()
	assert.IsType(t, busClosedMsg{}, msg)
}

func TestModel_CloseIsIdempotent(t *testing.T) {
	bus := syncer.NewBroadcaster()
	m := newTestModel(t, bus)

	m.Close()
	m.Close()
	assert.Equal(t, 0, bus.SubscriberCount())
}
