package database

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbook/internal/models"
)

func TestConcurrentInserts(t *testing.T) {
	logger := zerolog.Nop()
	db, err := NewDB(filepath.Join(t.TempDir(), "concurrency.db"), &logger)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	const numGoroutines = 20
	var wg sync.WaitGroup
	errs := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			b := newBooking(fmt.Sprintf("b-%d", id), "room-1", "2030-03-01", "2030-03-02", models.StatusPending)
			errs <- db.InsertBooking(ctx, b)
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	all, err := db.ListBookings(ctx, models.BookingFilter{RoomID: "room-1"})
	require.NoError(t, err)
	assert.Len(t, all, numGoroutines)
}
