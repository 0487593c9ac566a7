package postgres

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnCacheEstablishesOnce(t *testing.T) {
	var opens int32
	cache := NewConnCache("unused")
	cache.open = func(string) (*sql.DB, error) {
		atomic.AddInt32(&opens, 1)
		time.Sleep(20 * time.Millisecond)
		return &sql.DB{}, nil
	}

	const callers = 10
	var wg sync.WaitGroup
	results := make([]*sql.DB, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			db, err := cache.Get(context.Background())
			require.NoError(t, err)
			results[i] = db
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&opens))
	for _, db := range results {
		assert.Same(t, results[0], db)
	}
}

func TestConnCacheRetriesAfterFailure(t *testing.T) {
	var opens int32
	boom := errors.New("connection refused")
	cache := NewConnCache("unused")
	cache.open = func(string) (*sql.DB, error) {
		if atomic.AddInt32(&opens, 1) == 1 {
			return nil, boom
		}
		return &sql.DB{}, nil
	}

	_, err := cache.Get(context.Background())
	require.ErrorIs(t, err, boom)

	// the failed attempt was cleared, so this is a fresh establishment
	db, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, db)
	assert.Equal(t, int32(2), atomic.LoadInt32(&opens))
}

func TestConnCacheWaiterSeesAttemptFailure(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	boom := errors.New("no route to host")

	var calls int32
	cache := NewConnCache("unused")
	cache.open = func(string) (*sql.DB, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
			<-release
		}
		return nil, boom
	}

	ownerDone := make(chan error, 1)
	go func() {
		_, err := cache.Get(context.Background())
		ownerDone <- err
	}()

	<-started
	waiterDone := make(chan error, 1)
	go func() {
		_, err := cache.Get(context.Background())
		waiterDone <- err
	}()

	time.Sleep(10 * time.Millisecond)
	close(release)
	require.ErrorIs(t, <-ownerDone, boom)
	require.ErrorIs(t, <-waiterDone, boom)
}

func TestConnCacheWaiterHonorsContext(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	cache := NewConnCache("unused")
	cache.open = func(string) (*sql.DB, error) {
		close(started)
		<-release
		return &sql.DB{}, nil
	}

	go cache.Get(context.Background())
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := cache.Get(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
