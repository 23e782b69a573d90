package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSweeperStop(t *testing.T) {
	w := NewCartSweeper(nil, time.Hour, time.Hour)

	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Start(context.Background())
	}()

	w.Stop()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestSweeperContextCancel(t *testing.T) {
	w := NewCartSweeper(nil, time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Start(ctx)
	}()

	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
