package shutdown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"anspacker/internal/logger"
)

func TestManager_ReverseOrder(t *testing.T) {
	m := NewManager(logger.NoOpLogger{})

	var order []string
	m.Register(Func(func() { order = append(order, "first") }))
	m.Register(Func(func() { order = append(order, "second") }))
	m.Register(Func(func() { order = append(order, "third") }))

	m.Shutdown()

	assert.Equal(t, []string{"third", "second", "first"}, order)
	assert.Error(t, m.Context().Err())

	select {
	case <-m.Done():
	default:
		t.Fatal("Done not closed")
	}
}

func TestManager_ShutdownOnce(t *testing.T) {
	m := NewManager(logger.NoOpLogger{})

	calls := 0
	m.Register(Func(func() { calls++ }))

	m.Shutdown()
	m.Shutdown()
	assert.Equal(t, 1, calls)
}

func TestManager_Timeout(t *testing.T) {
	m := NewManager(logger.NoOpLogger{})
	m.SetTimeout(20 * time.Millisecond)

	block := make(chan struct{})
	defer close(block)

	reached := false
	m.Register(Func(func() { reached = true }))
	m.Register(Func(func() { <-block }))

	start := time.Now()
	m.Shutdown()

	assert.True(t, reached, "components after a stuck one still run")
	assert.Less(t, time.Since(start), time.Second)
}

func TestManager_ListenStop(t *testing.T) {
	m := NewManager(logger.NoOpLogger{})
	stop := m.Listen()
	stop()
	stop()

	select {
	case <-m.Done():
		t.Fatal("shutdown should not have run")
	default:
	}
}
