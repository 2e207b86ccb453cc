package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSettler struct {
	calls  atomic.Int64
	settle func(n int64) (int, error)
}

func (f *fakeSettler) SettlePendingBets(ctx context.Context) (int, error) {
	n := f.calls.Add(1)
	if f.settle != nil {
		return f.settle(n)
	}
	return 0, nil
}

func TestBackoffDelayFormula(t *testing.T) {
	p := New(zap.NewNop(), &fakeSettler{}, Config{
		Interval:      30 * time.Second,
		BackoffFactor: 2,
		MaxBackoff:    300 * time.Second,
	})

	// min(interval * factor^n, teto)
	assert.Equal(t, 60*time.Second, p.backoffDelay(1))
	assert.Equal(t, 120*time.Second, p.backoffDelay(2))
	assert.Equal(t, 240*time.Second, p.backoffDelay(3))
	assert.Equal(t, 300*time.Second, p.backoffDelay(4)) // 480s batem no teto
	assert.Equal(t, 300*time.Second, p.backoffDelay(10))
}

func TestConfigDefaults(t *testing.T) {
	p := New(zap.NewNop(), &fakeSettler{}, Config{Interval: time.Second})
	assert.Equal(t, float64(2), p.cfg.BackoffFactor)
	assert.Equal(t, 300*time.Second, p.cfg.MaxBackoff)
}

func TestStartRunsIterationsUntilStop(t *testing.T) {
	settler := &fakeSettler{}
	p := New(zap.NewNop(), settler, Config{
		Interval:      5 * time.Millisecond,
		BackoffFactor: 2,
		MaxBackoff:    20 * time.Millisecond,
	})

	var iterations atomic.Int64
	p.OnIteration = func() { iterations.Add(1) }

	p.Start()
	time.Sleep(40 * time.Millisecond)
	p.Stop()

	ran := settler.calls.Load()
	require.GreaterOrEqual(t, ran, int64(2), "o loop deve iterar repetidamente")
	assert.GreaterOrEqual(t, iterations.Load(), int64(2))

	// nenhuma iteração nova depois do Stop
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, ran, settler.calls.Load())
}

func TestLoopSurvivesFailuresAndCountsThem(t *testing.T) {
	settler := &fakeSettler{settle: func(n int64) (int, error) {
		if n <= 2 {
			return 0, errors.New("source down")
		}
		return 1, nil
	}}
	p := New(zap.NewNop(), settler, Config{
		Interval:      time.Millisecond,
		BackoffFactor: 1.0, // mantém o teste rápido sem mudar a lógica
		MaxBackoff:    5 * time.Millisecond,
	})

	var failures, settled atomic.Int64
	p.OnFailure = func() { failures.Add(1) }
	p.OnSettled = func(n int) { settled.Add(int64(n)) }

	p.Start()
	time.Sleep(50 * time.Millisecond)
	p.Stop()

	assert.Equal(t, int64(2), failures.Load())
	assert.GreaterOrEqual(t, settled.Load(), int64(1))
}

func TestBackoffResetsAfterSuccess(t *testing.T) {
	// falha, sucesso, falha: a segunda falha volta a dormir factor^1,
	// não continua a progressão de onde a primeira parou
	settler := &fakeSettler{settle: func(n int64) (int, error) {
		if n == 1 || n == 3 {
			return 0, errors.New("source down")
		}
		return 0, nil
	}}
	p := New(zap.NewNop(), settler, Config{
		Interval:      10 * time.Millisecond,
		BackoffFactor: 2,
		MaxBackoff:    time.Hour,
	})

	var mu sync.Mutex
	var delays []time.Duration
	tick := make(chan time.Time)
	close(tick) // dispara na hora
	never := make(chan time.Time)
	p.after = func(d time.Duration) <-chan time.Time {
		mu.Lock()
		defer mu.Unlock()
		delays = append(delays, d)
		if len(delays) >= 3 {
			return never // segura o loop até o Stop
		}
		return tick
	}

	p.Start()
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(delays) >= 3
	}, time.Second, time.Millisecond)
	p.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 20*time.Millisecond, delays[0]) // 1ª falha: interval * 2
	assert.Equal(t, 10*time.Millisecond, delays[1]) // sucesso: cadência normal
	assert.Equal(t, 20*time.Millisecond, delays[2]) // falha pós-sucesso: de novo interval * 2
}

func TestStopIsPromptDuringBackoff(t *testing.T) {
	settler := &fakeSettler{settle: func(int64) (int, error) {
		return 0, errors.New("always failing")
	}}
	// backoff longo: o Stop precisa cancelar o sono, não esperá-lo
	p := New(zap.NewNop(), settler, Config{
		Interval:      time.Hour,
		BackoffFactor: 2,
		MaxBackoff:    time.Hour,
	})

	p.Start()
	time.Sleep(10 * time.Millisecond) // deixa a primeira iteração falhar

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop não cancelou o sono do backoff")
	}
}

func TestStartTwiceIsNoop(t *testing.T) {
	settler := &fakeSettler{}
	p := New(zap.NewNop(), settler, Config{Interval: time.Hour})

	p.Start()
	p.Start() // segundo Start não dispara outro loop
	p.Stop()

	assert.LessOrEqual(t, settler.calls.Load(), int64(2))
}

func TestStopWithoutStartIsNoop(t *testing.T) {
	p := New(zap.NewNop(), &fakeSettler{}, Config{Interval: time.Hour})
	p.Stop() // não pode travar nem entrar em pânico
}
