package poller

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bmoreira/bet-ledger-poc/internal/bet-maker/gateway"
)

// Settler é a iteração de reconciliação executada a cada ciclo do poller.
type Settler interface {
	SettlePendingBets(ctx context.Context) (int, error)
}

// Config controla a cadência do loop e o backoff exponencial.
type Config struct {
	Interval      time.Duration // cadência entre iterações bem-sucedidas
	BackoffFactor float64       // default 2
	MaxBackoff    time.Duration // teto do backoff; default 300s
}

func (c *Config) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = 30 * time.Second
	}
	if c.BackoffFactor <= 0 {
		c.BackoffFactor = 2
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 300 * time.Second
	}
}

// Poller é o handle explícito do loop de reconciliação: quem gerencia o ciclo
// de vida do serviço segura o Poller e chama Start/Stop. As iterações são
// estritamente sequenciais: dorme, depois itera, nunca sobrepõe.
type Poller struct {
	log     *zap.Logger
	settler Settler
	cfg     Config

	// callbacks de métricas, ligadas no main de cada serviço
	OnIteration func()    // iteração concluída com sucesso
	OnSettled   func(int) // apostas liquidadas na iteração
	OnFailure   func()    // iteração falhou

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool

	// relógio do sono entre iterações, injetável nos testes
	after func(time.Duration) <-chan time.Time
}

func New(log *zap.Logger, settler Settler, cfg Config) *Poller {
	cfg.applyDefaults()
	return &Poller{log: log, settler: settler, cfg: cfg, after: time.After}
}

// Start dispara a goroutine do loop. Chamar com o loop já rodando é no-op.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		p.log.Warn("poller already running")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true

	go p.run(ctx)
	p.log.Info("event polling started", zap.Duration("interval", p.cfg.Interval))
}

// Stop cancela o sono ou o I/O em andamento e espera o loop encerrar.
// Nenhuma iteração nova começa depois do Stop; escritas por aposta são
// atômicas, então uma iteração interrompida só deixa PENDINGs para a próxima.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	cancel, done := p.cancel, p.done
	p.running = false
	p.mu.Unlock()

	cancel()
	<-done
	p.log.Info("event polling stopped")
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	consecutiveFailures := 0
	for {
		if ctx.Err() != nil {
			return
		}
		delay := p.cfg.Interval

		n, err := p.settler.SettlePendingBets(ctx)
		switch {
		case ctx.Err() != nil:
			return // cancelado no meio da iteração
		case err != nil:
			consecutiveFailures++
			delay = p.backoffDelay(consecutiveFailures)
			if p.OnFailure != nil {
				p.OnFailure()
			}

			var unavailable *gateway.SourceUnavailableError
			if errors.As(err, &unavailable) {
				p.log.Warn("event source unavailable, backing off",
					zap.Int("attempt", consecutiveFailures),
					zap.Duration("retryIn", delay),
					zap.Error(err),
				)
			} else {
				p.log.Error("reconciliation iteration failed, backing off",
					zap.Int("attempt", consecutiveFailures),
					zap.Duration("retryIn", delay),
					zap.Error(err),
				)
			}
		default:
			consecutiveFailures = 0
			if p.OnIteration != nil {
				p.OnIteration()
			}
			if n > 0 {
				if p.OnSettled != nil {
					p.OnSettled(n)
				}
				p.log.Info("bets settled", zap.Int("count", n))
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-p.after(delay):
		}
	}
}

// backoffDelay calcula min(interval * factor^n, teto).
func (p *Poller) backoffDelay(consecutiveFailures int) time.Duration {
	d := time.Duration(float64(p.cfg.Interval) * math.Pow(p.cfg.BackoffFactor, float64(consecutiveFailures)))
	if d > p.cfg.MaxBackoff || d <= 0 {
		d = p.cfg.MaxBackoff
	}
	return d
}
