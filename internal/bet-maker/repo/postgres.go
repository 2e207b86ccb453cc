package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bmoreira/bet-ledger-poc/internal/domain/bet"
)

// Postgres implementa BetRepository sobre database/sql + lib/pq.
// Cada operação é um statement único, atômico por si só; não há transação
// multi-statement porque nenhuma operação do contrato precisa de uma.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

const betColumns = `id, event_id, amount, status, created_at`

func (p *Postgres) GetAll(ctx context.Context) ([]bet.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+betColumns+` FROM bets ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, &ConnectionError{Op: "get all bets", Err: err}
	}
	defer rows.Close()
	return scanBets(rows)
}

func (p *Postgres) GetByID(ctx context.Context, betID int64) (bet.Bet, error) {
	var b bet.Bet
	err := p.db.QueryRowContext(ctx, `
		SELECT `+betColumns+` FROM bets WHERE id=$1`, betID).
		Scan(&b.ID, &b.EventID, &b.Amount, &b.Status, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return bet.Bet{}, ErrBetNotFound
	}
	if err != nil {
		return bet.Bet{}, &ConnectionError{Op: "get bet by id", Err: err}
	}
	return b, nil
}

func (p *Postgres) GetByEventID(ctx context.Context, eventID int64) ([]bet.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+betColumns+` FROM bets WHERE event_id=$1 ORDER BY id`, eventID)
	if err != nil {
		return nil, &ConnectionError{Op: "get bets by event", Err: err}
	}
	defer rows.Close()
	return scanBets(rows)
}

func (p *Postgres) GetByStatus(ctx context.Context, status bet.Status) ([]bet.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+betColumns+` FROM bets WHERE status=$1 ORDER BY id`, string(status))
	if err != nil {
		return nil, &ConnectionError{Op: "get bets by status", Err: err}
	}
	defer rows.Close()
	return scanBets(rows)
}

// Create insere a aposta com status PENDING; id e created_at vêm do banco.
func (p *Postgres) Create(ctx context.Context, b bet.Bet) (bet.Bet, error) {
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO bets (event_id, amount, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		b.EventID, b.Amount, string(bet.StatusPending),
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return bet.Bet{}, &ConnectionError{Op: "create bet", Err: err}
	}
	b.Status = bet.StatusPending
	return b, nil
}

// UpdateStatus só transiciona linhas ainda PENDING; o guard no WHERE garante
// que reprocessar um evento finalizado nunca re-aplica uma transição.
func (p *Postgres) UpdateStatus(ctx context.Context, betID int64, status bet.Status) (bool, error) {
	res, err := p.db.ExecContext(ctx, `
		UPDATE bets SET status=$1 WHERE id=$2 AND status=$3`,
		string(status), betID, string(bet.StatusPending))
	if err != nil {
		return false, &ConnectionError{Op: "update bet status", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, &ConnectionError{Op: "update bet status", Err: err}
	}
	return n == 1, nil
}

func scanBets(rows *sql.Rows) ([]bet.Bet, error) {
	var out []bet.Bet
	for rows.Next() {
		var b bet.Bet
		if err := rows.Scan(&b.ID, &b.EventID, &b.Amount, &b.Status, &b.CreatedAt); err != nil {
			return nil, &ConnectionError{Op: "scan bet", Err: err}
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, &ConnectionError{Op: "scan bets", Err: err}
	}
	return out, nil
}
