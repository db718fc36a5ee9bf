package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kirinyoku/dakshina/internal/repository"
)

// DB is the query surface shared by pools and transactions.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Pool is a DB that can open transactions. *pgxpool.Pool satisfies it.
type Pool interface {
	DB
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type Store struct {
	pool Pool
}

func NewStore(pool Pool) *Store {
	return &Store{
		pool: pool,
	}
}

func (s *Store) RunTx(
	ctx context.Context,
	opts *pgx.TxOptions,
	fn func(ctx context.Context, tx DB) error,
) error {
	txOpts := pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	}

	if opts != nil {
		txOpts.IsoLevel = opts.IsoLevel
		txOpts.AccessMode = opts.AccessMode
		txOpts.DeferrableMode = opts.DeferrableMode
	}

	tx, err := s.pool.BeginTx(ctx, txOpts)
	if err != nil {
		return err
	}

	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// WithTx returns repositories bound to tx.
func (s *Store) WithTx(tx DB) repository.Repos {
	return txRepos{tx: tx}
}

func (s *Store) Bookings() repository.BookingRepo    { return &BookingRepo{pool: s.pool} }
func (s *Store) StatusLog() repository.StatusLogRepo { return &StatusLogRepo{pool: s.pool} }
func (s *Store) Distances() repository.DistanceRepo  { return &DistanceRepo{pool: s.pool} }
func (s *Store) Pandits() repository.PanditRepo      { return &PanditRepo{pool: s.pool} }

type txRepos struct {
	tx DB
}

func (r txRepos) Bookings() repository.BookingRepo    { return (&BookingRepo{}).With(r.tx) }
func (r txRepos) StatusLog() repository.StatusLogRepo { return (&StatusLogRepo{}).With(r.tx) }
func (r txRepos) Distances() repository.DistanceRepo  { return (&DistanceRepo{}).With(r.tx) }
func (r txRepos) Pandits() repository.PanditRepo      { return (&PanditRepo{}).With(r.tx) }
