package uow

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kirinyoku/dakshina/internal/repository"
	postgres "github.com/kirinyoku/dakshina/internal/repository/postgres"
)

// AfterCommit is a function that runs after a successful transaction commit.
type AfterCommit func(ctx context.Context)

// TxFunc is the body of a unit of work. Hooks registered through after run
// only once the transaction has committed.
type TxFunc func(ctx context.Context, tx repository.Repos, after func(AfterCommit)) error

// Transactor runs units of work against a store.
type Transactor interface {
	Do(ctx context.Context, fn TxFunc) error
}

const defaultMaxAttempts = 3

// UoW represents a unit of work.
type UoW struct {
	store       *postgres.Store
	maxAttempts int
}

func NewUoW(store *postgres.Store) *UoW {
	return &UoW{store: store, maxAttempts: defaultMaxAttempts}
}

// Do runs fn inside a serializable transaction, retrying serialization
// failures. After a successful commit, it executes all after-commit hooks.
func (u *UoW) Do(ctx context.Context, fn TxFunc) error {
	return u.DoWithOpts(ctx, nil, fn)
}

// DoWithOpts runs fn inside the transaction with the given options. After a successful commit,
// it executes all after-commit hooks.
func (u *UoW) DoWithOpts(ctx context.Context, opts *pgx.TxOptions, fn TxFunc) error {
	var (
		hooks []AfterCommit
		err   error
	)

	for attempt := 1; attempt <= u.maxAttempts; attempt++ {
		hooks = hooks[:0]

		err = u.store.RunTx(ctx, opts, func(ctx context.Context, tx postgres.DB) error {
			return fn(ctx, u.store.WithTx(tx), func(h AfterCommit) {
				hooks = append(hooks, h)
			})
		})
		if err == nil || !postgres.IsRetryable(err) || ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		if postgres.IsRetryable(err) {
			return fmt.Errorf("uow.UoW.Do:%w: %v", repository.ErrConflict, err)
		}
		return err
	}

	for _, h := range hooks {
		h(ctx)
	}

	return nil
}
