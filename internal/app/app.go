package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/simaogato/hearthledger-backend/internal/adapter/lock"
	"github.com/simaogato/hearthledger-backend/internal/adapter/repository/memory"
	"github.com/simaogato/hearthledger-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/hearthledger-backend/internal/config"
	"github.com/simaogato/hearthledger-backend/internal/domain"
	"github.com/simaogato/hearthledger-backend/internal/usecase/access"
	"github.com/simaogato/hearthledger-backend/internal/usecase/account"
	"github.com/simaogato/hearthledger-backend/internal/usecase/balance"
	"github.com/simaogato/hearthledger-backend/internal/usecase/checkpoint"
	"github.com/simaogato/hearthledger-backend/internal/usecase/dashboard"
	"github.com/simaogato/hearthledger-backend/internal/usecase/reconcile"
	"github.com/simaogato/hearthledger-backend/internal/usecase/transaction"
	"github.com/simaogato/hearthledger-backend/internal/usecase/workspace"
)

// Repositories bundles one implementation of every repository port
type Repositories struct {
	Workspaces   domain.WorkspaceRepository
	Memberships  domain.MembershipRepository
	Accounts     domain.AccountRepository
	Transactions domain.TransactionRepository
	Checkpoints  domain.CheckpointRepository
}

// MemoryRepositories backs every repository with the in-process store
func MemoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		Workspaces:   store.Workspaces(),
		Memberships:  store.Memberships(),
		Accounts:     store.Accounts(),
		Transactions: store.Transactions(),
		Checkpoints:  store.Checkpoints(),
	}
}

// PostgresRepositories backs every repository with Postgres
func PostgresRepositories(db *postgres.DB) Repositories {
	return Repositories{
		Workspaces:   postgres.NewWorkspaceRepository(db),
		Memberships:  postgres.NewMembershipRepository(db),
		Accounts:     postgres.NewAccountRepository(db),
		Transactions: postgres.NewTransactionRepository(db),
		Checkpoints:  postgres.NewCheckpointRepository(db),
	}
}

// Services holds the usecase layer
type Services struct {
	Recalculator *reconcile.Recalculator
	Checkpoints  *checkpoint.CheckpointService
	Transactions *transaction.TransactionService
	Accounts     *account.AccountService
	Workspaces   *workspace.WorkspaceService
	Dashboard    *dashboard.DashboardService
}

// NewServices wires the usecase layer on top of repos. locker may be nil.
func NewServices(repos Repositories, locker reconcile.Locker, log logrus.FieldLogger) *Services {
	authorizer := access.NewAuthorizer(repos.Memberships)
	calculator := balance.NewCalculator(repos.Transactions)
	recalculator := reconcile.NewRecalculator(repos.Checkpoints, calculator, locker, log)

	return &Services{
		Recalculator: recalculator,
		Checkpoints: checkpoint.NewCheckpointService(
			repos.Checkpoints, repos.Accounts, repos.Transactions, calculator, recalculator, authorizer, log,
		),
		Transactions: transaction.NewTransactionService(repos.Transactions, repos.Accounts, recalculator, authorizer, log),
		Accounts:     account.NewAccountService(repos.Accounts, authorizer, log),
		Workspaces:   workspace.NewWorkspaceService(repos.Workspaces, repos.Memberships, authorizer, log),
		Dashboard:    dashboard.NewDashboardService(repos.Accounts, repos.Checkpoints, calculator, authorizer, log),
	}
}

// OpenRepositories selects the storage backend from config.
// The returned close func releases the database connection, if any.
func OpenRepositories(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (Repositories, func() error, error) {
	switch cfg.StorageBackend {
	case config.StorageMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		return MemoryRepositories(memory.NewStore()), func() error { return nil }, nil
	case config.StoragePostgres:
		db, err := postgres.NewDB(ctx, cfg.DBDriver, cfg.DBConnStr)
		if err != nil {
			return Repositories{}, nil, err
		}
		if err := db.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return Repositories{}, nil, err
		}
		log.WithField("driver", cfg.DBDriver).Info("connected to postgres")
		return PostgresRepositories(db), db.Close, nil
	default:
		return Repositories{}, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// OpenLocker connects the cascade lock when REDIS_ADDRESS is set.
// Failure to reach redis is logged and the cascade runs unlocked.
func OpenLocker(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (reconcile.Locker, func() error) {
	noop := func() error { return nil }
	if cfg.RedisAddress == "" {
		return nil, noop
	}

	rdb, err := lock.NewRedisClient(ctx, cfg.RedisAddress)
	if err != nil {
		log.WithError(err).WithField("address", cfg.RedisAddress).Warn("redis unavailable, cascade lock disabled")
		return nil, noop
	}

	return lock.NewRedisLocker(rdb, cfg.CascadeLockTTL, log), rdb.Close
}
