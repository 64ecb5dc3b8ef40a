package pgsql

import (
	portsrepo "github.com/lavadero/carwash_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		RecordRepo:    newPgxRecordRepository(dbPool),
		AccountRepo:   newPgxAccountRepository(dbPool),
		PriceListRepo: newPgxPriceListRepository(dbPool),
		PromotionRepo: newPgxPromotionRepository(dbPool),
		BranchRepo:    newPgxBranchRepository(dbPool),
		UserRepo:      newPgxUserRepository(dbPool),
		ReportingRepo: newPgxReportingRepository(dbPool),
	}
}
