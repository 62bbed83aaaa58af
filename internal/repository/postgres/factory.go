package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/zilix-space/adapix-backend/internal/repository"
)

type Repositories struct {
	Users        repo.Users
	Transactions repo.Transactions
	AuditLogs    repo.AuditLogs
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:        &usersRepo{pool},
		Transactions: &transactionsRepo{pool},
		AuditLogs:    &auditLogsRepo{pool},
	}
}
