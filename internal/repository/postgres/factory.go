package postgres

import (
	repo "github.com/baharkarakas/roamr-backend/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositories(pool *pgxpool.Pool) repo.Set {
	return repo.Set{
		Users:     &usersRepo{pool},
		Listings:  &listingsRepo{pool},
		Reviews:   &reviewsRepo{pool},
		AuditLogs: &auditLogsRepo{pool},
	}
}
