package postgres

import (
	"context"

	"github.com/baharkarakas/roamr-backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type auditLogsRepo struct{ pool *pgxpool.Pool }

func (r *auditLogsRepo) Create(ctx context.Context, l models.AuditLog) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_logs(entity_type, entity_id, principal_id, action, details) VALUES($1,$2,$3,$4,$5)`,
		l.EntityType, l.EntityID, l.PrincipalID, l.Action, l.Details,
	)
	return mapErr("audit_logs.create", "audit_log", l.EntityID, err)
}
