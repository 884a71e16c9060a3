package identity

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository {
	return &userRepoPG{pool: pool}
}

func (r *userRepoPG) GetByAccountID(ctx context.Context, accountID string) (*User, error) {
	var u User
	err := r.pool.QueryRow(ctx, `
		SELECT account_id, org_id, loc_id, group_id, fac_type_id
		FROM users WHERE account_id = $1`, accountID).
		Scan(&u.AccountID, &u.OrgID, &u.LocID, &u.GroupID, &u.FacTypeID)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
