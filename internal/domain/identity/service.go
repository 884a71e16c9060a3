package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/diverse/diverse/internal/domain/hierarchy"
)

// Service resolves accounts into hierarchy memberships.
type Service struct {
	users UserRepository
}

func NewService(users UserRepository) *Service {
	return &Service{users: users}
}

// Membership looks up the entity ids an account belongs to. An unknown
// account is not an error: it resolves to a membership with no entities, so
// only global and specialty overrides apply to it.
func (s *Service) Membership(ctx context.Context, accountID string) (hierarchy.Membership, error) {
	u, err := s.users.GetByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return hierarchy.Membership{AccountID: accountID}, nil
		}
		return hierarchy.Membership{}, err
	}
	return hierarchy.Membership{
		AccountID: u.AccountID,
		OrgID:     u.OrgID,
		LocID:     u.LocID,
		GroupID:   u.GroupID,
		FacTypeID: u.FacTypeID,
	}, nil
}
