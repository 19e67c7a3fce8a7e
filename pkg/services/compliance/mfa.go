package compliance

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/de-tools/sec-atlas/pkg/models/domain"
	"github.com/de-tools/sec-atlas/pkg/models/store"
)

// checkMFA lists every user and marks them enrolled iff at least one of
// their factors is verified. Enumeration failure turns the whole check into
// ERROR; there is no partial report.
func (s *service) checkMFA(ctx context.Context, creds domain.Credentials) domain.MFAResult {
	logger := zerolog.Ctx(ctx)

	users, err := s.auth.ListUsers(ctx, creds)
	if err != nil {
		logger.Error().Err(err).Msg("mfa check: user enumeration failed")
		return domain.MFAResult{
			Status: domain.StatusError,
			Error:  err.Error(),
		}
	}

	if len(users) == 0 {
		return domain.MFAResult{
			Status:  domain.StatusNotApplicable,
			Message: "No users found in this project.",
			Users:   []domain.UserMFA{},
		}
	}

	result := domain.MFAResult{
		Status: domain.StatusPassing,
		Users:  make([]domain.UserMFA, 0, len(users)),
	}
	for _, u := range users {
		enrolled := hasVerifiedFactor(u)
		if !enrolled {
			result.Status = domain.StatusFailing
		}
		result.Users = append(result.Users, domain.UserMFA{
			ID:         u.ID,
			Email:      u.Email,
			Phone:      u.Phone,
			MFAEnabled: enrolled,
		})
	}

	if result.Status == domain.StatusFailing {
		result.Message = "Some users have not enrolled a verified second factor."
	} else {
		result.Message = "All users have a verified second factor."
	}
	return result
}

func hasVerifiedFactor(u store.AuthUser) bool {
	for _, f := range u.Factors {
		if f.Status == store.FactorStatusVerified {
			return true
		}
	}
	return false
}
