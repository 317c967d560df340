package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	usermodels "nftclicks-backend/internal/features/user/models"
	userrepo "nftclicks-backend/internal/features/user/repository"
)

// Walker propagates commissions up the sponsor chain. The chain is
// inherently sequential: each ancestor is found through the previous one's
// invite code, so the walk is a bounded loop of dependent lookups, not a
// fan-out.
type Walker struct {
	users  userrepo.UserRepository
	logger *zap.Logger
}

func NewWalker(users userrepo.UserRepository, logger *zap.Logger) *Walker {
	return &Walker{
		users:  users,
		logger: logger,
	}
}

// Propagate walks upward from origin, crediting each qualifying ancestor
// per the commission schedule. The walk ends at MaxDepth, at the first
// missing link, or at the first disqualified ancestor. Each credit is an
// atomic add-and-log against that ancestor; a storage failure ends the
// walk for deeper levels and is logged, never surfaced to the caller
// since the triggering activation already stands.
func (w *Walker) Propagate(ctx context.Context, origin *usermodels.User, event Event) {
	inviteCode := origin.InviteCode

	for depth := 0; depth <= MaxDepth; depth++ {
		if inviteCode == "" {
			return
		}

		ancestor, err := w.users.GetBySponsorID(ctx, inviteCode)
		if err != nil {
			if !errors.Is(err, userrepo.ErrUserNotFound) {
				w.logger.Error("sponsor lookup failed, ending walk",
					zap.String("event", event.String()),
					zap.String("origin", origin.Email),
					zap.Int("depth", depth),
					zap.Error(err),
				)
			}
			return
		}

		if !Qualifies(event, ancestor.Status) {
			w.logger.Debug("ancestor disqualified, ending walk",
				zap.String("event", event.String()),
				zap.String("ancestor", ancestor.Email),
				zap.String("status", string(ancestor.Status)),
				zap.Int("depth", depth),
			)
			return
		}

		commission, ok := CommissionAt(event, depth)
		if !ok {
			return
		}

		if err := w.users.CreditWallet(ctx, ancestor.Email, commission.Bucket, commission.Amount, commission.Entry); err != nil {
			w.logger.Error("commission credit failed, ending walk",
				zap.String("event", event.String()),
				zap.String("ancestor", ancestor.Email),
				zap.Int("depth", depth),
				zap.Int64("amount", commission.Amount),
				zap.Error(err),
			)
			return
		}

		w.logger.Info("commission credited",
			zap.String("event", event.String()),
			zap.String("ancestor", ancestor.Email),
			zap.Int("depth", depth),
			zap.Int64("amount", commission.Amount),
			zap.String("bucket", string(commission.Bucket)),
		)

		inviteCode = ancestor.InviteCode
	}
}
