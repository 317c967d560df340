package service

import (
	"fmt"

	usermodels "nftclicks-backend/internal/features/user/models"
)

// Event is the kind of qualifying payment that triggers commission
// propagation up the sponsor chain.
type Event int

const (
	// EventActivation fires when an account enters a paid tier for the
	// first time.
	EventActivation Event = iota
	// EventUpgrade fires when an account moves from User to Leader.
	EventUpgrade
)

func (e Event) String() string {
	if e == EventUpgrade {
		return "upgrade"
	}
	return "activation"
}

// MaxDepth is the deepest ancestor level credited; depth 0 is the direct
// sponsor, so a single event pays out at most MaxDepth+1 ancestors.
const MaxDepth = 10

const (
	activationDirectAmount = 10
	activationLevelAmount  = 1
	upgradeDirectAmount    = 20
	upgradeTeamAmount      = 5
)

// Commission is one ancestor's payout: wallet bucket, amount, and the
// ledger entry to append alongside.
type Commission struct {
	Amount int64
	Bucket usermodels.Bucket
	Entry  usermodels.Transaction
}

// CommissionAt returns the payout for an ancestor at the given depth.
// Depths beyond MaxDepth pay nothing.
func CommissionAt(event Event, depth int) (Commission, bool) {
	if depth < 0 || depth > MaxDepth {
		return Commission{}, false
	}

	switch event {
	case EventActivation:
		if depth == 0 {
			return Commission{
				Amount: activationDirectAmount,
				Bucket: usermodels.BucketReferral,
				Entry: usermodels.Transaction{
					Type:   usermodels.TransactionReferral,
					Amount: activationDirectAmount,
					Level:  "direct",
				},
			}, true
		}
		return Commission{
			Amount: activationLevelAmount,
			Bucket: usermodels.BucketLevel,
			Entry: usermodels.Transaction{
				Type:   usermodels.TransactionLevel,
				Amount: activationLevelAmount,
				Level:  fmt.Sprintf("level-%d", depth),
			},
		}, true

	case EventUpgrade:
		if depth == 0 {
			return Commission{
				Amount: upgradeDirectAmount,
				Bucket: usermodels.BucketReferral,
				Entry: usermodels.Transaction{
					Type:   usermodels.TransactionUpgrade,
					Amount: upgradeDirectAmount,
					Level:  "direct",
				},
			}, true
		}
		return Commission{
			Amount: upgradeTeamAmount,
			Bucket: usermodels.BucketTeam,
			Entry: usermodels.Transaction{
				Type:   usermodels.TransactionUpgrade,
				Amount: upgradeTeamAmount,
				Level:  fmt.Sprintf("level-%d", depth),
			},
		}, true
	}

	return Commission{}, false
}

// Qualifies is the per-depth gate. A disqualified ancestor earns nothing
// and ends the walk: depths beyond it are never visited.
func Qualifies(event Event, status usermodels.Status) bool {
	switch event {
	case EventActivation:
		return status != usermodels.StatusNone && status != ""
	case EventUpgrade:
		return status == usermodels.StatusLeader
	}
	return false
}
