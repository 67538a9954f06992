package domain

import "fmt"

// RewardType selects how a tournament computes winner payouts.
type RewardType string

const (
	RewardSurvival RewardType = "survival"
	RewardPerKill  RewardType = "per_kill"
	RewardHybrid   RewardType = "hybrid"
)

// RewardPolicy is the tagged payout variant. Exactly one of the three
// concrete policies applies per tournament; computation is exhaustive over
// the variant rather than branching on the raw reward type string.
type RewardPolicy interface {
	// TotalReward computes the payout for one winner given the flat prize
	// for their position and their recorded kill count.
	TotalReward(positionPrize int64, kills int) int64

	rewardPolicy()
}

// Survival pays the flat position prize only.
type Survival struct{}

func (Survival) TotalReward(positionPrize int64, _ int) int64 { return positionPrize }
func (Survival) rewardPolicy()                                {}

// PerKill pays a fixed amount per recorded kill, ignoring the position prize.
type PerKill struct {
	Amount int64
}

func (p PerKill) TotalReward(_ int64, kills int) int64 {
	if kills < 0 {
		return 0
	}
	return p.Amount * int64(kills)
}
func (PerKill) rewardPolicy() {}

// Hybrid pays the position prize plus a per-kill amount.
type Hybrid struct {
	PerKillAmount int64
}

func (h Hybrid) TotalReward(positionPrize int64, kills int) int64 {
	return Survival{}.TotalReward(positionPrize, kills) +
		PerKill{Amount: h.PerKillAmount}.TotalReward(positionPrize, kills)
}
func (Hybrid) rewardPolicy() {}

// PolicyFor builds the reward policy for a tournament.
func PolicyFor(t *Tournament) (RewardPolicy, error) {
	switch t.RewardType {
	case RewardSurvival:
		return Survival{}, nil
	case RewardPerKill:
		return PerKill{Amount: t.PerKillAmount}, nil
	case RewardHybrid:
		return Hybrid{PerKillAmount: t.PerKillAmount}, nil
	default:
		return nil, fmt.Errorf("unknown reward type %q", t.RewardType)
	}
}
