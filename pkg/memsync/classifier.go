package memsync

import (
	"context"
	"strings"
)

// ClassifySubscription derives the billing cadence from the user's membership
// levels. Levels are inspected in input order and the first level whose label
// contains "yearly" or "monthly" (case-insensitive, yearly checked first per
// level) wins, regardless of what later levels contain. Returns
// SubscriptionUnknown for an empty list or when no label matches; a label
// lookup failure skips that level and moves on.
func ClassifySubscription(ctx context.Context, source MembershipSource, levelIDs []string) SubscriptionType {
	for _, id := range levelIDs {
		label, err := source.GetLevelLabel(ctx, id)
		if err != nil {
			continue
		}
		switch {
		case containsFold(label, "yearly"):
			return SubscriptionYearly
		case containsFold(label, "monthly"):
			return SubscriptionMonthly
		}
	}
	return SubscriptionUnknown
}

// MemberStatusForLevels returns SUSPEND iff the level list is empty.
func MemberStatusForLevels(levelIDs []string) MemberStatus {
	if len(levelIDs) == 0 {
		return StatusSuspend
	}
	return StatusOpen
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}
