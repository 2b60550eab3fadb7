package models

import "strings"

// MembershipTier is the unified membership status of a user.
type MembershipTier string

const (
	TierFree    MembershipTier = "free"
	TierPremium MembershipTier = "premium"
)

// Valid reports whether t is a known tier.
func (t MembershipTier) Valid() bool {
	return t == TierFree || t == TierPremium
}

// IsMember reports whether the tier grants membership.
func (t MembershipTier) IsMember() bool {
	return t == TierPremium
}

// ResolveTier reads the tier from the stored fields. Premium in either
// representation grants membership, since legacy writers only set isMember.
func ResolveTier(membership MembershipTier, legacyIsMember bool) MembershipTier {
	switch MembershipTier(strings.ToLower(string(membership))) {
	case TierPremium:
		return TierPremium
	case TierFree:
		if legacyIsMember {
			return TierPremium
		}
		return TierFree
	}
	if legacyIsMember {
		return TierPremium
	}
	return TierFree
}
