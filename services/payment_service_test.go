package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rap-battle-platform/models"
)

func TestFindCreditPack(t *testing.T) {
	pack, ok := FindCreditPack("hustler_1200")
	assert.True(t, ok)
	assert.Equal(t, int64(1200), pack.Coins)
	assert.Equal(t, int64(999), pack.PriceUSD)

	_, ok = FindCreditPack("nonexistent")
	assert.False(t, ok)
}

func TestFindSubscriptionPlan(t *testing.T) {
	plan, ok := FindSubscriptionPlan("premium_monthly")
	assert.True(t, ok)
	assert.Equal(t, int64(1000), plan.MonthlyCoins)

	_, ok = FindSubscriptionPlan("")
	assert.False(t, ok)
}

func TestCatalogIDsAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for _, p := range models.CreditPacks {
		_, dup := seen[p.ID]
		assert.False(t, dup, "duplicate pack id %s", p.ID)
		seen[p.ID] = struct{}{}
	}
	for _, p := range models.SubscriptionPlans {
		_, dup := seen[p.ID]
		assert.False(t, dup, "duplicate plan id %s", p.ID)
		seen[p.ID] = struct{}{}
	}
}
