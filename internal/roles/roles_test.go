package roles_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-intel/vantage/internal/model"
	"github.com/vantage-intel/vantage/internal/roles"
)

func TestLookup_AllKnownRoles(t *testing.T) {
	for _, role := range roles.All() {
		p, err := roles.Lookup(role)
		require.NoError(t, err, "role %s", role)
		assert.Equal(t, role, p.Role)
		assert.NotEmpty(t, p.Domains)
		assert.NotEmpty(t, p.AuthorityTypes)
	}
}

func TestLookup_UnknownRoleErrors(t *testing.T) {
	_, err := roles.Lookup(model.Role("intern"))
	require.Error(t, err)
	assert.ErrorIs(t, err, roles.ErrUnknownRole)

	_, err = roles.Lookup(model.Role(""))
	assert.ErrorIs(t, err, roles.ErrUnknownRole)
}

func TestProfile_CFOInterests(t *testing.T) {
	p, err := roles.Lookup(model.RoleCFO)
	require.NoError(t, err)

	assert.True(t, p.InterestedInDomain("finance"))
	assert.True(t, p.InterestedInDomain("operations"))
	assert.False(t, p.InterestedInDomain("marketing"))

	assert.True(t, p.InterestedInType(roles.TypeCashFlow))
	assert.False(t, p.InterestedInType(roles.TypeCampaign))
}

func TestProfile_AuthorityIsExact(t *testing.T) {
	cfo, err := roles.Lookup(model.RoleCFO)
	require.NoError(t, err)
	assert.True(t, cfo.HasAuthority(roles.TypeCashFlow))
	assert.False(t, cfo.HasAuthority(roles.TypeChurnRisk), "churn is CMO territory")

	ceo, err := roles.Lookup(model.RoleCEO)
	require.NoError(t, err)
	for _, st := range []string{
		roles.TypeCashFlow, roles.TypeChurnRisk, roles.TypeSupplyChain, roles.TypeOpsEfficiency,
	} {
		assert.True(t, ceo.HasAuthority(st), "CEO has full authority over %s", st)
	}
}

func TestIsUrgentType(t *testing.T) {
	assert.True(t, roles.IsUrgentType(roles.TypeCashFlow))
	assert.True(t, roles.IsUrgentType(roles.TypeChurnRisk))
	assert.True(t, roles.IsUrgentType(roles.TypeSupplyChain))
	assert.True(t, roles.IsUrgentType(roles.TypeInventoryRisk))
	assert.False(t, roles.IsUrgentType(roles.TypeCampaign))
	assert.False(t, roles.IsUrgentType("unknown_type"))
}
