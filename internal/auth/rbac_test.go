package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
)

func TestMatchPerm(t *testing.T) {
	tests := []struct {
		pattern string
		perm    string
		want    bool
	}{
		{"*", "lms:manage", true},
		{"lms:*", "lms:review", true},
		{"lms:*", "inventory:write", false},
		{"tasks:read", "tasks:read", true},
		{"tasks:read", "tasks:write", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchPerm(tt.pattern, tt.perm), "%s vs %s", tt.pattern, tt.perm)
	}
}

func TestChecker_DefaultPolicy(t *testing.T) {
	checker := NewChecker(nil)

	assert.True(t, checker.Has(models.RoleOwner, PermUsersManage))
	assert.True(t, checker.Has(models.RoleManager, PermLinkPayment))
	assert.True(t, checker.Has(models.RoleManager, PermLMSReview))
	assert.False(t, checker.Has(models.RoleManager, PermUsersManage))

	assert.False(t, checker.Has(models.RoleStaff, PermLinkPayment))
	assert.False(t, checker.Has(models.RoleCashier, PermLMSManage))
	assert.True(t, checker.Any(models.RoleCashier, PermLMSManage, PermLMSLearn))
	assert.False(t, checker.All(models.RoleStaff, PermInventoryRead, PermInventoryWrite))

	assert.True(t, checker.Has(models.RoleCashier, PermContentRead))
	assert.False(t, checker.Has(models.RoleStaff, PermContentWrite))
	assert.True(t, checker.Has(models.RoleManager, PermContentWrite))
	assert.True(t, checker.All(models.RoleStaff, PermWigsRead, PermWigsWrite))
	assert.False(t, checker.Has(models.RoleCashier, PermWigsWrite))

	assert.False(t, checker.Has("UNKNOWN", PermClientsRead))
}
