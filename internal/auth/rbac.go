package auth

import (
	"strings"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
)

// Permission strings checked by the HTTP layer.
const (
	PermUsersManage        = "users:manage"
	PermClientsRead        = "clients:read"
	PermClientsWrite       = "clients:write"
	PermServicesWrite      = "services:write"
	PermActivitiesRead     = "operations:read"
	PermActivitiesWrite    = "operations:write"
	PermLinkPayment        = "operations:link_payment"
	PermLoyverseSync       = "integrations:sync"
	PermInventoryRead      = "inventory:read"
	PermInventoryWrite     = "inventory:write"
	PermTasksRead          = "tasks:read"
	PermTasksWrite         = "tasks:write"
	PermTasksManage        = "tasks:manage"
	PermContentRead        = "content:read"
	PermContentWrite       = "content:write"
	PermWigsRead           = "wigs:read"
	PermWigsWrite          = "wigs:write"
	PermLMSLearn           = "lms:learn"
	PermLMSManage          = "lms:manage"
	PermLMSReview          = "lms:review"
	PermCertificatesManage = "lms:certificates"
	PermExport             = "export:read"
)

// RolePermissions is the default policy. A trailing * matches any suffix.
var RolePermissions = map[models.UserRole][]string{
	models.RoleOwner: {"*"},
	models.RoleAdmin: {"*"},
	models.RoleManager: {
		"clients:*",
		"services:*",
		"operations:*",
		"integrations:*",
		"inventory:*",
		"tasks:*",
		"content:*",
		"wigs:*",
		"lms:*",
		"export:*",
	},
	models.RoleStaff: {
		PermClientsRead,
		PermClientsWrite,
		PermActivitiesRead,
		PermActivitiesWrite,
		PermInventoryRead,
		PermTasksRead,
		PermTasksWrite,
		PermContentRead,
		PermWigsRead,
		PermWigsWrite,
		PermLMSLearn,
	},
	models.RoleCashier: {
		PermClientsRead,
		PermActivitiesRead,
		PermActivitiesWrite,
		PermInventoryRead,
		PermTasksRead,
		PermTasksWrite,
		PermContentRead,
		PermWigsRead,
		PermLMSLearn,
	},
}

type Checker struct {
	RolePermissions map[models.UserRole][]string
}

func NewChecker(rp map[models.UserRole][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	return &Checker{RolePermissions: rp}
}

func (c *Checker) Has(role models.UserRole, perm string) bool {
	for _, p := range c.RolePermissions[role] {
		if matchPerm(p, perm) {
			return true
		}
	}
	return false
}

func (c *Checker) Any(role models.UserRole, perms ...string) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}

func (c *Checker) All(role models.UserRole, perms ...string) bool {
	for _, p := range perms {
		if !c.Has(role, p) {
			return false
		}
	}
	return true
}

func matchPerm(pattern, perm string) bool {
	if pattern == "*" || pattern == perm {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(perm, strings.TrimSuffix(pattern, "*"))
	}
	return false
}
