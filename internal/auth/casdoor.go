package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/SAP-F-2025/backoffice-service/internal/config"
	"github.com/SAP-F-2025/backoffice-service/internal/models"
)

// LocalUsers resolves a casdoor account to the local staff record
type LocalUsers interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// CasdoorVerifier validates tokens signed by a casdoor instance. The local
// user table stays the source of truth for ids and roles when the account
// exists there; otherwise the casdoor tag is used as the role.
type CasdoorVerifier struct {
	client *casdoorsdk.Client
	users  LocalUsers
}

func NewCasdoorVerifier(cfg config.AuthConfig, users LocalUsers) *CasdoorVerifier {
	client := casdoorsdk.NewClient(
		cfg.CasdoorEndpoint,
		cfg.CasdoorClientID,
		cfg.CasdoorClientSecret,
		cfg.CasdoorCertificate,
		cfg.CasdoorOrganization,
		cfg.CasdoorApplication,
	)
	return &CasdoorVerifier{client: client, users: users}
}

func (v *CasdoorVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	claims, err := v.client.ParseJwtToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	identity := &Identity{
		Username: claims.User.Name,
		Email:    claims.User.Email,
		Role:     roleFromCasdoor(claims.User.Tag, claims.User.IsAdmin),
	}

	if v.users != nil {
		user, err := v.users.FindByUsername(ctx, claims.User.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve casdoor user: %w", err)
		}
		if user != nil {
			if !user.IsActive {
				return nil, ErrInvalidToken
			}
			identity.UserID = user.ID
			identity.Role = user.Role
		}
	}

	return identity, nil
}

func roleFromCasdoor(tag string, isAdmin bool) models.UserRole {
	role := models.UserRole(strings.ToUpper(strings.TrimSpace(tag)))
	if role.IsValid() {
		return role
	}
	if isAdmin {
		return models.RoleAdmin
	}
	return models.RoleStaff
}
