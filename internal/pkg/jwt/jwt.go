package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
)

const (
	claimRole = "role"
	claimType = "type"

	tokenTypeAccess = "access"
)

var ErrInvalidClaims = errors.New("token is missing the employee id or role")

// Identity is what a verified access token says about its bearer.
type Identity struct {
	EmployeeID string
	Role       rbac.Role
}

type Service interface {
	GenerateAccessToken(employeeID string, role rbac.Role) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpiration time.Duration
	tokenAuth             *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// NewJWTService signs and verifies HS256 tokens. Identities are issued by an
// external provider sharing the secret; GenerateAccessToken serves tooling and tests.
func NewJWTService(secretKey string, accessTokenExpiration time.Duration) Service {
	return &JWTService{
		accessTokenExpiration: accessTokenExpiration,
		tokenAuth:             jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(employeeID string, role rbac.Role) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenExpiration).Unix()

	claims := map[string]interface{}{
		jwt.SubjectKey:    employeeID,
		claimRole:         string(role),
		claimType:         tokenTypeAccess,
		jwt.ExpirationKey: expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// IdentityFromContext reads the identity verified by jwtauth.Verifier.
// Tokens without a type claim are accepted; tokens of another type are not.
func IdentityFromContext(ctx context.Context) (Identity, error) {
	token, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Identity{}, err
	}
	if token == nil {
		return Identity{}, ErrInvalidClaims
	}

	if tokenType, ok := claims[claimType]; ok && tokenType != tokenTypeAccess {
		return Identity{}, ErrInvalidClaims
	}

	role, _ := claims[claimRole].(string)
	if token.Subject() == "" || role == "" {
		return Identity{}, ErrInvalidClaims
	}
	return Identity{EmployeeID: token.Subject(), Role: rbac.Role(role)}, nil
}
