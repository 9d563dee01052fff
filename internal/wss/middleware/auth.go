package middleware

import (
	"errors"
	"log"
	"strings"

	"github.com/zenvx/CodeBattleCoordService/internal/jwt"
	"github.com/zenvx/CodeBattleCoordService/internal/wss/broadcasts"
	wsstypes "github.com/zenvx/CodeBattleCoordService/internal/wss/types"
)

// AuthMiddleware handles JWT authentication for WebSocket connections
type AuthMiddleware struct {
	jwtManager *jwt.JWTManager
}

func NewAuthMiddleware(jwtManager *jwt.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager}
}

// AuthenticateJWT validates a token and returns its claims.
func (m *AuthMiddleware) AuthenticateJWT(token string) (*jwt.CustomClaims, error) {
	if token == "" {
		return nil, errors.New("token is required")
	}
	if after, ok := strings.CutPrefix(token, "Bearer "); ok {
		token = after
	}

	claims, err := m.jwtManager.ValidateToken(token)
	if err != nil {
		log.Printf("[Auth] JWT validation failed: %v", err)
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}

// AuthorizeBattleAccess checks that the token was issued for the battle the
// request targets.
func (m *AuthMiddleware) AuthorizeBattleAccess(token, battleID string) (*jwt.CustomClaims, error) {
	claims, err := m.AuthenticateJWT(token)
	if err != nil {
		return nil, err
	}
	if claims.BattleID != "" && claims.BattleID != battleID {
		log.Printf("[Auth] battle ID mismatch: token has %s, request has %s", claims.BattleID, battleID)
		return nil, errors.New("battle ID mismatch")
	}
	return claims, nil
}

// RequireBattleToken wraps battle-scoped handlers. The token must verify and,
// when it carries a battle id, match the battle the message targets.
func (m *AuthMiddleware) RequireBattleToken(next func(*wsstypes.WsContext) error) func(*wsstypes.WsContext) error {
	return func(ctx *wsstypes.WsContext) error {
		token, _ := ctx.Payload["token"].(string)
		if token == "" {
			return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.AUTH_ERROR, "Authentication token required", nil)
		}

		battleID, _ := ctx.Payload["battleId"].(string)
		claims, err := m.AuthorizeBattleAccess(token, battleID)
		if err != nil {
			return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.AUTH_ERROR, err.Error(), nil)
		}

		ctx.Claims = claims
		ctx.UserID = claims.UserID
		return next(ctx)
	}
}
