package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Spok95/sekretariat/internal/ctxutil"
	"github.com/Spok95/sekretariat/internal/models"
)

// Claims are issued by the login service; sub is the participant id.
type Claims struct {
	Sub  int64  `json:"sub"`
	Role string `json:"role"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// SignToken issues an HS256 token for an actor. Used by the token command and tests.
func SignToken(secret string, a ctxutil.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Sub:  a.ID,
		Role: string(a.Role),
		Name: a.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func extractBearer(c echo.Context) (string, error) {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if h == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, map[string]any{"error": "MISSING_AUTH_HEADER"})
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, map[string]any{"error": "INVALID_AUTH_HEADER"})
	}
	return strings.TrimSpace(parts[1]), nil
}

// RequireAuth verifies the bearer token and puts the actor on the request context.
func RequireAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tok, err := extractBearer(c)
			if err != nil {
				return err
			}
			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, map[string]any{"error": "INVALID_TOKEN"})
			}
			role := models.Role(claims.Role)
			if claims.Sub <= 0 || !role.Valid() {
				return echo.NewHTTPError(http.StatusUnauthorized, map[string]any{"error": "INVALID_CLAIMS"})
			}

			actor := ctxutil.Actor{ID: claims.Sub, Name: claims.Name, Role: role}
			c.SetRequest(c.Request().WithContext(ctxutil.WithActor(c.Request().Context(), actor)))
			return next(c)
		}
	}
}

// RequireRole lets through actors holding one of roles.
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			a, ok := ctxutil.ActorFrom(c.Request().Context())
			if !ok || !a.HasRole(roles...) {
				return echo.NewHTTPError(http.StatusForbidden, map[string]any{"error": "FORBIDDEN"})
			}
			return next(c)
		}
	}
}

// actorOf is only called behind RequireAuth.
func actorOf(c echo.Context) ctxutil.Actor {
	a, _ := ctxutil.ActorFrom(c.Request().Context())
	return a
}

var (
	managers      = []models.Role{models.Admin, models.PengurusKetua, models.PengurusSekretaris}
	approvers     = managers
	budgetEditors = []models.Role{models.Admin, models.PengurusKetua, models.PengurusBendahara, models.SekbidKoordinator}
	pengurus      = []models.Role{models.Admin, models.PengurusKetua, models.PengurusSekretaris, models.PengurusBendahara}
)
