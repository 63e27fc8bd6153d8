package auth

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const bearerPrefix = "Bearer "

// ErrNoToken is returned when a request carries no bearer token.
var ErrNoToken = errors.New("authorization required")

// Identity is the authenticated caller of a request.
type Identity struct {
	PlayerID string
	Name     string
}

// Verifier turns a bearer token into an identity.
type Verifier interface {
	Verify(token string) (Identity, error)
}

// JWTVerifier validates signed tokens against a key set.
type JWTVerifier struct {
	keyfunc jwt.Keyfunc
	issuer  string
	methods []string
}

// NewJWKSVerifier validates EdDSA tokens issued by baseURL using the key set published at
// baseURL + "/.well-known/jwks.json".
func NewJWKSVerifier(baseURL string) (*JWTVerifier, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("AUTH_BASE_URL is not set")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	jwks, err := keyfunc.NewDefault([]string{strings.TrimRight(baseURL, "/") + "/.well-known/jwks.json"})
	if err != nil {
		return nil, err
	}
	return NewJWTVerifier(jwks.Keyfunc, u.Scheme+"://"+u.Host, "EdDSA"), nil
}

// NewJWTVerifier validates tokens with the given key lookup. An empty issuer is not checked.
func NewJWTVerifier(kf jwt.Keyfunc, issuer string, methods ...string) *JWTVerifier {
	return &JWTVerifier{keyfunc: kf, issuer: issuer, methods: methods}
}

// Verify parses and validates token.
func (v *JWTVerifier) Verify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, ErrNoToken
	}
	var opts []jwt.ParserOption
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if len(v.methods) > 0 {
		opts = append(opts, jwt.WithValidMethods(v.methods))
	}
	token, err := jwt.Parse(tokenString, v.keyfunc, opts...)
	if err != nil {
		return Identity{}, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("invalid token claims")
	}
	id := UserIDFromClaims(claims)
	if id == "" {
		return Identity{}, fmt.Errorf("token has no subject")
	}
	return Identity{PlayerID: id, Name: FirstNameFromClaims(claims)}, nil
}

// DevVerifier accepts any non-empty token as the player id. Used when no auth
// provider is configured.
type DevVerifier struct{}

func (DevVerifier) Verify(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrNoToken
	}
	return Identity{PlayerID: token, Name: token}, nil
}

// TokenFromRequest returns the bearer token of r. Websocket upgrades may pass it
// as the "token" query parameter instead.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, bearerPrefix) {
		return strings.TrimSpace(h[len(bearerPrefix):])
	}
	return r.URL.Query().Get("token")
}

// FirstNameFromClaims returns the first word of the "name" claim, or a fallback.
func FirstNameFromClaims(claims jwt.MapClaims) string {
	name, _ := claims["name"].(string)
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "Player"
	}
	return parts[0]
}

// UserIDFromClaims returns the user id from claims ("sub" or "id").
func UserIDFromClaims(claims jwt.MapClaims) string {
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub
	}
	if id, ok := claims["id"].(string); ok && id != "" {
		return id
	}
	return ""
}
