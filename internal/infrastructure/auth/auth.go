package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"agri-api/internal/config"
	"agri-api/internal/domain"
)

// LocalPrincipalID is the identity every request gets when auth is disabled.
const LocalPrincipalID = "local-dev-user"

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

var asymmetricMethods = []string{"RS256", "RS384", "RS512", "ES256", "ES384"}

// Validator verifies bearer tokens against a JWKS endpoint, a shared HS256
// secret, or both.
type Validator struct {
	enabled  bool
	issuer   string
	audience string
	secret   []byte
	jwks     *keyfunc.JWKS
	log      zerolog.Logger
}

// NewValidator initializes JWKS fetching when a JWKS URL is configured.
func NewValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Validator, error) {
	v := &Validator{
		enabled:  cfg.AuthEnabled,
		issuer:   strings.TrimSpace(cfg.AuthIssuer),
		audience: strings.TrimSpace(cfg.AuthAudience),
		log:      log.With().Str("component", "auth-validator").Logger(),
	}
	if !cfg.AuthEnabled {
		v.log.Warn().Msg("Authentication disabled; all requests use the local principal")
		return v, nil
	}
	if secret := strings.TrimSpace(cfg.AuthJWTSecret); secret != "" {
		v.secret = []byte(secret)
	}

	if url := strings.TrimSpace(cfg.AuthJWKSURL); url != "" {
		jwks, err := keyfunc.Get(url, keyfunc.Options{
			Ctx:               ctx,
			RefreshInterval:   time.Hour,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				v.log.Error().Err(err).Msg("jwks refresh error")
			},
		})
		if err != nil {
			return nil, fmt.Errorf("fetch jwks: %w", err)
		}
		v.jwks = jwks
	}
	return v, nil
}

// NewSecretValidator builds a validator that only accepts HS256 tokens.
func NewSecretValidator(secret, issuer, audience string) *Validator {
	return &Validator{
		enabled:  true,
		issuer:   issuer,
		audience: audience,
		secret:   []byte(secret),
		log:      zerolog.Nop(),
	}
}

// Enabled reports whether tokens are checked at all.
func (v *Validator) Enabled() bool {
	return v != nil && v.enabled
}

// Ready indicates if the validator is prepared.
func (v *Validator) Ready() bool {
	if !v.Enabled() {
		return true
	}
	return v.jwks != nil || len(v.secret) > 0
}

// Close stops background JWKS refreshes.
func (v *Validator) Close() {
	if v != nil && v.jwks != nil {
		v.jwks.EndBackground()
	}
}

// LocalPrincipal is used for every request when auth is disabled.
func LocalPrincipal() domain.Principal {
	return domain.Principal{ID: LocalPrincipalID, AuthMethod: domain.AuthMethodDisabled, Subject: LocalPrincipalID}
}

// Authenticate turns an Authorization header value into a principal.
func (v *Validator) Authenticate(header string) (domain.Principal, error) {
	if !v.Enabled() {
		return LocalPrincipal(), nil
	}
	raw := BearerToken(header)
	if raw == "" {
		return domain.Principal{}, ErrMissingToken
	}
	return v.Validate(raw)
}

// Validate verifies a raw JWT and extracts the caller identity from its claims.
func (v *Validator) Validate(raw string) (domain.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(v.methods()),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, v.keyFor, opts...)
	if err != nil || !token.Valid {
		return domain.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	sub, _ := claims.GetSubject()
	if strings.TrimSpace(sub) == "" {
		return domain.Principal{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	iss, _ := claims.GetIssuer()
	return domain.Principal{
		ID:         sub,
		AuthMethod: domain.AuthMethodJWT,
		Subject:    sub,
		Issuer:     iss,
		Email:      stringClaim(claims, "email"),
		Role:       stringClaim(claims, "role"),
	}, nil
}

func (v *Validator) methods() []string {
	var methods []string
	if v.jwks != nil {
		methods = append(methods, asymmetricMethods...)
	}
	if len(v.secret) > 0 {
		methods = append(methods, "HS256")
	}
	return methods
}

func (v *Validator) keyFor(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
		if len(v.secret) == 0 {
			return nil, errors.New("hmac tokens are not accepted")
		}
		return v.secret, nil
	}
	if v.jwks == nil {
		return nil, errors.New("no jwks configured")
	}
	return v.jwks.Keyfunc(token)
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
