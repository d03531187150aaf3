package share

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-share/middleware/tokenware"
)

// TokenValidatorAdapter bridges a TokenValidator into the middleware's
// validator interface. The concrete SessionClaims satisfies both claim
// interfaces so the assertion only fails on foreign implementations.
type TokenValidatorAdapter struct {
	tokens TokenValidator
}

// NewTokenValidatorAdapter creates the adapter. Any TokenValidator fits,
// including a TokenService or a bare TokenValidatorFunc.
func NewTokenValidatorAdapter(tokens TokenValidator) TokenValidatorAdapter {
	return TokenValidatorAdapter{tokens: tokens}
}

// Validate satisfies tokenware.TokenValidator.
func (a TokenValidatorAdapter) Validate(tokenString string) (tokenware.AuthClaims, error) {
	claims, err := a.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	gateClaims, ok := claims.(tokenware.AuthClaims)
	if !ok {
		return nil, ErrUnableToDecodeSession
	}

	return gateClaims, nil
}

// ContextEnricherAdapter adapts tokenware.AuthClaims to share.AuthClaims and
// stores the claims in the standard context for downstream usage.
func ContextEnricherAdapter(c context.Context, claims tokenware.AuthClaims) context.Context {
	authClaims, ok := claims.(AuthClaims)
	if !ok {
		return c
	}

	return WithClaimsContext(c, authClaims)
}

// GateErrorHandler converts gate failures into the uniform envelope. A
// request that never produced a token gets its own rejection, distinct
// from malformed or expired tokens.
func GateErrorHandler(c router.Context, err error) error {
	if errors.Is(err, tokenware.ErrTokenMissing) {
		err = ErrTokenNotProvided
	}

	env := ErrorEnvelope(err)
	return c.JSON(env.StatusCode, env)
}

// GateMiddleware builds the access gate for protected routes from the
// given configuration and token service.
func GateMiddleware(cfg Config, tokens TokenService) router.MiddlewareFunc {
	return tokenware.New(tokenware.Config{
		SigningKey: tokenware.SigningKey{
			JWTAlg: cfg.GetSigningMethod(),
			Key:    []byte(cfg.GetSigningKey()),
		},
		ContextKey:      cfg.GetContextKey(),
		TokenLookup:     cfg.GetTokenLookup(),
		AuthScheme:      cfg.GetAuthScheme(),
		TokenValidator:  NewTokenValidatorAdapter(tokens),
		ContextEnricher: ContextEnricherAdapter,
		ErrorHandler:    GateErrorHandler,
	})
}
