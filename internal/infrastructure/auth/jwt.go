package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/zevix-io/zevix/internal/domain/billing"
	"github.com/zevix-io/zevix/internal/shared/biztime"
)

var (
	// ErrTokenExpired marks a token that was well formed and correctly
	// signed but is past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid marks a token that failed parsing or signature
	// verification.
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims carries the user identity plus the plan that was current at
// issue time. The plan claim is a hint only; authoritative plan state
// always comes from the user record.
type Claims struct {
	Email string `json:"email"`
	Plan  string `json:"plan"`
	jwt.RegisteredClaims
}

type JWTService struct {
	secret       []byte
	validityDays int
}

func NewJWTService(secret string, validityDays int) *JWTService {
	if validityDays <= 0 {
		validityDays = 30
	}
	return &JWTService{
		secret:       []byte(secret),
		validityDays: validityDays,
	}
}

// Issue signs a token for the user, valid from now for the configured
// number of days. Returns the token string and its expiry.
func (s *JWTService) Issue(email string, plan billing.Plan) (string, time.Time, error) {
	now := biztime.NowUTC()
	exp := now.Add(time.Duration(s.validityDays) * 24 * time.Hour)

	claims := &Claims{
		Email: email,
		Plan:  plan.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, exp, nil
}

// Decode verifies a token and distinguishes three outcomes: valid
// claims, an expired token (ErrTokenExpired), and everything else
// (ErrTokenInvalid).
func (s *JWTService) Decode(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrTokenInvalid
}

// ValidityDays returns the configured token lifetime in days.
func (s *JWTService) ValidityDays() int {
	return s.validityDays
}
