package jwt

import (
	"time"

	"github.com/cmlabs-hris/attendance-review/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// streamTokenTTL bounds how long a review stream token can be used to connect.
const streamTokenTTL = 5 * time.Minute

type Service interface {
	GenerateAccessToken(userID string, companyID string, employeeID *string, role user.Role) (token string, expiresAt int64, err error)
	GenerateStreamToken(sessionID string, userID string) (token string, expiresIn int, err error)
	ValidateStreamToken(tokenString string) (sessionID string, userID string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// NewJWTService verifies tokens issued by the HRIS auth service, which signs
// with the same HS256 secret.
func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(userID string, companyID string, employeeID *string, role user.Role) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"user_id":     userID,
		"employee_id": returnValueOrNil(employeeID),
		"company_id":  companyID,
		"role":        string(role),
		"type":        "access",
		"exp":         expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

func returnValueOrNil(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}

// GenerateStreamToken issues a short-lived token bound to one review session
func (j *JWTService) GenerateStreamToken(sessionID string, userID string) (token string, expiresIn int, err error) {
	expiresIn = int(streamTokenTTL.Seconds())
	expiresAt := time.Now().Add(streamTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":    userID,
		"session_id": sessionID,
		"type":       "review_stream",
		"exp":        expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, expiresIn, nil
}

// ValidateStreamToken validates a stream token and returns the session and user it was issued for
func (j *JWTService) ValidateStreamToken(tokenString string) (sessionID string, userID string, err error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return "", "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != "review_stream" {
		return "", "", jwt.ErrInvalidJWT()
	}

	sessionID, ok = stringClaim(token, "session_id")
	if !ok {
		return "", "", jwt.ErrInvalidJWT()
	}
	userID, ok = stringClaim(token, "user_id")
	if !ok {
		return "", "", jwt.ErrInvalidJWT()
	}

	return sessionID, userID, nil
}

func stringClaim(token jwt.Token, key string) (string, bool) {
	val, ok := token.Get(key)
	if !ok {
		return "", false
	}
	s, ok := val.(string)
	return s, ok && s != ""
}
