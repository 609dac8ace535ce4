package utils // package utils provides helpers for the console session token

import (
    "crypto/sha256" // SHA‑256 hashing for session ids at rest
    "encoding/hex"  // hex encoding of digests
    "errors"        // sentinel errors
    "time"          // expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and verifying signed tokens
)

// ErrInvalidSessionToken is returned for tokens that fail signature,
// expiry or claim checks.
var ErrInvalidSessionToken = errors.New("invalid session token")

// SessionToken is the signed JWT handed to the browser after login.  It
// only carries the session id; the upstream access and refresh tokens stay
// on the server.
type SessionToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// SessionClaims are the claims read back from a verified token.
type SessionClaims struct {
    SessionID string // sid claim
    UserID    string // sub claim, the upstream user id
    Role      string // role claim, the upstream role
}

// NewSessionToken builds and signs an HS256 JWT for a console session.
// The JWT includes sid, sub, role, exp and iat.
func NewSessionToken(secret, sessionID, userID, role string, ttl time.Duration) (SessionToken, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := jwt.MapClaims{
        "sid":  sessionID,
        "sub":  userID,
        "role": role,
        "exp":  exp.Unix(),
        "iat":  now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return SessionToken{}, err
    }
    return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies raw with secret and returns its claims.  Only
// HMAC signed tokens are accepted.
func ParseSessionToken(secret, raw string) (SessionClaims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Type assert the signing method to HMAC; reject others.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidSessionToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return SessionClaims{}, ErrInvalidSessionToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return SessionClaims{}, ErrInvalidSessionToken
    }
    sid, _ := claims["sid"].(string)
    if sid == "" {
        return SessionClaims{}, ErrInvalidSessionToken
    }
    sub, _ := claims["sub"].(string)
    role, _ := claims["role"].(string)
    return SessionClaims{SessionID: sid, UserID: sub, Role: role}, nil
}

// HashSessionID returns the SHA‑256 hex digest of a session id.  Session
// entries are stored under the digest so a leaked key listing cannot be
// replayed as a cookie.
func HashSessionID(sid string) string {
    sum := sha256.Sum256([]byte(sid))
    return hex.EncodeToString(sum[:])
}
