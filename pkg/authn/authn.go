// Package authn extracts the authenticated session from inbound requests.
//
// The identity provider issues HS256-signed session tokens. This package
// verifies the signature, validates temporal claims, and normalizes the
// provider's claim shapes into one canonical Session. Extraction is pure:
// no I/O, no side effects, recomputed on every request.
package authn

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// Config holds the shared-secret settings for session verification.
type Config struct {
	SigningKey string `env:"SESSION_SIGNING_KEY,required"`
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"gd_session"`
}

// Session is the canonical authenticated request identity. Downstream code
// never sees provider-specific claim names.
type Session struct {
	UserID  string
	OrgID   string
	OrgSlug string
	Roles   []string
}

// OrgKey returns the external tenant key: the slug when present (the
// externally stable identifier users see), otherwise the raw provider org id.
func (s *Session) OrgKey() string {
	if s.OrgSlug != "" {
		return s.OrgSlug
	}
	return s.OrgID
}

// HasAnyRole reports whether the session's roles intersect the given set.
func (s *Session) HasAnyRole(roles ...string) bool {
	for _, want := range roles {
		for _, have := range s.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Service verifies session tokens against the provider's shared secret.
type Service struct {
	signingKey []byte
	cookieName string
}

// New creates a session verification service.
func New(cfg Config) (*Service, error) {
	if cfg.SigningKey == "" {
		return nil, ErrMissingSigningKey
	}
	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = "gd_session"
	}
	return &Service{signingKey: []byte(cfg.SigningKey), cookieName: cookieName}, nil
}

// Authenticate derives the canonical session from r. The token is read from
// the Authorization header ("Bearer ...") or, failing that, the session
// cookie. Fails closed: any verification problem is ErrUnauthenticated, and
// a verified user without an organization claim is ErrMissingOrganization.
func (s *Service) Authenticate(r *http.Request) (*Session, error) {
	token := bearerToken(r)
	if token == "" {
		if c, err := r.Cookie(s.cookieName); err == nil {
			token = c.Value
		}
	}
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := s.verify(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	session := normalizeClaims(claims)
	if session.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if session.OrgID == "" && session.OrgSlug == "" {
		return nil, ErrMissingOrganization
	}

	return session, nil
}

// verify checks the HS256 signature and temporal claims, returning the raw
// claim map. Signature comparison is constant-time.
func (s *Service) verify(token string) (map[string]any, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrInvalidToken
	}

	payload := parts[0] + "." + parts[1]
	mac := hmac.New(sha256.New, s.signingKey)
	mac.Write([]byte(payload))
	expected := base64URLEncode(mac.Sum(nil))
	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(expected)) != 1 {
		return nil, ErrInvalidToken
	}

	headerJSON, err := base64URLDecode(parts[0])
	if err != nil {
		return nil, ErrInvalidToken
	}
	var header struct {
		Algorithm string `json:"alg"`
	}
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, ErrInvalidToken
	}
	// Reject anything but HS256 to rule out algorithm confusion.
	if header.Algorithm != "HS256" {
		return nil, ErrInvalidToken
	}

	claimsJSON, err := base64URLDecode(parts[1])
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims := make(map[string]any)
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return nil, ErrInvalidToken
	}

	now := time.Now().Unix()
	if exp, ok := numericClaim(claims, "exp"); ok && now > exp {
		return nil, ErrInvalidToken
	}
	if nbf, ok := numericClaim(claims, "nbf"); ok && now < nbf {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Issue signs a session token for the given claims. Production tokens come
// from the identity provider; this exists for tests and local tooling.
func (s *Service) Issue(claims map[string]any) (string, error) {
	headerJSON, err := json.Marshal(map[string]string{"typ": "JWT", "alg": "HS256"})
	if err != nil {
		return "", err
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	payload := base64URLEncode(headerJSON) + "." + base64URLEncode(claimsJSON)
	mac := hmac.New(sha256.New, s.signingKey)
	mac.Write([]byte(payload))
	return payload + "." + base64URLEncode(mac.Sum(nil)), nil
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.Split(auth, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func numericClaim(claims map[string]any, key string) (int64, bool) {
	v, ok := claims[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// base64URLEncode encodes without padding, as RFC 7515 requires for JWTs.
func base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

func base64URLDecode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
