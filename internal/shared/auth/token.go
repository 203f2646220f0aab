package auth

import (
	"net/http"
	"strings"
)

// ExtractBearerTokenFromHeader pulls the JWT out of an Authorization header value,
// tolerating both "Bearer" and "bearer" prefixes.
func ExtractBearerTokenFromHeader(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}

	const prefix = "bearer "
	if strings.HasPrefix(strings.ToLower(header), prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// ExtractToken looks for a token in the Authorization header first and then in
// the given query parameter ("token" when empty). Returns the first non-empty hit.
func ExtractToken(r *http.Request, queryParam string) string {
	if r == nil {
		return ""
	}
	if token := ExtractBearerTokenFromHeader(r.Header.Get("Authorization")); token != "" {
		return token
	}
	if queryParam == "" {
		queryParam = "token"
	}
	return strings.TrimSpace(r.URL.Query().Get(queryParam))
}
