package ports

// TokenIssuer mints signed session tokens bound to an account id.
type TokenIssuer interface {
	Issue(accountID string) (string, error)
}

// TokenVerifier validates a session token and returns the account id it was
// issued for. Failures are domain.ErrTokenExpired or domain.ErrTokenInvalid.
type TokenVerifier interface {
	Verify(token string) (string, error)
}
