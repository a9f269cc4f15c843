package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RevokeToken lists a token's JTI so the session it belongs to stops
// authenticating. Revoking an already-revoked token is a no-op. A row only
// matters until the token's own expiry, so each revocation also sweeps out
// entries that have outlived theirs.
func RevokeToken(ctx context.Context, db *sql.DB, jti string, expiresAt time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_tokens (jti, expires_at) VALUES (?, ?)`,
		jti, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}

	purgeExpiredTokens(ctx, db)
	return nil
}

// purgeExpiredTokens drops revocations whose tokens have expired anyway.
// A failed sweep is ignored; the next revocation retries it.
func purgeExpiredTokens(ctx context.Context, db *sql.DB) {
	_, _ = db.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < ?`, time.Now(),
	)
}

// IsTokenRevoked reports whether a token's JTI is on the revocation list.
func IsTokenRevoked(ctx context.Context, db *sql.DB, jti string) (bool, error) {
	var revoked bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = ?)`, jti,
	).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return revoked, nil
}
