// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides passwords, sessions, and role permissions.

# Passwords

Passwords are stored as bcrypt hashes:

	hash, err := auth.HashPassword(password, bcrypt.DefaultCost)
	err := auth.CheckPassword(hash, attempt) // ErrPasswordMismatch on a wrong password

bcrypt ignores everything past 72 bytes, so longer passwords are rejected
with ErrPasswordTooLong instead of being silently truncated.

# Identity

Identity is who made a request: user id, username, and role (voter or
admin). The zero value is anonymous. Handlers receive it explicitly
instead of reading ambient request state.

# Sessions

Sessions are HS256-signed JWTs kept in the SessionCookie cookie:

	sessions := auth.NewSessions(secret, 12*time.Hour)
	token, expiresAt, err := sessions.Issue(ident)
	ident, err := sessions.Parse(token)

Parse rejects expired, tampered, and non-HMAC tokens with ErrInvalidToken.

# Permissions

Enforcer wraps a casbin RBAC model. DefaultPolicy grants:

	admin  position/candidate/voter *   vote read   result read   admin_dashboard read
	voter  vote cast   ballot read      result read voter_dashboard read

Anonymous identities are denied everything:

	enforcer, err := auth.NewEnforcer()
	if enforcer.CheckPermission(ident, auth.ObjVote, auth.ActCast) { ... }

# IP Hashing

Votes record a salted hash of the client IP, never the address itself:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
