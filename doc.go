// Package share implements the identity and authorization core for a
// multi tenant content sharing service.
//
// Accounts:
//   - Users register with email, username, and password. Passwords are
//     bcrypt hashed and never leave the package; every read path strips
//     the hash before returning a record.
//   - Accounts are never physically deleted. Deactivation flips is_active
//     and a deactivated account is indistinguishable from a missing one
//     during authentication.
//
// Sessions:
//   - TokenService issues HS256 JWTs carrying the account id, username,
//     and email, expiring 24 hours after issue. Validation distinguishes
//     malformed tokens, tokens without an expiration, and expired tokens.
//   - middleware/tokenware guards HTTP routes, binding validated claims
//     into the router locals and the standard context.
//
// Posts:
//   - PostManager enforces ownership on every mutation: only the account
//     named in the caller's claims may update, change visibility on, or
//     remove a post. Removal is a soft delete and removed posts behave
//     as missing everywhere.
//   - Visibility is one of public, private, or friends-only, persisted
//     as friends_only and exchanged over the API as friends-only.
package share
