// Package repositories implements SQLite persistence for OAuth token state.
//
// [TokenRepository] implements [models.TokenStore], keeping one row per client id so a CLI run can reuse the token
// obtained by an earlier run. Expiry instants are stored in UTC. The same repository keeps the pending OAuth state
// between `auth url` and `auth exchange` in the auth_states table.
package repositories
