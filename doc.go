// Package identity manages organizations and their users, and gates every
// non-public operation behind stateless bearer-token authentication and
// role-based authorization.
//
// The core pieces are the token service (HS256 JWT issue/validate), the
// identity provider (credential verification and per-request identity
// re-resolution), the lifecycle command handlers (uniqueness, referential
// checks and soft deletion for users and organizations), and the bearer
// middleware under middleware/bearerware that establishes the request
// identity without ever aborting the request itself.
package identity
