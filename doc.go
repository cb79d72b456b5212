// Package booking provides the core of a session-booking backend: stateless
// bearer-token authentication and roster management for classes run by a
// studio.
//
// Tokens:
//   - TokenService mints and verifies compact HS256 tokens whose subject is
//     the account email. Verification pins the signing algorithm, so
//     alg-none and algorithm-substitution forgeries are rejected outright.
//
// Request identity:
//   - middleware/identityware turns each inbound request into either an
//     authenticated principal or an anonymous one. It never fails the
//     request pipeline; route guards (RequireAuthenticated, RequireAdmin)
//     are the layer that rejects anonymous access.
//
// Rosters:
//   - RosterService is the sole writer of the session/user participation
//     relation. It validates existence and membership before issuing a
//     single atomic join-row write, so a failed precondition never touches
//     the store.
package booking
