// Package staff wires the employee management backend together.
//
// Repositories:
//   - RepositoryManager owns the bun handle and hands out every repository
//     (employees, token registry, leave requests, reports, purchase items,
//     checklists and the SQL activity log). Repositories share the handle,
//     RunInTx scopes work to a transaction.
//
// Authentication:
//   - auth issues HS256 access and refresh tokens, keeps every issued token
//     in the Token Registry and resolves callers through auth.Guard. A token
//     that verifies but is missing from the registry is rejected.
//
// Leave workflow:
//   - leave.StateMachine moves requests through pending_phase1,
//     pending_phase2 and approved, or to rejected from either pending state.
//     Writes are conditioned on the expected status so concurrent approvers
//     cannot both win.
//
// Activity:
//   - services emit auth.ActivityEvent values. activity.Sink stores them in
//     the SQL table or the MongoDB collection selected by configuration.
package staff
