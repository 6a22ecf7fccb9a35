// Package dispatch implements the goto actions of the bot: one operation per
// destination kind (post, hashtag, location, profile, login, home), each
// moving the browser through a Navigator and reporting an Outcome.
//
// Every operation follows the same protocol. It announces the attempt, builds
// the destination URL from a fixed template, performs exactly one navigation
// and logs either the success lines or the failure with its diagnostic hints.
// A navigation failure never escapes as an error or panic; it is carried in
// Outcome.Err for the caller to inspect. Retrying is the caller's business.
package dispatch
