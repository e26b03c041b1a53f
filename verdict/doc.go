// Consensus and reply-dispatch engine for the crowdsourced
// message-verification bot.
//
// This package (`github.com/bettersg/checkmate/verdict`) turns independent
// reviewer votes on a forwarded submission into a single verdict, drives
// the outbound reply sequence for each forwarding event of that
// submission, and scores each reviewer's vote against the eventual
// verdict. Every externally visible effect (verdict finalization, replies,
// follow-up messages, counter increments) is a guarded check-and-commit,
// so concurrent workers and transport-level retries never double-send or
// double-count.
//
// See `cmd/checkmate` for a daemon built on this package.
package verdict
