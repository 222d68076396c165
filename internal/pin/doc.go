// Package pin generates the short random labels that identify handoff slots.
//
// Generator.Issue samples four-character uppercase alphanumeric labels until
// it finds one with no live entry in the target namespace, inserts a waiting
// entry under it, and returns the label. Retries are bounded (10 attempts);
// exhaustion surfaces as ErrExhausted, which the HTTP layer maps to 429.
//
// Uniqueness is best-effort under concurrency — see the Generator doc for the
// accepted check-then-insert race.
package pin
