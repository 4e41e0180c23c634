// Package apikeyservice implements credential management and request
// admission inside the identity-access context.
//
// The module owns API-key issuance/lookup, the atomic fixed-window rate
// limiter gating the index API, and quota/usage reads. Credentials persist
// in Postgres; the limiter's shared window counters live in Redis behind a
// port so the memory adapter can stand in for tests.
package apikeyservice
