// Package cpiengine implements the Concentration Power Index engine inside
// the governance context.
//
// The module owns the historically-effective council registry, percentage
// redistribution across active councils, per-delegate influence aggregation,
// and the per-date series orchestration (live, simulated-delegation, and
// persisted historic reads). Business rules live in domain/application
// layers; Mongo, subgraph, and in-memory infrastructure sit behind ports.
package cpiengine
