// Package dataprocessing implements the salary dataset pipeline:
// loading the raw CSV into typed records, normalizing coded categorical
// fields and deriving the ISO alpha-3 country code, filtering the
// normalized table by client-selected predicates, and computing the
// descriptive aggregations served by the API.
//
// The normalized table is built once at startup and never mutated;
// every filter and aggregation is a pure pass over it.
package dataprocessing
