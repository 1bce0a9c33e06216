// Package dns's Socket is the only type that matters here: construct it
// with New, start queries with StartQuery/StartQueryAAAA/StartQueryRaw, and
// drive it externally — Accepts/Process for ingress, Dispatch for egress,
// PollAt for scheduling. See internal/transport for the UDP transport this
// repo wires underneath that boundary, and cmd/microdns-resolve for the
// runner loop that ties the two together.
package dns
