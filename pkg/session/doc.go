/*
Package session orchestrates concurrent access to conversation checkpoints.

A turn must exclusively own its session: the Manager serializes turns with a
per-session mutex (reference counted so idle locks are garbage collected) and
optionally a distributed lock so multiple replicas never process the same
session concurrently.
*/
package session
