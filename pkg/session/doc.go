/*
Package session serializes concurrent updates to intake sessions.

The Manager wraps a ports.SessionStore with per-session mutexes, so two
answers submitted for the same session are applied one after the other
instead of racing. An optional DistributedLocker extends the guarantee to
several replicas sharing one store.
*/
package session
