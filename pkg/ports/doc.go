/*
Package ports defines the driven ports (interfaces) of the triage service.

These interfaces decouple the intake machine and the pipeline from storage
backends, the reasoning service and the reference store.

# Key Interfaces

  - SessionStore: persists intake sessions.
  - ResultStore: persists pipeline jobs and results.
  - ReferenceStore: similarity search over the seeded reference collections.
  - Reasoner: the hosted language model.
  - Embedder: text to vector, used by reference store adapters.
  - DistributedLocker: serializes session updates across replicas.

RunSessionStoreContract and RunResultStoreContract are shared test suites
that every store adapter runs against its own implementation.
*/
package ports
