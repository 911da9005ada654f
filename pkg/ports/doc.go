/*
Package ports defines the driven ports (interfaces) for the assistant runtime.

These interfaces decouple the turn controller from external implementations,
allowing it to work with various checkpoint backends, model providers and
safety classifiers.

# Key Interfaces

  - StateStore: persists and loads checkpointed ConversationState per session.
  - DistributedLocker: distributed locking for concurrent session access.
  - ModelClient: the underlying language model bound to a tool catalogue.
  - SafetyClassifier: content-safety checks over a message history.
*/
package ports
