/*
Package domain contains the core data model of the triage service.

It defines the intake Session, the typed outputs of each pipeline stage and
the Job record used to poll for a result. The package is kept free of I/O and
persistence concerns so stores and transports can be swapped behind ports.

# Key Entities

  - Session: progress of one patient through the intake questionnaire.
  - StructuredIntake: normalized answers produced by the extraction stage.
  - Classification: severity level, priority and rationale from the classification stage.
  - Routing: destination, preliminary orders and safety flags from the routing stage.
  - PipelineResult: the immutable assembly of the three stage outputs.
  - Job: identity and status of one pipeline invocation.
*/
package domain
