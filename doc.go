/*
Package triage runs a patient intake questionnaire and turns the answers into
a triage decision through three dependent language model calls.

# Concept

A Session walks the patient through a fixed, translated questionnaire: the
first message selects the language, every following message answers the
current question. Once complete, the answers are handed to a pipeline:

  - extraction normalizes the free text answers into a StructuredIntake;
  - classification assigns a severity level (RED, YELLOW, GREEN, BLUE) using
    triage protocols retrieved from a reference store;
  - routing picks a department and preliminary orders using routing rules
    and order sets, then cross-checks every order against the reported
    allergies.

The pipeline runs in the background. Clients poll the job until it is
completed or failed.

# Usage

	svc, err := triage.New(reasoner, references)
	if err != nil {
		log.Fatal(err)
	}
	defer svc.Close(context.Background())

	info, _ := svc.CreateSession(ctx)
	step, _ := svc.SubmitAnswer(ctx, info.SessionID, "en")
	fmt.Println(step.NextQuestion)

	// ... answer every question, then:
	jobID, _ := svc.StartPipeline(ctx, info.SessionID)
	job, _ := svc.GetResult(ctx, jobID)

# Adapters

Sessions and jobs live in memory by default. pkg/adapters/redis provides
shared stores and a distributed lock, pkg/persistence/middleware seals the
stored answers with AES-GCM, pkg/adapters/pgvector serves the reference
collections from PostgreSQL and pkg/adapters/http exposes the lifecycle over
HTTP.
*/
package triage
