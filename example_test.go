package triage_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aretw0/triage"
	"github.com/aretw0/triage/internal/seed"
	"github.com/aretw0/triage/internal/testutils"
	"github.com/aretw0/triage/pkg/adapters/embedding"
	"github.com/aretw0/triage/pkg/adapters/memory"
)

// ExampleService drives a full intake against a scripted reasoner and an
// offline reference store.
func ExampleService() {
	ctx := context.Background()

	refs := memory.NewReferenceStore(embedding.NewHashing(embedding.DefaultDimensions))
	if _, err := seed.Seed(ctx, refs, seed.Options{}); err != nil {
		log.Fatal(err)
	}
	reasoner := testutils.Canned(testutils.BenignExtraction, testutils.BenignClassification, testutils.BenignRouting)

	svc, err := triage.New(reasoner, refs)
	if err != nil {
		log.Fatal(err)
	}
	defer svc.Close(ctx)

	info, _ := svc.CreateSession(ctx)
	step, _ := svc.SubmitAnswer(ctx, info.SessionID, "en")
	fmt.Println("question", step.QuestionNumber)

	for _, a := range testutils.BenignAnswers() {
		step, _ = svc.SubmitAnswer(ctx, info.SessionID, a)
	}
	fmt.Println("complete:", step.Complete)

	jobID, err := svc.StartPipeline(ctx, info.SessionID)
	if err != nil {
		log.Fatal(err)
	}
	for {
		job, _ := svc.GetResult(ctx, jobID)
		if job.Final() {
			fmt.Println(job.Status, job.Result.Classification.Level, job.Result.Routing.Department)
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Output:
	// question 1
	// complete: true
	// completed GREEN General Practice
}
