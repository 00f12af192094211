package services_test

import (
	"context"
	"testing"

	"ttsprep/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-42")
	ctx = services.WithStage(ctx, "split")
	ctx = services.WithStep(ctx, "subset")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-42" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "split" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if step, ok := services.StepFromContext(ctx); !ok || step != "subset" {
		t.Fatalf("unexpected step: %v %v", step, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}
