package config

import (
	"strings"
	"testing"
)

func validPipeline() Pipeline {
	return Pipeline{
		Job: "kdd_setup",
		Secrets: Secrets{
			Scope:      "storage_scope",
			AccountKey: "storage_account",
			AccessKey:  "storage_key",
		},
		Mount: Mount{Kind: "s3", Container: "databricks", Path: "/mnt/blob_storage"},
		Datasets: []Dataset{
			{
				Name: "kdd", URL: "https://example.com/kdd.gz",
				RawFile: "data/raw/kdd.csv", StreamDir: "data/for_streaming/kdd",
				IDPrefix: "A", Labeled: true, Table: "kdd",
			},
			{
				Name: "kdd_unlabeled", URL: "https://example.com/unlabeled.gz",
				RawFile: "data/raw/unlabeled.csv", StreamDir: "data/for_streaming/unlabeled",
				IDPrefix: "B", Table: "kdd_unlabeled",
			},
		},
		Stream:    Stream{Shards: 20},
		Warehouse: Warehouse{Kind: "sqlite", DB: DBConfig{DSN: "file:x.db"}, TableDir: "data/tables"},
	}
}

// findIssue returns the first issue whose path contains the given fragment.
func findIssue(issues []Issue, pathFragment string) *Issue {
	for i := range issues {
		if strings.Contains(issues[i].Path, pathFragment) {
			return &issues[i]
		}
	}
	return nil
}

func TestValidatePipeline_Valid(t *testing.T) {
	t.Parallel()

	if issues := ValidatePipeline(validPipeline()); len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}

func TestValidatePipeline_MissingJob(t *testing.T) {
	t.Parallel()

	p := validPipeline()
	p.Job = "  "
	iss := findIssue(ValidatePipeline(p), "job")
	if iss == nil || iss.Severity != SeverityError {
		t.Fatalf("expected error for empty job, got %v", iss)
	}
}

func TestValidatePipeline_DuplicateIDPrefix(t *testing.T) {
	t.Parallel()

	p := validPipeline()
	p.Datasets[1].IDPrefix = "A"
	iss := findIssue(ValidatePipeline(p), "datasets[1].id_prefix")
	if iss == nil || iss.Severity != SeverityError {
		t.Fatalf("expected error for duplicate id_prefix, got %v", iss)
	}
}

func TestValidatePipeline_MultiCharPrefix(t *testing.T) {
	t.Parallel()

	p := validPipeline()
	p.Datasets[0].IDPrefix = "AB"
	iss := findIssue(ValidatePipeline(p), "datasets[0].id_prefix")
	if iss == nil || iss.Severity != SeverityError {
		t.Fatalf("expected error for multi-char id_prefix, got %v", iss)
	}
}

func TestValidatePipeline_ZeroShards(t *testing.T) {
	t.Parallel()

	p := validPipeline()
	p.Stream.Shards = 0
	iss := findIssue(ValidatePipeline(p), "stream.shards")
	if iss == nil || iss.Severity != SeverityError {
		t.Fatalf("expected error for zero shards, got %v", iss)
	}
}

func TestValidatePipeline_UnknownKindsWarn(t *testing.T) {
	t.Parallel()

	p := validPipeline()
	p.Mount.Kind = "gcs"
	p.Warehouse.Kind = "duckdb"

	issues := ValidatePipeline(p)
	if iss := findIssue(issues, "mount.kind"); iss == nil || iss.Severity != SeverityWarning {
		t.Fatalf("expected warning for unknown mount kind, got %v", iss)
	}
	if iss := findIssue(issues, "warehouse.kind"); iss == nil || iss.Severity != SeverityWarning {
		t.Fatalf("expected warning for unknown warehouse kind, got %v", iss)
	}
	if HasErrors(issues) {
		t.Fatalf("unknown kinds should not be errors: %v", issues)
	}
}

func TestValidatePipeline_NoDatasets(t *testing.T) {
	t.Parallel()

	p := validPipeline()
	p.Datasets = nil
	iss := findIssue(ValidatePipeline(p), "datasets")
	if iss == nil || iss.Severity != SeverityError {
		t.Fatalf("expected error for missing datasets, got %v", iss)
	}
}
