// Package config provides configuration models and helpers for kddprep
// pipelines.
//
// This file adds a lightweight linter/validator for Pipeline values. It
// performs static checks over a decoded Pipeline and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "mount.kind",
// "datasets[1].id_prefix"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// ValidatePipeline performs static validation / linting of a Pipeline.
//
// It does not mutate the pipeline. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}

	issues = append(issues, validateSecrets(p.Secrets)...)
	issues = append(issues, validateMount(p.Mount)...)
	issues = append(issues, validateDatasets(p.Datasets)...)
	issues = append(issues, validateStream(p.Stream)...)
	issues = append(issues, validateWarehouse(p.Warehouse)...)
	issues = append(issues, validateRuntime(p.Runtime)...)

	return issues
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

func validateSecrets(s Secrets) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Scope) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "secrets.scope",
			Message:  "secrets.scope must not be empty",
		})
	}
	if strings.TrimSpace(s.AccountKey) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "secrets.account_key",
			Message:  "secrets.account_key must name the secret holding the storage account",
		})
	}
	if strings.TrimSpace(s.AccessKey) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "secrets.access_key",
			Message:  "secrets.access_key must name the secret holding the access key",
		})
	}

	return issues
}

func validateMount(m Mount) []Issue {
	var issues []Issue

	if strings.TrimSpace(m.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "mount.kind",
			Message:  "mount.kind must not be empty",
		})
		return issues
	}

	// Known store kinds. Unknown kinds are warnings (for forward compatibility).
	known := map[string]struct{}{
		"s3":  {},
		"mem": {},
	}
	if _, ok := known[m.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "mount.kind",
			Message:  fmt.Sprintf("unknown mount kind %q; ensure a matching store is registered", m.Kind),
		})
	}

	if strings.TrimSpace(m.Container) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "mount.container",
			Message:  "mount.container must not be empty",
		})
	}
	if strings.TrimSpace(m.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "mount.path",
			Message:  "mount.path must not be empty",
		})
	}

	return issues
}

func validateDatasets(ds []Dataset) []Issue {
	var issues []Issue

	if len(ds) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "datasets",
			Message:  "at least one dataset is required",
		})
		return issues
	}

	prefixes := map[string]int{}
	names := map[string]int{}

	for i, d := range ds {
		path := func(field string) string { return fmt.Sprintf("datasets[%d].%s", i, field) }

		if strings.TrimSpace(d.Name) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: path("name"), Message: "dataset name must not be empty"})
		} else if prev, dup := names[d.Name]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path("name"),
				Message:  fmt.Sprintf("dataset name %q already used by datasets[%d]", d.Name, prev),
			})
		} else {
			names[d.Name] = i
		}

		if strings.TrimSpace(d.URL) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: path("url"), Message: "dataset url must not be empty"})
		}
		if strings.TrimSpace(d.RawFile) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: path("raw_file"), Message: "raw_file must not be empty"})
		}
		if strings.TrimSpace(d.StreamDir) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: path("stream_dir"), Message: "stream_dir must not be empty"})
		}
		if strings.TrimSpace(d.Table) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: path("table"), Message: "table must not be empty"})
		}

		switch {
		case len(d.IDPrefix) != 1:
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path("id_prefix"),
				Message:  fmt.Sprintf("id_prefix must be a single character, got %q", d.IDPrefix),
			})
		default:
			if prev, dup := prefixes[d.IDPrefix]; dup {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path("id_prefix"),
					Message:  fmt.Sprintf("id_prefix %q already used by datasets[%d]; ids would collide", d.IDPrefix, prev),
				})
			} else {
				prefixes[d.IDPrefix] = i
			}
		}
	}

	return issues
}

func validateStream(s Stream) []Issue {
	var issues []Issue

	if s.Shards <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "stream.shards",
			Message:  fmt.Sprintf("shards must be positive, got %d", s.Shards),
		})
	}
	if s.WriterBuffer < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "stream.writer_buffer",
			Message:  "writer_buffer must not be negative",
		})
	}

	return issues
}

func validateWarehouse(w Warehouse) []Issue {
	var issues []Issue

	if strings.TrimSpace(w.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "warehouse.kind",
			Message:  "warehouse.kind must not be empty",
		})
		return issues
	}

	known := map[string]struct{}{
		"sqlite":   {},
		"postgres": {},
		"mssql":    {},
	}
	if _, ok := known[w.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "warehouse.kind",
			Message:  fmt.Sprintf("unknown warehouse kind %q; ensure a matching backend is registered", w.Kind),
		})
	}

	if strings.TrimSpace(w.DB.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "warehouse.db.dsn",
			Message:  "warehouse.db.dsn must not be empty",
		})
	}
	if strings.TrimSpace(w.TableDir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "warehouse.table_dir",
			Message:  "warehouse.table_dir must not be empty",
		})
	}

	return issues
}

func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue

	if r.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.batch_size",
			Message:  "batch_size must not be negative",
		})
	}
	if r.ChannelBuffer < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.channel_buffer",
			Message:  "channel_buffer must not be negative",
		})
	}

	return issues
}
