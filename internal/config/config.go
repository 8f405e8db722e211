// Package config defines the canonical, JSON-serializable configuration model
// for the kddprep pipeline. It is intentionally small, explicit, and
// dependency-free so that pipelines can be loaded from disk and passed through
// the program without additional glue code.
//
// Design goals:
//
//  1. Stability: changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: field names in Go mirror the JSON structure used in pipeline
//     files under configs/pipelines/*.json.
//  3. Minimalism: no third-party config libraries; decoding is performed by
//     the standard library.
//
// Example (trimmed):
//
//	{
//	  "job":     "kdd_setup",
//	  "secrets": { "scope": "storage_scope", "account_key": "storage_account", "access_key": "storage_key" },
//	  "mount":   { "kind": "s3", "container": "databricks", "path": "/mnt/blob_storage" },
//	  "datasets": [
//	    { "name": "kdd", "url": "https://...gz", "id_prefix": "A", "labeled": true, ... }
//	  ],
//	  "stream":    { "shards": 20 },
//	  "warehouse": { "kind": "sqlite", "db": { "dsn": "file:kddprep.db" } }
//	}
package config

import (
	"encoding/json"
	"io"
	"os"
)

// Pipeline describes the full data-preparation run in JSON. It is the
// top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job names the run for logging and metrics labeling.
	Job string `json:"job"`

	// Secrets locates the storage credentials in a named scope.
	Secrets Secrets `json:"secrets"`

	// Mount binds the remote blob container into a local path.
	Mount Mount `json:"mount"`

	// Datasets lists the raw datasets to fetch, repartition, and register.
	Datasets []Dataset `json:"datasets"`

	// Stream configures the repartitioning stage.
	Stream Stream `json:"stream"`

	// Warehouse configures the staging database and columnar output.
	Warehouse Warehouse `json:"warehouse"`

	// Runtime controls batching and channel buffer sizes.
	Runtime RuntimeConfig `json:"runtime"`
}

// Secrets identifies the credential scope and the keys holding the storage
// account name and access key. Dir optionally points at a directory of
// JSON scope files; the environment is always consulted first.
type Secrets struct {
	Scope      string `json:"scope"`
	AccountKey string `json:"account_key"`
	AccessKey  string `json:"access_key"`
	Dir        string `json:"dir"`
}

// Mount describes the blob container binding.
type Mount struct {
	// Kind selects the blob store implementation ("s3", "mem").
	Kind string `json:"kind"`

	// Container is the remote container (bucket) name.
	Container string `json:"container"`

	// Path is the local directory the container is bound to.
	Path string `json:"path"`

	// Region is the store region, when the backend needs one.
	Region string `json:"region"`

	// Endpoint optionally overrides the store endpoint (e.g. for
	// S3-compatible services or local test stacks).
	Endpoint string `json:"endpoint"`
}

// Dataset describes one raw dataset flowing through all stages.
type Dataset struct {
	// Name is the logical dataset name ("kdd", "kdd_unlabeled").
	Name string `json:"name"`

	// URL is the gzip-compressed CSV source.
	URL string `json:"url"`

	// RawFile is the decompressed destination, relative to the mount path.
	RawFile string `json:"raw_file"`

	// StreamDir is the repartitioned output directory, relative to the
	// mount path. It is fully replaced on every run.
	StreamDir string `json:"stream_dir"`

	// IDPrefix is the single-letter source tag prepended to row ids.
	IDPrefix string `json:"id_prefix"`

	// Labeled marks the dataset as carrying a trailing label column.
	Labeled bool `json:"labeled"`

	// Table is the warehouse table name the dataset is registered under.
	Table string `json:"table"`
}

// Stream configures the repartitioning stage.
type Stream struct {
	// Shards is the fixed number of output files per dataset.
	Shards int `json:"shards"`

	// WriterBuffer is the per-shard channel buffer size.
	WriterBuffer int `json:"writer_buffer"`
}

// Warehouse selects the staging database backend and the columnar output
// location.
type Warehouse struct {
	// Kind selects the storage backend ("sqlite", "postgres", "mssql").
	Kind string `json:"kind"`

	// DB configures the backend connection.
	DB DBConfig `json:"db"`

	// TableDir is the directory for columnar (Parquet) table files,
	// relative to the mount path.
	TableDir string `json:"table_dir"`
}

// DBConfig configures the staging database connection.
type DBConfig struct {
	// DSN is the connection string for the selected backend.
	DSN string `json:"dsn"`
}

// RuntimeConfig controls batching and channel buffer sizes.
type RuntimeConfig struct {
	BatchSize     int `json:"batch_size"`
	ChannelBuffer int `json:"channel_buffer"`
}

// Load decodes a Pipeline from the JSON file at path.
func Load(path string) (Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return Pipeline{}, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode decodes a Pipeline from JSON read from r. Unknown fields are
// rejected so that typos in pipeline files surface immediately.
func Decode(r io.Reader) (Pipeline, error) {
	var p Pipeline
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Pipeline{}, err
	}
	return p, nil
}
