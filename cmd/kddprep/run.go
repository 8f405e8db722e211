package main

import (
	"context"
	"fmt"
	"log"
	"path"
	"path/filepath"
	"time"

	"kddprep/internal/blob"
	"kddprep/internal/config"
	"kddprep/internal/datasource/file"
	"kddprep/internal/datasource/httpds"
	"kddprep/internal/fetch"
	"kddprep/internal/metrics"
	"kddprep/internal/mount"
	"kddprep/internal/secrets"
	"kddprep/internal/stream"
	"kddprep/internal/warehouse"
)

// run executes the pipeline stages in order against one mounted container:
//
//  1. mount: resolve credentials, open the blob store, bind it locally
//  2. fetch: download and decompress each dataset's archive
//  3. stream: shard each raw file into id-stamped part files, sync them up
//  4. register: load shards into a staging table, materialize parquet tables
//
// Each stage is timed and recorded; the first failing stage aborts the run.
func run(ctx context.Context, p config.Pipeline, stagingDir string, verbose bool) error {
	binding, err := runMount(ctx, p, stagingDir)
	if err != nil {
		return fmt.Errorf("mount stage: %w", err)
	}
	if err := runFetch(ctx, p, binding, verbose); err != nil {
		return fmt.Errorf("fetch stage: %w", err)
	}
	if err := runStream(ctx, p, binding, verbose); err != nil {
		return fmt.Errorf("stream stage: %w", err)
	}
	if err := runRegister(ctx, p, binding, verbose); err != nil {
		return fmt.Errorf("register stage: %w", err)
	}
	return nil
}

// runMount resolves the storage credentials from the secret scope, opens the
// configured blob store, and binds the container at the mount path.
func runMount(ctx context.Context, p config.Pipeline, stagingDir string) (*mount.Binding, error) {
	start := time.Now()
	binding, err := doMount(ctx, p, stagingDir)
	metrics.RecordStage(p.Job, "mount", err, time.Since(start))
	if err == nil {
		log.Printf("mount: %s -> %s (container %s)", p.Mount.Path, binding.LocalDir, binding.Container)
	}
	return binding, err
}

func doMount(ctx context.Context, p config.Pipeline, stagingDir string) (*mount.Binding, error) {
	resolver := secrets.NewResolver(p.Secrets.Dir)
	account, err := resolver.Get(p.Secrets.Scope, p.Secrets.AccountKey)
	if err != nil {
		return nil, err
	}
	key, err := resolver.Get(p.Secrets.Scope, p.Secrets.AccessKey)
	if err != nil {
		return nil, err
	}

	store, err := blob.New(ctx, blob.Config{
		Kind:      p.Mount.Kind,
		Container: p.Mount.Container,
		Account:   account,
		Key:       key,
		Region:    p.Mount.Region,
		Endpoint:  p.Mount.Endpoint,
	})
	if err != nil {
		return nil, err
	}

	return mount.NewManager(stagingDir).Mount(ctx, p.Mount.Path, p.Mount.Container, store)
}

// runFetch lands every dataset's raw file under the mount and pushes the raw
// directories up to the container.
func runFetch(ctx context.Context, p config.Pipeline, binding *mount.Binding, verbose bool) error {
	start := time.Now()
	err := doFetch(ctx, p, binding, verbose)
	metrics.RecordStage(p.Job, "fetch", err, time.Since(start))
	return err
}

func doFetch(ctx context.Context, p config.Pipeline, binding *mount.Binding, verbose bool) error {
	fetcher := fetch.New(httpds.NewClient(httpds.Config{MaxRetries: 3}), binding.LocalDir)
	results, err := fetcher.FetchAll(ctx, p.Datasets)
	if err != nil {
		return err
	}
	if verbose {
		for _, r := range results {
			log.Printf("fetch: %s -> %s (%d bytes)", r.Dataset, r.Path, r.Bytes)
		}
	}

	synced := map[string]bool{}
	for _, ds := range p.Datasets {
		dir := path.Dir(ds.RawFile)
		if synced[dir] {
			continue
		}
		synced[dir] = true
		if _, err := binding.Sync(ctx, dir); err != nil {
			return err
		}
	}
	return nil
}

// runStream shards each raw file into part files under its stream dir and
// syncs the finished shard sets to the container.
func runStream(ctx context.Context, p config.Pipeline, binding *mount.Binding, verbose bool) error {
	start := time.Now()
	err := doStream(ctx, p, binding, verbose)
	metrics.RecordStage(p.Job, "stream", err, time.Since(start))
	return err
}

func doStream(ctx context.Context, p config.Pipeline, binding *mount.Binding, verbose bool) error {
	streamer := stream.New(stream.Config{
		Shards:        p.Stream.Shards,
		ChannelBuffer: p.Stream.WriterBuffer,
	})

	for _, ds := range p.Datasets {
		raw := filepath.Join(binding.LocalDir, filepath.FromSlash(ds.RawFile))
		destDir := filepath.Join(binding.LocalDir, filepath.FromSlash(ds.StreamDir))

		res, err := streamer.Prepare(ctx, ds, file.NewLocal(raw), destDir)
		if err != nil {
			return err
		}
		metrics.RecordRows(p.Job, ds.Name, "streamed", res.Rows)
		metrics.RecordRows(p.Job, ds.Name, "malformed", res.BadRows)
		if verbose {
			for _, sample := range res.ErrSamples {
				log.Printf("stream: %s: malformed row: %s", ds.Name, sample)
			}
		}

		if _, err := binding.Sync(ctx, ds.StreamDir); err != nil {
			return err
		}
	}
	return nil
}

// runRegister declares each dataset's table over its shard set, materializes
// it as parquet, and syncs the table directory to the container.
func runRegister(ctx context.Context, p config.Pipeline, binding *mount.Binding, verbose bool) error {
	start := time.Now()
	err := doRegister(ctx, p, binding, verbose)
	metrics.RecordStage(p.Job, "register", err, time.Since(start))
	return err
}

func doRegister(ctx context.Context, p config.Pipeline, binding *mount.Binding, verbose bool) error {
	repo, dialect, err := warehouse.New(ctx, warehouse.Config{
		Kind: p.Warehouse.Kind,
		DSN:  p.Warehouse.DB.DSN,
	})
	if err != nil {
		return err
	}
	defer repo.Close()

	registrar, err := warehouse.NewRegistrar(repo, dialect, warehouse.RegistrarConfig{
		TableDir:      filepath.Join(binding.LocalDir, filepath.FromSlash(p.Warehouse.TableDir)),
		BatchSize:     p.Runtime.BatchSize,
		ChannelBuffer: p.Runtime.ChannelBuffer,
	})
	if err != nil {
		return err
	}

	for _, ds := range p.Datasets {
		shardDir := filepath.Join(binding.LocalDir, filepath.FromSlash(ds.StreamDir))
		res, err := registrar.Register(ctx, ds, shardDir)
		if err != nil {
			return err
		}
		metrics.RecordRows(p.Job, ds.Name, "loaded", res.Loaded)
		metrics.RecordRows(p.Job, ds.Name, "skipped", res.BadRows)
		metrics.RecordRows(p.Job, ds.Name, "materialized", res.ParquetRows)
		metrics.RecordBatches(p.Job, res.Batches)
		if verbose {
			log.Printf("register: %s table=%s parquet=%s", ds.Name, res.Table, res.ParquetPath)
		}
	}

	if _, err := binding.Sync(ctx, p.Warehouse.TableDir); err != nil {
		return err
	}
	return nil
}
