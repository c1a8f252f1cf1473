package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/mfvec/blobstore"
	"github.com/hupe1980/mfvec/codec"
	"github.com/hupe1980/mfvec/internal/compress"
	"github.com/hupe1980/mfvec/model"
	"github.com/hupe1980/mfvec/peer"
	"github.com/hupe1980/mfvec/resource"
)

var (
	// ErrNoSnapshot is returned by Load when the store holds no committed snapshot.
	ErrNoSnapshot = errors.New("no snapshot")

	// ErrNoStore is returned by NewManager when no blob store is configured.
	ErrNoStore = errors.New("persistence: blob store not configured")
)

// Source is a set of bound fields that can be snapshotted.
type Source interface {
	Handles() []model.Handle
	Read(h model.Handle) ([]model.Vec3, error)
}

// RestoreFunc receives one restored field.
type RestoreFunc func(h model.Handle, tuples []model.Vec3) error

// ManagerOptions configures the persistence manager.
type ManagerOptions struct {
	// Store receives snapshot blobs (required).
	Store blobstore.BlobStore

	// Codec serializes the manifest. Defaults to codec.Default.
	Codec codec.Codec

	// Compression is applied to field payloads. Defaults to none.
	Compression compress.Type

	// Resource bounds concurrent uploads and upload throughput (optional).
	Resource *resource.Controller

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Manager writes and reads snapshots of a Source.
//
// Save calls are serialized; Load may run concurrently with Save and always
// sees the last committed snapshot.
type Manager struct {
	store       blobstore.BlobStore
	codec       codec.Codec
	compression compress.Type
	rc          *resource.Controller
	logger      *slog.Logger

	saveMu sync.Mutex
}

// NewManager creates a persistence manager.
func NewManager(opts ManagerOptions) (*Manager, error) {
	if opts.Store == nil {
		return nil, ErrNoStore
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	switch opts.Compression {
	case compress.None, compress.LZ4, compress.ZSTD:
	default:
		return nil, fmt.Errorf("persistence: %w: %d", compress.ErrUnknownType, opts.Compression)
	}

	return &Manager{
		store:       opts.Store,
		codec:       opts.Codec,
		compression: opts.Compression,
		rc:          opts.Resource,
		logger:      opts.Logger,
	}, nil
}

// Save writes a snapshot of src and commits it.
//
// Handles unbound while the snapshot is taken are skipped. The previous
// snapshot stays current until the new CURRENT pointer is written.
func (m *Manager) Save(ctx context.Context, src Source) (*Manifest, error) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	start := time.Now()

	id, err := m.nextID(ctx)
	if err != nil {
		return nil, err
	}

	handles := src.Handles()
	entries := make([]*FieldEntry, len(handles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.rc.BackgroundLimit())

	for i, h := range handles {
		g.Go(func() error {
			if err := m.rc.AcquireBackground(gctx); err != nil {
				return err
			}
			defer m.rc.ReleaseBackground()

			tuples, err := src.Read(h)
			if err != nil {
				if errors.Is(err, peer.ErrUnknownHandle) {
					return nil
				}
				return fmt.Errorf("read %s: %w", h, err)
			}

			entry, err := m.writeField(gctx, id, h, tuples)
			if err != nil {
				return err
			}
			entries[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		m.logger.Error("snapshot failed", "id", id, "error", err)
		return nil, err
	}

	manifest := &Manifest{
		Version:     ManifestVersion,
		ID:          id,
		CreatedAt:   time.Now().UTC(),
		Compression: m.compression.String(),
		Fields:      make([]FieldEntry, 0, len(entries)),
	}
	for _, e := range entries {
		if e != nil {
			manifest.Fields = append(manifest.Fields, *e)
		}
	}

	data, err := m.codec.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	if err := m.store.Put(ctx, manifestName(id), data); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	if err := m.store.Put(ctx, CurrentName, formatPointer(manifestName(id), m.codec.Name())); err != nil {
		return nil, fmt.Errorf("commit snapshot %d: %w", id, err)
	}

	m.logger.Info("snapshot saved",
		"id", id,
		"fields", len(manifest.Fields),
		"tuples", manifest.Tuples(),
		"duration", time.Since(start),
	)
	return manifest, nil
}

func (m *Manager) writeField(ctx context.Context, id uint64, h model.Handle, tuples []model.Vec3) (*FieldEntry, error) {
	data, err := EncodeField(tuples, m.compression)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", h, err)
	}

	name := fieldBlobName(id, h)
	w, err := m.store.Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}

	if _, err := resource.NewRateLimitedWriter(ctx, w, m.rc).Write(data); err != nil {
		_ = w.Close()
		_ = m.store.Delete(ctx, name)
		return nil, fmt.Errorf("write %s: %w", name, err)
	}
	if err := w.Sync(); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("sync %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close %s: %w", name, err)
	}

	var hdr Header
	if err := hdr.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return &FieldEntry{
		Handle:   h,
		Count:    hdr.Count,
		Blob:     name,
		Size:     int64(len(data)),
		Checksum: hdr.Checksum,
	}, nil
}

// Current returns the manifest of the last committed snapshot.
func (m *Manager) Current(ctx context.Context) (*Manifest, error) {
	pointer, err := blobstore.ReadAll(ctx, m.store, CurrentName)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("read current pointer: %w", err)
	}

	name, c, err := m.parsePointer(pointer)
	if err != nil {
		return nil, err
	}

	data, err := blobstore.ReadAll(ctx, m.store, name)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", name, err)
	}

	var manifest Manifest
	if err := c.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("%w: manifest %s: %w", ErrCorrupt, name, err)
	}
	if manifest.Version != ManifestVersion {
		return nil, fmt.Errorf("%w: manifest version %d", ErrInvalidVersion, manifest.Version)
	}
	return &manifest, nil
}

// Load reads the last committed snapshot and passes every field to fn in
// manifest order. Records are fetched and verified concurrently; fn is not
// called unless every record decodes.
func (m *Manager) Load(ctx context.Context, fn RestoreFunc) (*Manifest, error) {
	manifest, err := m.Current(ctx)
	if err != nil {
		return nil, err
	}

	values := make([][]model.Vec3, len(manifest.Fields))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.rc.BackgroundLimit())

	for i, entry := range manifest.Fields {
		g.Go(func() error {
			tuples, err := m.readField(gctx, entry)
			if err != nil {
				return err
			}
			values[i] = tuples
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, entry := range manifest.Fields {
		if err := fn(entry.Handle, values[i]); err != nil {
			return nil, fmt.Errorf("restore %s: %w", entry.Handle, err)
		}
	}

	m.logger.Info("snapshot loaded", "id", manifest.ID, "fields", len(manifest.Fields))
	return manifest, nil
}

func (m *Manager) readField(ctx context.Context, entry FieldEntry) ([]model.Vec3, error) {
	data, err := blobstore.ReadAll(ctx, m.store, entry.Blob)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", entry.Blob, err)
	}

	return decodeField(entry.Blob, data, &entry)
}

// Prune deletes every snapshot except the current one.
func (m *Manager) Prune(ctx context.Context) (int, error) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	manifest, err := m.Current(ctx)
	if err != nil {
		return 0, err
	}
	keep := snapshotDir(manifest.ID)

	names, err := m.store.List(ctx, "snap-")
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, name := range names {
		if strings.HasPrefix(name, keep) {
			continue
		}
		if err := m.store.Delete(ctx, name); err != nil {
			return deleted, fmt.Errorf("delete %s: %w", name, err)
		}
		deleted++
	}

	m.logger.Debug("snapshots pruned", "kept", manifest.ID, "deleted", deleted)
	return deleted, nil
}

// nextID returns the id following the current snapshot.
func (m *Manager) nextID(ctx context.Context) (uint64, error) {
	manifest, err := m.Current(ctx)
	switch {
	case errors.Is(err, ErrNoSnapshot):
		return 1, nil
	case err != nil:
		return 0, err
	}
	return manifest.ID + 1, nil
}

// formatPointer encodes the CURRENT pointer: the manifest name, then the
// name of the codec it was written with.
func formatPointer(name, codecName string) []byte {
	return []byte(name + "\n" + codecName + "\n")
}

// parsePointer decodes a CURRENT pointer. A pointer without a codec line
// is decoded with the manager's codec.
func (m *Manager) parsePointer(pointer []byte) (string, codec.Codec, error) {
	name, codecName, _ := strings.Cut(strings.TrimSpace(string(pointer)), "\n")
	if _, err := parseManifestName(name); err != nil {
		return "", nil, err
	}

	codecName = strings.TrimSpace(codecName)
	if codecName == "" {
		return name, m.codec, nil
	}
	c, ok := codec.ByName(codecName)
	if !ok {
		return "", nil, fmt.Errorf("%w: unknown manifest codec %q", ErrCorrupt, codecName)
	}
	return name, c, nil
}
