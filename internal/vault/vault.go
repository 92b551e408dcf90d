// Package vault is the single entry point external callers (the CLI, or
// any future collaborator) use to drive the photo deduplication core. It
// composes the catalog, orchestrator, and pack writer packages (ranking is
// reached through the orchestrator) behind one handle, the same facade role adewale-olsen's internal/explorer
// Repository played in front of the raw database package.
package vault

import (
	"fmt"

	"github.com/adewale/olsen/internal/catalog"
	"github.com/adewale/olsen/internal/orchestrator"
	"github.com/adewale/olsen/internal/pack"
	"github.com/adewale/olsen/pkg/models"
)

// Vault is the facade handle. It owns the catalog connection for its
// lifetime; callers must call Close when done.
type Vault struct {
	cat *catalog.Catalog
}

// Open opens or creates the catalog at catalogPath, running migrations and
// reconciling the perceptual-hash version as a side effect of
// catalog.Open.
func Open(catalogPath string) (*Vault, error) {
	cat, err := catalog.Open(catalogPath)
	if err != nil {
		return nil, err
	}
	return &Vault{cat: cat}, nil
}

// Close releases the underlying catalog connection.
func (v *Vault) Close() error {
	return v.cat.Close()
}

// AddSource registers path as a scan source.
func (v *Vault) AddSource(path string) error {
	_, err := v.cat.AddSource(path)
	return err
}

// RemoveSource deletes a source and all photo records it owns; duplicate
// groups referencing those photos are rebuilt on the next scan.
func (v *Vault) RemoveSource(path string) error {
	return v.cat.RemoveSource(path)
}

// ListSources returns every registered source directory.
func (v *Vault) ListSources() ([]models.SourceDirectory, error) {
	return v.cat.ListSources()
}

// Scan runs the two-phase incremental scan (§4.5) across every registered
// source and rebuilds duplicate groups from the result.
func (v *Vault) Scan(sink orchestrator.ProgressSink) error {
	return orchestrator.Scan(v.cat, sink)
}

// ListGroups returns every duplicate group with its membership and elected
// source-of-truth populated.
func (v *Vault) ListGroups() ([]models.DuplicateGroup, error) {
	return v.cat.ListGroups()
}

// PhotoFilter narrows ListPhotos to a single source, a single group, or
// (with both zero) every cataloged photo.
type PhotoFilter struct {
	SourceID int64
	GroupID  int64
}

// ListPhotos returns photo records matching filter.
func (v *Vault) ListPhotos(filter PhotoFilter) ([]models.PhotoRecord, error) {
	switch {
	case filter.SourceID != 0:
		return v.cat.PhotosBySource(filter.SourceID)
	case filter.GroupID != 0:
		return v.cat.PhotosByGroup(filter.GroupID)
	default:
		return v.cat.AllPhotos()
	}
}

// SetPackPath persists the pack directory and idempotently registers it as
// a scan source, so re-scans notice files the pack writer itself produced.
func (v *Vault) SetPackPath(path string) error {
	if err := v.cat.SetConfigValue("pack_path", path); err != nil {
		return err
	}
	return v.AddSource(path)
}

// Pack runs the content-addressable pack materialization (§4.8): elects
// the desired set from the current groups and photos, then reconciles it
// against the pack directory.
func (v *Vault) Pack(sink pack.ProgressSink) error {
	cfg, err := v.cat.Config()
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if cfg.PackPath == "" {
		return fmt.Errorf("pack path not set; call SetPackPath first")
	}

	allPhotos, err := v.cat.AllPhotos()
	if err != nil {
		return fmt.Errorf("failed to load photos: %w", err)
	}
	groups, err := v.cat.ListGroups()
	if err != nil {
		return fmt.Errorf("failed to load groups: %w", err)
	}

	desired := pack.DesiredSet(allPhotos, groups)
	return pack.Write(cfg.PackPath, desired, sink)
}

// Config returns the catalog's persisted configuration.
func (v *Vault) Config() (models.CatalogConfig, error) {
	return v.cat.Config()
}
