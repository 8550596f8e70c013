package registry

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/nodeflow/internal/ctxlog"
	"github.com/specialistvlad/nodeflow/internal/fsutil"
	"github.com/specialistvlad/nodeflow/internal/manifest"
)

// DiscoverManifests scans dirPath recursively for *.hcl node manifests and
// records them against the registry. Discovery is resilient: a single
// unreadable or invalid file is warned about and skipped, not fatal to the
// whole scan. A missing directory is a warning, not an error, so hosts
// without an on-disk module tree keep working. Returns the number of
// manifests discovered.
func (r *Registry) DiscoverManifests(ctx context.Context, dirPath string) (int, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting manifest discovery.", "path", dirPath)

	if _, err := os.Stat(dirPath); err != nil {
		logger.Warn("Manifest discovery skipped: path not accessible.", "path", dirPath, "error", err)
		return 0, nil
	}

	files, err := fsutil.FindFilesByExtension(dirPath, ".hcl")
	if err != nil {
		return 0, fmt.Errorf("error finding node manifests in %s: %w", dirPath, err)
	}
	if len(files) == 0 {
		logger.Warn("No .hcl manifest files found in path.", "path", dirPath)
		return 0, nil
	}

	discovered := 0
	for _, file := range files {
		nodes, err := manifest.ParseFile(ctx, file)
		if err != nil {
			logger.Warn("Failed to decode node manifest, skipping.", "path", file, "error", err)
			continue
		}
		for _, mf := range nodes {
			r.mu.Lock()
			if existing, exists := r.manifests[mf.ID]; exists {
				logger.Warn("Duplicate node manifest found, overwriting.", "id", mf.ID, "previous", existing.Path, "path", file)
			}
			r.manifests[mf.ID] = mf
			r.mu.Unlock()
			logger.Debug("Discovered node manifest.", "id", mf.ID, "path", file)
			discovered++
		}
	}

	logger.Info("Manifest discovery finished.", "manifests", discovered)
	return discovered, nil
}

// Manifest returns the discovered manifest for the id, or nil when the node
// was registered without one.
func (r *Registry) Manifest(id string) *manifest.Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.manifests[id]
}

// ValidateManifests performs a strict parity check between discovered
// manifests and registered Go factories. Every manifest must have a
// matching registration, and the identity fields the two declare must
// agree. Nodes registered without a manifest are permitted; their configs
// simply skip static type checking.
func (r *Registry) ValidateManifests(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []string
	for id, mf := range r.manifests {
		reg, ok := r.nodes[id]
		if !ok {
			errs = append(errs, fmt.Sprintf("node '%s': manifest %s has no registered Go factory", id, mf.Path))
			continue
		}

		if reg.Metadata.Version != mf.Version {
			errs = append(errs, fmt.Sprintf("node '%s': manifest declares version %s but Go factory reports %s", id, mf.Version, reg.Metadata.Version))
		}
		if reg.Metadata.Name != mf.Name {
			errs = append(errs, fmt.Sprintf("node '%s': manifest declares name %q but Go factory reports %q", id, mf.Name, reg.Metadata.Name))
		}

		for name, in := range mf.Inputs {
			if in.Type.Equals(cty.DynamicPseudoType) {
				logger.Warn("Manifest input has 'type = any', which disables static type checking. Consider a specific type like 'string', 'number', or 'bool'.", "node", id, "input", name)
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("manifest validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
