package cloudshift

// DiffResult represents the difference between two versions of a resource
// manifest, keyed by content fingerprint. Useful for incremental
// retranslation: only added or modified resources need a new model call.
type DiffResult struct {
	// Added contains resources that are new (not in the previous version).
	Added []Block

	// Removed contains resources that no longer appear in the new version.
	Removed []Block

	// Unchanged contains resources identical in both versions.
	Unchanged []Block

	// Modified contains pairs sharing a resource ID whose content changed.
	Modified []ModifiedBlock
}

// ModifiedBlock is a resource whose content changed between versions.
type ModifiedBlock struct {
	Old Block
	New Block
}

// DiffStats contains summary statistics for a diff.
type DiffStats struct {
	Added     int
	Removed   int
	Unchanged int
	Modified  int
}

// Stats returns summary statistics for the diff.
func (d *DiffResult) Stats() DiffStats {
	return DiffStats{
		Added:     len(d.Added),
		Removed:   len(d.Removed),
		Unchanged: len(d.Unchanged),
		Modified:  len(d.Modified),
	}
}

// HasChanges returns true if there are any differences.
func (d *DiffResult) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Modified) > 0
}

// NeedsTranslation returns the resources that require a fresh translation:
// new resources and the new side of modified ones.
func (d *DiffResult) NeedsTranslation() []Block {
	result := make([]Block, 0, len(d.Added)+len(d.Modified))
	result = append(result, d.Added...)
	for _, m := range d.Modified {
		result = append(result, m.New)
	}
	return result
}

// contentKey identifies a block by canonical content, independent of the
// translation direction or model.
func contentKey(b Block) string {
	return string(CanonicalJSON(b))
}

// DiffManifests compares two resource lists by canonical content and, for
// changed resources, matches old and new versions by resource ID.
func DiffManifests(oldBlocks, newBlocks []Block) *DiffResult {
	result := &DiffResult{}

	oldByContent := make(map[string]Block, len(oldBlocks))
	newByContent := make(map[string]Block, len(newBlocks))
	for _, b := range oldBlocks {
		oldByContent[contentKey(b)] = b
	}
	for _, b := range newBlocks {
		newByContent[contentKey(b)] = b
	}

	var removed []Block
	for _, b := range oldBlocks {
		if _, exists := newByContent[contentKey(b)]; exists {
			result.Unchanged = append(result.Unchanged, b)
		} else {
			removed = append(removed, b)
		}
	}

	var added []Block
	for _, b := range newBlocks {
		if _, exists := oldByContent[contentKey(b)]; !exists {
			added = append(added, b)
		}
	}

	// Pair removed and added resources sharing an ID as modifications.
	removedByID := make(map[string]int, len(removed))
	for i, b := range removed {
		if id := b.ID(); id != "" {
			removedByID[id] = i
		}
	}
	matchedRemoved := make(map[int]bool)
	for _, b := range added {
		id := b.ID()
		if id == "" {
			result.Added = append(result.Added, b)
			continue
		}
		if ri, ok := removedByID[id]; ok && !matchedRemoved[ri] {
			result.Modified = append(result.Modified, ModifiedBlock{Old: removed[ri], New: b})
			matchedRemoved[ri] = true
			continue
		}
		result.Added = append(result.Added, b)
	}
	for i, b := range removed {
		if !matchedRemoved[i] {
			result.Removed = append(result.Removed, b)
		}
	}

	return result
}
