package dataset

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// CollisionResolver tracks target names claimed by source files and
// resolves duplicates by appending " - dupN" suffixes. A source whose
// content fingerprint matches the current owner of its name is reported
// as a duplicate instead of being renamed. All methods are goroutine-safe.
type CollisionResolver struct {
	mu       sync.Mutex
	owners   map[string]string // target name → source path that owns it
	prints   map[string]string // target name → owner's fingerprint
	counters map[string]int    // requested name → next dup counter
}

// NewCollisionResolver creates a ready-to-use resolver.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{
		owners:   make(map[string]string),
		prints:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Resolve returns the target name for src. If name is unclaimed (or
// already owned by src) it is returned as-is. If the owner has the same
// fingerprint, duplicate is true and the caller should skip the copy.
// Otherwise a " - dupN" variant is claimed. An empty fingerprint never
// matches.
func (cr *CollisionResolver) Resolve(src, name, fingerprint string) (target string, duplicate bool) {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	owner, exists := cr.owners[name]
	if !exists || owner == src {
		cr.claim(name, src, fingerprint)
		return name, false
	}
	if fingerprint != "" && cr.prints[name] == fingerprint {
		return name, true
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	counter := cr.counters[name]
	if counter == 0 {
		counter = 1
	}
	for {
		candidate := fmt.Sprintf("%s - dup%d%s", stem, counter, ext)
		cOwner, cExists := cr.owners[candidate]
		if !cExists || cOwner == src {
			cr.counters[name] = counter + 1
			cr.claim(candidate, src, fingerprint)
			return candidate, false
		}
		if fingerprint != "" && cr.prints[candidate] == fingerprint {
			return candidate, true
		}
		counter++
	}
}

func (cr *CollisionResolver) claim(name, src, fingerprint string) {
	cr.owners[name] = src
	cr.prints[name] = fingerprint
}
