package lock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bashhack/linklock/internal/errors"
)

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "content.lock")

	if _, err := Inspect(path); !errors.Is(err, errors.ErrNotHeld) {
		t.Fatalf("Expected ErrNotHeld for a free lock, got %v", err)
	}

	// Unrelated siblings sharing the prefix must be ignored
	if err := os.WriteFile(filepath.Join(dir, "content.lock.json"), []byte("{}"), 0644); err != nil {
		t.Fatalf("Failed to write sibling: %v", err)
	}
	if err := os.WriteFile(MarkerPath(path, "stale"), nil, 0644); err != nil {
		t.Fatalf("Failed to write stale marker: %v", err)
	}

	if err := Acquire(path, "host_1_X"); err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}

	h, err := Inspect(path)
	if err != nil {
		t.Fatalf("Failed to inspect lock: %v", err)
	}
	if h.Owner != "host_1_X" {
		t.Errorf("Expected owner host_1_X, got %q", h.Owner)
	}
	if h.Marker != MarkerPath(path, "host_1_X") {
		t.Errorf("Expected marker %s, got %s", MarkerPath(path, "host_1_X"), h.Marker)
	}
	if h.Orphaned() {
		t.Error("Expected holder with a marker not to be orphaned")
	}
}

func TestInspectOrphanedLink(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "content.lock")

	if err := Acquire(path, "p1"); err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}
	if err := os.Remove(MarkerPath(path, "p1")); err != nil {
		t.Fatalf("Failed to remove marker: %v", err)
	}

	h, err := Inspect(path)
	if err != nil {
		t.Fatalf("Failed to inspect lock: %v", err)
	}
	if !h.Orphaned() || h.Owner != "" {
		t.Errorf("Expected orphaned holder, got %+v", h)
	}
}

func TestBreak(t *testing.T) {
	tests := map[string]struct {
		setup     func(t *testing.T, path string)
		wantOwner string
		wantErr   error
	}{
		"CrashedHolder": {
			setup: func(t *testing.T, path string) {
				if err := Acquire(path, "p1"); err != nil {
					t.Fatalf("Failed to acquire lock: %v", err)
				}
			},
			wantOwner: "p1",
		},
		"OrphanedLink": {
			setup: func(t *testing.T, path string) {
				if err := os.WriteFile(path, nil, 0644); err != nil {
					t.Fatalf("Failed to create link: %v", err)
				}
			},
		},
		"FreeLock": {
			setup:   func(t *testing.T, path string) {},
			wantErr: errors.ErrNotHeld,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "content.lock")
			tc.setup(t, path)

			h, err := Break(path)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Break() error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Break() unexpected error: %v", err)
			}
			if h.Owner != tc.wantOwner {
				t.Errorf("Expected broken owner %q, got %q", tc.wantOwner, h.Owner)
			}
			assertEntries(t, dir)

			if err := Acquire(path, "p2"); err != nil {
				t.Errorf("Expected lock to be free after Break: %v", err)
			}
		})
	}
}

func TestBreakHolderRefusesNewOwner(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "content.lock")

	if err := Acquire(path, "p1"); err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}
	old, err := Inspect(path)
	if err != nil {
		t.Fatalf("Failed to inspect lock: %v", err)
	}

	// p1 lets go and p2 takes over between inspection and break
	if err := Release(path, "p1"); err != nil {
		t.Fatalf("Failed to release lock: %v", err)
	}
	if err := Acquire(path, "p2"); err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}

	if _, err := BreakHolder(old); !errors.Is(err, errors.ErrLockHeld) {
		t.Fatalf("Expected ErrLockHeld for a changed holder, got %v", err)
	}

	held, err := IsHeldBy(path, "p2")
	if err != nil || !held {
		t.Errorf("Expected p2 to still hold the lock, held=%v err=%v", held, err)
	}
	if _, err := os.Lstat(MarkerPath(path, "p2")); err != nil {
		t.Errorf("Expected p2 marker to survive: %v", err)
	}
}

func TestBreakHolder(t *testing.T) {
	tests := map[string]struct {
		setup     func(t *testing.T, path string) Holder
		wantErr   error
		wantGone  bool
		wantOwner string
	}{
		"SameHolder": {
			setup: func(t *testing.T, path string) Holder {
				if err := Acquire(path, "p1"); err != nil {
					t.Fatalf("Failed to acquire lock: %v", err)
				}
				h, err := Inspect(path)
				if err != nil {
					t.Fatalf("Failed to inspect lock: %v", err)
				}
				return h
			},
			wantGone:  true,
			wantOwner: "p1",
		},
		"OrphanedLink": {
			setup: func(t *testing.T, path string) Holder {
				if err := os.WriteFile(path, nil, 0644); err != nil {
					t.Fatalf("Failed to create link: %v", err)
				}
				h, err := Inspect(path)
				if err != nil {
					t.Fatalf("Failed to inspect lock: %v", err)
				}
				return h
			},
			wantGone: true,
		},
		"ReleasedSinceInspection": {
			setup: func(t *testing.T, path string) Holder {
				if err := Acquire(path, "p1"); err != nil {
					t.Fatalf("Failed to acquire lock: %v", err)
				}
				h, err := Inspect(path)
				if err != nil {
					t.Fatalf("Failed to inspect lock: %v", err)
				}
				if err := Release(path, "p1"); err != nil {
					t.Fatalf("Failed to release lock: %v", err)
				}
				return h
			},
			wantErr:  errors.ErrNotHeld,
			wantGone: true,
		},
		"OrphanClaimedSinceInspection": {
			setup: func(t *testing.T, path string) Holder {
				if err := os.WriteFile(path, nil, 0644); err != nil {
					t.Fatalf("Failed to create link: %v", err)
				}
				h, err := Inspect(path)
				if err != nil {
					t.Fatalf("Failed to inspect lock: %v", err)
				}
				if err := os.Remove(path); err != nil {
					t.Fatalf("Failed to remove link: %v", err)
				}
				if err := Acquire(path, "p2"); err != nil {
					t.Fatalf("Failed to acquire lock: %v", err)
				}
				return h
			},
			wantErr: errors.ErrLockHeld,
		},
		"MarkerNotLinked": {
			setup: func(t *testing.T, path string) Holder {
				if err := Acquire(path, "p2"); err != nil {
					t.Fatalf("Failed to acquire lock: %v", err)
				}
				marker := MarkerPath(path, "p1")
				if err := os.WriteFile(marker, nil, 0644); err != nil {
					t.Fatalf("Failed to write marker: %v", err)
				}
				return Holder{Path: path, Owner: "p1", Marker: marker}
			},
			wantErr: errors.ErrLockHeld,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "content.lock")
			expected := tc.setup(t, path)

			h, err := BreakHolder(expected)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("BreakHolder() error = %v, want %v", err, tc.wantErr)
				}
			} else if err != nil {
				t.Fatalf("BreakHolder() unexpected error: %v", err)
			} else if h.Owner != tc.wantOwner {
				t.Errorf("Expected broken owner %q, got %q", tc.wantOwner, h.Owner)
			}

			_, err = os.Lstat(path)
			if gone := os.IsNotExist(err); gone != tc.wantGone {
				t.Errorf("Expected lock gone=%v, got %v", tc.wantGone, gone)
			}
			if tc.wantGone {
				assertEntries(t, dir)
			}
		})
	}
}
