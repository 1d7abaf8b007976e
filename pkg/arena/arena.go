// Package arena provides the growable backing store the machine keeps all of
// its storage in, and the generation-stamped views handed out over it.
package arena

import (
	"errors"
	"fmt"
)

// ErrStaleView is returned when a view is read after the arena it was taken
// from has been reallocated.
var ErrStaleView = errors.New("arena: view used after reallocation")

// Arena is a single contiguous byte buffer. Growing it reallocates the buffer
// and bumps the generation, which invalidates every View handed out before.
type Arena struct {
	buf        []byte
	generation uint64
}

// New allocates an arena of size bytes.
func New(size int) *Arena {
	return &Arena{buf: make([]byte, size), generation: 1}
}

func (a *Arena) Len() int {
	return len(a.buf)
}

func (a *Arena) Generation() uint64 {
	return a.generation
}

// Grow makes sure the arena holds at least size bytes. It reports whether a
// reallocation happened.
func (a *Arena) Grow(size int) bool {
	if size <= len(a.buf) {
		return false
	}
	next := make([]byte, size)
	copy(next, a.buf)
	a.buf = next
	a.generation++
	return true
}

// Slice returns the live bytes in [off, off+n). The result must not be kept
// across a call that may grow the arena; take a View for that.
func (a *Arena) Slice(off, n int) []byte {
	return a.buf[off : off+n : off+n]
}

// View borrows [off, off+n) at the current generation.
func (a *Arena) View(off, n int) View {
	if off < 0 || n < 0 || off+n > len(a.buf) {
		panic(fmt.Sprintf("arena: view [%d, %d) out of range (len %d)", off, off+n, len(a.buf)))
	}
	return View{
		arena:      a,
		bytes:      a.Slice(off, n),
		offset:     off,
		generation: a.generation,
	}
}

// View is a borrowed, read-only window into an Arena. It stays usable until
// the arena grows; after that Bytes returns ErrStaleView and the owner has to
// fetch a fresh view.
type View struct {
	arena      *Arena
	bytes      []byte
	offset     int
	generation uint64
}

func (v View) Offset() int {
	return v.offset
}

func (v View) Len() int {
	return len(v.bytes)
}

// Stale reports whether the arena has been reallocated since the view was
// taken. The zero View is always stale.
func (v View) Stale() bool {
	return v.arena == nil || v.arena.generation != v.generation
}

// Bytes returns the borrowed bytes, or ErrStaleView.
func (v View) Bytes() ([]byte, error) {
	if v.Stale() {
		return nil, ErrStaleView
	}
	return v.bytes, nil
}
