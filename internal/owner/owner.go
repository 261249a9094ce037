// Package owner builds the owner identifiers that name lock markers.
//
// An owner id has the form host_pid_nonce. The nonce is a ULID, so two
// processes that reuse a pid (or two goroutines in tests) never collide, and
// the host and pid let an operator decide whether a stuck lock belongs to a
// process that has died.
package owner

import (
	"crypto/rand"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/bashhack/linklock/internal/errors"
)

// ErrUnparsable is returned by Parse for owner ids not minted by this package.
var ErrUnparsable = errors.New("owner id is not in host_pid_nonce form")

const sep = "_"

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// ID identifies one lock claimant.
type ID struct {
	Host  string
	PID   int
	Nonce string
}

// New returns an ID for the current process with a fresh nonce.
func New() ID {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return ID{
		Host:  sanitize(host),
		PID:   os.Getpid(),
		Nonce: newNonce(),
	}
}

func newNonce() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// String renders the id as host_pid_nonce.
func (id ID) String() string {
	return fmt.Sprintf("%s%s%d%s%s", id.Host, sep, id.PID, sep, id.Nonce)
}

// Parse splits an owner id from the right, so hosts containing the
// separator survive a round trip.
func Parse(s string) (ID, error) {
	last := strings.LastIndex(s, sep)
	if last <= 0 {
		return ID{}, errors.Wrapf(ErrUnparsable, "%q", s)
	}
	nonce := s[last+1:]
	if _, err := ulid.ParseStrict(nonce); err != nil {
		return ID{}, errors.Wrapf(ErrUnparsable, "%q: bad nonce", s)
	}

	rest := s[:last]
	mid := strings.LastIndex(rest, sep)
	if mid <= 0 {
		return ID{}, errors.Wrapf(ErrUnparsable, "%q", s)
	}
	pid, err := strconv.Atoi(rest[mid+1:])
	if err != nil || pid <= 0 {
		return ID{}, errors.Wrapf(ErrUnparsable, "%q: bad pid", s)
	}

	return ID{Host: rest[:mid], PID: pid, Nonce: nonce}, nil
}

// Alive reports whether the process behind id is still running. known is
// false when id was minted on another host, since a pid means nothing there.
func Alive(id ID) (alive, known bool) {
	host, err := os.Hostname()
	if err != nil || sanitize(host) != id.Host {
		return false, false
	}
	return isProcessRunning(id.PID), true
}

// sanitize makes a hostname safe to embed in a file name.
func sanitize(host string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '-'
		}
		return r
	}, host)
}
