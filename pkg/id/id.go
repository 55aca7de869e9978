// Package id issues ULID run identifiers. ULIDs sort lexicographically by
// generation time, which keeps journal rows in creation order.
package id

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptorand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	// Monotonic entropy keeps IDs issued within one millisecond ordered.
	entropy = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a fresh ULID string.
func New() string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), entropy).String()
}
