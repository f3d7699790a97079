// Package tracking derives the identifier that correlates a recorded click
// with conversion events reported later.
package tracking

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// NewID builds a tracking identifier from the click and url ids plus a random
// suffix so identifiers stay unguessable across restarts.
func NewID(clickID, urlID uint) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%d.%d.%s", urlID, clickID, suffix)
}

// Parse splits a tracking identifier back into its url and click ids. It
// tolerates unknown suffix shapes; only the two leading segments matter.
func Parse(id string) (urlID, clickID uint, ok bool) {
	parts := strings.Split(id, ".")
	if len(parts) < 2 {
		return 0, 0, false
	}
	u, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return 0, 0, false
	}
	c, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return 0, 0, false
	}
	return uint(u), uint(c), true
}
