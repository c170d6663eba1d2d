package ids

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

// ID identifies an entity. Zero is never allocated and means "none".
type ID uint64

var next atomic.Uint64

// New returns a process-unique id for a freshly constructed entity.
func New() ID {
	return ID(next.Add(1))
}

func (id ID) String() string {
	return "E" + strconv.FormatUint(uint64(id), 10)
}

func Parse(s string) (ID, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "E")
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return ID(v), true
}

// Dense hands out 1, 2, 3, ... and is used when a whole snapshot is renumbered.
type Dense struct {
	n ID
}

func (d *Dense) Next() ID {
	d.n++
	return d.n
}

// Remap records old -> new id assignments made during a renumbering pass.
type Remap map[ID]ID

func (r Remap) Resolve(old ID) (ID, bool) {
	if old == 0 {
		return 0, false
	}
	id, ok := r[old]
	return id, ok
}

func (r Remap) MustResolve(old ID) ID {
	id, ok := r.Resolve(old)
	if !ok {
		panic(fmt.Sprintf("ids: no mapping for %s", old))
	}
	return id
}
