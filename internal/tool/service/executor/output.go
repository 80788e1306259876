package executor

import (
	"fmt"
	"math"

	"github.com/Cyclone1070/claw/internal/tool/service/fs"
)

const (
	binarySampleSize  = 8000
	binaryPlaceholder = "[binary output omitted]"
)

// outputBuffer keeps the start and the end of a stream within a byte budget
// and drops the middle. A stream whose first bytes look binary is discarded.
type outputBuffer struct {
	head    []byte
	tail    []byte
	headMax int
	tailMax int
	dropped int
	checked int
	binary  bool
}

// newOutputBuffer splits limit evenly between head and tail. A limit below
// one keeps everything.
func newOutputBuffer(limit int) *outputBuffer {
	if limit < 1 {
		return &outputBuffer{headMax: math.MaxInt}
	}
	return &outputBuffer{headMax: limit - limit/2, tailMax: limit / 2}
}

func (b *outputBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if b.binary {
		return n, nil
	}

	if b.checked < binarySampleSize {
		sample := p[:min(len(p), binarySampleSize-b.checked)]
		if fs.IsBinaryContent(sample) {
			b.binary = true
			b.head, b.tail = nil, nil
			return n, nil
		}
		b.checked += len(sample)
	}

	if room := b.headMax - len(b.head); room > 0 {
		k := min(room, len(p))
		b.head = append(b.head, p[:k]...)
		p = p[k:]
	}
	if len(p) == 0 {
		return n, nil
	}

	b.tail = append(b.tail, p...)
	if over := len(b.tail) - b.tailMax; over > 0 {
		b.dropped += over
		b.tail = append(b.tail[:0], b.tail[over:]...)
	}
	return n, nil
}

func (b *outputBuffer) String() string {
	switch {
	case b.binary:
		return binaryPlaceholder
	case b.dropped == 0:
		return string(b.head) + string(b.tail)
	default:
		return fmt.Sprintf("%s\n... [%d bytes omitted] ...\n%s", b.head, b.dropped, b.tail)
	}
}

func (b *outputBuffer) Truncated() bool {
	return b.binary || b.dropped > 0
}
