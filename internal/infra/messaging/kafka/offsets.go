package kafka

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"
)

type pending struct {
	msg     kafka.Message
	settled bool
}

// committer tracks fetched messages per partition in fetch order and
// commits only the settled prefix, so an offset is never committed past a
// message still in delivery.
type committer struct {
	r reader

	mu         sync.Mutex
	partitions map[int][]*pending
}

func newCommitter(r reader) *committer {
	return &committer{r: r, partitions: map[int][]*pending{}}
}

func (c *committer) track(m kafka.Message) *pending {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := &pending{msg: m}
	c.partitions[m.Partition] = append(c.partitions[m.Partition], p)
	return p
}

func (c *committer) settle(ctx context.Context, p *pending) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p.settled = true

	queue := c.partitions[p.msg.Partition]
	n := 0
	for n < len(queue) && queue[n].settled {
		n++
	}
	if n == 0 {
		return nil
	}
	c.partitions[p.msg.Partition] = queue[n:]
	return c.r.CommitMessages(ctx, queue[n-1].msg)
}
