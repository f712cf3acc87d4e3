package web

// cache remembers the hashes of the last few frames sent, so clients
// can be told to replay a frame instead of receiving it again.
type cache struct {
	hashes []uint64
	used   []bool
	idx    int
}

func newCache(size int) *cache {
	return &cache{
		hashes: make([]uint64, size),
		used:   make([]bool, size),
	}
}

// index returns the slot holding hash, or -1.
func (c *cache) index(hash uint64) int {
	for i, h := range c.hashes {
		if c.used[i] && h == hash {
			return i
		}
	}

	return -1
}

// add stores hash in the oldest slot and returns that slot.
func (c *cache) add(hash uint64) int {
	i := c.idx
	c.hashes[i] = hash
	c.used[i] = true

	c.idx = (c.idx + 1) % len(c.hashes)
	return i
}
