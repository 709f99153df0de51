package embedded

// Source is the compilable text derived from a host document.
//
// A Source is immutable once produced. RealEnd, when set, is the offset in
// Text where genuine content ends and synthesized content begins.
type Source struct {
	Text      string
	Extension string
	RealEnd   *int
}

// entry is one cached resolution: a source, nil for an absent document, or
// the error the resolver failed with.
type entry struct {
	src *Source
	err error
}

// Cache maps host file names to resolved sources. Absent results and
// failures are cached too, until the entry is invalidated.
//
// Cache is not safe for concurrent use.
type Cache struct {
	entries     map[string]entry
	resolutions int
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]entry)}
}

// GetOrCompute returns the cached result for key, computing and storing it
// on a miss.
func (c *Cache) GetOrCompute(key string, compute func(string) (*Source, error)) (*Source, error) {
	if e, ok := c.entries[key]; ok {
		return e.src, e.err
	}

	c.resolutions++
	src, err := compute(key)
	if err != nil {
		src = nil
	}

	c.entries[key] = entry{src: src, err: err}
	return src, err
}

// Peek returns the cached source for key without computing it. Failed
// entries report false.
func (c *Cache) Peek(key string) (*Source, bool) {
	e, ok := c.entries[key]
	if !ok || e.err != nil {
		return nil, false
	}
	return e.src, true
}

// Failure returns the error cached for key, or nil.
func (c *Cache) Failure(key string) error {
	return c.entries[key].err
}

// Invalidate drops the entry for key.
func (c *Cache) Invalidate(key string) {
	delete(c.entries, key)
}

// Len returns the number of cached entries, failures included.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Resolutions returns how many times GetOrCompute has called compute.
func (c *Cache) Resolutions() int {
	return c.resolutions
}
