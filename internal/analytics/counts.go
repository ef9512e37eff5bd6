package analytics

import "sort"

// Slice is one labelled value of a pie or bar chart.
type Slice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// counter counts keys while remembering first-seen order.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter(seed ...string) *counter {
	c := &counter{counts: make(map[string]int)}
	for _, k := range seed {
		c.order = append(c.order, k)
		c.counts[k] = 0
	}
	return c
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *counter) slices() []Slice {
	out := make([]Slice, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, Slice{Name: k, Value: c.counts[k]})
	}
	return out
}

func nonZero(in []Slice) []Slice {
	out := in[:0]
	for _, s := range in {
		if s.Value > 0 {
			out = append(out, s)
		}
	}
	return out
}

func sortByValueDesc(in []Slice) []Slice {
	sort.SliceStable(in, func(i, j int) bool { return in[i].Value > in[j].Value })
	return in
}

func top(in []Slice, n int) []Slice {
	if n >= 0 && len(in) > n {
		return in[:n]
	}
	return in
}
