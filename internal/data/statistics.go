package data

type CacheCounters struct {
	CounterHits   map[string]int `json:"counter_hits,omitempty"`
	CounterMisses map[string]int `json:"counter_misses,omitempty"`
}

// HitRatio returns the percentage of hits across all keys, or zero when
// nothing was counted.
func (c *CacheCounters) HitRatio() float64 {
	var hits, total int

	for key, hit := range c.CounterHits {
		hits += hit
		total += hit + c.CounterMisses[key]
	}
	for key, miss := range c.CounterMisses {
		if _, ok := c.CounterHits[key]; !ok {
			total += miss
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

type Timers struct {
	Totals   map[string]int64 `json:"totals,omitempty"`
	Averages map[string]int64 `json:"averages,omitempty"`
}
