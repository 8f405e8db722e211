package stream

import "github.com/zeebo/xxh3"

// ShardFor maps a row id onto one of n shards. xxh3 spreads the dense
// prefix+counter ids evenly, so shard files end up close in size without
// any coordination between writers.
func ShardFor(id string, n int) int {
	if n <= 1 {
		return 0
	}
	return int(xxh3.HashString(id) % uint64(n))
}
