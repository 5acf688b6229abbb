package recommend

import "sort"

const maxAffinityEntries = 200

// capAffinity drops the weakest entries once a map grows past the cap.
// The key touched by the current interaction is never dropped.
func capAffinity(affinity map[string]float64, keep string) {
	if len(affinity) <= maxAffinityEntries {
		return
	}

	type entry struct {
		key   string
		value float64
	}

	entries := make([]entry, 0, len(affinity))
	for k, v := range affinity {
		if k == keep {
			continue
		}
		entries = append(entries, entry{key: k, value: v})
	}

	// weakest first, key order for ties
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].value == entries[j].value {
			return entries[i].key < entries[j].key
		}
		return entries[i].value < entries[j].value
	})

	toDrop := len(affinity) - maxAffinityEntries
	for i := 0; i < toDrop && i < len(entries); i++ {
		delete(affinity, entries[i].key)
	}
}
