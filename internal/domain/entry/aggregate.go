package entry

import "errors"

// ErrEmptyInput is returned by MostPopular when there is nothing to choose from.
var ErrEmptyInput = errors.New("no entries to aggregate")

// TotalPopularity sums likes over entries. Nil entries count as zero.
func TotalPopularity(entries []*Entry) int {
	total := 0
	for _, e := range entries {
		if e == nil {
			continue
		}
		total += e.Likes
	}
	return total
}

// MostPopularEntry returns the first entry holding the maximum likes.
func MostPopularEntry(entries []*Entry) (*Entry, error) {
	var best *Entry
	for _, e := range entries {
		if e == nil {
			continue
		}
		if best == nil || e.Likes > best.Likes {
			best = e
		}
	}
	if best == nil {
		return nil, ErrEmptyInput
	}
	return best, nil
}

// MostPopular returns the likes of the most popular entry, ties resolving to the earliest.
func MostPopular(entries []*Entry) (int, error) {
	best, err := MostPopularEntry(entries)
	if err != nil {
		return 0, err
	}
	return best.Likes, nil
}

// Stats summarises a set of entries.
type Stats struct {
	Count      int
	TotalLikes int
	MostLikes  int
	Favorite   *Entry
}

// Summarize computes Stats. An empty set yields zero values and no favorite.
func Summarize(entries []*Entry) Stats {
	stats := Stats{TotalLikes: TotalPopularity(entries)}
	for _, e := range entries {
		if e != nil {
			stats.Count++
		}
	}
	if fav, err := MostPopularEntry(entries); err == nil {
		stats.Favorite = fav
		stats.MostLikes = fav.Likes
	}
	return stats
}
