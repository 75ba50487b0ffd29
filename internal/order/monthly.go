package order

import "time"

const monthKeyLayout = "Jan"

// BucketByMonth counts timestamps per UTC month abbreviation.
//
// Years are not distinguished: January 2023 and January 2024 land in the same
// "Jan" bucket. Buckets appear in first-seen order, not calendar order, and an
// empty input yields an empty result rather than twelve zero rows.
func BucketByMonth(times []time.Time) []MonthlyBucket {
	buckets := make([]MonthlyBucket, 0, 12)
	index := make(map[string]int, 12)

	for _, t := range times {
		month := t.UTC().Format(monthKeyLayout)

		i, ok := index[month]
		if !ok {
			i = len(buckets)
			index[month] = i
			buckets = append(buckets, MonthlyBucket{Month: month})
		}

		buckets[i].Count++
	}

	return buckets
}
