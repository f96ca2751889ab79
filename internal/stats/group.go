package stats

// GroupByDate partitions records into buckets keyed by their date.
// Duplicates are not detected; order within a bucket follows the input.
func GroupByDate(records []DailyStatRecord) DateBucket {
	buckets := make(DateBucket)
	for _, r := range records {
		buckets[r.Date] = append(buckets[r.Date], r)
	}
	return buckets
}
