package metrics

// Indexer groups the series the indexing pipeline reports.
type Indexer struct {
	Persisted  *Counter
	Rejected   *Counter
	Degenerate *Counter
	Failed     *Counter
	Resumes    *Counter
	EmbedTime  *Histogram
	UpsertTime *Histogram
}

// NewIndexer registers the pipeline series on r.
func NewIndexer(r *Registry) *Indexer {
	const records = "indexer_records_total"
	const help = "Records by terminal state."
	return &Indexer{
		Persisted:  r.Counter(records, help, "state", "persisted"),
		Rejected:   r.Counter(records, help, "state", "rejected"),
		Degenerate: r.Counter(records, help, "state", "degenerate"),
		Failed:     r.Counter(records, help, "state", "failed"),
		Resumes:    r.Counter("indexer_resumes_total", "Resumes persisted."),
		EmbedTime:  r.Histogram("indexer_embed_seconds", "Embedding latency.", nil),
		UpsertTime: r.Histogram("indexer_upsert_seconds", "Vector store upsert latency.", nil),
	}
}
