package ingest

import (
	"context"

	"github.com/hotjob/indexer/pkg/natsutil"
	"github.com/nats-io/nats.go"
)

const (
	// IngestSubject carries raw job mappings, one JSON object per message.
	IngestSubject = "jobs.ingest"
	// DLQSubject receives records whose store write kept failing.
	DLQSubject = "jobs.ingest.dlq"
	// MaxRetries is how many times a failed record is republished before
	// it goes to the DLQ.
	MaxRetries = 3
)

// dlqMessage is published to the DLQ once retries are exhausted.
type dlqMessage struct {
	Record  Raw    `json:"record"`
	Stage   string `json:"stage"`
	Error   string `json:"error"`
	Retries int    `json:"retries"`
}

// StartConsumer subscribes the indexer to IngestSubject. Rejected records
// are dropped after logging; backend failures are republished with an
// incremented retry header and sent to the DLQ after MaxRetries.
func StartConsumer(nc *nats.Conn, ix *Indexer) (*nats.Subscription, error) {
	log := ix.log
	return natsutil.Subscribe(nc, IngestSubject, log, func(ctx context.Context, msg *nats.Msg, raw Raw) {
		retries := natsutil.Retries(msg)
		out := ix.IndexJob(ctx, 0, raw)

		switch out.State {
		case StatePersisted:
			log.Info("ingest: consumed", "id", out.ID, "retries", retries)
		case StateRejected:
			log.Info("ingest: dropped rejected record", "id", out.ID, "stage", out.Stage)
		case StateFailed:
			retries++
			if retries > MaxRetries {
				dlq := dlqMessage{Record: raw, Stage: out.Stage, Error: out.Reason, Retries: retries - 1}
				if err := natsutil.Publish(ctx, nc, DLQSubject, dlq); err != nil {
					log.Error("ingest: DLQ publish failed", "id", out.ID, "error", err)
				}
				log.Warn("ingest: sent to DLQ", "id", out.ID, "retries", retries-1)
				break
			}
			if err := natsutil.PublishRetry(ctx, nc, IngestSubject, raw, retries); err != nil {
				log.Error("ingest: retry publish failed", "id", out.ID, "error", err)
			}
		}

		if msg.Reply != "" {
			_ = msg.Ack()
		}
	})
}
