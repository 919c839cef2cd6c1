// Package crawler implements the Crawler Worker: a pull-based consumer of
// the Dispatcher's URL queue that fetches and parses pages, submits newly
// discovered links back to the Dispatcher, and reliably multicasts index
// updates to every Storage Node.
package crawler

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/googol-project/googol/dispatcher"
	"github.com/googol-project/googol/pipeline"
)

const (
	emptyQueueSleep      = 5 * time.Second
	dispatcherRetrySleep = 10 * time.Second
	fetchTimeout         = 10 * time.Second
	snippetTokens        = 30
)

// Config configures one Worker.
type Config struct {
	DispatcherAddr   string
	StorageNodeNames []string
	Resolver         PeerResolver
	Fetcher          Fetcher
	Logger           *log.Logger
}

// Worker is a single goroutine running the pull-fetch-extract-dispatch
// loop. A crawler process runs a configurable number of independent
// Workers (downloader.threads), each with its own Worker.
type Worker struct {
	cfg         Config
	logger      *log.Logger
	dispatcher  *dispatcher.Client
	multicaster *Multicaster
	pipeline    *pipeline.Pipeline
}

// New returns a Worker ready to Run. It does not itself resolve the
// Dispatcher or any Storage Node; the caller (cmd/crawler) is responsible
// for confirming both are reachable before calling Run, per the "worker
// exits if it can't resolve its collaborators at startup" rule.
func New(cfg Config) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Worker{
		cfg:         cfg,
		logger:      logger,
		dispatcher:  dispatcher.NewClient(cfg.DispatcherAddr),
		multicaster: NewMulticaster(cfg.StorageNodeNames, cfg.Resolver),
		pipeline: pipeline.New(
			pipeline.FIFO(newFetchStage(cfg.Fetcher)),
			pipeline.FIFO(newTermStage()),
		),
	}
}

// Run loops until ctx is cancelled: pull, fetch+extract, submit discovered
// links, multicast the update, drain any pending retries.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		url, ok, err := w.dispatcher.NextURLToCrawl()
		if err != nil {
			w.logger.Printf("crawler: dispatcher unreachable: %v", err)
			if !w.sleepOrDone(ctx, dispatcherRetrySleep) {
				return
			}
			continue
		}
		if !ok {
			if !w.sleepOrDone(ctx, emptyQueueSleep) {
				return
			}
			continue
		}

		w.processURL(ctx, url)
		if err := w.multicaster.DrainRetries(); err != nil {
			w.logger.Printf("crawler: retry drain had failures: %v", err)
		}
	}
}

func (w *Worker) processURL(ctx context.Context, url string) {
	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	// id correlates every log line produced while handling this one URL,
	// including the PendingUpdate eventually sent to the Storage Nodes.
	id := uuid.New()

	payload := &crawlerPayload{URL: url}
	sink := &collectingSink{}

	if err := w.pipeline.Run(fetchCtx, &singlePayloadSource{payload: payload}, sink); err != nil {
		w.logger.Printf("crawler: [%s] failed to process %s: %v", id, url, err)
		return
	}
	if sink.result == nil {
		return
	}

	for _, link := range sink.result.Links {
		if err := w.dispatcher.SubmitURL(link); err != nil {
			w.logger.Printf("crawler: [%s] failed to submit discovered url %s: %v", id, link, err)
		}
	}

	u := update{
		ID:            id,
		URL:           sink.result.URL,
		Title:         sink.result.Title,
		Snippet:       sink.result.snippet(snippetTokens),
		Terms:         sink.result.Terms,
		OutgoingLinks: sink.result.Links,
	}
	if err := w.multicaster.Send(u); err != nil {
		w.logger.Printf("crawler: [%s] multicast for %s had failures, queued for retry: %v", id, url, err)
	}
}

func (w *Worker) sleepOrDone(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// singlePayloadSource is a pipeline.Source yielding exactly one payload.
type singlePayloadSource struct {
	payload *crawlerPayload
	done    bool
}

func (s *singlePayloadSource) Next(context.Context) bool {
	if s.done {
		return false
	}
	s.done = true
	return true
}

func (s *singlePayloadSource) Payload() pipeline.Payload { return s.payload }
func (s *singlePayloadSource) Error() error               { return nil }

// collectingSink copies out the fields of the single payload the pipeline
// produced. It must copy rather than retain the payload pointer: the
// pipeline recycles it into payloadPool immediately after Consume returns.
type collectingSink struct {
	result *pageResult
}

func (s *collectingSink) Consume(_ context.Context, p pipeline.Payload) error {
	payload := p.(*crawlerPayload)
	s.result = &pageResult{
		URL:    payload.URL,
		Title:  payload.Title,
		Tokens: append([]string(nil), payload.Tokens...),
		Terms:  append([]string(nil), payload.Terms...),
		Links:  append([]string(nil), payload.Links...),
	}
	return nil
}
