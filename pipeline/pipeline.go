package pipeline

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
)

type workerParams struct {
	stage int
	inCh  chan Payload
	outCh chan<- Payload
	errCh chan<- error
}

func (p *workerParams) StageIndex() int       { return p.stage }
func (p *workerParams) Input() <-chan Payload { return p.inCh }
func (p *workerParams) Output() chan<- Payload { return p.outCh }
func (p *workerParams) Error() chan<- error    { return p.errCh }

func maybeEmitError(err error, errCh chan<- error) {
	select {
	case errCh <- err:
	default:
		// Error channel full; a previous error already triggered shutdown.
	}
}

// Pipeline is a chain of StageRunners connected by unbuffered channels, fed
// by a Source and drained by a Sink.
type Pipeline struct {
	stages []StageRunner
}

// New assembles a Pipeline from the given stages, in order.
func New(stages ...StageRunner) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run executes the pipeline until source is exhausted, ctx is cancelled, or
// a stage reports an error. It blocks until every stage, the source feeder,
// and the sink drainer have returned.
func (p *Pipeline) Run(ctx context.Context, source Source, sink Sink) error {
	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stageCh := make([]chan Payload, len(p.stages)+1)
	for i := range stageCh {
		stageCh[i] = make(chan Payload)
	}
	errCh := make(chan error, len(p.stages)+2)

	for i, stage := range p.stages {
		wg.Add(1)
		go func(stageIndex int, r StageRunner) {
			defer wg.Done()
			defer close(stageCh[stageIndex+1])

			params := &workerParams{
				stage: stageIndex,
				inCh:  stageCh[stageIndex],
				outCh: stageCh[stageIndex+1],
				errCh: errCh,
			}
			r.Run(ctx, params)
		}(i, stage)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(stageCh[0])
		p.sourceWorker(ctx, source, stageCh[0], errCh)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.sinkWorker(ctx, sink, stageCh[len(stageCh)-1], errCh)
	}()

	go func() {
		wg.Wait()
		close(errCh)
	}()

	var result *multierror.Error
	for err := range errCh {
		result = multierror.Append(result, err)
		cancel()
	}
	return result.ErrorOrNil()
}

func (p *Pipeline) sourceWorker(ctx context.Context, source Source, outCh chan<- Payload, errCh chan<- error) {
	for source.Next(ctx) {
		payload := source.Payload()
		select {
		case outCh <- payload:
		case <-ctx.Done():
			return
		}
	}
	if err := source.Error(); err != nil {
		maybeEmitError(err, errCh)
	}
}

func (p *Pipeline) sinkWorker(ctx context.Context, sink Sink, inCh <-chan Payload, errCh chan<- error) {
	for {
		select {
		case payload, ok := <-inCh:
			if !ok {
				return
			}
			if err := sink.Consume(ctx, payload); err != nil {
				maybeEmitError(err, errCh)
				return
			}
			payload.MarkAsProcessed()
		case <-ctx.Done():
			return
		}
	}
}
