package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"odins-eye/src/ocr"
)

// Recognizer is the part of the gateway the pool needs.
type Recognizer interface {
	Recognize(ctx context.Context, in ocr.Input) ocr.Result
}

// ResultCallback is invoked on completion from a worker goroutine.
// The event loop should pass a closure that posts back into the loop.
type ResultCallback func(ocr.Result)

// Pool is a fixed-size recognition pool with a 1-slot input queue (strict back-pressure).
type Pool struct {
	rec  Recognizer
	jobs chan job
	wg   sync.WaitGroup
	once sync.Once
}

type job struct {
	ctx context.Context
	in  ocr.Input
	cb  ResultCallback
}

// New creates a pool. Size defaults to 1 when size<=0: one engine, one job at a time.
func New(rec Recognizer, size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{rec: rec, jobs: make(chan job, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				log.Debug().Str("input", describe(j.in)).Msg("Worker: starting recognition")
				res := recognizeWithContext(j.ctx, p.rec, j.in)
				log.Debug().Bool("ok", res.OK).Int("chars", len(res.Text)).Msg("Worker: recognition completed")
				j.cb(res)
			}
		}()
	}
}

// Submit enqueues a job if the single-slot queue is free. Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, in ocr.Input, cb ResultCallback) bool {
	select {
	case p.jobs <- job{ctx: ctx, in: in, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work. It is safe to call twice.
func (p *Pool) Close() {
	p.once.Do(func() { close(p.jobs) })
	p.wg.Wait()
}

// recognizeWithContext honours the job deadline. The underlying call is not
// interrupted; on timeout it keeps running and its result is discarded.
func recognizeWithContext(ctx context.Context, rec Recognizer, in ocr.Input) ocr.Result {
	if err := ctx.Err(); err != nil {
		return ocr.Failure(err)
	}
	if _, ok := ctx.Deadline(); !ok {
		return rec.Recognize(ctx, in)
	}
	resCh := make(chan ocr.Result, 1)
	go func() {
		resCh <- rec.Recognize(context.WithoutCancel(ctx), in)
	}()
	select {
	case r := <-resCh:
		return r
	case <-ctx.Done():
		return ocr.Failure(ctx.Err())
	}
}

func describe(in ocr.Input) string {
	if in.Data != nil {
		return "bytes"
	}
	return in.Path
}
