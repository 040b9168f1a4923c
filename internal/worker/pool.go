// worker/pool.go
package worker

// Job produces one delivery outcome.
type Job[T any] func() T

type Result[T any] struct {
	JobID  string
	Output T
}

type jobWrapper[T any] struct {
	id string
	fn Job[T]
}

// Pool runs jobs on a fixed set of goroutines. The sheet-sync service uses
// it so result deliveries never block a submission.
type Pool[T any] struct {
	jobs    chan jobWrapper[T]
	results chan Result[T]
}

func NewPool[T any](workerCount int, bufferSize int) *Pool[T] {
	p := &Pool[T]{
		jobs:    make(chan jobWrapper[T], bufferSize),
		results: make(chan Result[T], bufferSize),
	}

	for i := 0; i < workerCount; i++ {
		go p.worker()
	}

	return p
}

func (p *Pool[T]) worker() {
	for job := range p.jobs {
		output := job.fn()
		p.results <- Result[T]{
			JobID:  job.id,
			Output: output,
		}
	}
}

// Submit enqueues a job. It blocks when the buffer is full, which
// backpressures callers instead of growing without bound.
func (p *Pool[T]) Submit(id string, fn Job[T]) {
	p.jobs <- jobWrapper[T]{id: id, fn: fn}
}

func (p *Pool[T]) Results() <-chan Result[T] {
	return p.results
}

// Close stops the workers once queued jobs finish. Submit must not be
// called afterwards.
func (p *Pool[T]) Close() {
	close(p.jobs)
}
