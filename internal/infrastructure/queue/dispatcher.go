package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/petadopt/adoption-api/internal/pkg/metrics"
	"github.com/petadopt/adoption-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher removes orphaned pet images in the background. Jobs are sharded
// by pet id so the files of one pet are handled by a single worker in order.
type Dispatcher struct {
	workers []chan ports.ImageCleanupJob
	store   ports.ImageStore
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, store ports.ImageStore, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.ImageCleanupJob, numWorkers),
		store:   store,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.ImageCleanupJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled,
// after finishing the jobs already queued.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands job to its worker without blocking. Jobs are dropped when the
// worker's buffer is full; the files then stay on disk.
func (d *Dispatcher) Enqueue(job ports.ImageCleanupJob) {
	if len(job.Images) == 0 {
		return
	}
	idx := d.shardIndex(job.PetID)
	select {
	case d.workers[idx] <- job:
		metrics.ImageCleanupQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.ImageCleanupTotal.WithLabelValues("dropped").Add(float64(len(job.Images)))
		d.log.Warn().
			Str("pet_id", job.PetID).
			Strs("images", job.Images).
			Int("worker_id", idx).
			Msg("image cleanup queue full, job dropped")
	}
}

// shardIndex maps a pet id deterministically to a worker index.
func (d *Dispatcher) shardIndex(petID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(petID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.ImageCleanupJob) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			d.drain(context.WithoutCancel(ctx), id, ch)
			return
		case job := <-ch:
			metrics.ImageCleanupQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.process(ctx, id, job)
		}
	}
}

// drain processes the jobs still buffered in ch when the worker stops.
func (d *Dispatcher) drain(ctx context.Context, id int, ch <-chan ports.ImageCleanupJob) {
	for {
		select {
		case job := <-ch:
			d.process(ctx, id, job)
		default:
			metrics.ImageCleanupQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(0)
			return
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, worker int, job ports.ImageCleanupJob) {
	for _, ref := range job.Images {
		if err := d.store.Delete(ctx, ref); err != nil {
			metrics.ImageCleanupTotal.WithLabelValues("failed").Inc()
			d.log.Error().Err(err).
				Str("pet_id", job.PetID).
				Str("image", ref).
				Int("worker_id", worker).
				Msg("image cleanup failed")
			continue
		}
		metrics.ImageCleanupTotal.WithLabelValues("deleted").Inc()
	}
	d.log.Debug().Str("pet_id", job.PetID).Int("images", len(job.Images)).Msg("images cleaned up")
}
