package ingestion

import (
	"context"
	"errors"
	"sync"
	"time"

	"drone-fire-monitor/internal/logger"
	"drone-fire-monitor/internal/usecase/detection"

	"go.uber.org/zap"
)

const processTimeout = 10 * time.Second

var (
	ErrProcessorStopped = errors.New("processor is not running")
	ErrBufferFull       = errors.New("ingestion buffer full")
)

// Ingester stores one detection event.
type Ingester interface {
	Ingest(ctx context.Context, req *detection.IngestRequest) (*detection.IngestResponse, error)
}

// Processor feeds bridge messages to the ingestion use case through a bounded worker pool.
type Processor struct {
	ingester    Ingester
	workerCount int

	messages chan *DetectionMessage

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	metrics *MetricsTracker
	log     *zap.Logger
}

// NewProcessor creates a new message processor
func NewProcessor(ingester Ingester, workerCount, bufferSize int) *Processor {
	if workerCount <= 0 {
		workerCount = 1
	}
	if bufferSize <= 0 {
		bufferSize = 1
	}

	return &Processor{
		ingester:    ingester,
		workerCount: workerCount,
		messages:    make(chan *DetectionMessage, bufferSize),
		metrics:     NewMetricsTracker(),
		log:         logger.Named("ingestion"),
	}
}

// Start launches the workers. They run until Stop is called or ctx is done.
func (p *Processor) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.running = true

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}

	p.log.Info("Processor started",
		zap.Int("workers", p.workerCount),
		zap.Int("buffer_size", cap(p.messages)),
	)
}

// Stop cancels the workers and waits for in-flight messages to finish.
// Messages still buffered are discarded and counted as dropped.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.cancel()
	p.mu.Unlock()

	p.wg.Wait()

	dropped := 0
drain:
	for {
		select {
		case <-p.messages:
			dropped++
		default:
			break drain
		}
	}
	if dropped > 0 {
		p.metrics.Update(func(m *MetricsSnapshot) {
			m.MessagesDropped += int64(dropped)
			m.BufferSize = 0
		})
	}

	p.log.Info("Processor stopped", zap.Int("discarded", dropped))
}

// Submit queues a message without blocking the MQTT callback goroutine.
func (p *Processor) Submit(msg *DetectionMessage) error {
	p.mu.Lock()
	running := p.running
	p.mu.Unlock()
	if !running {
		return ErrProcessorStopped
	}

	select {
	case p.messages <- msg:
		p.metrics.Update(func(m *MetricsSnapshot) {
			m.MessagesReceived++
			m.BufferSize = len(p.messages)
		})
		return nil
	default:
		p.metrics.Update(func(m *MetricsSnapshot) {
			m.MessagesReceived++
			m.MessagesDropped++
			m.MessagesFailed++
		})
		p.log.Warn("Ingestion buffer full, dropping message", zap.String("drone_name", msg.DroneName))
		return ErrBufferFull
	}
}

func (p *Processor) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		if ctx.Err() != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case msg := <-p.messages:
			p.process(ctx, id, msg)
		}
	}
}

func (p *Processor) process(ctx context.Context, workerID int, msg *DetectionMessage) {
	start := time.Now()

	processCtx, cancel := context.WithTimeout(ctx, processTimeout)
	defer cancel()

	resp, err := p.ingester.Ingest(processCtx, msg.ToIngestRequest())
	if err != nil {
		p.log.Warn("Failed to ingest bridge message",
			zap.Int("worker", workerID),
			zap.String("drone_name", msg.DroneName),
			zap.String("topic", msg.topic),
			zap.Error(err),
		)
		p.metrics.Update(func(m *MetricsSnapshot) {
			m.MessagesFailed++
			m.BufferSize = len(p.messages)
		})
		return
	}

	p.metrics.recordSuccess(time.Since(start), time.Now().UTC())
	p.metrics.Update(func(m *MetricsSnapshot) {
		m.BufferSize = len(p.messages)
	})
	p.log.Debug("Bridge message stored",
		zap.Int("worker", workerID),
		zap.Int64("event_id", resp.EventID),
		zap.String("drone_id", resp.DroneID),
	)
}

// Snapshot returns current metrics
func (p *Processor) Snapshot() MetricsSnapshot {
	return p.metrics.Snapshot()
}
