package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"drone-fire-monitor/internal/usecase/detection"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIngester struct {
	mu       sync.Mutex
	requests []*detection.IngestRequest
	fail     bool
	block    chan struct{}
}

func (f *fakeIngester) Ingest(ctx context.Context, req *detection.IngestRequest) (*detection.IngestResponse, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("storage down")
	}
	f.requests = append(f.requests, req)
	return &detection.IngestResponse{EventID: int64(len(f.requests)), DroneID: "GK_2025_00"}, nil
}

func (f *fakeIngester) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func TestParseDetectionMessageFallsBackToTopic(t *testing.T) {
	msg, err := ParseDetectionMessage("drones/drone_07/events", []byte(`{"confidence":0.91,"image_path":"a.jpg"}`))
	require.NoError(t, err)
	assert.Equal(t, "drone_07", msg.DroneName)

	req := msg.ToIngestRequest()
	assert.Equal(t, "drone_07", req.DroneName)
	assert.InDelta(t, 0.91, *req.Confidence, 1e-9)
	assert.Equal(t, "a.jpg", req.ImagePath)

	msg, err = ParseDetectionMessage("drones/drone_07/events", []byte(`{"drone_name":"explicit","confidence":0.5}`))
	require.NoError(t, err)
	assert.Equal(t, "explicit", msg.DroneName)

	_, err = ParseDetectionMessage("drones/x/events", []byte(`{not json`))
	assert.Error(t, err)
}

func TestDroneNameFromTopic(t *testing.T) {
	assert.Equal(t, "d1", DroneNameFromTopic("drones/d1/events"))
	assert.Equal(t, "", DroneNameFromTopic("events"))
	assert.Equal(t, "", DroneNameFromTopic("drones/d1"))
}

func TestValidateDetectionMessage(t *testing.T) {
	conf := 0.5
	high := 1.5
	lat := 37.0

	assert.NoError(t, ValidateDetectionMessage(&DetectionMessage{DroneName: "d", Confidence: &conf}))

	var vErr *ValidationError
	err := ValidateDetectionMessage(&DetectionMessage{Confidence: &conf})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "drone_name", vErr.Field)

	err = ValidateDetectionMessage(&DetectionMessage{DroneName: "d"})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "confidence", vErr.Field)

	err = ValidateDetectionMessage(&DetectionMessage{DroneName: "d", Confidence: &high})
	require.ErrorAs(t, err, &vErr)

	err = ValidateDetectionMessage(&DetectionMessage{DroneName: "d", Confidence: &conf, GPSLat: &lat})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "gps", vErr.Field)
}

func TestProcessorIngestsSubmittedMessages(t *testing.T) {
	ingester := &fakeIngester{}
	p := NewProcessor(ingester, 2, 10)
	p.Start(context.Background())
	defer p.Stop()

	for i := 0; i < 5; i++ {
		handleDetectionPayload(p, "drones/drone_01/events", []byte(`{"confidence":0.8}`))
	}

	require.Eventually(t, func() bool { return ingester.count() == 5 }, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return p.Snapshot().MessagesProcessed == 5 }, 2*time.Second, 10*time.Millisecond)

	snapshot := p.Snapshot()
	assert.Equal(t, int64(5), snapshot.MessagesReceived)
	assert.Zero(t, snapshot.MessagesFailed)
	assert.NotNil(t, snapshot.LastProcessedAt)
}

func TestProcessorCountsFailures(t *testing.T) {
	ingester := &fakeIngester{fail: true}
	p := NewProcessor(ingester, 1, 10)
	p.Start(context.Background())
	defer p.Stop()

	handleDetectionPayload(p, "drones/drone_01/events", []byte(`{"confidence":0.8}`))
	handleDetectionPayload(p, "drones/drone_01/events", []byte(`garbage`))
	handleDetectionPayload(p, "drones/drone_01/events", []byte(`{"confidence":2}`))

	require.Eventually(t, func() bool { return p.Snapshot().MessagesFailed == 3 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(3), p.Snapshot().MessagesReceived)
}

func TestProcessorDropsWhenBufferFull(t *testing.T) {
	ingester := &fakeIngester{block: make(chan struct{})}
	p := NewProcessor(ingester, 1, 1)
	p.Start(context.Background())

	conf := 0.9
	msg := &DetectionMessage{DroneName: "d", Confidence: &conf}

	// The worker takes the first message and blocks; the second fills the buffer.
	require.NoError(t, p.Submit(msg))
	require.Eventually(t, func() bool { return len(p.messages) == 0 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, p.Submit(msg))
	assert.ErrorIs(t, p.Submit(msg), ErrBufferFull)

	p.Stop()
	close(ingester.block)

	snapshot := p.Snapshot()
	assert.Equal(t, int64(2), snapshot.MessagesDropped)
	assert.ErrorIs(t, p.Submit(msg), ErrProcessorStopped)
}
