package audit

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/eventflow-dev/eventflow/db"
	"github.com/eventflow-dev/eventflow/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const (
	// Sentinel values recorded when the request context carries no usable
	// address or user agent.
	UnknownIP        = "unknown"
	UnknownUserAgent = "unknown"
)

// Recorder appends audit events through a buffered queue drained by a single
// background goroutine. Record never blocks the calling request: when the
// queue is full the event is dropped and counted. Insert failures are logged
// and counted but never surfaced to the action that triggered them.
type Recorder struct {
	queue    chan models.Event
	done     chan struct{}
	stopOnce sync.Once

	dropped atomic.Uint64
	failed  atomic.Uint64
}

var defaultRecorder *Recorder

// Init creates, starts and installs the process-wide recorder.
func Init(buffer int) *Recorder {
	recorder := NewRecorder(buffer)
	recorder.Start()
	defaultRecorder = recorder
	return recorder
}

func NewRecorder(buffer int) *Recorder {
	if buffer <= 0 {
		buffer = 256
	}

	return &Recorder{
		queue: make(chan models.Event, buffer),
		done:  make(chan struct{}),
	}
}

func (r *Recorder) Start() {
	go r.run()
}

func (r *Recorder) run() {
	defer close(r.done)

	for event := range r.queue {
		if err := db.DB.Create(&event).Error; err != nil {
			r.failed.Add(1)
			logrus.WithError(err).WithField("type", event.Type).Warn("Failed to persist audit event")
		}
	}
}

// Stop closes the queue and waits for the remaining events to be written.
func (r *Recorder) Stop() {
	r.stopOnce.Do(func() {
		close(r.queue)
		<-r.done
	})
}

// Record enqueues an audit event. Empty ip/userAgent fall back to sentinel
// values; metadata is marshalled to jsonb and may be nil.
func (r *Recorder) Record(userID uint, eventType, message, ip, userAgent string, metadata map[string]interface{}) {
	if ip == "" {
		ip = UnknownIP
	}
	if userAgent == "" {
		userAgent = UnknownUserAgent
	}

	var meta datatypes.JSON
	if metadata != nil {
		encoded, err := json.Marshal(metadata)
		if err != nil {
			logrus.WithError(err).WithField("type", eventType).Warn("Failed to encode audit metadata")
		} else {
			meta = encoded
		}
	}

	event := models.Event{
		Type:      eventType,
		Message:   message,
		UserID:    userID,
		IPAddress: ip,
		UserAgent: userAgent,
		Metadata:  meta,
	}

	select {
	case r.queue <- event:
	default:
		r.dropped.Add(1)
		logrus.WithField("type", eventType).Warn("Audit queue full, dropping event")
	}
}

// Dropped reports how many events were discarded because the queue was full.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Failed reports how many dequeued events could not be persisted.
func (r *Recorder) Failed() uint64 {
	return r.failed.Load()
}

// Record enqueues an event on the process-wide recorder. It is a no-op when
// the recorder has not been initialized, which keeps handlers testable
// without a running queue.
func Record(userID uint, eventType, message, ip, userAgent string, metadata map[string]interface{}) {
	if defaultRecorder == nil {
		return
	}
	defaultRecorder.Record(userID, eventType, message, ip, userAgent, metadata)
}

// Stop drains the process-wide recorder.
func Stop() {
	if defaultRecorder == nil {
		return
	}
	defaultRecorder.Stop()
}
