package logo_mirror

import (
	"context"
	"net/http"
	"time"

	db "github.com/superfishal-intelligence/backend/internal/core/database"
	objectclient "github.com/superfishal-intelligence/backend/internal/core/object-client"
	"github.com/superfishal-intelligence/backend/internal/platform/logger"
)

// Mirror copies externally hosted resource logos into object storage.
type Mirror interface {
	// Run drains the queue with numWorkers goroutines and returns once ctx is
	// done and every worker has stopped.
	Run(ctx context.Context, numWorkers int) error
	Enqueue(job Job) bool
	ProcessOne(ctx context.Context, job Job) error
}

// Job asks for the logo at SourceURL to be mirrored for one resource.
type Job struct {
	ResourceID int
	SourceURL  string
}

// MirrorConfig tunes the worker pool.
//
// QueueSize: jobs buffered before Enqueue starts dropping.
// MaxBytes:  largest logo accepted.
// Timeout:   budget for one download plus upload.
type MirrorConfig struct {
	QueueSize int
	MaxBytes  int64
	Timeout   time.Duration
}

func DefaultConfig() *MirrorConfig {
	return &MirrorConfig{QueueSize: 64, MaxBytes: 2 << 20, Timeout: time.Minute}
}

// LogoMirror is the background pipeline: fetch, validate, upload, rewrite logoUrl.
type LogoMirror struct {
	store db.Store
	obj   objectclient.ObjectClient
	http  *http.Client
	log   *logger.Logger
	cfg   *MirrorConfig
	jobs  chan Job
}
