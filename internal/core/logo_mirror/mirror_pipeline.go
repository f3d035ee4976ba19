package logo_mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"path"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	db "github.com/superfishal-intelligence/backend/internal/core/database"
	objectclient "github.com/superfishal-intelligence/backend/internal/core/object-client"
	"github.com/superfishal-intelligence/backend/internal/platform/logger"
)

var (
	ErrNotImage      = errors.New("logo is not an image")
	ErrTooLarge      = errors.New("logo exceeds size limit")
	ErrForbiddenHost = errors.New("logo host is not public")
	ErrBadScheme     = errors.New("logo url must be http or https")
)

// NewLogoMirror builds the pipeline with a bounded job queue. A nil httpClient
// gets one that only dials public addresses.
func NewLogoMirror(store db.Store, obj objectclient.ObjectClient, httpClient *http.Client, log *logger.Logger, cfg *MirrorConfig) *LogoMirror {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if httpClient == nil {
		httpClient = publicClient(cfg.Timeout)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LogoMirror{
		store: store,
		obj:   obj,
		http:  httpClient,
		log:   log.With("component", "LogoMirror"),
		cfg:   cfg,
		jobs:  make(chan Job, cfg.QueueSize),
	}
}

// Run drains the queue with numWorkers goroutines until ctx is done, then
// waits for in-flight jobs to stop.
func (m *LogoMirror) Run(ctx context.Context, numWorkers int) error {
	var g errgroup.Group
	for w := 1; w <= numWorkers; w++ {
		w := w
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					m.log.Debug("worker shutting down", "worker", w)
					return nil
				case job := <-m.jobs:
					m.log.Debug("mirroring logo", "worker", w, "resource_id", job.ResourceID)
					if err := m.ProcessOne(ctx, job); err != nil {
						m.log.Warn("logo mirror failed", "resource_id", job.ResourceID, "source", job.SourceURL, "error", err)
					}
				}
			}
		})
	}
	return g.Wait()
}

// Enqueue schedules a job without blocking. It reports false when the queue is full.
func (m *LogoMirror) Enqueue(job Job) bool {
	select {
	case m.jobs <- job:
		return true
	default:
		m.log.Warn("logo mirror queue full, dropping job", "resource_id", job.ResourceID)
		return false
	}
}

// ProcessOne mirrors a single logo. Stale jobs, where the resource is gone or
// its logoUrl changed since enqueueing, are skipped, including a change that
// lands while the upload is running.
func (m *LogoMirror) ProcessOne(ctx context.Context, job Job) error {
	procCtx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	src, err := url.Parse(job.SourceURL)
	if err != nil || (src.Scheme != "http" && src.Scheme != "https") || src.Host == "" {
		return fmt.Errorf("%w: %q", ErrBadScheme, job.SourceURL)
	}

	res, err := m.store.GetResource(procCtx, job.ResourceID)
	if errors.Is(err, db.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load resource: %w", err)
	}
	if res.LogoURL == nil || *res.LogoURL != job.SourceURL {
		return nil
	}
	if _, ours := m.obj.KeyFromURL(job.SourceURL); ours {
		return nil
	}

	req, err := http.NewRequestWithContext(procCtx, http.MethodGet, job.SourceURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := m.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch logo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch logo: status %d", resp.StatusCode)
	}
	contentType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("%w: %q", ErrNotImage, contentType)
	}
	if resp.ContentLength > m.cfg.MaxBytes {
		return fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}

	key := fmt.Sprintf("resources/%d/logo-%s%s", job.ResourceID, uuid.NewString(), extensionFor(contentType, job.SourceURL))

	// download -> pipe -> upload, either side failing aborts the other
	pr, pw := io.Pipe()
	g, gctx := errgroup.WithContext(procCtx)

	g.Go(func() error {
		n, err := io.Copy(pw, io.LimitReader(resp.Body, m.cfg.MaxBytes+1))
		if err == nil && n > m.cfg.MaxBytes {
			err = ErrTooLarge
		}
		pw.CloseWithError(err)
		return err
	})

	var mirrored string
	g.Go(func() error {
		var err error
		mirrored, err = m.obj.UploadFile(gctx, key, pr, contentType)
		pr.CloseWithError(err)
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}

	swapped, err := m.store.SwapResourceLogo(procCtx, job.ResourceID, job.SourceURL, mirrored)
	if err != nil || !swapped {
		if derr := m.obj.DeleteFile(context.WithoutCancel(procCtx), key); derr != nil {
			m.log.Warn("discarding mirrored logo failed", "key", key, "error", derr)
		}
	}
	if err != nil {
		return fmt.Errorf("save logo url: %w", err)
	}
	if !swapped {
		m.log.Debug("logo changed during mirror, discarded", "resource_id", job.ResourceID)
		return nil
	}
	m.log.Info("logo mirrored", "resource_id", job.ResourceID, "key", key)
	return nil
}

// publicClient refuses to connect to loopback, private, link-local and other
// non-routable addresses. The check runs on the resolved address of every
// dial, redirects included.
func publicClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control: func(network, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			ip, err := netip.ParseAddr(host)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrForbiddenHost, host)
			}
			if !publicAddr(ip.Unmap()) {
				return fmt.Errorf("%w: %s", ErrForbiddenHost, ip)
			}
			return nil
		},
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			ForceAttemptHTTP2:   true,
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

func publicAddr(ip netip.Addr) bool {
	return ip.IsValid() &&
		ip.IsGlobalUnicast() &&
		!ip.IsPrivate() &&
		!ip.IsLoopback() &&
		!ip.IsLinkLocalUnicast() &&
		!cgnat.Contains(ip)
}

var cgnat = netip.MustParsePrefix("100.64.0.0/10")

func extensionFor(contentType, sourceURL string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/svg+xml":
		return ".svg"
	case "image/x-icon", "image/vnd.microsoft.icon":
		return ".ico"
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	if ext := path.Ext(strings.SplitN(sourceURL, "?", 2)[0]); len(ext) > 1 && len(ext) <= 5 {
		return strings.ToLower(ext)
	}
	return ""
}

var _ Mirror = (*LogoMirror)(nil)

