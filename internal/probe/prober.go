package probe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/linkcheck/internal/model"
)

// Prober checks whether external URLs exist.
//
// Only a bounded sample of references is probed: the first N in discovery
// order. Each probe is a HEAD request; servers that reject HEAD with 405 or
// 501 are asked again with GET. A 4xx/5xx status or a transport failure
// yields a best-effort finding.
type Prober struct {
	client      *http.Client
	sampleSize  int
	concurrency int
	logger      *slog.Logger
}

// Option configures a Prober.
type Option func(*Prober)

// WithSampleSize sets the number of references probed.
func WithSampleSize(n int) Option {
	return func(p *Prober) {
		p.sampleSize = n
	}
}

// WithConcurrency sets the number of probes in flight at once.
func WithConcurrency(n int) Option {
	return func(p *Prober) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Prober) {
		p.logger = logger
	}
}

// NewProber creates a Prober using client for requests.
func NewProber(client *http.Client, opts ...Option) *Prober {
	p := &Prober{
		client:      client,
		sampleSize:  10,
		concurrency: 4,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is the outcome of probing a sample.
type Result struct {
	// Findings are the failed probes in discovery order.
	Findings []model.Finding

	// Probed is the number of probes that completed.
	Probed int

	// Interrupted is true when ctx was cancelled before every probe of the
	// sample completed.
	Interrupted bool
}

// outcome is the result of one probe.
type outcome struct {
	done    bool
	finding *model.Finding
}

// Probe checks the first sample-size references. When ctx is cancelled,
// outstanding probes are abandoned and the result covers only the probes
// that completed.
func (p *Prober) Probe(ctx context.Context, refs []model.Reference) Result {
	sample := refs
	if p.sampleSize >= 0 && len(sample) > p.sampleSize {
		sample = sample[:p.sampleSize]
	}

	outcomes := make([]outcome, len(sample))
	var g errgroup.Group
	g.SetLimit(p.concurrency)

	for i, ref := range sample {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outcomes[i] = p.probeOne(ctx, ref)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // probes never return errors

	var result Result
	for _, o := range outcomes {
		if !o.done {
			result.Interrupted = true
			continue
		}
		result.Probed++
		if o.finding != nil {
			result.Findings = append(result.Findings, *o.finding)
		}
	}
	return result
}

// probeOne checks a single reference.
func (p *Prober) probeOne(ctx context.Context, ref model.Reference) outcome {
	if ctx.Err() != nil {
		return outcome{}
	}
	p.logger.Debug("probing external link", "url", ref.Target)

	status, err := p.check(ctx, ref.Target)
	if err != nil {
		if ctx.Err() != nil {
			return outcome{}
		}
		p.logger.Debug("external link unreachable", "url", ref.Target, "error", err)
		f := model.NewFinding(ref, model.ReasonTransport)
		f.Error = describe(err)
		return outcome{done: true, finding: &f}
	}

	if status >= http.StatusBadRequest {
		p.logger.Debug("external link returned error status", "url", ref.Target, "status", status)
		f := model.NewFinding(ref, model.ReasonHTTPStatus)
		f.StatusCode = status
		return outcome{done: true, finding: &f}
	}
	return outcome{done: true}
}

// check issues HEAD, falling back to GET when HEAD is not supported.
func (p *Prober) check(ctx context.Context, target string) (int, error) {
	status, err := p.request(ctx, http.MethodHead, target)
	if err != nil {
		return 0, err
	}
	if status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented {
		return p.request(ctx, http.MethodGet, target)
	}
	return status, nil
}

func (p *Prober) request(ctx context.Context, method, target string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// describe returns the cause of a request error without the method and URL
// prefix that net/http adds, so the report stays short.
func describe(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return "timeout"
		}
		return urlErr.Err.Error()
	}
	return err.Error()
}
