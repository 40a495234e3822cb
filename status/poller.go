package status

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/moyoez/filemigrate/tool"
)

// PollResult is delivered once per poll attempt.
type PollResult struct {
	At          time.Time        `json:"at"`
	Report      AggregatedReport `json:"report"`
	Unavailable bool             `json:"unavailable"`
	Message     string           `json:"message,omitempty"`
	Err         error            `json:"-"`
}

// Poller repeatedly fetches a status url and feeds the aggregator.
type Poller struct {
	URL        string
	Interval   time.Duration
	Client     *http.Client
	Aggregator *Aggregator
	StopOnDone bool
}

// Run polls until ctx ends, or until a Done snapshot when StopOnDone is set.
// A failed fetch is reported through onResult and never ends the loop.
func (p *Poller) Run(ctx context.Context, onResult func(PollResult)) error {
	if p.URL == "" {
		return errors.New("invalid parameters: status url must not be empty")
	}
	if p.Aggregator == nil {
		p.Aggregator = NewAggregator()
	}
	interval := p.Interval
	if interval <= 0 {
		interval = 3 * time.Second
	}
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	tool.DefaultLogger.Infof("Polling %s every %s", p.URL, interval)
	for {
		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		res := p.PollOnce(ctx)
		if onResult != nil {
			onResult(res)
		}
		if p.StopOnDone && !res.Unavailable && res.Report.ContinueUnlocked {
			tool.DefaultLogger.Infof("Job at %s reported done, polling stopped", p.URL)
			return nil
		}
	}
}

// PollOnce fetches a single snapshot and ingests it.
func (p *Poller) PollOnce(ctx context.Context) PollResult {
	client := p.Client
	if client == nil {
		client = tool.GetHttpClient()
	}
	if p.Aggregator == nil {
		p.Aggregator = NewAggregator()
	}
	snap, err := FetchStatus(ctx, client, p.URL)
	if err != nil {
		msg := UnavailableMessage(err)
		tool.DefaultLogger.Warnf("Status unavailable from %s: %s", p.URL, msg)
		return PollResult{At: time.Now(), Unavailable: true, Message: msg, Err: err}
	}
	report := p.Aggregator.Ingest(snap)
	tool.DefaultLogger.Debugf("Status %q from %s, %d discard buckets", report.RawStatus, p.URL, len(report.Buckets))
	return PollResult{At: time.Now(), Report: report}
}
