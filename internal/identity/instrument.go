package identity

import (
	"context"
	"time"

	"github.com/DukeRupert/rackmate/internal/domain"
	"github.com/DukeRupert/rackmate/internal/metrics"
	"github.com/DukeRupert/rackmate/internal/signup"
)

// Instrumented records how long each SignUp call on next takes.
type Instrumented struct {
	next     signup.Submitter
	provider string
}

// Instrument wraps next so its latency is reported under provider.
func Instrument(next signup.Submitter, provider string) *Instrumented {
	return &Instrumented{next: next, provider: provider}
}

func (i *Instrumented) SignUp(ctx context.Context, req domain.SignUpRequest) error {
	start := time.Now()
	err := i.next.SignUp(ctx, req)

	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.IdentityRequestDuration.WithLabelValues(i.provider, result).Observe(time.Since(start).Seconds())
	return err
}
