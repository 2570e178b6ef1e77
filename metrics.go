package mailbox

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/pkorotkov/mailbox"

var (
	fromBuffer  = metric.WithAttributes(attribute.String("source", "buffer"))
	fromChannel = metric.WithAttributes(attribute.String("source", "channel"))
)

type metrics struct {
	matches  metric.Int64Counter
	misses   metric.Int64Counter
	buffered metric.Int64UpDownCounter
}

func newMetrics(mp metric.MeterProvider) (*metrics, error) {
	m := mp.Meter(instrumentationName)
	var (
		ms  metrics
		err error
	)
	ms.matches, err = m.Int64Counter(
		"mailbox.selective.matches",
		metric.WithDescription("Messages delivered by selective receive"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating matches counter: %w", err)
	}
	ms.misses, err = m.Int64Counter(
		"mailbox.selective.misses",
		metric.WithDescription("Selective receives that stopped at capacity without a match"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating misses counter: %w", err)
	}
	ms.buffered, err = m.Int64UpDownCounter(
		"mailbox.buffer.messages",
		metric.WithDescription("Messages pulled from the mailbox but not yet delivered"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating buffered counter: %w", err)
	}
	return &ms, nil
}

func noopMetrics() *metrics {
	ms, _ := newMetrics(noop.NewMeterProvider())
	return ms
}

func (ms *metrics) matched(source metric.AddOption) {
	ms.matches.Add(context.Background(), 1, source)
}

func (ms *metrics) missed() {
	ms.misses.Add(context.Background(), 1)
}

func (ms *metrics) buffer(delta int64) {
	ms.buffered.Add(context.Background(), delta)
}
