package endpoint

import "sync/atomic"

type counters struct {
	sent             atomic.Uint64
	received         atomic.Uint64
	retries          atomic.Uint64
	naksSent         atomic.Uint64
	naksReceived     atomic.Uint64
	deliveryFailures atomic.Uint64
}

// Metrics is a point-in-time snapshot of one endpoint's counters.
type Metrics struct {
	Sent             uint64
	Received         uint64
	Retries          uint64
	NaksSent         uint64
	NaksReceived     uint64
	DeliveryFailures uint64
}

func (e *Endpoint) Metrics() Metrics {
	return Metrics{
		Sent:             e.metrics.sent.Load(),
		Received:         e.metrics.received.Load(),
		Retries:          e.metrics.retries.Load(),
		NaksSent:         e.metrics.naksSent.Load(),
		NaksReceived:     e.metrics.naksReceived.Load(),
		DeliveryFailures: e.metrics.deliveryFailures.Load(),
	}
}
