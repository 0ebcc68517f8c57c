package kafka

import (
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/NordCoder/homelab/internal/domain/events"
)

// Status-change messages carry these next to the trace context, so consumers
// can route on them without decoding the body.
const (
	HeaderEventType = "event-type"
	HeaderServiceID = "service-id"
	HeaderOwnerID   = "owner-id"
	HeaderStatus    = "status"

	EventTypeStatusChanged = "service.status_changed"
)

// headers adapts kafka message headers to propagation.TextMapCarrier.
type headers []kafka.Header

func (h headers) Get(k string) string {
	for _, x := range h {
		if x.Key == k {
			return string(x.Value)
		}
	}
	return ""
}

// Set replaces an existing key in place.
func (h *headers) Set(k, v string) {
	for i := range *h {
		if (*h)[i].Key == k {
			(*h)[i].Value = []byte(v)
			return
		}
	}
	*h = append(*h, kafka.Header{Key: k, Value: []byte(v)})
}

func (h headers) Keys() []string {
	ks := make([]string, 0, len(h))
	for _, x := range h {
		ks = append(ks, x.Key)
	}
	return ks
}

func statusHeaders(ev events.StatusChanged) headers {
	h := headers{}
	h.Set(HeaderEventType, EventTypeStatusChanged)
	h.Set(HeaderServiceID, strconv.FormatInt(ev.ServiceID, 10))
	h.Set(HeaderOwnerID, strconv.FormatInt(ev.OwnerID, 10))
	h.Set(HeaderStatus, ev.New)
	return h
}

// ServiceIDFromHeaders reads the service id a status-change message was keyed by.
func ServiceIDFromHeaders(hs []kafka.Header) (int64, bool) {
	id, err := strconv.ParseInt(headers(hs).Get(HeaderServiceID), 10, 64)
	return id, err == nil
}
