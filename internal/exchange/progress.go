package exchange

import (
	"time"

	"github.com/pod-control/pcm/internal/message"
	"github.com/pod-control/pcm/internal/pod"
)

// Progress tracks one in-flight (or just-completed) exchange: the request
// that was sent, timing, running/finished state, and the terminal outcome.
// A Conversation allocates one via NewExchange before perform_exchange
// drives it.
type Progress struct {
	Request     message.Request
	RequestTime time.Time
	ResultTime  time.Time
	Running     bool
	Finished    bool
	Success     bool
	Exception   error

	// BasalSchedule, PodDate and UTCOffsetMinutes carry the basal-schedule
	// payload for InjectAndStart and SetBasalSchedule. Only BasalSchedule
	// is copied into the persisted Result; PodDate and UTCOffsetMinutes
	// stay on the Progress.
	BasalSchedule    []float64
	PodDate          message.PodDate
	UTCOffsetMinutes int

	Result *pod.Result
}

// Response is the parsed reply to one request. Sequence is the pod's
// message-sequence counter at response time, used by the nonce resync
// loop; Fields carries whatever vendor-specific data the MessageExchange
// implementation chooses to surface.
type Response struct {
	Sequence uint8
	Fields   map[string]interface{}
}
