package verdict

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var voteCastCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "checkmate_votes_cast",
	Help: "Number of reviewer votes cast",
}, []string{"category"})

var verdictFinalizedCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "checkmate_verdicts_finalized",
	Help: "Number of submissions finalized, by verdict category",
}, []string{"category"})

var replyDispatchedCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "checkmate_replies_dispatched",
	Help: "Number of replies dispatched, by reply category",
}, []string{"category"})

var replySkippedCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "checkmate_replies_skipped_duplicate",
	Help: "Number of dispatch calls that found the event already replied",
})

var outboundSendCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "checkmate_outbound_sends",
	Help: "Number of outbound messages sent, by kind",
}, []string{"kind"})

var outboundSendErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "checkmate_outbound_send_errors",
	Help: "Number of outbound sends that failed, by kind",
}, []string{"kind"})

var profileCacheHitCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "checkmate_profile_cache_hits",
	Help: "Number of reviewer profile reads served from cache",
})
