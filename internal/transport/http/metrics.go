package httptransport

import "expvar"

var (
	metricDuelCreateTotal  = expvar.NewInt("duel_create_total")
	metricDuelCreateErrors = expvar.NewInt("duel_create_errors_total")

	metricDuelJoinTotal  = expvar.NewInt("duel_join_total")
	metricDuelJoinErrors = expvar.NewInt("duel_join_errors_total")

	metricDuelSettleTotal  = expvar.NewInt("duel_settle_total")
	metricDuelSettleErrors = expvar.NewInt("duel_settle_errors_total")

	metricDuelCancelTotal   = expvar.NewInt("duel_cancel_total")
	metricDuelReclaimTotal  = expvar.NewInt("duel_reclaim_total")
	metricMatchPostTotal    = expvar.NewInt("match_post_total")
	metricMatchMatchedTotal = expvar.NewInt("match_matched_total")
)
