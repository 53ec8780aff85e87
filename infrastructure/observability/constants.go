package observability

// Metric name prefixes
const (
	MetricPrefix = "wagerledger"
)

// Metric names
const (
	// Coordinator metrics
	OperationsTotal   = MetricPrefix + ".operations.total"
	OperationDuration = MetricPrefix + ".operations.duration"
	OperationRetries  = MetricPrefix + ".operations.retries_total"

	// Ledger metrics
	BalanceTransactionsTotal = MetricPrefix + ".balance.transactions_total"

	// Wager metrics
	WagersResolvedTotal   = MetricPrefix + ".wagers.resolved_total"
	PayoutRemainderTotal  = MetricPrefix + ".wagers.payout_remainder_total"
	PresentationRefreshes = MetricPrefix + ".presentation.refreshes_total"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"
)

// Label keys
const (
	LabelOperation = "operation"
	LabelOutcome   = "outcome"
	LabelType      = "type"
	LabelEventType = "event_type"
	LabelErrorType = "error_type"
)

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeRefund  = "refund"
	OutcomePayout  = "payout"
)
