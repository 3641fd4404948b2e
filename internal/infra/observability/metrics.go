package observability

import (
	"time"

	"github.com/boddenberg/retail-ledger-go/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
)

// Outcome labels for ledger_operations_total.
const (
	OutcomeOK          = "ok"
	OutcomeSoftFailure = "soft_failure"
	OutcomeHardFailure = "hard_failure"
)

// Volume kinds for ledger_money_volume_total.
const (
	VolumeDeposited  = "deposited"
	VolumeWithdrawn  = "withdrawn"
	VolumeTransfer   = "transfer"
	VolumeLoanIssued = "loan_issued"
	VolumeLoanRepaid = "loan_repaid"
)

// Metrics holds all Prometheus metrics for the ledger.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	operationDuration *prometheus.HistogramVec
	operationsTotal   *prometheus.CounterVec
	moneyVolume       *prometheus.CounterVec
	rankPromotions    prometheus.Counter
	duplicates        *prometheus.CounterVec
	externalErrors    *prometheus.CounterVec
	issuerFallbacks   prometheus.Counter
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// ledger metrics in it. A private registry lets tests build as many as they
// need.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_operation_duration_seconds",
				Help:    "Duration of ledger operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		operationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_operations_total",
				Help: "Ledger operations by outcome.",
			},
			[]string{"operation", "outcome"},
		),
		moneyVolume: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_money_volume_total",
				Help: "Money moved by successful operations.",
			},
			[]string{"kind"},
		),
		rankPromotions: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ledger_rank_promotions_total",
				Help: "Socioeconomic rank promotions after loan repayment.",
			},
		),
		duplicates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_duplicate_operations_total",
				Help: "Money operations blocked by an idempotency key.",
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		issuerFallbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ledger_issuer_fallbacks_total",
				Help: "Credential issuance served by the local generator.",
			},
		),
	}
}

// RecordOperation records duration and outcome of op.
func (m *Metrics) RecordOperation(op domain.Operation, d time.Duration, err error) {
	m.operationDuration.WithLabelValues(string(op)).Observe(d.Seconds())
	m.operationsTotal.WithLabelValues(string(op), Outcome(op, err)).Inc()
}

// Outcome classifies err for op into one of the outcome labels.
func Outcome(op domain.Operation, err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case domain.IsSoftFailure(op, err):
		return OutcomeSoftFailure
	default:
		return OutcomeHardFailure
	}
}

// AddVolume adds amount to the money volume of kind.
func (m *Metrics) AddVolume(kind string, amount decimal.Decimal) {
	m.moneyVolume.WithLabelValues(kind).Add(amount.InexactFloat64())
}

// IncrRankPromotion counts one promotion.
func (m *Metrics) IncrRankPromotion() {
	m.rankPromotions.Inc()
}

// IncrDuplicate counts an operation rejected by its idempotency key.
func (m *Metrics) IncrDuplicate(op domain.Operation) {
	m.duplicates.WithLabelValues(string(op)).Inc()
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrIssuerFallback counts a fallback to local credential generation.
func (m *Metrics) IncrIssuerFallback() {
	m.issuerFallbacks.Inc()
}

var trackedOperations = []domain.Operation{
	domain.OpRegisterPerson, domain.OpUpdatePerson, domain.OpStartSession,
	domain.OpCreateAccount, domain.OpDeleteAccount, domain.OpDeleteCustomer,
	domain.OpDeposit, domain.OpWithdraw, domain.OpTransfer,
	domain.OpTakeLoan, domain.OpPayLoan, domain.OpChangePassword,
	domain.OpRevealSecrets, domain.OpLoanStatus, domain.OpBankReport,
}

// GetLedgerSnapshot returns cumulative counters for GET /v1/metrics/ledger.
func (m *Metrics) GetLedgerSnapshot() *domain.LedgerMetrics {
	var total, soft, hard, dups float64
	for _, op := range trackedOperations {
		ok := getCounterValue(m.operationsTotal, string(op), OutcomeOK)
		s := getCounterValue(m.operationsTotal, string(op), OutcomeSoftFailure)
		h := getCounterValue(m.operationsTotal, string(op), OutcomeHardFailure)
		total += ok + s + h
		soft += s
		hard += h
		dups += getCounterValue(m.duplicates, string(op))
	}

	softRate, hardRate := float64(0), float64(0)
	if total > 0 {
		softRate = soft / total
		hardRate = hard / total
	}

	return &domain.LedgerMetrics{
		TotalOperations:  int64(total),
		SoftFailureRate:  softRate,
		HardFailureRate:  hardRate,
		DepositedVolume:  getCounterValue(m.moneyVolume, VolumeDeposited),
		WithdrawnVolume:  getCounterValue(m.moneyVolume, VolumeWithdrawn),
		TransferVolume:   getCounterValue(m.moneyVolume, VolumeTransfer),
		LoanIssuedVolume: getCounterValue(m.moneyVolume, VolumeLoanIssued),
		LoanRepaidVolume: getCounterValue(m.moneyVolume, VolumeLoanRepaid),
		RankPromotions:   int64(readCounter(m.rankPromotions)),
		DuplicateBlocked: int64(dups),
		Period:           "all_time",
	}
}

// getCounterValue extracts the current value from a CounterVec for the given labels.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	return readCounter(cv.WithLabelValues(labels...))
}

func readCounter(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
