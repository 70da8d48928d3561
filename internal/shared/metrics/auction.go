package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auction"

var (
	engineOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "operations_total",
		Help:      "Count of auction engine operations.",
	}, []string{"operation", "status"})
	engineOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "operation_duration_seconds",
		Help:      "Duration of auction engine operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "status"})
	engineTransfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "transfers_total",
		Help:      "Outbound value transfers by kind and outcome.",
	}, []string{"kind", "status"})
	engineEscrowOutstanding = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "escrow_outstanding",
		Help:      "Value currently held in escrow for outbid bidders.",
	})
)

// StatusClassifier mapeia o erro de uma operação para o label "status".
// nil vira "success"; o resto é decidido por quem conhece os erros do domínio.
type StatusClassifier func(err error) string

// Engine implementa o observer de métricas do auction engine
type Engine struct {
	classify StatusClassifier
}

// NewEngine cria o observer; classify pode ser nil (status = success|error)
func NewEngine(classify StatusClassifier) *Engine {
	return &Engine{classify: classify}
}

func (m *Engine) status(err error) string {
	if err == nil {
		return "success"
	}
	if m.classify != nil {
		if s := m.classify(err); s != "" {
			return s
		}
	}
	return "error"
}

// ObserveOperation registra contagem e latência de uma operação do engine
func (m *Engine) ObserveOperation(operation string, err error, started time.Time) {
	status := m.status(err)
	engineOperationsTotal.WithLabelValues(operation, status).Inc()
	engineOperationDuration.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}

// ObserveTransfer registra o resultado de uma transferência (withdraw|settle|retry_payout)
func (m *Engine) ObserveTransfer(kind string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	engineTransfersTotal.WithLabelValues(kind, status).Inc()
}

// SetEscrowOutstanding atualiza o gauge de valor em escrow
func (m *Engine) SetEscrowOutstanding(v int64) {
	engineEscrowOutstanding.Set(float64(v))
}

var (
	processorConsumedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "processor",
		Name:      "messages_consumed_total",
		Help:      "mensagens consumidas",
	})
	processorStageTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "processor",
		Name:      "stage_total",
		Help:      "etapas concluídas por estágio (leaderboard, history, broadcast)",
	}, []string{"stage"})
	processorErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "processor",
		Name:      "errors_total",
		Help:      "erros por estágio",
	}, []string{"stage"})
)

// Processor agrupa os callbacks de métricas do auction-processor-worker
type Processor struct{}

func NewProcessor() *Processor { return &Processor{} }

func (Processor) Consumed() { processorConsumedTotal.Inc() }

func (Processor) Stage(stage string) { processorStageTotal.WithLabelValues(stage).Inc() }

func (Processor) Error(stage string) { processorErrorsTotal.WithLabelValues(stage).Inc() }

var (
	keeperActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "keeper",
		Name:      "actions_total",
		Help:      "settlements e retries disparados pelo keeper, por resultado",
	}, []string{"action", "result"})
	keeperScheduled = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "keeper",
		Name:      "scheduled_auctions",
		Help:      "leilões acompanhados pelo keeper, por estado",
	}, []string{"state"})
)

// Keeper agrupa as métricas do settlement-keeper
type Keeper struct{}

func NewKeeper() *Keeper { return &Keeper{} }

func (Keeper) Action(action, result string) {
	keeperActionsTotal.WithLabelValues(action, result).Inc()
}

func (Keeper) Scheduled(state string, n int) {
	keeperScheduled.WithLabelValues(state).Set(float64(n))
}
