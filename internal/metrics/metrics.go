package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	cyclesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "variant_monitor_cycles_total",
			Help: "Total de ciclos de verificação executados",
		},
	)

	cycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "variant_monitor_cycle_duration_seconds",
			Help:    "Duração de um ciclo de verificação em segundos",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	itemsCheckedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "variant_monitor_items_checked_total",
			Help: "Itens verificados por resultado",
		},
		[]string{"result"},
	)

	fetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "variant_monitor_fetches_total",
			Help: "Páginas baixadas por região e resultado",
		},
		[]string{"region", "result"},
	)

	eventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "variant_monitor_events_total",
			Help: "Eventos de mudança detectados por tipo",
		},
		[]string{"type"},
	)

	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "variant_monitor_notifications_total",
			Help: "Notificações enviadas por resultado",
		},
		[]string{"result"},
	)

	attentionItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "variant_monitor_attention_items",
			Help: "Itens com mudança recente ainda não revisada",
		},
	)

	trackedItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "variant_monitor_tracked_items",
			Help: "Itens monitorados",
		},
	)
)

// RecordCycle registra um ciclo concluído
func RecordCycle(seconds float64) {
	cyclesTotal.Inc()
	cycleDuration.Observe(seconds)
}

// RecordItem registra o resultado da verificação de um item
func RecordItem(ok bool) {
	itemsCheckedTotal.WithLabelValues(result(ok)).Inc()
}

// RecordFetch registra o download de uma página
func RecordFetch(region string, ok bool) {
	fetchesTotal.WithLabelValues(region, result(ok)).Inc()
}

// RecordEvent registra um evento detectado
func RecordEvent(eventType string) {
	eventsTotal.WithLabelValues(eventType).Inc()
}

// RecordNotification registra o envio de uma notificação
func RecordNotification(ok bool) {
	notificationsTotal.WithLabelValues(result(ok)).Inc()
}

// SetAttention atualiza o número de itens que pedem atenção
func SetAttention(n int) {
	attentionItems.Set(float64(n))
}

// SetTracked atualiza o número de itens monitorados
func SetTracked(n int) {
	trackedItems.Set(float64(n))
}

// Handler expõe as métricas no formato do Prometheus
func Handler() http.Handler {
	return promhttp.Handler()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
