package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg            *prometheus.Registry
	Commands       *prometheus.CounterVec
	CommandLatency *prometheus.HistogramVec
	Sales          *prometheus.CounterVec
	Clarifications *prometheus.CounterVec
	Messages       *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	commands := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_commands_total",
		Help: "Intents dispatched, by intent and outcome.",
	}, []string{"intent", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_command_latency_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"intent"})
	sales := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_sales_total",
		Help: "Sales by result: committed, blocked or aborted.",
	}, []string{"result"})
	clarifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_clarifications_total",
	}, []string{"type"})
	messages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_messages_total",
	}, []string{"result"})

	r.MustRegister(commands, latency, sales, clarifications, messages)
	return &Registry{
		reg:            r,
		Commands:       commands,
		CommandLatency: latency,
		Sales:          sales,
		Clarifications: clarifications,
		Messages:       messages,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

func (r *Registry) ObserveCommand(intent, outcome string, elapsed time.Duration) {
	r.Commands.WithLabelValues(intent, outcome).Inc()
	r.CommandLatency.WithLabelValues(intent).Observe(elapsed.Seconds())
}

func (r *Registry) ObserveSale(result string) { r.Sales.WithLabelValues(result).Inc() }

func (r *Registry) ObserveClarification(kind string) { r.Clarifications.WithLabelValues(kind).Inc() }

func (r *Registry) ObserveMessage(result string) { r.Messages.WithLabelValues(result).Inc() }
