// Package metrics defines the process's prometheus counters, grounded in
// the domain stack's prometheus/client_golang usage: one counter per
// command/event name, plus an oracle-advance counter so scheduling
// activity is observable alongside the message traffic that triggers it.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CommandsReceived counts dispatched commands by name.
	CommandsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "noisebox_commands_received_total",
		Help: "Number of commands received by the media server, by command_name.",
	}, []string{"command_name"})

	// EventsSent counts emitted events by name. An ERROR event received
	// from a client is also counted here, under the label ERROR_ACK.
	EventsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "noisebox_events_sent_total",
		Help: "Number of events emitted to clients, by event_name.",
	}, []string{"event_name"})

	// ErrorsEmitted counts ErrorEvents by taxonomy type.
	ErrorsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "noisebox_errors_emitted_total",
		Help: "Number of ErrorEvents emitted, by error_type.",
	}, []string{"error_type"})

	// OracleAdvances counts root.Advance() calls, split by whether they
	// yielded an item or exhausted the tree.
	OracleAdvances = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "noisebox_oracle_advances_total",
		Help: "Number of root Oracle Advance() calls, by outcome.",
	}, []string{"outcome"})

	// ConnectionsActive tracks live transport sessions.
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "noisebox_connections_active",
		Help: "Number of currently open transport sessions.",
	})
)
