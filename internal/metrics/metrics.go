package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SongsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "publisher_songs_published_total",
		Help: "Tracks successfully delivered to a channel.",
	})

	RelayFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "publisher_relay_failures_total",
		Help: "Relay attempts that ended with an error reported to the user.",
	})

	UpdatesHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "publisher_updates_total",
		Help: "Incoming Telegram updates by kind.",
	}, []string{"kind"})
)
