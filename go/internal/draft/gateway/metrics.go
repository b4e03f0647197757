package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var connectionsOpen = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "livedraft_gateway_connections",
	Help: "Open draft websocket connections",
})
