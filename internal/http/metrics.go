package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "openedulog_logins_total",
		Help: "Login attempts by result.",
	}, []string{"result"})

	sessionChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "openedulog_session_checks_total",
		Help: "Session cookie verifications by result.",
	}, []string{"result"})
)
