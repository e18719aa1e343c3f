package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var chatRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "campus_assistant_chat_requests_total",
	Help: "Chat completions attempted, by outcome.",
}, []string{"outcome"})
