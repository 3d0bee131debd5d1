package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mylibrary_registrations_total",
		Help: "Total number of successful user registrations.",
	})

	loginsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mylibrary_logins_total",
		Help: "Total number of successful logins.",
	})

	tokenVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mylibrary_token_verifications_total",
			Help: "Total number of token verification attempts by status.",
		},
		[]string{"status"},
	)

	bookWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mylibrary_book_writes_total",
			Help: "Total number of book create/update/delete operations.",
		},
		[]string{"operation"},
	)
)
