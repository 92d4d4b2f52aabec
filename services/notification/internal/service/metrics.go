package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Results recorded on push_notifications_sent_total.
const (
	resultSent          = "sent"
	resultNoToken       = "no_token"
	resultNotRegistered = "device_not_registered"
	resultError         = "error"
)

var pushNotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "push_notifications_sent_total",
	Help: "Push notification dispatches by notice kind and result",
}, []string{"kind", "result"})
