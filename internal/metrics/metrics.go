package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	MessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waa_messages_total",
			Help: "Delivered messages by status and type",
		},
		[]string{"status", "type"}, // sent|failed , instant|scheduled|attachment
	)

	ContactsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waa_contacts_added_total",
			Help: "Contact add attempts by result",
		},
		[]string{"result"}, // added|duplicate|invalid
	)
)

var once sync.Once

// MustRegister registers the collectors once; later calls are no-ops.
func MustRegister(r prometheus.Registerer) {
	once.Do(func() {
		r.MustRegister(
			MessagesTotal,
			ContactsTotal,
		)
	})
}
