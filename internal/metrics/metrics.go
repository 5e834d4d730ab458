// Package metrics объявляет счетчики prometheus для жизненного цикла заявок.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BookingsCreated количество созданных заявок.
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rephome_bookings_created_total",
		Help: "Total number of repair bookings created.",
	})

	// OTPVerified количество успешных подтверждений кода.
	OTPVerified = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rephome_otp_verified_total",
		Help: "Total number of successful OTP verifications.",
	})

	// SweepConfirmed количество заявок, подтвержденных фоновой задачей.
	SweepConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rephome_sweep_confirmed_total",
		Help: "Total number of stale pending bookings auto-confirmed by the sweep.",
	})

	// EmailSendFailures количество неудачных отправок писем.
	EmailSendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rephome_email_send_failures_total",
		Help: "Total number of failed email delivery attempts.",
	})
)
