// Package metrics defines the prometheus collectors of the microblog.
package metrics

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	Requests         *prometheus.CounterVec
	PostsCreated     *prometheus.CounterVec
	FollowRequests   *prometheus.CounterVec
	UnfollowRequests *prometheus.CounterVec
	PasswordResets   *prometheus.CounterVec
	MailsSent        *prometheus.CounterVec
	Translations     *prometheus.CounterVec
}

// InitMetrics creates the collectors and registers them with reg.
func InitMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "microblog_http_requests_total",
				Help: "Total number of HTTP requests by route and status class",
			},
			[]string{"route", "status"},
		),
		PostsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "microblog_posts_created_total",
				Help: "Total number of published posts by detected language",
			},
			[]string{"language"},
		),
		FollowRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "microblog_follows_total",
				Help: "Total number of follow requests by outcome",
			},
			[]string{"outcome"},
		),
		UnfollowRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "microblog_unfollows_total",
				Help: "Total number of unfollow requests by outcome",
			},
			[]string{"outcome"},
		),
		PasswordResets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "microblog_password_resets_total",
				Help: "Total number of password reset steps by stage",
			},
			[]string{"stage"},
		),
		MailsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "microblog_mails_total",
				Help: "Total number of queued mails by delivery outcome",
			},
			[]string{"outcome"},
		),
		Translations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "microblog_translations_total",
				Help: "Total number of translation requests by outcome",
			},
			[]string{"outcome"},
		),
	}

	reg.MustRegister(
		m.Requests,
		m.PostsCreated,
		m.FollowRequests,
		m.UnfollowRequests,
		m.PasswordResets,
		m.MailsSent,
		m.Translations,
	)

	return m
}

// StatusClass buckets an HTTP status code, e.g. 404 becomes "4xx".
func StatusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
