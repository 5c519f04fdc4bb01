package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInitMetricsRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := InitMetrics(reg)

	m.FollowRequests.WithLabelValues("success").Inc()
	m.FollowRequests.WithLabelValues("success").Inc()
	m.PostsCreated.WithLabelValues("en").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FollowRequests.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PostsCreated.WithLabelValues("en")))

	count, err := testutil.GatherAndCount(reg, "microblog_follows_total", "microblog_posts_created_total")
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestInitMetricsTwiceOnSameRegistryPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	InitMetrics(reg)
	assert.Panics(t, func() { InitMetrics(reg) })
}

func TestStatusClass(t *testing.T) {
	testCases := map[int]string{200: "2xx", 302: "3xx", 400: "4xx", 404: "4xx", 500: "5xx", 503: "5xx"}
	for status, want := range testCases {
		assert.Equal(t, want, StatusClass(status))
	}
}
