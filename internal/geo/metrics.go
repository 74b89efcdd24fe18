package geo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// lookups counts outbound geo lookups by provider and cache result
var lookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pikmin_geo_lookups_total",
	Help: "Geo lookups by provider (nominatim, ipapi) and result (hit, miss, error)",
}, []string{"provider", "result"})
