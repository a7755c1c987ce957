package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Total number of orders settled",
	})

	CheckoutFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failed_total",
		Help: "Total number of failed checkouts",
	}, []string{"reason"})

	SettlementLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_settlement_latency_seconds",
		Help:    "Latency of the checkout settlement transaction",
		Buckets: prometheus.DefBuckets,
	})

	PointsSpentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "points_spent_total",
		Help: "Total points debited through checkout",
	})

	PointsEarnedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "points_earned_total",
		Help: "Total points credited through check-ins and adjustments",
	})

	CheckinsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkins_total",
		Help: "Total number of successful daily check-ins",
	})

	CheckinsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkins_rejected_total",
		Help: "Total number of same-day repeat check-in attempts",
	})

	CouponsClaimedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coupons_claimed_total",
		Help: "Total number of coupon claims",
	})

	CouponsRedeemedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coupons_redeemed_total",
		Help: "Total number of coupons consumed at checkout",
	})

	LevelRecomputedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "membership_level_recomputed_total",
		Help: "Total number of membership level recomputations",
	})

	ImagesUploadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "images_uploaded_total",
		Help: "Total number of images uploaded to object storage",
	})

	CatalogCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_requests_total",
		Help: "Catalog cache lookups by outcome",
	}, []string{"outcome"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
