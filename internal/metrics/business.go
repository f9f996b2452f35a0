// SPDX-License-Identifier: MIT

// Package metrics exposes Prometheus instruments for blog business events.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostsCreated counts successful post creations.
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "blogicum",
		Name:      "posts_created_total",
		Help:      "Total posts created",
	})

	// PostsDeleted counts post deletions by their authors.
	PostsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "blogicum",
		Name:      "posts_deleted_total",
		Help:      "Total posts deleted",
	})

	// CommentsCreated counts successful comment creations.
	CommentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "blogicum",
		Name:      "comments_created_total",
		Help:      "Total comments created",
	})

	// Registrations counts successful user registrations.
	Registrations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "blogicum",
		Name:      "registrations_total",
		Help:      "Total user registrations",
	})

	// Logins counts login attempts by outcome ("success", "failure", "throttled").
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blogicum",
		Name:      "logins_total",
		Help:      "Total login attempts by outcome",
	}, []string{"outcome"})

	// HiddenPostDenied counts visits to posts the viewer may not see.
	HiddenPostDenied = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "blogicum",
		Name:      "hidden_post_denied_total",
		Help:      "Requests for posts hidden from the viewer",
	})

	// FeedCache counts feed cache lookups by result ("hit", "miss", "bypass").
	FeedCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blogicum",
		Name:      "feed_cache_lookups_total",
		Help:      "Feed cache lookups by result",
	}, []string{"result"})

	// ImagesUploaded counts stored post images.
	ImagesUploaded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "blogicum",
		Name:      "images_uploaded_total",
		Help:      "Total post images uploaded",
	})
)
