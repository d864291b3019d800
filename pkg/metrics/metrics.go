package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP
// =============================================================================

// HttpRequestsTotal counts requests by route template.
// rate(http_requests_total{service="recipe-service"}[5m])
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// histogram_quantile(0.95, rate(http_request_duration_seconds_bucket[5m]))
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "http_request_duration_seconds",
		Help: "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// Database
// =============================================================================

var DbQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
	[]string{"service", "operation", "table"},
)

var DbConnectionsOpen = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "db_connections_open",
		Help: "Number of open database connections",
	},
	[]string{"service", "state"}, // state: idle, in_use
)

var DbErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "db_errors_total",
		Help: "Total number of database errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Redis
// =============================================================================

var RedisCacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_hits_total",
		Help: "Total number of Redis cache hits",
	},
	[]string{"service", "key_prefix"},
)

var RedisCacheMisses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_misses_total",
		Help: "Total number of Redis cache misses",
	},
	[]string{"service", "key_prefix"},
)

var RedisOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "redis_operation_duration_seconds",
		Help:    "Duration of Redis operations in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	},
	[]string{"service", "operation"},
)

var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Kafka
// =============================================================================

var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"service", "topic"},
)

var KafkaMessagesConsumed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_consumed_total",
		Help: "Total number of Kafka messages consumed",
	},
	[]string{"service", "topic", "group"},
)

var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_produce_duration_seconds",
		Help:    "Duration of Kafka produce operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"service", "topic"},
)

var KafkaConsumeDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_consume_duration_seconds",
		Help:    "Duration of Kafka message processing",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	},
	[]string{"service", "topic"},
)

var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic", "operation"}, // operation: produce, consume
)

// =============================================================================
// Business
// =============================================================================

// --- auth-service ---

var AuthRegistrations = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "auth_registrations_total",
		Help: "Total number of user registrations",
	},
)

var AuthLogins = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "Total number of login attempts",
	},
	[]string{"status"}, // success, failed, locked, inactive
)

var AuthTokensIssued = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "auth_tokens_issued_total",
		Help: "Total number of access tokens issued",
	},
)

var GDPRExports = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "gdpr_exports_total",
		Help: "Total number of personal data exports",
	},
)

var GDPRDeletionRequests = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "gdpr_deletion_requests_total",
		Help: "Total number of account deletion requests",
	},
)

// --- recipe-service ---

var RecipesCreated = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "recipes_created_total",
		Help: "Total number of recipes created",
	},
)

var RecipesImported = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "recipes_imported_total",
		Help: "Total number of recipes loaded by the CSV importer",
	},
)

var RatingsSubmitted = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "recipe_ratings_stars",
		Help:    "Distribution of submitted star values",
		Buckets: []float64{1, 2, 3, 4, 5},
	},
)

var RatingConflictRetries = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "recipe_rating_conflict_retries_total",
		Help: "Rating transactions retried after a serialization failure or deadlock",
	},
)

var FavoritesToggled = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "recipe_favorites_toggled_total",
		Help: "Total number of favorite toggles",
	},
	[]string{"state"}, // added, removed
)

var RandomPicks = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "recipe_random_picks_total",
		Help: "Random recipe picks by selection mode",
	},
	[]string{"mode"}, // restricted, fallback, empty
)

var RecipeSearches = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "recipe_search_results",
		Help:    "Total matches per search request",
		Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000},
	},
)

// --- gdpr-worker ---

var GDPRDeletionsExecuted = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gdpr_deletions_executed_total",
		Help: "Accounts hard-deleted after the grace period",
	},
	[]string{"status"}, // success, failed
)

var GDPRSweepDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "gdpr_sweep_duration_seconds",
		Help:    "Duration of one deletion sweep",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	},
)

var GDPRAuditEntries = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gdpr_audit_entries_total",
		Help: "Audit entries written by the worker",
	},
	[]string{"action"},
)
