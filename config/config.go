// Package config holds the plain Go structs an embedding application
// fills in. Sim is what simstream.Dial takes; Store is not accepted by
// dbclient.New (which takes its own dbclient.Config) or by mirror.Build.
// There is no flag, environment, or file parsing here: loading
// configuration is the embedding application's concern, not this
// library's.
package config

import "time"

// Store configures a document-store client.
type Store struct {
	// BaseURL is the document store's root, e.g. "http://localhost:5984/mydb".
	BaseURL string
	// Username/Password are sent as HTTP basic auth when either is set.
	Username string
	Password string

	// RequestTimeout bounds a single non-streaming HTTP round trip.
	RequestTimeout time.Duration
	// HeartbeatDeadline is how long a continuous change feed may go
	// without a heartbeat line before it is treated as a transport
	// failure.
	HeartbeatDeadline time.Duration

	// BreakerFailureThreshold is the number of consecutive failures that
	// trips the reconnect circuit breaker open.
	BreakerFailureThreshold uint32
	// BreakerOpenDuration is how long the breaker stays open before
	// allowing a trial request.
	BreakerOpenDuration time.Duration
}

// DefaultStore returns reasonable defaults for a local CouchDB-compatible
// store.
func DefaultStore(baseURL string) Store {
	return Store{
		BaseURL:                 baseURL,
		RequestTimeout:          30 * time.Second,
		HeartbeatDeadline:       20 * time.Second,
		BreakerFailureThreshold: 5,
		BreakerOpenDuration:     30 * time.Second,
	}
}

// Simulator kind selects which Cap'n Proto interface a connection casts
// the bootstrap capability to.
type Simulator string

const (
	Ngspice Simulator = "ngspice"
	Xyce    Simulator = "xyce"
	Cxxrtl  Simulator = "cxxrtl"
)

// Autostart configures launching a local simulator binary when a
// connection to "localhost" fails.
type Autostart struct {
	Enabled bool
	// BinaryPaths maps a Simulator kind to the local executable to launch.
	BinaryPaths map[Simulator]string
	// StartupWait is how long to pause after launching before retrying
	// the connection once.
	StartupWait time.Duration

	// RateLimit bounds how often autostart may be attempted for one
	// host:port pair, to avoid a restart storm against a simulator that
	// keeps crashing on launch.
	RateLimit RateLimit
}

// RateLimit parameterizes the token-bucket backoff guarding autostart.
type RateLimit struct {
	Rate     int64
	Duration time.Duration
	Burst    int64
}

// DefaultRateLimit allows one autostart attempt per host every 10
// seconds, with a burst of 1 (no pile-up of queued restarts).
func DefaultRateLimit() RateLimit {
	return RateLimit{Rate: 1, Duration: 10 * time.Second, Burst: 1}
}

// Sim configures a simulation stream connection.
type Sim struct {
	Host      string
	Port      int
	Kind      Simulator
	Autostart Autostart

	// DialTimeout bounds the initial TCP connect.
	DialTimeout time.Duration
}

// DefaultSim returns reasonable defaults for connecting to a local ngspice
// server with autostart disabled; callers opt into autostart explicitly.
func DefaultSim(host string, port int) Sim {
	return Sim{
		Host:        host,
		Port:        port,
		Kind:        Ngspice,
		DialTimeout: 5 * time.Second,
	}
}
