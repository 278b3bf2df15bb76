package constants

import "time"

var CacheTTL = struct {
	Profile time.Duration
}{
	Profile: 24 * time.Hour, // generated profiles never change for a given model
}

var CacheConfig = struct {
	MemoryEntries int
	KeyPrefix     string
}{
	MemoryEntries: 4096,
	KeyPrefix:     "playergen",
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
}{
	ReadyTimeout: 5 * time.Second,
}

var GenerationConfig = struct {
	MinProfileLength  int
	MaxBiographyLines int
	BiographyOrder    int
	NameOrder         int
	MaxTokens         int
}{
	MinProfileLength:  100,  // characters of biography before sampling stops
	MaxBiographyLines: 1000, // guard against models that only emit empty lines
	BiographyOrder:    3,
	NameOrder:         4,
	MaxTokens:         1000,
}

var CrawlerConfig = struct {
	BaseURL     string
	UserAgent   string
	Concurrency int
	Delay       time.Duration
	Timeout     time.Duration
}{
	BaseURL:     "http://www.espncricinfo.com",
	UserAgent:   "Mozilla/5.0 (compatible; PlayerGenerator/1.0)",
	Concurrency: 4,
	Delay:       500 * time.Millisecond, // per worker, between player pages
	Timeout:     15 * time.Second,
}

var CircuitBreakerConfig = struct {
	FailureThreshold int
	ResetTimeout     time.Duration
}{
	FailureThreshold: 5,                // 5 consecutive failures open the circuit
	ResetTimeout:     30 * time.Second, // wait before the half-open probe
}

var ServerConfig = struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}{
	Addr:            ":8080",
	ReadTimeout:     10 * time.Second,
	WriteTimeout:    15 * time.Second,
	ShutdownTimeout: 10 * time.Second,
}

var DatabaseConfig = struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}{
	MaxOpenConns:    10,
	MaxIdleConns:    5,
	ConnMaxLifetime: 30 * time.Minute,
}
