package tickloom

// NetworkConfig holds the tunable knobs of a simulated Network (spec §4.1).
type NetworkConfig struct {
	DelayTicks int64
	DropRate   float64
}

// NetworkOption configures a NetworkConfig.
type NetworkOption func(*NetworkConfig)

// WithDelayTicks sets the default delivery delay, in ticks, applied to
// every message that isn't dropped. delayTicks must be non-negative.
func WithDelayTicks(delayTicks int64) NetworkOption {
	return func(c *NetworkConfig) { c.DelayTicks = delayTicks }
}

// WithDropRate sets the probability, in [0,1], that an enqueued message is
// silently dropped rather than scheduled for delivery.
func WithDropRate(dropRate float64) NetworkOption {
	return func(c *NetworkConfig) { c.DropRate = dropRate }
}

// NewNetworkConfig applies opts over the zero-value NetworkConfig
// (DelayTicks=0, DropRate=0), returning the effective configuration.
func NewNetworkConfig(opts ...NetworkOption) NetworkConfig {
	var cfg NetworkConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// StorageConfig holds the tunable knobs of a simulated Storage (spec §4.7).
type StorageConfig struct {
	DelayTicks  int64
	FailureRate float64
}

// StorageOption configures a StorageConfig.
type StorageOption func(*StorageConfig)

// WithStorageDelayTicks sets the completion delay, in ticks, applied to
// every storage operation.
func WithStorageDelayTicks(delayTicks int64) StorageOption {
	return func(c *StorageConfig) { c.DelayTicks = delayTicks }
}

// WithFailureRate sets the probability, in [0,1], that a storage operation
// completes with ErrStorageFailure instead of succeeding.
func WithFailureRate(failureRate float64) StorageOption {
	return func(c *StorageConfig) { c.FailureRate = failureRate }
}

// NewStorageConfig applies opts over the zero-value StorageConfig
// (DelayTicks=0, FailureRate=0), returning the effective configuration.
func NewStorageConfig(opts ...StorageOption) StorageConfig {
	var cfg StorageConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
