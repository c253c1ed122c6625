package pubsub

// Settings selects the transport notifications are published over.
type Settings struct {
	RedisEnabled bool   `mapstructure:"redis-enabled"`
	RedisAddr    string `mapstructure:"redis-addr"`
	Group        string `mapstructure:"redis-group"`
	Consumer     string `mapstructure:"redis-consumer"`
}

func DefaultSettings() Settings {
	return Settings{
		RedisAddr: "localhost:6379",
		Group:     "chat-ui",
		Consumer:  "ui-1",
	}
}
