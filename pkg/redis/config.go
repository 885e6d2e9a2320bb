package redis

import "time"

type Config struct {
	ConnectionURL  string        `env:"REDIS_URL"`                                      // ConnectionURL is in the form redis://:password@localhost:6379/0.
	KeyPrefix      string        `env:"REDIS_KEY_PREFIX" envDefault:"regdesk:session:"` // KeyPrefix namespaces session keys.
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`            // RetryAttempts is the number of connection attempts.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`           // RetryInterval is the pause between attempts.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`         // ConnectTimeout bounds the whole connection phase.
}
