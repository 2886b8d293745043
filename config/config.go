// config/config.go
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DevAccountName and DevAccountKey are the well-known local emulator
// credentials, used when nothing else is configured.
const (
	DevAccountName = "devstoreaccount1"
	DevAccountKey  = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="
)

// Policy store kinds.
const (
	PolicyStoreRedis = "redis"
	PolicyStoreNeo4j = "neo4j"
)

// Configuration stores all the configurations
type Configuration struct {
	Server        ServerConfiguration
	Storage       StorageConfig
	Redis         RedisConfiguration
	Neo4j         DatabaseConfiguration
	Elasticsearch ElasticsearchConfiguration
	Log           LogConfig
	Issuer        IssuerConfig
	Consumer      ConsumerConfig
}

// ServerConfiguration stores the ports and other web server settings
type ServerConfiguration struct {
	Port            string
	AdminPort       string
	RateLimit       RateLimitConfig
	ShutdownTimeout time.Duration
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// StorageConfig identifies the storage account and how the backend
// authorizes requests against it.
type StorageConfig struct {
	AccountName       string
	AccountKey        string
	Endpoint          string
	PolicyStore       string
	MaxStoredPolicies int
	// DeleteRequires is the permission letter set a SAS needs to delete a blob.
	DeleteRequires string
}

// DatabaseConfiguration stores data for the Neo4j connection
type DatabaseConfiguration struct {
	URI      string
	Username string
	Password string
}

// RedisConfiguration stores data for Redis connection
type RedisConfiguration struct {
	Addr     string
	Password string
	DB       int
	// EncryptionKey enables AES-GCM encryption of blob bodies at rest when set.
	// Must be 32 bytes.
	EncryptionKey string
}

// ElasticsearchConfiguration stores data for Elasticsearch connection. An
// empty URL disables audit indexing.
type ElasticsearchConfiguration struct {
	URL   string
	Index string
}

type LogConfig struct {
	Level string
	Dir   string
}

// IssuerConfig holds the resource names used by the generate workflow and
// the timeout of each of its backend calls.
type IssuerConfig struct {
	RequestTimeout time.Duration
	Container      string
	Blob           string
	PolicyBlob     string
	PolicyName     string
	TokenTTL       time.Duration
}

// ConsumerConfig holds the demonstration content and the signed URIs the
// consume workflow runs against.
type ConsumerConfig struct {
	RequestTimeout time.Duration
	BlobName       string
	BlobContent    string
	SignedURIs     []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.adminPort", "9090")
	v.SetDefault("server.rateLimit.requests", 100)
	v.SetDefault("server.rateLimit.window", time.Minute)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("storage.accountName", DevAccountName)
	v.SetDefault("storage.accountKey", DevAccountKey)
	v.SetDefault("storage.endpoint", "http://localhost:8080")
	v.SetDefault("storage.policyStore", PolicyStoreRedis)
	v.SetDefault("storage.maxStoredPolicies", 5)
	v.SetDefault("storage.deleteRequires", "d")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.encryptionKey", "")

	v.SetDefault("neo4j.uri", "bolt://localhost:7687")
	v.SetDefault("neo4j.username", "neo4j")
	v.SetDefault("neo4j.password", "")

	v.SetDefault("elasticsearch.url", "")
	v.SetDefault("elasticsearch.index", "blobsas-audit")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", "")

	v.SetDefault("issuer.requestTimeout", 30*time.Second)
	v.SetDefault("issuer.container", "sascontainer")
	v.SetDefault("issuer.blob", "sasblob.txt")
	v.SetDefault("issuer.policyBlob", "sasblobpolicy.txt")
	v.SetDefault("issuer.policyName", "tutorialpolicy")
	v.SetDefault("issuer.tokenTTL", 24*time.Hour)

	v.SetDefault("consumer.requestTimeout", 30*time.Second)
	v.SetDefault("consumer.blobName", "blobCreatedViaSas.txt")
	v.SetDefault("consumer.blobContent", "This blob was created with a shared access signature granting write permissions to the container. ")
	v.SetDefault("consumer.signedURIs", []string{})
}

// Load reads config.yaml from path (a missing file is not an error), overlays
// BLOBSAS_* environment variables and returns the validated configuration.
func Load(path string) (*Configuration, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BLOBSAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that would otherwise fail late at request time.
func (c *Configuration) Validate() error {
	if c.Storage.AccountName == "" {
		return errors.New("storage.accountName is required")
	}
	key, err := base64.StdEncoding.DecodeString(c.Storage.AccountKey)
	if err != nil || len(key) == 0 {
		return errors.New("storage.accountKey must be non-empty base64")
	}
	switch c.Storage.PolicyStore {
	case PolicyStoreRedis, PolicyStoreNeo4j:
	default:
		return fmt.Errorf("unknown storage.policyStore %q", c.Storage.PolicyStore)
	}
	if c.Storage.MaxStoredPolicies <= 0 {
		return errors.New("storage.maxStoredPolicies must be positive")
	}
	if k := c.Redis.EncryptionKey; k != "" && len(k) != 32 {
		return errors.New("redis.encryptionKey must be 32 bytes")
	}
	if c.Issuer.RequestTimeout <= 0 {
		return errors.New("issuer.requestTimeout must be positive")
	}
	if c.Consumer.RequestTimeout <= 0 {
		return errors.New("consumer.requestTimeout must be positive")
	}
	return nil
}
