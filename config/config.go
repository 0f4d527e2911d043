package config

import (
	"fmt"
	"time"
)

// Supported network identifiers (Base mainnet and Base Sepolia testnet).
const (
	BaseMainnetChainId = 8453
	BaseSepoliaChainId = 84532
)

const (
	DefaultReceiptTimeout = 5 * time.Minute
	DefaultGateway        = "https://gateway.pinata.cloud/ipfs/"
	DefaultPinUrl         = "https://api.pinata.cloud"
)

// Config is built once at startup and injected into every component that
// talks to the outside world; nothing reads the environment after this.
type Config struct {
	Port string

	// chain
	RpcUrl         string
	ChainId        int64
	Contracts      map[int64]string // chainId -> deployed NFTDeedMint address
	PrivKeyHex     string           // relayer signing key, hex without 0x
	ReceiptTimeout time.Duration

	// pinning service
	PinUrl       string
	PinJWT       string
	PinApiKey    string
	PinSecretKey string
	Gateways     []string

	// storage
	MysqlDsn  string
	SqliteDir string
	UseSqlite bool
	BoltDir   string
	UseS3     bool
	S3AccKey  string
	S3Secret  string
	S3Region  string
	S3Prefix  string
	S3Endpoint string
	UseMongo  bool
	MongoUri  string

	// events
	KafkaUri string
}

// ContractAddress returns the deployed contract for the configured network.
// ok is false when the network has no deployment; callers must surface
// that as a blocking, non-retryable condition.
func (c *Config) ContractAddress() (string, bool) {
	addr, ok := c.Contracts[c.ChainId]
	if !ok || addr == "" {
		return "", false
	}
	return addr, true
}

func (c *Config) NetworkName() string {
	switch c.ChainId {
	case BaseMainnetChainId:
		return "base-mainnet"
	case BaseSepoliaChainId:
		return "base-sepolia"
	default:
		return fmt.Sprintf("chain-%d", c.ChainId)
	}
}

// Check fills defaults and rejects configurations the service cannot run
// with at all. A missing contract address is not rejected here; it is a
// wizard-level blocking condition, not a boot failure.
func (c *Config) Check() error {
	if c.RpcUrl == "" {
		return fmt.Errorf("rpc url can not be null")
	}
	if c.ReceiptTimeout <= 0 {
		c.ReceiptTimeout = DefaultReceiptTimeout
	}
	if c.PinUrl == "" {
		c.PinUrl = DefaultPinUrl
	}
	if len(c.Gateways) == 0 {
		c.Gateways = []string{DefaultGateway}
	}
	if c.PinJWT == "" && (c.PinApiKey == "" || c.PinSecretKey == "") {
		return fmt.Errorf("pinning credentials can not be null, need jwt or key pair")
	}
	return nil
}
