package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/deedlabs/deedseed"
	"github.com/deedlabs/deedseed/config"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name: "deedseed",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Value: ":8080", EnvVars: []string{"PORT"}},

			&cli.StringFlag{Name: "rpc_url", Value: "https://sepolia.base.org", Usage: "evm rpc endpoint", EnvVars: []string{"RPC_URL"}},
			&cli.Int64Flag{Name: "chain_id", Value: config.BaseSepoliaChainId, Usage: "8453 base mainnet, 84532 base sepolia", EnvVars: []string{"CHAIN_ID"}},
			&cli.StringFlag{Name: "contract_mainnet", Value: "", Usage: "NFTDeedMint address on base mainnet", EnvVars: []string{"CONTRACT_MAINNET"}},
			&cli.StringFlag{Name: "contract_sepolia", Value: "", Usage: "NFTDeedMint address on base sepolia", EnvVars: []string{"CONTRACT_SEPOLIA"}},
			&cli.StringFlag{Name: "priv_key", Value: "", Usage: "relayer signing key hex", EnvVars: []string{"PRIV_KEY"}},
			&cli.DurationFlag{Name: "receipt_timeout", Value: config.DefaultReceiptTimeout, Usage: "max wait for a mint receipt", EnvVars: []string{"RECEIPT_TIMEOUT"}},

			&cli.StringFlag{Name: "pin_url", Value: config.DefaultPinUrl, Usage: "pinning service api", EnvVars: []string{"PIN_URL"}},
			&cli.StringFlag{Name: "pin_jwt", Value: "", Usage: "pinata jwt", EnvVars: []string{"PIN_JWT"}},
			&cli.StringFlag{Name: "pin_api_key", Value: "", Usage: "pinata api key", EnvVars: []string{"PIN_API_KEY"}},
			&cli.StringFlag{Name: "pin_secret_key", Value: "", Usage: "pinata secret key", EnvVars: []string{"PIN_SECRET_KEY"}},
			&cli.StringFlag{Name: "gateways", Value: config.DefaultGateway, Usage: "comma separated ipfs gateways", EnvVars: []string{"GATEWAYS"}},

			&cli.StringFlag{Name: "mysql", Value: "root@tcp(127.0.0.1:3306)/deedseed?charset=utf8mb4&parseTime=True&loc=Local", Usage: "mysql dsn", EnvVars: []string{"MYSQL"}},
			&cli.BoolFlag{Name: "sqlite", Value: false, Usage: "run with sqlite instead of mysql", EnvVars: []string{"SQLITE"}},
			&cli.StringFlag{Name: "sqlite_dir", Value: "./data/sqlite", EnvVars: []string{"SQLITE_DIR"}},
			&cli.StringFlag{Name: "db_dir", Value: "./data/bolt", Usage: "bolt db dir path", EnvVars: []string{"DB_DIR"}},
			&cli.BoolFlag{Name: "s3_flag", Value: false, Usage: "run with s3 store", EnvVars: []string{"S3_FLAG"}},
			&cli.StringFlag{Name: "s3_acc_key", Value: "", Usage: "s3 access key", EnvVars: []string{"S3_ACC_KEY"}},
			&cli.StringFlag{Name: "s3_secret_key", Value: "", Usage: "s3 secret key", EnvVars: []string{"S3_SECRET_KEY"}},
			&cli.StringFlag{Name: "s3_prefix", Value: "deedseed", Usage: "s3 bucket name prefix", EnvVars: []string{"S3_PREFIX"}},
			&cli.StringFlag{Name: "s3_region", Value: "ap-northeast-1", Usage: "s3 bucket region", EnvVars: []string{"S3_REGION"}},
			&cli.StringFlag{Name: "s3_endpoint", Value: "", Usage: "custom s3 endpoint, e.g. 4everland", EnvVars: []string{"S3_ENDPOINT"}},
			&cli.BoolFlag{Name: "use_mongodb", Value: false, Usage: "run with mongodb store", EnvVars: []string{"USE_MONGODB"}},
			&cli.StringFlag{Name: "mongodb_uri", Value: "mongodb://localhost:27017", EnvVars: []string{"MONGODB_URI"}},

			&cli.StringFlag{Name: "kafka_uri", Value: "", Usage: "kafka broker, empty disables events", EnvVars: []string{"KAFKA_URI"}},
		},
		Action: run,
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	cfg := &config.Config{
		Port:   c.String("port"),
		RpcUrl: c.String("rpc_url"),
		ChainId: c.Int64("chain_id"),
		Contracts: map[int64]string{
			config.BaseMainnetChainId: c.String("contract_mainnet"),
			config.BaseSepoliaChainId: c.String("contract_sepolia"),
		},
		PrivKeyHex:     c.String("priv_key"),
		ReceiptTimeout: c.Duration("receipt_timeout"),

		PinUrl:       c.String("pin_url"),
		PinJWT:       c.String("pin_jwt"),
		PinApiKey:    c.String("pin_api_key"),
		PinSecretKey: c.String("pin_secret_key"),
		Gateways:     splitList(c.String("gateways")),

		MysqlDsn:   c.String("mysql"),
		UseSqlite:  c.Bool("sqlite"),
		SqliteDir:  c.String("sqlite_dir"),
		BoltDir:    c.String("db_dir"),
		UseS3:      c.Bool("s3_flag"),
		S3AccKey:   c.String("s3_acc_key"),
		S3Secret:   c.String("s3_secret_key"),
		S3Prefix:   c.String("s3_prefix"),
		S3Region:   c.String("s3_region"),
		S3Endpoint: c.String("s3_endpoint"),
		UseMongo:   c.Bool("use_mongodb"),
		MongoUri:   c.String("mongodb_uri"),

		KafkaUri: c.String("kafka_uri"),
	}

	s := deedseed.New(cfg)
	s.Run(cfg.Port)

	<-signals
	s.Close()

	return nil
}

func splitList(s string) (items []string) {
	for _, it := range strings.Split(s, ",") {
		if it = strings.TrimSpace(it); it != "" {
			items = append(items, it)
		}
	}
	return
}
