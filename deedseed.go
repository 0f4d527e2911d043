package deedseed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/deedlabs/deedseed/common"
	"github.com/deedlabs/deedseed/config"
	"github.com/deedlabs/deedseed/pinner"
	"github.com/deedlabs/deedseed/schema"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"gorm.io/datatypes"
)

const metadataCacheTTL = 24 * time.Hour

// Deedseed is the deed-NFT minting service: wizard sessions in front,
// pinning gateway and NFTDeedMint contract behind, audit trail below.
type Deedseed struct {
	cfg    *config.Config
	engine *gin.Engine

	chainCli *ChainCli
	pinCli   *pinner.Client

	wizard    *Wizard
	attemptMg *AttemptManager

	store *Store
	wdb   *Wdb
	cache *Cache

	scheduler *gocron.Scheduler
	kafka     *KWriter // nil when no broker configured
}

func New(cfg *config.Config) *Deedseed {
	if err := cfg.Check(); err != nil {
		panic(err)
	}

	var store *Store
	var err error
	switch {
	case cfg.UseS3:
		store, err = NewS3Store(cfg.S3AccKey, cfg.S3Secret, cfg.S3Region, cfg.S3Prefix, cfg.S3Endpoint)
	case cfg.UseMongo:
		store, err = NewMongoStore(cfg.MongoUri)
	default:
		store, err = NewBoltStore(cfg.BoltDir)
	}
	if err != nil {
		panic(err)
	}

	wdb := &Wdb{}
	if cfg.UseSqlite {
		wdb = NewSqliteDb(cfg.SqliteDir)
	} else {
		wdb = NewMysqlDb(cfg.MysqlDsn)
	}
	if err = wdb.Migrate(); err != nil {
		panic(err)
	}

	chainCli, err := NewChainCli(cfg)
	if err != nil {
		panic(err)
	}

	cache, err := NewCache(metadataCacheTTL)
	if err != nil {
		panic(err)
	}

	pinCli := pinner.New(cfg.PinUrl, cfg.PinJWT, cfg.PinApiKey, cfg.PinSecretKey, cfg.Gateways)

	s := &Deedseed{
		cfg:       cfg,
		engine:    gin.Default(),
		chainCli:  chainCli,
		pinCli:    pinCli,
		wizard:    NewWizard(chainCli),
		attemptMg: NewAttemptMg(),
		store:     store,
		wdb:       wdb,
		cache:     cache,
		scheduler: gocron.NewScheduler(time.UTC),
	}
	if cfg.KafkaUri != "" {
		s.kafka = NewKWriter(cfg.KafkaUri)
	}
	return s
}

func (s *Deedseed) Run(port string) {
	common.NewMetricServer()
	s.updateChainState()
	go s.runAPI(port)
	go s.runJobs()
}

func (s *Deedseed) Close() {
	s.scheduler.Stop()
	s.wdb.Close()
	s.store.Close()
	s.cache.Close()
	if s.kafka != nil {
		s.kafka.Close()
	}
}

// StartMint turns a mint-ready wizard session into a new attempt and runs
// it in the background. One non-terminal attempt per wallet.
func (s *Deedseed) StartMint(ctx context.Context, sessionId string) (*MintAttempt, error) {
	form, wallet, err := s.wizard.ReadyForMint(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	var attempt *MintAttempt
	attempt = NewMintAttempt(form, wallet, s.pinCli, s.chainCli, func(res schema.MintResult) {
		s.finishAttempt(attempt, res)
	})
	if err := s.attemptMg.Register(attempt); err != nil {
		return nil, err
	}
	go attempt.Run(context.Background())
	return attempt, nil
}

// finishAttempt runs once per attempt, on its terminal transition.
func (s *Deedseed) finishAttempt(a *MintAttempt, res schema.MintResult) {
	if meta := a.Metadata(); meta != nil && a.MetadataUri() != "" {
		cid := schema.CidOf(a.MetadataUri())
		if err := s.store.SaveMetadata(cid, *meta); err != nil {
			log.Error("save metadata mirror", "err", err, "cid", cid)
		} else if data, err := s.store.LoadMetadata(cid); err == nil {
			_ = s.cache.SetMetadata(cid, data)
		}
	}
	if err := s.store.SaveAttemptJournal(a.Id, a.Snapshot()); err != nil {
		log.Error("save attempt journal", "err", err, "attemptId", a.Id)
	}

	if res.Success {
		deed := schema.DeedRecord{
			TokenId:           res.TokenId,
			TxHash:            res.TransactionHash,
			Minter:            a.Wallet.Hex(),
			PropertyType:      a.Form.PropertyType.ChainEnum(),
			PropertySize:      a.Form.PropertySize,
			PropertyAddress:   a.Form.PropertyAddress,
			NormalizedAddress: schema.NormalizeAddress(a.Form.PropertyAddress),
			LegalDescription:  a.Form.LegalDescription,
			MetadataCid:       schema.CidOf(a.MetadataUri()),
			MetadataUri:       a.MetadataUri(),
			PriceWei:          EthToWei(a.Form.Price()).String(),
		}
		if meta := a.Metadata(); meta != nil {
			if data, err := json.Marshal(meta); err == nil {
				deed.Metadata = datatypes.JSON(data)
			}
		}
		if err := s.wdb.InsertDeed(deed); err != nil {
			log.Error("insert deed record", "err", err, "tokenId", res.TokenId)
		}
		if s.kafka != nil {
			if err := s.kafka.PublishMinted(deed); err != nil {
				log.Error("publish minted event", "err", err, "tokenId", res.TokenId)
			}
		}
	}
	if s.kafka != nil {
		if err := s.kafka.PublishAttempt(a.Id, res); err != nil {
			log.Error("publish attempt event", "err", err, "attemptId", a.Id)
		}
	}
}
