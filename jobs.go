package deedseed

import (
	"context"
	"time"

	"github.com/deedlabs/deedseed/schema"
)

const sessionMaxIdle = 2 * time.Hour

func (s *Deedseed) runJobs() {
	s.scheduler.Every(1).Minute().SingletonMode().Do(s.updateChainState)
	s.scheduler.Every(30).Seconds().SingletonMode().Do(s.flushAttempts)
	s.scheduler.Every(10).Minute().SingletonMode().Do(s.cleanSessions)
	s.scheduler.Every(5).Minute().SingletonMode().Do(s.checkGateways)

	s.scheduler.StartAsync()
}

func (s *Deedseed) updateChainState() {
	if !s.chainCli.Deployed() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	active, err := s.chainCli.IsMintingActive(ctx)
	if err != nil {
		log.Error("read mintingActive", "err", err)
		return
	}
	remaining, err := s.chainCli.GetRemainingSupply(ctx)
	if err != nil {
		log.Error("read remaining supply", "err", err)
		return
	}
	total, err := s.chainCli.GetTotalSupply(ctx)
	if err != nil {
		log.Error("read total supply", "err", err)
		return
	}
	s.cache.UpdateState(ChainState{
		MintingActive:   active,
		RemainingSupply: remaining.String(),
		TotalSupply:     total.String(),
	})
}

// flushAttempts writes settled attempts to the relational audit trail.
func (s *Deedseed) flushAttempts() {
	for _, a := range s.attemptMg.PopFlushable() {
		rec := schema.AttemptRecord{
			AttemptId:   a.Id,
			Wallet:      a.Wallet.Hex(),
			Status:      string(a.Status()),
			MetadataUri: a.MetadataUri(),
			FinishedAt:  time.Now(),
		}
		if res := a.Result(); res != nil {
			rec.TxHash = res.TransactionHash
			rec.TokenId = res.TokenId
			rec.ErrMsg = res.Error
		}
		if err := s.wdb.InsertAttempt(rec); err != nil {
			log.Error("flush attempt record", "err", err, "attemptId", a.Id)
		}
	}
}

func (s *Deedseed) cleanSessions() {
	if n := s.wizard.CleanStale(sessionMaxIdle); n > 0 {
		log.Debug("cleaned stale wizard sessions", "count", n)
	}
}

// checkGateways probes gateway health against a known pinned cid.
func (s *Deedseed) checkGateways() {
	if err := s.pinCli.Verify(schema.DefaultImageCid); err != nil {
		log.Warn("gateway health check failed", "err", err)
	}
}
