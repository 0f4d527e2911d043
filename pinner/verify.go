package pinner

import (
	"fmt"
	"sync"

	"github.com/deedlabs/deedseed/schema"
	"github.com/panjf2000/ants/v2"
)

// Verify checks that pinned content is fetchable from at least one HTTP
// gateway. Callers treat failure as advisory: the pin response is trusted,
// verification only catches propagation problems early.
func (c *Client) Verify(cid string) error {
	if len(c.gateways) == 0 {
		return nil
	}
	pool, err := ants.NewPool(len(c.gateways))
	if err != nil {
		return err
	}
	defer pool.Release()

	var (
		wg sync.WaitGroup
		ok = make(chan struct{}, len(c.gateways))
	)
	for _, gw := range c.gateways {
		gw := gw
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if c.headOk(gw + cid) {
				ok <- struct{}{}
			}
		})
		if submitErr != nil {
			wg.Done()
		}
	}
	wg.Wait()

	select {
	case <-ok:
		return nil
	default:
		return fmt.Errorf("content %s not reachable on %d gateways", cid, len(c.gateways))
	}
}

// VerifyUri is Verify for a content-addressed uri.
func (c *Client) VerifyUri(uri string) error {
	return c.Verify(schema.CidOf(uri))
}

func (c *Client) headOk(url string) bool {
	req := c.gcli.Request()
	req.Method("HEAD")
	req.URL(url)
	resp, err := req.Send()
	if err != nil {
		log.Debug("gateway head", "err", err, "url", url)
		return false
	}
	defer resp.Close()
	return resp.Ok
}
