package deedseed

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/deedlabs/deedseed/common"
	"github.com/deedlabs/deedseed/schema"
	"github.com/gin-gonic/gin"
)

func (s *Deedseed) runAPI(port string) {
	r := s.engine
	r.Use(common.CORSMiddleware())
	v1 := r.Group("/")
	{
		// wizard sessions
		v1.POST("wizard", s.createSession)
		v1.GET("wizard/:id", s.getSession)
		v1.POST("wizard/:id", s.updateSession)
		v1.POST("wizard/:id/next", s.nextStep)
		v1.POST("wizard/:id/prev", s.prevStep)
		v1.GET("wizard/:id/eligibility", s.getEligibility)
		v1.POST("wizard/:id/mint", s.startMint)

		// attempts
		v1.GET("attempt/:id", s.getAttempt)
		v1.DELETE("attempt/:id", s.cancelAttempt)

		// reads
		v1.GET("price/:size", s.getPrice)
		v1.GET("supply", s.getSupply)
		v1.GET("metadata/:cid", s.getMetadata)
		v1.GET("deeds", s.getDeeds)
	}

	// pin passthrough, rate limited
	pin := r.Group("/pin", common.LimiterMiddleware(60, "M", nil))
	{
		pin.POST("/json", s.pinJson)
		pin.POST("/file", s.pinFile)
	}

	if err := r.Run(port); err != nil {
		panic(err)
	}
}

func errorResponse(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, schema.RespErr{Err: err})
}

func notFoundResponse(c *gin.Context) {
	c.JSON(http.StatusNotFound, schema.RespErr{Err: ErrNotFound.Error()})
}

func internalErrorResponse(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, schema.RespErr{Err: err})
}

func (s *Deedseed) createSession(c *gin.Context) {
	body := struct {
		Wallet string `json:"wallet"`
	}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		errorResponse(c, err.Error())
		return
	}
	sess, err := s.wizard.NewSession(body.Wallet)
	if err != nil {
		errorResponse(c, "invalid wallet address")
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

func (s *Deedseed) getSession(c *gin.Context) {
	sess, err := s.wizard.Get(c.Param("id"))
	if err != nil {
		notFoundResponse(c)
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

func (s *Deedseed) updateSession(c *gin.Context) {
	patch := schema.FormPatch{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		errorResponse(c, err.Error())
		return
	}
	sess, err := s.wizard.Update(c.Param("id"), patch)
	if err != nil {
		notFoundResponse(c)
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

func (s *Deedseed) nextStep(c *gin.Context) {
	sess, err := s.wizard.Next(c.Request.Context(), c.Param("id"))
	if err == ErrNotFound {
		notFoundResponse(c)
		return
	}
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

func (s *Deedseed) prevStep(c *gin.Context) {
	sess, err := s.wizard.Previous(c.Param("id"))
	if err != nil {
		notFoundResponse(c)
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

func (s *Deedseed) getEligibility(c *gin.Context) {
	resp, err := s.wizard.Eligibility(c.Request.Context(), c.Param("id"))
	if err == ErrNotFound {
		notFoundResponse(c)
		return
	}
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Deedseed) startMint(c *gin.Context) {
	attempt, err := s.StartMint(c.Request.Context(), c.Param("id"))
	if err == ErrNotFound {
		notFoundResponse(c)
		return
	}
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, attempt.Snapshot())
}

func (s *Deedseed) getAttempt(c *gin.Context) {
	attempt, err := s.attemptMg.Get(c.Param("id"))
	if err != nil {
		notFoundResponse(c)
		return
	}
	c.JSON(http.StatusOK, attempt.Snapshot())
}

// cancelAttempt discards an errored attempt so the wallet can start over
// from a fresh form. A broadcast transaction cannot be cancelled, so a
// running attempt is never killable, and a successful mint is permanent
// history until a new attempt replaces it.
func (s *Deedseed) cancelAttempt(c *gin.Context) {
	attempt, err := s.attemptMg.Get(c.Param("id"))
	if err != nil {
		notFoundResponse(c)
		return
	}
	switch {
	case !attempt.Status().Terminal():
		errorResponse(c, ErrAttemptRunning.Error())
		return
	case attempt.Status() != schema.StatusError:
		errorResponse(c, ErrNotCancelable.Error())
		return
	}
	s.attemptMg.Del(attempt.Id)
	c.Status(http.StatusOK)
}

func (s *Deedseed) getPrice(c *gin.Context) {
	size, err := strconv.ParseInt(c.Param("size"), 10, 64)
	if err != nil {
		errorResponse(c, "invalid size")
		return
	}
	price, ok := schema.MintingPriceETH(size)
	if !ok {
		notFoundResponse(c)
		return
	}
	c.JSON(http.StatusOK, schema.RespPrice{
		Size:     size,
		PriceEth: price.String(),
		PriceWei: EthToWei(price).String(),
	})
}

func (s *Deedseed) getSupply(c *gin.Context) {
	state := s.cache.GetState()
	c.JSON(http.StatusOK, schema.RespSupply{
		MintingActive:   state.MintingActive,
		RemainingSupply: state.RemainingSupply,
		UpdatedAt:       state.UpdatedAt.Unix(),
	})
}

func (s *Deedseed) getMetadata(c *gin.Context) {
	cid := c.Param("cid")
	if data, err := s.cache.GetMetadata(cid); err == nil {
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	}
	data, err := s.store.LoadMetadata(cid)
	if err != nil {
		notFoundResponse(c)
		return
	}
	_ = s.cache.SetMetadata(cid, data)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (s *Deedseed) getDeeds(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	deeds, err := s.wdb.GetDeeds(page*limit, limit)
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, deeds)
}

func (s *Deedseed) pinJson(c *gin.Context) {
	body := struct {
		Data json.RawMessage `json:"data"`
		Name string          `json:"name"`
	}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		errorResponse(c, err.Error())
		return
	}
	if len(body.Data) == 0 {
		errorResponse(c, ErrNullData.Error())
		return
	}
	if len(body.Data) > schema.SubmitMaxSize {
		errorResponse(c, ErrDataTooBig.Error())
		return
	}
	resp, err := s.pinCli.PinJSON(body.Data, body.Name)
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Deedseed) pinFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	if fileHeader.Size > schema.SubmitMaxSize {
		errorResponse(c, ErrDataTooBig.Error())
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	resp, err := s.pinCli.PinFile(fileHeader.Filename, data)
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, resp)
}
