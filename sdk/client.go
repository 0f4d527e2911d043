package sdk

import (
	"encoding/json"
	"fmt"

	"github.com/deedlabs/deedseed/schema"
	"gopkg.in/h2non/gentleman.v2"
	"gopkg.in/h2non/gentleman.v2/plugins/body"
)

// Client drives the wizard and mint endpoints of a deedseed server.
type Client struct {
	SCli *gentleman.Client
}

func New(seedUrl string) *Client {
	return &Client{
		SCli: gentleman.New().URL(seedUrl),
	}
}

func (c *Client) CreateSession(wallet string) (sess schema.RespSession, err error) {
	err = c.post("/wizard", map[string]string{"wallet": wallet}, &sess)
	return
}

func (c *Client) GetSession(id string) (sess schema.RespSession, err error) {
	err = c.get(fmt.Sprintf("/wizard/%s", id), &sess)
	return
}

func (c *Client) UpdateForm(id string, patch schema.FormPatch) (sess schema.RespSession, err error) {
	err = c.post(fmt.Sprintf("/wizard/%s", id), patch, &sess)
	return
}

func (c *Client) NextStep(id string) (sess schema.RespSession, err error) {
	err = c.post(fmt.Sprintf("/wizard/%s/next", id), nil, &sess)
	return
}

func (c *Client) PrevStep(id string) (sess schema.RespSession, err error) {
	err = c.post(fmt.Sprintf("/wizard/%s/prev", id), nil, &sess)
	return
}

func (c *Client) GetEligibility(id string) (elig schema.RespEligibility, err error) {
	err = c.get(fmt.Sprintf("/wizard/%s/eligibility", id), &elig)
	return
}

func (c *Client) StartMint(id string) (attempt schema.RespAttempt, err error) {
	err = c.post(fmt.Sprintf("/wizard/%s/mint", id), nil, &attempt)
	return
}

func (c *Client) GetAttempt(id string) (attempt schema.RespAttempt, err error) {
	err = c.get(fmt.Sprintf("/attempt/%s", id), &attempt)
	return
}

func (c *Client) DiscardAttempt(id string) error {
	req := c.SCli.Delete()
	req.AddPath(fmt.Sprintf("/attempt/%s", id))
	resp, err := req.Send()
	if err != nil {
		return err
	}
	defer resp.Close()
	if !resp.Ok {
		return decodeRespErr(resp.Bytes())
	}
	return nil
}

func (c *Client) GetPrice(size int64) (price schema.RespPrice, err error) {
	err = c.get(fmt.Sprintf("/price/%d", size), &price)
	return
}

func (c *Client) GetSupply() (supply schema.RespSupply, err error) {
	err = c.get("/supply", &supply)
	return
}

func (c *Client) GetMetadata(cid string) (meta schema.MintMetadata, err error) {
	err = c.get(fmt.Sprintf("/metadata/%s", cid), &meta)
	return
}

func (c *Client) GetDeeds(page, limit int) (deeds []schema.DeedRecord, err error) {
	req := c.SCli.Get()
	req.AddPath("/deeds")
	req.SetQuery("page", fmt.Sprintf("%d", page))
	req.SetQuery("limit", fmt.Sprintf("%d", limit))
	resp, err := req.Send()
	if err != nil {
		return
	}
	defer resp.Close()
	if !resp.Ok {
		err = decodeRespErr(resp.Bytes())
		return
	}
	err = json.Unmarshal(resp.Bytes(), &deeds)
	return
}

func (c *Client) PinJSON(data json.RawMessage, name string) (pin schema.RespPin, err error) {
	err = c.post("/pin/json", map[string]interface{}{"data": data, "name": name}, &pin)
	return
}

func (c *Client) get(path string, out interface{}) error {
	req := c.SCli.Get()
	req.AddPath(path)
	resp, err := req.Send()
	if err != nil {
		return err
	}
	defer resp.Close()
	if !resp.Ok {
		return decodeRespErr(resp.Bytes())
	}
	return json.Unmarshal(resp.Bytes(), out)
}

func (c *Client) post(path string, payload interface{}, out interface{}) error {
	req := c.SCli.Post()
	req.AddPath(path)
	if payload != nil {
		req.Use(body.JSON(payload))
	}
	resp, err := req.Send()
	if err != nil {
		return err
	}
	defer resp.Close()
	if !resp.Ok {
		return decodeRespErr(resp.Bytes())
	}
	return json.Unmarshal(resp.Bytes(), out)
}

func decodeRespErr(data []byte) error {
	respErr := schema.RespErr{}
	if err := json.Unmarshal(data, &respErr); err != nil || respErr.Err == "" {
		return fmt.Errorf("resp failed: %s", string(data))
	}
	return respErr
}
