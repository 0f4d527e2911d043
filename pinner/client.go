package pinner

import (
	"bytes"
	"fmt"

	"github.com/deedlabs/deedseed/common"
	"github.com/deedlabs/deedseed/schema"
	"github.com/tidwall/gjson"
	"gopkg.in/h2non/gentleman.v2"
	"gopkg.in/h2non/gentleman.v2/plugins/multipart"
)

var log = common.NewLog("pinner")

const (
	pinJsonPath = "/pinning/pinJSONToIPFS"
	pinFilePath = "/pinning/pinFileToIPFS"
)

// Client talks to a Pinata-compatible pinning gateway. The rest of the
// service depends only on PinJSON/PinFile/Verify, not on which pinning
// service sits behind them.
type Client struct {
	scli      *gentleman.Client
	gcli      *gentleman.Client
	jwt       string
	apiKey    string
	secretKey string
	gateways  []string
}

// New builds a pinning client. jwt wins over the key/secret pair when both
// are set; gateways are the HTTP mirrors used for advisory verification.
func New(pinUrl, jwt, apiKey, secretKey string, gateways []string) *Client {
	return &Client{
		scli:      gentleman.New().URL(pinUrl),
		gcli:      gentleman.New(),
		jwt:       jwt,
		apiKey:    apiKey,
		secretKey: secretKey,
		gateways:  gateways,
	}
}

func (c *Client) auth(req *gentleman.Request) *gentleman.Request {
	if c.jwt != "" {
		req.SetHeader("Authorization", "Bearer "+c.jwt)
		return req
	}
	req.SetHeader("pinata_api_key", c.apiKey)
	req.SetHeader("pinata_secret_api_key", c.secretKey)
	return req
}

type pinataResp struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// PinJSON pins a JSON document and returns its content id and ipfs:// uri.
func (c *Client) PinJSON(doc interface{}, name string) (*schema.RespPin, error) {
	body := map[string]interface{}{
		"pinataContent": doc,
	}
	if name != "" {
		body["pinataMetadata"] = map[string]string{"name": name}
	}
	req := c.auth(c.scli.Post())
	req.Path(pinJsonPath)
	req.JSON(body)

	resp, err := req.Send()
	if err != nil {
		return nil, err
	}
	defer resp.Close()
	if !resp.Ok {
		return nil, fmt.Errorf("pin json failed; http code: %d, errMsg:%s", resp.StatusCode, errText(resp.String()))
	}
	pr := pinataResp{}
	if err := resp.JSON(&pr); err != nil {
		return nil, err
	}
	return toRespPin(pr), nil
}

// PinFile pins raw file bytes via the multipart endpoint.
func (c *Client) PinFile(name string, data []byte) (*schema.RespPin, error) {
	files := []multipart.FormFile{
		{Name: "file", Reader: bytes.NewReader(data)},
	}
	req := c.auth(c.scli.Post())
	req.Path(pinFilePath)
	req.Use(multipart.Data(multipart.FormData{
		Data:  multipart.DataFields{"pinataMetadata": []string{fmt.Sprintf(`{"name":%q}`, name)}},
		Files: files,
	}))

	resp, err := req.Send()
	if err != nil {
		return nil, err
	}
	defer resp.Close()
	if !resp.Ok {
		return nil, fmt.Errorf("pin file failed; http code: %d, errMsg:%s", resp.StatusCode, errText(resp.String()))
	}
	pr := pinataResp{}
	if err := resp.JSON(&pr); err != nil {
		return nil, err
	}
	return toRespPin(pr), nil
}

func toRespPin(pr pinataResp) *schema.RespPin {
	return &schema.RespPin{
		ContentId: pr.IpfsHash,
		SizeBytes: pr.PinSize,
		Timestamp: pr.Timestamp,
		Uri:       schema.IpfsUri(pr.IpfsHash),
	}
}

// errText pulls the gateway's reported error out of a failure body; falls
// back to the raw body when the shape is unknown.
func errText(body string) string {
	if details := gjson.Get(body, "error.details"); details.Exists() {
		return details.String()
	}
	if reason := gjson.Get(body, "error.reason"); reason.Exists() {
		return reason.String()
	}
	if e := gjson.Get(body, "error"); e.Exists() && e.Type == gjson.String {
		return e.String()
	}
	if body == "" {
		return "pinning gateway request failed"
	}
	return body
}
