package schema

import (
	"fmt"
	"strings"
)

const (
	IpfsScheme = "ipfs://"
	GatewayUrl = "https://gateway.pinata.cloud/ipfs/"

	// DefaultImageCid backs any type+size pair missing from the table.
	DefaultImageCid = "QmebmmFP5mwZTVuAkWw5WXGNoPxFPLhrWDZYPj9etMgKJm"
)

type PropertyImage struct {
	Type     PropertyType `json:"type"`
	Size     int64        `json:"size"`
	Filename string       `json:"filename"`
	Cid      string       `json:"ipfsHash"`
	PinSize  int64        `json:"pinSize"`
}

// PropertyImages maps "<slug>-<size>" to the pre-pinned placeholder image.
var PropertyImages = map[string]PropertyImage{
	"house-150":       {House, 150, "house150m.png", "QmebmmFP5mwZTVuAkWw5WXGNoPxFPLhrWDZYPj9etMgKJm", 301115},
	"house-220":       {House, 220, "house220.png", "QmTCHwfk4aH5TKHGLqQXpWshuNwBQEuSB17TWiQttCrXtq", 294975},
	"apartment-90":    {Apartment, 90, "apt90m.png", "QmU1grko7AvYuvX7bfTQSzSiHJAY4Rb8MgyqP4M9EwxPJF", 208095},
	"apartment-120":   {Apartment, 120, "apt120m.png", "QmYmYmKHQCZBHZKMUzUfew4pcbQZH3ajB7v76k63CeBa2i", 206069},
	"commercial-500":  {Commercial, 500, "cmrc500m.png", "QmbJRSUtu4xgH5i1YtoZdDau6AEwpieBVvziGxaQnis9Q3", 276583},
	"commercial-1500": {Commercial, 1500, "cmrc1500m.png", "QmfW9x8yWvfLZ8JckrcbqbAXtbc6acvh1zdbMeZN6kntgC", 296599},
}

// ImageCid returns the pinned placeholder cid for a type+size pair, falling
// back to the default image. Never fails.
func ImageCid(t PropertyType, size int64) string {
	key := fmt.Sprintf("%s-%d", t.Slug(), size)
	if img, ok := PropertyImages[key]; ok {
		return img.Cid
	}
	return DefaultImageCid
}

func IpfsUri(cid string) string {
	return IpfsScheme + cid
}

// GatewayRewrite converts an ipfs:// uri to its HTTP gateway form. A bare
// cid is accepted too.
func GatewayRewrite(uri string) string {
	return GatewayUrl + strings.TrimPrefix(uri, IpfsScheme)
}

// CidOf strips the ipfs scheme from a content-addressed uri.
func CidOf(uri string) string {
	return strings.TrimPrefix(uri, IpfsScheme)
}
