package deedseed

import (
	"fmt"
	"strings"
	"time"

	"github.com/deedlabs/deedseed/schema"
)

const externalUrl = "https://nft-deed-mint.vercel.app"

// BuildMetadata derives the pinned metadata document from a validated form.
// Pure, no I/O, never fails: an unknown type+size pair falls back to the
// default placeholder image. The name embeds the attempt's wall-clock
// timestamp, so two builds of the same form yield different names.
func BuildMetadata(form schema.DeedForm, wallet string, now time.Time) schema.MintMetadata {
	price := form.Price()

	imageIpfs := schema.IpfsUri(schema.ImageCid(form.PropertyType, form.PropertySize))
	imageHttp := schema.GatewayRewrite(imageIpfs)

	label := form.PropertyType.Label()
	return schema.MintMetadata{
		Name:        fmt.Sprintf("Property Deed NFT #%d", now.UnixMilli()),
		Description: fmt.Sprintf("A digital deed for %s property at %s", strings.ToLower(label), form.PropertyAddress),
		Image:       imageHttp,
		ImageIpfs:   imageIpfs,
		ExternalUrl: externalUrl,
		Attributes: []schema.MetaAttribute{
			{TraitType: "Property Type", Value: label},
			{TraitType: "Size", Value: fmt.Sprintf("%dm²", form.PropertySize)},
			{TraitType: "Address", Value: form.PropertyAddress},
			{TraitType: "Minting Price", Value: price.String() + " ETH"},
			{TraitType: "Minted By", Value: wallet},
			{TraitType: "Mint Date", Value: now.UTC().Format(time.RFC3339)},
		},
		Properties: schema.MetaProperties{
			PropertyType:     form.PropertyType.ChainEnum(),
			PropertySize:     form.PropertySize,
			PropertyAddress:  form.PropertyAddress,
			LegalDescription: form.LegalDescription,
			MintingPrice:     price.String(),
			MinterAddress:    wallet,
			MintTimestamp:    now.UnixMilli(),
		},
		BackgroundColor: "ffffff",
	}
}
