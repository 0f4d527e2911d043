package schema

// MintMetadata is the ERC-721 style metadata document pinned for each deed.
// Field names follow the marketplace-standard JSON layout.
type MintMetadata struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Image           string          `json:"image"`      // gateway URL, wallet friendly
	ImageIpfs       string          `json:"image_ipfs"` // original ipfs:// reference
	ExternalUrl     string          `json:"external_url"`
	Attributes      []MetaAttribute `json:"attributes"`
	Properties      MetaProperties  `json:"properties"`
	AnimationUrl    string          `json:"animation_url"`
	YoutubeUrl      string          `json:"youtube_url"`
	BackgroundColor string          `json:"background_color"`
}

type MetaAttribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

type MetaProperties struct {
	PropertyType     uint8  `json:"property_type"`
	PropertySize     int64  `json:"property_size"`
	PropertyAddress  string `json:"property_address"`
	LegalDescription string `json:"legal_description"`
	MintingPrice     string `json:"minting_price"` // ETH, decimal string
	MinterAddress    string `json:"minter_address"`
	MintTimestamp    int64  `json:"mint_timestamp"` // unix milliseconds
}
