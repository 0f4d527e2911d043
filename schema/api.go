package schema

const (
	// SubmitMaxSize caps pin passthrough payloads.
	SubmitMaxSize = 25 * 1024 * 1024 // 25 MB
)

type RespErr struct {
	Err string `json:"error"`
}

func (r RespErr) Error() string {
	return r.Err
}

// RespPin is the pinning gateway response, normalized.
type RespPin struct {
	ContentId string `json:"ipfsHash"`
	SizeBytes int64  `json:"pinSize"`
	Timestamp string `json:"timestamp"`
	Uri       string `json:"uri"` // ipfs://<ContentId>
}

type RespSession struct {
	Id       string   `json:"id"`
	Wallet   string   `json:"wallet"`
	Step     FormStep `json:"step"`
	Title    string   `json:"title"`
	Form     DeedForm `json:"form"`
	PriceEth string   `json:"priceEth,omitempty"`
}

type RespEligibility struct {
	Deployed        bool     `json:"deployed"`
	MintingActive   bool     `json:"mintingActive"`
	AddressUsed     bool     `json:"addressUsed"`
	WalletHasDeed   bool     `json:"walletHasDeed"`
	RemainingSupply string   `json:"remainingSupply"`
	Eligible        bool     `json:"eligible"`
	Reasons         []string `json:"reasons,omitempty"`
}

type RespAttempt struct {
	Id          string      `json:"id"`
	Status      MintStatus  `json:"status"`
	Label       string      `json:"label"`
	MetadataUri string      `json:"metadataUri,omitempty"`
	TxHash      string      `json:"txHash,omitempty"`
	Result      *MintResult `json:"result,omitempty"`
}

type RespPrice struct {
	Size     int64  `json:"size"`
	PriceEth string `json:"priceEth"`
	PriceWei string `json:"priceWei"`
}

type RespSupply struct {
	MintingActive   bool   `json:"mintingActive"`
	RemainingSupply string `json:"remainingSupply"`
	UpdatedAt       int64  `json:"updatedAt"`
}
