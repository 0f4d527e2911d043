package deedseed

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/deedlabs/deedseed/config"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
)

// NFTDeedMint contract surface: five reads, one payable write, one event,
// eight custom errors.
const nftDeedMintABI = `[
{"type":"function","name":"mintingActive","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
{"type":"function","name":"getRemainingSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"MAX_SUPPLY","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"getMintingPrice","stateMutability":"pure","inputs":[{"name":"propertySize","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"isAddressUsed","stateMutability":"view","inputs":[{"name":"propertyAddress","type":"string"}],"outputs":[{"name":"","type":"bool"}]},
{"type":"function","name":"hasWalletDeed","stateMutability":"view","inputs":[{"name":"wallet","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
{"type":"function","name":"isValidPropertyTypeAndSize","stateMutability":"pure","inputs":[{"name":"propertyType","type":"uint8"},{"name":"propertySize","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
{"type":"function","name":"normalizeAddress","stateMutability":"pure","inputs":[{"name":"propertyAddress","type":"string"}],"outputs":[{"name":"","type":"string"}]},
{"type":"function","name":"mintDeedNFT","stateMutability":"payable","inputs":[{"name":"to","type":"address"},{"name":"propertyAddress","type":"string"},{"name":"propertyType","type":"uint8"},{"name":"propertySize","type":"uint256"},{"name":"legalDescription","type":"string"},{"name":"metadataURI","type":"string"}],"outputs":[]},
{"type":"event","name":"DeedMinted","inputs":[{"name":"to","type":"address","indexed":true},{"name":"tokenId","type":"uint256","indexed":true},{"name":"propertyAddress","type":"string","indexed":false},{"name":"propertyType","type":"uint8","indexed":false},{"name":"propertySize","type":"uint256","indexed":false},{"name":"legalDescription","type":"string","indexed":false}]},
{"type":"error","name":"AddressAlreadyMinted","inputs":[]},
{"type":"error","name":"InsufficientPayment","inputs":[]},
{"type":"error","name":"InvalidAddress","inputs":[]},
{"type":"error","name":"InvalidPropertySize","inputs":[]},
{"type":"error","name":"InvalidPropertyType","inputs":[]},
{"type":"error","name":"MaxSupplyReached","inputs":[]},
{"type":"error","name":"MintingNotActive","inputs":[]},
{"type":"error","name":"WalletAlreadyHasDeed","inputs":[]}
]`

const mintGasLimit = 500000

// TransferTopic is the ERC-721 Transfer event signature; a transfer whose
// first indexed topic is the zero address is the mint signal.
var TransferTopic = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

var deedAbi = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(nftDeedMintABI))
	if err != nil {
		panic(err)
	}
	return parsed
}()

type SubmitMintParams struct {
	To               common.Address
	PropertyAddress  string
	PropertyType     uint8
	PropertySize     int64
	LegalDescription string
	MetadataUri      string
	Value            *big.Int
}

// ChainCli wraps the deployed NFTDeedMint contract. It never re-implements
// contract rules; supply limits and duplicate checks stay on-chain.
type ChainCli struct {
	client         *ethclient.Client
	contract       *bind.BoundContract
	contractAddr   common.Address
	chainId        *big.Int
	signer         *bind.TransactOpts
	receiptTimeout time.Duration
	deployed       bool
}

func NewChainCli(cfg *config.Config) (*ChainCli, error) {
	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, err
	}
	chainId, err := client.ChainID(context.Background())
	if err != nil {
		return nil, err
	}
	if chainId.Int64() != cfg.ChainId {
		log.Warn("rpc chain id differs from configured network", "rpc", chainId.Int64(), "config", cfg.ChainId)
	}

	c := &ChainCli{
		client:         client,
		chainId:        chainId,
		receiptTimeout: cfg.ReceiptTimeout,
	}

	addr, ok := cfg.ContractAddress()
	if ok {
		c.contractAddr = common.HexToAddress(addr)
		c.contract = bind.NewBoundContract(c.contractAddr, deedAbi, client, client, client)
		c.deployed = true
	} else {
		log.Warn("no deed contract deployed for network", "network", cfg.NetworkName())
	}

	if cfg.PrivKeyHex != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivKeyHex, "0x"))
		if err != nil {
			return nil, err
		}
		signer, err := bind.NewKeyedTransactorWithChainID(key, chainId)
		if err != nil {
			return nil, err
		}
		c.signer = signer
	}
	return c, nil
}

func (c *ChainCli) Deployed() bool {
	return c.deployed
}

func (c *ChainCli) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	if !c.deployed {
		return nil, ErrNotDeployed
	}
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...)
	return out, err
}

func (c *ChainCli) IsMintingActive(ctx context.Context) (bool, error) {
	out, err := c.call(ctx, "mintingActive")
	if err != nil {
		return false, err
	}
	return out[0].(bool), nil
}

func (c *ChainCli) GetRemainingSupply(ctx context.Context) (*big.Int, error) {
	out, err := c.call(ctx, "getRemainingSupply")
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

func (c *ChainCli) GetTotalSupply(ctx context.Context) (*big.Int, error) {
	out, err := c.call(ctx, "totalSupply")
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

func (c *ChainCli) IsAddressUsed(ctx context.Context, propertyAddress string) (bool, error) {
	out, err := c.call(ctx, "isAddressUsed", propertyAddress)
	if err != nil {
		return false, err
	}
	return out[0].(bool), nil
}

func (c *ChainCli) HasWalletDeed(ctx context.Context, wallet common.Address) (bool, error) {
	out, err := c.call(ctx, "hasWalletDeed", wallet)
	if err != nil {
		return false, err
	}
	return out[0].(bool), nil
}

func (c *ChainCli) GetMintingPrice(ctx context.Context, size int64) (*big.Int, error) {
	out, err := c.call(ctx, "getMintingPrice", big.NewInt(size))
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// SubmitMint broadcasts the payable mint call and returns the pending
// transaction hash. Failures here are pre-broadcast: no hash exists yet.
func (c *ChainCli) SubmitMint(ctx context.Context, p SubmitMintParams) (common.Hash, error) {
	if !c.deployed {
		return common.Hash{}, ErrNotDeployed
	}
	if c.signer == nil {
		return common.Hash{}, ErrNoSigner
	}
	opts := *c.signer
	opts.Context = ctx
	opts.Value = p.Value
	opts.GasLimit = mintGasLimit

	tx, err := c.contract.Transact(&opts, "mintDeedNFT",
		p.To, p.PropertyAddress, p.PropertyType, big.NewInt(p.PropertySize), p.LegalDescription, p.MetadataUri)
	if err != nil {
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}

// AwaitReceipt polls for the mined receipt until the configured timeout.
// A broadcast transaction cannot be cancelled, so the timeout only stops
// the wait, never the transaction.
func (c *ChainCli) AwaitReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, c.receiptTimeout)
	defer cancel()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		receipt, err := c.client.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) && !errors.Is(err, context.DeadlineExceeded) {
			log.Warn("fetch receipt", "err", err, "txHash", txHash.Hex())
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrReceiptTimeout
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// EthToWei converts a decimal ETH amount to wei exactly. Binary floats
// would risk underpayment reverts on the payable mint.
func EthToWei(eth decimal.Decimal) *big.Int {
	return eth.Shift(18).BigInt()
}

// ExtractTokenId scans receipt logs for a zero-from Transfer and decodes
// the new token id from the fourth topic.
func ExtractTokenId(receipt *types.Receipt) (int64, bool) {
	for _, lg := range receipt.Logs {
		if len(lg.Topics) < 4 {
			continue
		}
		if lg.Topics[0] != TransferTopic || lg.Topics[1] != (common.Hash{}) {
			continue
		}
		return new(big.Int).SetBytes(lg.Topics[3].Bytes()).Int64(), true
	}
	return 0, false
}
