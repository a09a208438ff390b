package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/sbcapp/tictactoe-chain/backend/internal/domain"
)

// The slice of the stake contract's ABI the server needs: the VRF word
// getter used for turn ordering, plus the lifecycle events relayed to
// connected clients.
const contractABI = `[
	{"type":"function","name":"getRandomWords","stateMutability":"view","inputs":[{"name":"gameId","type":"uint256"}],"outputs":[{"name":"","type":"uint256[2]"}]},
	{"type":"event","name":"GameJoined","anonymous":false,"inputs":[{"name":"gameId","type":"uint256","indexed":false},{"name":"player2","type":"address","indexed":false}]},
	{"type":"event","name":"GameEnded","anonymous":false,"inputs":[{"name":"gameId","type":"uint256","indexed":false},{"name":"winner","type":"address","indexed":false},{"name":"reward","type":"uint256","indexed":false}]},
	{"type":"event","name":"GameCancelled","anonymous":false,"inputs":[{"name":"gameId","type":"uint256","indexed":false}]}
]`

// Client reads from the stake escrow contract over a websocket RPC
// endpoint. It never writes to the chain; stake movement is strictly
// between the players and the contract.
type Client struct {
	eth      *ethclient.Client
	abi      abi.ABI
	contract common.Address
}

func Dial(ctx context.Context, rpcURL, contractAddr string) (*Client, error) {
	parsed, err := abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %v", err)
	}

	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial chain RPC: %v", err)
	}

	return &Client{
		eth:      eth,
		abi:      parsed,
		contract: common.HexToAddress(contractAddr),
	}, nil
}

func (c *Client) Close() {
	c.eth.Close()
}

// GetTurnSeeds calls getRandomWords(gameId) and returns the two VRF
// words recorded for the game. The game identifier is the stringified
// uint256 the client obtained when creating the escrow.
func (c *Client) GetTurnSeeds(ctx context.Context, gameID string) (*big.Int, *big.Int, error) {
	id, ok := new(big.Int).SetString(gameID, 10)
	if !ok {
		return nil, nil, domain.ErrInvalidGameID
	}

	data, err := c.abi.Pack("getRandomWords", id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to pack getRandomWords call: %v", err)
	}

	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &c.contract, Data: data}, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("getRandomWords call failed: %v", err)
	}

	results, err := c.abi.Unpack("getRandomWords", out)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to unpack getRandomWords result: %v", err)
	}

	words, ok := results[0].([2]*big.Int)
	if !ok || words[0] == nil || words[1] == nil {
		return nil, nil, domain.ErrSeedsShortfall
	}

	return words[0], words[1], nil
}
