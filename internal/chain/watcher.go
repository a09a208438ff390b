package chain

import (
	"context"
	"log"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/sbcapp/tictactoe-chain/backend/internal/domain"
)

// Broadcaster fans a message out to every connected client.
type Broadcaster interface {
	Broadcast(message domain.ServerMessage)
}

const resubscribeDelay = 5 * time.Second

// WatchEvents subscribes to the contract's logs and relays game
// lifecycle events to all connected clients. The subscription is
// re-established after errors until the context is cancelled. Blocks;
// run it in its own goroutine.
func (c *Client) WatchEvents(ctx context.Context, out Broadcaster) {
	for {
		if err := c.watchOnce(ctx, out); err != nil {
			log.Printf("[CHAIN] Event subscription lost: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(resubscribeDelay):
		}
	}
}

func (c *Client) watchOnce(ctx context.Context, out Broadcaster) error {
	logs := make(chan types.Log, 16)
	query := ethereum.FilterQuery{Addresses: []common.Address{c.contract}}

	sub, err := c.eth.SubscribeFilterLogs(ctx, query, logs)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	log.Println("[CHAIN] Subscribed to contract events")

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-sub.Err():
			return err
		case vLog := <-logs:
			c.relayLog(vLog, out)
		}
	}
}

// relayLog decodes a contract log and broadcasts the matching message.
// Unknown events are ignored.
func (c *Client) relayLog(vLog types.Log, out Broadcaster) {
	if len(vLog.Topics) == 0 {
		return
	}

	switch vLog.Topics[0] {
	case c.abi.Events["GameJoined"].ID:
		values, err := c.abi.Unpack("GameJoined", vLog.Data)
		if err != nil {
			log.Printf("[CHAIN] Failed to decode GameJoined: %v", err)
			return
		}
		out.Broadcast(domain.ServerMessage{
			Method:  "gameJoined",
			GameID:  values[0].(*big.Int).String(),
			Player2: values[1].(common.Address).Hex(),
		})

	case c.abi.Events["GameEnded"].ID:
		values, err := c.abi.Unpack("GameEnded", vLog.Data)
		if err != nil {
			log.Printf("[CHAIN] Failed to decode GameEnded: %v", err)
			return
		}
		out.Broadcast(domain.ServerMessage{
			Method: "gameEnded",
			GameID: values[0].(*big.Int).String(),
			Winner: values[1].(common.Address).Hex(),
			Reward: values[2].(*big.Int).String(),
		})

	case c.abi.Events["GameCancelled"].ID:
		values, err := c.abi.Unpack("GameCancelled", vLog.Data)
		if err != nil {
			log.Printf("[CHAIN] Failed to decode GameCancelled: %v", err)
			return
		}
		out.Broadcast(domain.ServerMessage{
			Method: "gameCancelled",
			GameID: values[0].(*big.Int).String(),
		})
	}
}
