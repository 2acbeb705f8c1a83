// Package mempoolspace implements the mempool feed ports against mempool.space.
package mempoolspace

import (
	"encoding/json"
	"fmt"

	"github.com/fd1az/mempool-block/business/mempool/domain"
)

// Push channel topics.
const (
	TopicBlocks        = "blocks"
	TopicMempoolBlocks = "mempool-blocks"
)

// WantRequest subscribes to push topics. Sent after every (re)connect.
type WantRequest struct {
	Action string   `json:"action"`
	Data   []string `json:"data"`
}

// NewWantRequest subscribes to confirmed blocks and projected blocks.
func NewWantRequest() WantRequest {
	return WantRequest{Action: "want", Data: []string{TopicBlocks, TopicMempoolBlocks}}
}

type blockHeader struct {
	Height int64 `json:"height"`
}

// pushFrame covers the fields read from a push frame; mempool.space sends many more.
type pushFrame struct {
	Blocks        []blockHeader     `json:"blocks"`
	Block         *blockHeader      `json:"block"`
	MempoolBlocks []domain.RawBlock `json:"mempool-blocks"`
}

// DecodeFrame parses a push frame. Frames without relevant fields decode to an empty message.
func DecodeFrame(data []byte) (domain.FeedMessage, error) {
	var frame pushFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return domain.FeedMessage{}, fmt.Errorf("decode push frame: %w", err)
	}

	var msg domain.FeedMessage
	for _, b := range frame.Blocks {
		if b.Height > 0 {
			msg.Baseline = append(msg.Baseline, b.Height)
		}
	}
	if frame.Block != nil && frame.Block.Height > 0 {
		msg.Confirmed = frame.Block.Height
	}
	if len(frame.MempoolBlocks) > 0 {
		first := frame.MempoolBlocks[0]
		msg.Candidate = &first
	}
	return msg, nil
}
