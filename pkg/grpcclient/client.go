// Package grpcclient provides a pooled gRPC client for submitting swap
// transactions to a tranche-dex chain.
package grpcclient

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"cosmossdk.io/math"
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	cryptotypes "github.com/cosmos/cosmos-sdk/crypto/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdktx "github.com/cosmos/cosmos-sdk/types/tx"
	"github.com/cosmos/cosmos-sdk/types/tx/signing"
	authsigning "github.com/cosmos/cosmos-sdk/x/auth/signing"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	swaptypes "github.com/castleswap/tranche-dex/x/swap/types"
)

// Config holds gRPC client configuration
type Config struct {
	GRPCAddr      string
	ChainID       string
	AccountNumber uint64
	GasLimit      uint64
	PoolSize      int           // Connection pool size
	Timeout       time.Duration // Request timeout
	BatchSize     int           // Max messages per batch transaction
}

// DefaultConfig returns defaults suitable for a local node
func DefaultConfig() *Config {
	return &Config{
		GRPCAddr:      "localhost:9090",
		ChainID:       "tranchedex-1",
		AccountNumber: 0,
		GasLimit:      200000,
		PoolSize:      10,
		Timeout:       5 * time.Second,
		BatchSize:     100,
	}
}

// Client broadcasts signed swap transactions over a pool of gRPC
// connections, round-robining between them. Sequences are tracked locally
// so consecutive submissions need no account query in between.
type Client struct {
	config    *Config
	pool      []*grpc.ClientConn
	poolIndex uint64

	// Cached signer info
	privKey  cryptotypes.PrivKey
	pubKey   cryptotypes.PubKey
	address  sdk.AccAddress
	sequence uint64
	seqMu    sync.Mutex

	// Metrics
	txCount      uint64
	successCount uint64
	failCount    uint64
	totalLatency int64

	txConfig client.TxConfig
}

// NewClient creates a pooled client signing with the given hex-encoded
// secp256k1 private key.
func NewClient(config *Config, privKeyHex string, txConfig client.TxConfig) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	privKeyBytes, err := hex.DecodeString(privKeyHex)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	privKey := &secp256k1.PrivKey{Key: privKeyBytes}
	pubKey := privKey.PubKey()

	c := &Client{
		config:   config,
		pool:     make([]*grpc.ClientConn, config.PoolSize),
		privKey:  privKey,
		pubKey:   pubKey,
		address:  sdk.AccAddress(pubKey.Address()),
		txConfig: txConfig,
	}

	for i := 0; i < config.PoolSize; i++ {
		conn, err := grpc.Dial(
			config.GRPCAddr,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(1024*1024*10), // 10MB
				grpc.MaxCallSendMsgSize(1024*1024*10),
			),
		)
		if err != nil {
			return nil, fmt.Errorf("connect to gRPC: %w", err)
		}
		c.pool[i] = conn
	}
	return c, nil
}

// Address returns the signer address
func (c *Client) Address() sdk.AccAddress {
	return c.address
}

// SetSequence seeds the local sequence counter, typically from an account
// query at startup.
func (c *Client) SetSequence(seq uint64) {
	c.seqMu.Lock()
	c.sequence = seq
	c.seqMu.Unlock()
}

// getConn returns a connection from the pool (round-robin)
func (c *Client) getConn() *grpc.ClientConn {
	idx := atomic.AddUint64(&c.poolIndex, 1) % uint64(len(c.pool))
	return c.pool[idx]
}

func (c *Client) nextSequence() uint64 {
	c.seqMu.Lock()
	defer c.seqMu.Unlock()
	seq := c.sequence
	c.sequence++
	return seq
}

// TxResult contains the result of a broadcast
type TxResult struct {
	TxHash  string
	Success bool
	Latency time.Duration
	Error   error
}

// Buy submits a swap buy for an exact base amount.
func (c *Client) Buy(ctx context.Context, poolID string, version uint64, baseOut, maxQuoteIn string) *TxResult {
	return c.broadcast(ctx, &swaptypes.MsgBuy{
		Buyer:      c.address.String(),
		PoolID:     poolID,
		Version:    version,
		BaseOut:    baseOut,
		MaxQuoteIn: maxQuoteIn,
		Recipient:  c.address.String(),
	})
}

// Sell submits a swap sell for an exact quote amount.
func (c *Client) Sell(ctx context.Context, poolID string, version uint64, quoteOut, maxBaseIn string) *TxResult {
	return c.broadcast(ctx, &swaptypes.MsgSell{
		Seller:    c.address.String(),
		PoolID:    poolID,
		Version:   version,
		QuoteOut:  quoteOut,
		MaxBaseIn: maxBaseIn,
		Recipient: c.address.String(),
	})
}

// AddLiquidity submits a liquidity deposit.
func (c *Client) AddLiquidity(ctx context.Context, poolID string, version uint64, baseIn, quoteIn, minLPOut string) *TxResult {
	return c.broadcast(ctx, &swaptypes.MsgAddLiquidity{
		Provider: c.address.String(),
		PoolID:   poolID,
		Version:  version,
		BaseIn:   baseIn,
		QuoteIn:  quoteIn,
		MinLPOut: minLPOut,
	})
}

// Trade is one leg of a batch submission
type Trade struct {
	PoolID  string
	Version uint64
	// Buy when true, otherwise sell.
	Buy    bool
	Amount string
	Limit  string
}

// BatchTrades submits multiple trades in a single transaction.
func (c *Client) BatchTrades(ctx context.Context, trades []Trade) *TxResult {
	if len(trades) == 0 {
		return &TxResult{Error: fmt.Errorf("no trades to submit")}
	}
	if len(trades) > c.config.BatchSize {
		return &TxResult{Error: fmt.Errorf("batch size %d exceeds max %d", len(trades), c.config.BatchSize)}
	}

	msgs := make([]sdk.Msg, len(trades))
	for i, t := range trades {
		if t.Buy {
			msgs[i] = &swaptypes.MsgBuy{
				Buyer:      c.address.String(),
				PoolID:     t.PoolID,
				Version:    t.Version,
				BaseOut:    t.Amount,
				MaxQuoteIn: t.Limit,
				Recipient:  c.address.String(),
			}
		} else {
			msgs[i] = &swaptypes.MsgSell{
				Seller:    c.address.String(),
				PoolID:    t.PoolID,
				Version:   t.Version,
				QuoteOut:  t.Amount,
				MaxBaseIn: t.Limit,
				Recipient: c.address.String(),
			}
		}
	}
	return c.broadcastMsgs(ctx, msgs)
}

func (c *Client) broadcast(ctx context.Context, msg sdk.Msg) *TxResult {
	return c.broadcastMsgs(ctx, []sdk.Msg{msg})
}

func (c *Client) broadcastMsgs(ctx context.Context, msgs []sdk.Msg) *TxResult {
	start := time.Now()
	result := &TxResult{}
	atomic.AddUint64(&c.txCount, 1)

	txBytes, err := c.buildSignedTx(msgs, c.nextSequence())
	if err != nil {
		result.Error = err
		result.Latency = time.Since(start)
		atomic.AddUint64(&c.failCount, 1)
		return result
	}

	txClient := sdktx.NewServiceClient(c.getConn())
	resp, err := txClient.BroadcastTx(ctx, &sdktx.BroadcastTxRequest{
		TxBytes: txBytes,
		Mode:    sdktx.BroadcastMode_BROADCAST_MODE_ASYNC,
	})

	result.Latency = time.Since(start)
	atomic.AddInt64(&c.totalLatency, int64(result.Latency))

	if err != nil {
		result.Error = err
		atomic.AddUint64(&c.failCount, 1)
		return result
	}
	if resp.TxResponse.Code == 0 {
		result.Success = true
		result.TxHash = resp.TxResponse.TxHash
		atomic.AddUint64(&c.successCount, 1)
	} else {
		result.Error = fmt.Errorf("tx failed: %s", resp.TxResponse.RawLog)
		atomic.AddUint64(&c.failCount, 1)
	}
	return result
}

// buildSignedTx builds and signs a transaction in memory
func (c *Client) buildSignedTx(msgs []sdk.Msg, sequence uint64) ([]byte, error) {
	txBuilder := c.txConfig.NewTxBuilder()
	if err := txBuilder.SetMsgs(msgs...); err != nil {
		return nil, err
	}

	fee := sdk.NewCoins(sdk.NewCoin(swaptypes.DenomQuote, math.NewInt(int64(c.config.GasLimit)/100)))
	txBuilder.SetFeeAmount(fee)
	txBuilder.SetGasLimit(c.config.GasLimit * uint64(len(msgs)))

	sigV2 := signing.SignatureV2{
		PubKey: c.pubKey,
		Data: &signing.SingleSignatureData{
			SignMode:  signing.SignMode_SIGN_MODE_DIRECT,
			Signature: nil,
		},
		Sequence: sequence,
	}
	if err := txBuilder.SetSignatures(sigV2); err != nil {
		return nil, err
	}

	signerData := authsigning.SignerData{
		ChainID:       c.config.ChainID,
		AccountNumber: c.config.AccountNumber,
		Sequence:      sequence,
	}
	signBytes, err := authsigning.GetSignBytesAdapter(
		context.Background(),
		c.txConfig.SignModeHandler(),
		signing.SignMode_SIGN_MODE_DIRECT,
		signerData,
		txBuilder.GetTx(),
	)
	if err != nil {
		return nil, err
	}
	signature, err := c.privKey.Sign(signBytes)
	if err != nil {
		return nil, err
	}
	sigV2.Data = &signing.SingleSignatureData{
		SignMode:  signing.SignMode_SIGN_MODE_DIRECT,
		Signature: signature,
	}
	if err := txBuilder.SetSignatures(sigV2); err != nil {
		return nil, err
	}
	return c.txConfig.TxEncoder()(txBuilder.GetTx())
}

// GetMetrics returns current client metrics
func (c *Client) GetMetrics() (txCount, successCount, failCount uint64, avgLatency time.Duration) {
	txCount = atomic.LoadUint64(&c.txCount)
	successCount = atomic.LoadUint64(&c.successCount)
	failCount = atomic.LoadUint64(&c.failCount)
	if successCount > 0 {
		avgLatency = time.Duration(atomic.LoadInt64(&c.totalLatency) / int64(successCount))
	}
	return
}

// ResetMetrics resets all metrics
func (c *Client) ResetMetrics() {
	atomic.StoreUint64(&c.txCount, 0)
	atomic.StoreUint64(&c.successCount, 0)
	atomic.StoreUint64(&c.failCount, 0)
	atomic.StoreInt64(&c.totalLatency, 0)
}

// Close closes all connections in the pool
func (c *Client) Close() error {
	for _, conn := range c.pool {
		if err := conn.Close(); err != nil {
			return err
		}
	}
	return nil
}
