package chain

import (
	"context"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// TransactionRecord is the balance-level view of a confirmed transaction:
// everything the verifier needs and nothing else.
type TransactionRecord struct {
	AccountKeys  []solana.PublicKey
	PreBalances  []uint64
	PostBalances []uint64
	Fee          uint64
}

// TransactionFetcher fetches a confirmed transaction by signature.
// A nil record with a nil error means the transaction was not found, which
// callers should treat as retryable: chain confirmation latency is expected.
type TransactionFetcher interface {
	FetchTransaction(ctx context.Context, sig solana.Signature) (*TransactionRecord, error)
}

// RPCFetcher adapts a Solana JSON-RPC client to TransactionFetcher.
type RPCFetcher struct {
	client     *rpc.Client
	commitment rpc.CommitmentType
}

// NewRPCFetcher creates a fetcher with its own RPC client for the given
// endpoint, reading at confirmed commitment.
func NewRPCFetcher(rpcURL string) *RPCFetcher {
	return NewRPCFetcherWithClient(rpc.New(rpcURL), rpc.CommitmentConfirmed)
}

// NewRPCFetcherWithClient creates a fetcher on an existing client.
func NewRPCFetcherWithClient(client *rpc.Client, commitment rpc.CommitmentType) *RPCFetcher {
	return &RPCFetcher{client: client, commitment: commitment}
}

// FetchTransaction retrieves the transaction and flattens it to a record.
func (f *RPCFetcher) FetchTransaction(ctx context.Context, sig solana.Signature) (*TransactionRecord, error) {
	maxVersion := uint64(0)
	out, err := f.client.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     f.commitment,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("chain: get transaction: %w", err)
	}
	if out == nil || out.Meta == nil || out.Transaction == nil {
		return nil, nil
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(out.Transaction.GetBinary()))
	if err != nil {
		return nil, fmt.Errorf("chain: decode transaction: %w", err)
	}

	return &TransactionRecord{
		AccountKeys:  tx.Message.AccountKeys,
		PreBalances:  out.Meta.PreBalances,
		PostBalances: out.Meta.PostBalances,
		Fee:          out.Meta.Fee,
	}, nil
}

var _ TransactionFetcher = (*RPCFetcher)(nil)
