package network

import "context"

// MockIndexer is a test double for Indexer.
// All function fields must be set before the corresponding method is called.
type MockIndexer struct {
	BalanceFn     func(ctx context.Context, address string) (*Balance, error)
	ListUnspentFn func(ctx context.Context, address string) ([]*UTXO, error)
	GetRawTxFn    func(ctx context.Context, txid string) ([]byte, error)
	BroadcastTxFn func(ctx context.Context, rawTxHex string) (string, error)
}

func (m *MockIndexer) Balance(ctx context.Context, address string) (*Balance, error) {
	return m.BalanceFn(ctx, address)
}
func (m *MockIndexer) ListUnspent(ctx context.Context, address string) ([]*UTXO, error) {
	return m.ListUnspentFn(ctx, address)
}
func (m *MockIndexer) GetRawTx(ctx context.Context, txid string) ([]byte, error) {
	return m.GetRawTxFn(ctx, txid)
}
func (m *MockIndexer) BroadcastTx(ctx context.Context, rawTxHex string) (string, error) {
	return m.BroadcastTxFn(ctx, rawTxHex)
}
