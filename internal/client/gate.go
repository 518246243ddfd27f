package client

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"vaultEnvelopes/internal/envelope"
)

// State 解锁门的状态。
type State int

const (
	Locked State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "locked"
}

// PasswordVerifier checks a candidate password for one envelope.
type PasswordVerifier interface {
	Verify(ctx context.Context, envelopeID, candidate string) (bool, error)
}

// LocalVerifier 与已取得的信封逐字节比较。
type LocalVerifier struct {
	Envelope envelope.Envelope
}

func (v LocalVerifier) Verify(_ context.Context, envelopeID, candidate string) (bool, error) {
	return v.Envelope.ID == envelopeID && v.Envelope.PasswordMatches(candidate), nil
}

// RemoteVerifier 调用 verify-password 接口。
type RemoteVerifier struct {
	Client *Client
}

func (v RemoteVerifier) Verify(ctx context.Context, envelopeID, candidate string) (bool, error) {
	var res struct {
		Valid bool `json:"valid"`
	}
	path := "/envelopes/" + url.PathEscape(envelopeID) + "/verify-password"
	if err := v.Client.send(ctx, http.MethodPost, path, map[string]string{"password": candidate}, &res); err != nil {
		return false, err
	}
	return res.Valid, nil
}

// Gate 口令门：校验通过后打开，关闭后需要重新校验。不记录失败次数。
type Gate struct {
	mu         sync.Mutex
	envelopeID string
	verifier   PasswordVerifier
	state      State
}

func NewGate(envelopeID string, verifier PasswordVerifier) *Gate {
	return &Gate{envelopeID: envelopeID, verifier: verifier, state: Locked}
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Submit 每次都重新校验。只有 Close 会让门从打开回到锁定；
// 校验失败或出错都不改变当前状态，错误原样返回。
func (g *Gate) Submit(ctx context.Context, candidate string) (bool, error) {
	ok, err := g.verifier.Verify(ctx, g.envelopeID, candidate)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	g.mu.Lock()
	g.state = Open
	g.mu.Unlock()
	return true, nil
}

func (g *Gate) Close() {
	g.mu.Lock()
	g.state = Locked
	g.mu.Unlock()
}
