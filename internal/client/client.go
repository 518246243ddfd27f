// Package client 是管理后台与信封前端共用的数据访问层。
// 公共读取在 API 不可用时回退到内置数据；写操作直接返回错误，不回退也不重试。
package client

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"vaultEnvelopes/internal/envelope"
	"vaultEnvelopes/internal/fixtures"
	"vaultEnvelopes/internal/kv"
)

const (
	DefaultBaseURL = "http://localhost:5000/api"
	DefaultTimeout = 5 * time.Second
	// TokenKey 管理员令牌在 KV 中的键。
	TokenKey = "admin_token"
)

// APIError 服务端返回的非 2xx 响应。
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// Unauthorized reports a 401 response.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

type errorBody struct {
	Message string `json:"message"`
}

// Client talks to the REST API.
type Client struct {
	http    *resty.Client
	tokens  kv.Store
	offline bool
	logger  *slog.Logger
	intn    func(n int) int

	localEnvelopes []envelope.Envelope
	localCards     []envelope.TarotCard
}

type Option func(*Client)

// WithOffline 为 true 时公共读取直接使用本地数据。
func WithOffline(offline bool) Option {
	return func(c *Client) { c.offline = offline }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithTokenStore 替换令牌存储，默认使用进程内存。
func WithTokenStore(store kv.Store) Option {
	return func(c *Client) { c.tokens = store }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithFixtures 替换回退数据。
func WithFixtures(envs []envelope.Envelope, cards []envelope.TarotCard) Option {
	return func(c *Client) {
		c.localEnvelopes = envs
		c.localCards = cards
	}
}

// New 创建客户端；baseURL 为空时使用 DefaultBaseURL。
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	envs, err := fixtures.Envelopes()
	if err != nil {
		return nil, fmt.Errorf("load envelope fixture: %w", err)
	}
	cards, err := fixtures.TarotCards()
	if err != nil {
		return nil, fmt.Errorf("load tarot fixture: %w", err)
	}

	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimSuffix(baseURL, "/")).
			SetTimeout(DefaultTimeout).
			SetHeader("Accept", "application/json"),
		tokens:         kv.NewMemory(),
		logger:         slog.Default(),
		intn:           rand.IntN,
		localEnvelopes: envs,
		localCards:     cards,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.OnBeforeRequest(c.attachToken)
	return c, nil
}

func (c *Client) attachToken(_ *resty.Client, req *resty.Request) error {
	token, found, err := c.tokens.Get(req.Context(), TokenKey)
	if err != nil {
		return fmt.Errorf("read admin token: %w", err)
	}
	if found && len(token) > 0 {
		req.SetAuthToken(string(token))
	}
	return nil
}

// Token returns the stored admin token, if any.
func (c *Client) Token(ctx context.Context) (string, bool, error) {
	token, found, err := c.tokens.Get(ctx, TokenKey)
	if err != nil || !found {
		return "", false, err
	}
	return string(token), true, nil
}

// send 执行请求并把非 2xx 响应转换为 *APIError。
func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	var apiErr errorBody
	req := c.http.R().SetContext(ctx).SetError(&apiErr)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return &APIError{StatusCode: resp.StatusCode(), Message: apiErr.Message}
	}
	return nil
}
