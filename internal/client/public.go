package client

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"slices"

	"vaultEnvelopes/internal/envelope"
)

// FetchEnvelopes 读取全部信封，失败时回退到本地数据。
func (c *Client) FetchEnvelopes(ctx context.Context) ([]envelope.Envelope, error) {
	if c.offline {
		return slices.Clone(c.localEnvelopes), nil
	}
	var envs []envelope.Envelope
	if err := c.send(ctx, http.MethodGet, "/envelopes", nil, &envs); err != nil {
		c.logger.Warn("api unavailable, using local envelope data", slog.Any("error", err))
		return slices.Clone(c.localEnvelopes), nil
	}
	return envs, nil
}

// FetchEnvelope 返回指定信封，本地数据中也不存在时返回 nil。
func (c *Client) FetchEnvelope(ctx context.Context, id string) (*envelope.Envelope, error) {
	if !c.offline {
		var env envelope.Envelope
		err := c.send(ctx, http.MethodGet, "/envelopes/"+url.PathEscape(id), nil, &env)
		if err == nil {
			return &env, nil
		}
		c.logger.Warn("api unavailable, using local envelope data",
			slog.String("envelope_id", id),
			slog.Any("error", err),
		)
	}
	return c.localEnvelope(id), nil
}

func (c *Client) localEnvelope(id string) *envelope.Envelope {
	for _, env := range c.localEnvelopes {
		if env.ID == id {
			found := env
			return &found
		}
	}
	return nil
}

// FetchTarotCards 读取塔罗牌目录，失败时回退到本地数据。
func (c *Client) FetchTarotCards(ctx context.Context) ([]envelope.TarotCard, error) {
	if c.offline {
		return slices.Clone(c.localCards), nil
	}
	var cards []envelope.TarotCard
	if err := c.send(ctx, http.MethodGet, "/tarot", nil, &cards); err != nil {
		c.logger.Warn("api unavailable, using local tarot data", slog.Any("error", err))
		return slices.Clone(c.localCards), nil
	}
	return cards, nil
}

// FetchRandomTarotCard 随机抽一张牌；本地目录也为空时返回 nil。
func (c *Client) FetchRandomTarotCard(ctx context.Context) (*envelope.TarotCard, error) {
	if !c.offline {
		var card envelope.TarotCard
		err := c.send(ctx, http.MethodGet, "/tarot/random/pick", nil, &card)
		if err == nil {
			return &card, nil
		}
		c.logger.Warn("api unavailable, picking random local tarot card", slog.Any("error", err))
	}
	if len(c.localCards) == 0 {
		return nil, nil
	}
	card := c.localCards[c.intn(len(c.localCards))]
	return &card, nil
}

// VerifyPassword 在本地比较口令，信封数据来自 FetchEnvelope。未知信封返回 false。
func (c *Client) VerifyPassword(ctx context.Context, envelopeID, password string) (bool, error) {
	env, err := c.FetchEnvelope(ctx, envelopeID)
	if err != nil {
		return false, err
	}
	return env != nil && env.PasswordMatches(password), nil
}
