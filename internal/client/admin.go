package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"vaultEnvelopes/internal/envelope"
)

// AdminInfo 登录返回的管理员信息。
type AdminInfo struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// LoginResult 登录响应。
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresIn string    `json:"expiresIn"`
	Admin     AdminInfo `json:"admin"`
}

// UploadResult 上传后媒体托管返回的地址。
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// File 待上传文件。ContentType 为空时由服务端识别。
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

type messageResponse struct {
	Message string `json:"message"`
}

// Login 登录成功后把令牌写入 KV。
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var res LoginResult
	body := map[string]string{"username": username, "password": password}
	if err := c.send(ctx, http.MethodPost, "/auth/login", body, &res); err != nil {
		return LoginResult{}, err
	}
	if res.Token != "" {
		if err := c.tokens.Set(ctx, TokenKey, []byte(res.Token)); err != nil {
			return LoginResult{}, fmt.Errorf("store admin token: %w", err)
		}
	}
	return res, nil
}

// VerifyToken 任何错误都视为令牌无效。
func (c *Client) VerifyToken(ctx context.Context) bool {
	var res struct {
		Valid bool `json:"valid"`
	}
	if err := c.send(ctx, http.MethodGet, "/auth/verify", nil, &res); err != nil {
		return false
	}
	return res.Valid
}

func (c *Client) Logout(ctx context.Context) error {
	return c.tokens.Delete(ctx, TokenKey)
}

// CreateEnvelope body 可以是 envelope.Envelope 或只含部分字段的 map。
func (c *Client) CreateEnvelope(ctx context.Context, body any) (envelope.Envelope, error) {
	var env envelope.Envelope
	err := c.send(ctx, http.MethodPost, "/envelopes", body, &env)
	return env, err
}

// UpdateEnvelope 以 merge patch 语义更新，未出现的字段保持不变。
func (c *Client) UpdateEnvelope(ctx context.Context, id string, patch any) (envelope.Envelope, error) {
	var env envelope.Envelope
	err := c.send(ctx, http.MethodPut, "/envelopes/"+url.PathEscape(id), patch, &env)
	return env, err
}

func (c *Client) DeleteEnvelope(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/envelopes/"+url.PathEscape(id), nil, &messageResponse{})
}

func (c *Client) UpdateTarotCard(ctx context.Context, id string, patch any) (envelope.TarotCard, error) {
	var card envelope.TarotCard
	err := c.send(ctx, http.MethodPut, "/tarot/"+url.PathEscape(id), patch, &card)
	return card, err
}

func (c *Client) UploadMusic(ctx context.Context, envelopeID string, file File) (UploadResult, error) {
	return c.upload(ctx, "/upload/music/"+url.PathEscape(envelopeID), "music", file)
}

func (c *Client) UploadMemory(ctx context.Context, envelopeID string, file File) (UploadResult, error) {
	return c.upload(ctx, "/upload/memory/"+url.PathEscape(envelopeID), "image", file)
}

func (c *Client) UploadStamp(ctx context.Context, envelopeID string, file File) (UploadResult, error) {
	return c.upload(ctx, "/upload/stamp/"+url.PathEscape(envelopeID), "stamp", file)
}

func (c *Client) UploadTarotImage(ctx context.Context, cardID string, file File) (UploadResult, error) {
	return c.upload(ctx, "/upload/tarot/"+url.PathEscape(cardID), "image", file)
}

// DeleteMemory 从 memories 页面移除图片。
func (c *Client) DeleteMemory(ctx context.Context, envelopeID, imageURL string) error {
	body := map[string]string{"imageUrl": imageURL}
	return c.send(ctx, http.MethodDelete, "/upload/memory/"+url.PathEscape(envelopeID), body, &messageResponse{})
}

func (c *Client) upload(ctx context.Context, path, field string, file File) (UploadResult, error) {
	var (
		res    UploadResult
		apiErr errorBody
	)
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetMultipartField(field, file.Name, contentType, file.Body).
		SetResult(&res).
		SetError(&apiErr).
		Post(path)
	if err != nil {
		return UploadResult{}, fmt.Errorf("POST %s: %w", path, err)
	}
	if resp.IsError() {
		return UploadResult{}, &APIError{StatusCode: resp.StatusCode(), Message: apiErr.Message}
	}
	return res, nil
}
