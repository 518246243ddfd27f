package api

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
)

// 普通 JSON 请求体上限。
const maxJSONBodyBytes = 2 << 20

// readJSONObject 读取请求体并确认其为 JSON 对象，否则返回 400。
func readJSONObject(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxJSONBodyBytes+1))
	if err != nil {
		BadRequest(c, "Unable to read request body")
		return nil, false
	}
	if len(body) > maxJSONBodyBytes {
		BadRequest(c, "Request body too large")
		return nil, false
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		BadRequest(c, "Malformed JSON body")
		return nil, false
	}
	return trimmed, true
}

// idFromBody 取出请求体中的 id 字段，缺失或类型不符时返回空串。
func idFromBody(body []byte) string {
	var idOnly struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &idOnly); err != nil {
		return ""
	}
	return strings.TrimSpace(idOnly.ID)
}
