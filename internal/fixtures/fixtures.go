// Package fixtures 提供内置的示例信封与塔罗牌数据，用于数据初始化和离线回退。
package fixtures

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"vaultEnvelopes/internal/envelope"
)

var (
	//go:embed data/envelopes.json
	envelopesJSON []byte

	//go:embed data/tarotCards.json
	tarotCardsJSON []byte
)

// Envelopes returns the embedded envelope fixture.
func Envelopes() ([]envelope.Envelope, error) {
	return ParseEnvelopes(envelopesJSON)
}

// TarotCards returns the embedded tarot fixture in file order.
func TarotCards() ([]envelope.TarotCard, error) {
	return ParseTarotCards(tarotCardsJSON)
}

// LoadEnvelopes 读取 path 指定的信封数组文件，path 为空时使用内置数据。
func LoadEnvelopes(path string) ([]envelope.Envelope, error) {
	if path == "" {
		return Envelopes()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read envelopes fixture: %w", err)
	}
	return ParseEnvelopes(data)
}

// LoadTarotCards 读取以 id 为键的塔罗牌文件，path 为空时使用内置数据。
func LoadTarotCards(path string) ([]envelope.TarotCard, error) {
	if path == "" {
		return TarotCards()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tarot fixture: %w", err)
	}
	return ParseTarotCards(data)
}

// ParseEnvelopes decodes an envelope array, applies defaults and validates every entry.
func ParseEnvelopes(data []byte) ([]envelope.Envelope, error) {
	var envs []envelope.Envelope
	if err := json.Unmarshal(data, &envs); err != nil {
		return nil, fmt.Errorf("decode envelopes: %w", err)
	}
	seen := make(map[string]struct{}, len(envs))
	for i := range envs {
		envs[i].ApplyDefaults()
		if err := envs[i].Validate(); err != nil {
			return nil, fmt.Errorf("envelope %d (%s): %w", i, envs[i].ID, err)
		}
		if _, dup := seen[envs[i].ID]; dup {
			return nil, fmt.Errorf("envelope %d: duplicate id %q", i, envs[i].ID)
		}
		seen[envs[i].ID] = struct{}{}
	}
	return envs, nil
}

// ParseTarotCards decodes an object keyed by card id. Keys fill in a missing id.
func ParseTarotCards(data []byte) ([]envelope.TarotCard, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode tarot cards: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("decode tarot cards: expected an object keyed by card id")
	}

	var cards []envelope.TarotCard
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode tarot cards: %w", err)
		}
		key, _ := keyTok.(string)

		var card envelope.TarotCard
		if err := dec.Decode(&card); err != nil {
			return nil, fmt.Errorf("decode tarot card %q: %w", key, err)
		}
		if card.ID == "" {
			card.ID = key
		}
		if err := card.Validate(); err != nil {
			return nil, fmt.Errorf("tarot card %q: %w", key, err)
		}
		cards = append(cards, card)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode tarot cards: %w", err)
	}
	return cards, nil
}
