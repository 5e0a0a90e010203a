package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Player renders synthesized audio and returns when playback finishes.
type Player interface {
	Play(audio []byte) error
}

// FilePlayer drops the audio into a cache file, the way the app wrote
// speech.mp3 before handing it to the system player.
type FilePlayer struct {
	Dir string
}

func (p FilePlayer) Play(audio []byte) error {
	dir := p.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	return os.WriteFile(filepath.Join(dir, "speech.mp3"), audio, 0o644)
}

// Client streams text through an ElevenLabs-style synthesis endpoint.
type Client struct {
	baseURL string
	apiKey  string
	voiceID string
	player  Player
	client  *http.Client
}

func NewClient(baseURL, apiKey, voiceID string, player Player) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		voiceID: voiceID,
		player:  player,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Speak synthesizes text and blocks until playback completes.
func (c *Client) Speak(ctx context.Context, text string) error {
	payload, err := json.Marshal(synthesisRequest{
		Text:    text,
		ModelID: "eleven_multilingual_v2",
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
		},
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s/stream", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("speech provider returned status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return c.player.Play(audio)
}
