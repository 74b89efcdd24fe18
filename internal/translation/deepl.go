package translation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/config"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/utils"
)

// ErrNotConfigured est retourné quand aucune clé DeepL n'est définie
var ErrNotConfigured = errors.New("deepl api key not configured")

// DeepL appelle l'API /v2/translate
type DeepL struct {
	client  *http.Client
	baseURL string
	apiKey  string
	retry   utils.RetryOptions
}

type deeplResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

func NewDeepL(cfg config.DeepLConfig, client *http.Client) *DeepL {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &DeepL{
		client:  client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		retry:   utils.OutboundRetryOptions(),
	}
}

func (d *DeepL) Enabled() bool {
	return d.apiKey != ""
}

// Translate traduit text de source vers target (codes ko/ja/en)
func (d *DeepL) Translate(ctx context.Context, text, source, target string) (string, error) {
	if !d.Enabled() {
		return "", ErrNotConfigured
	}
	return utils.WithRetry(ctx, func() (string, error) {
		return d.call(ctx, text, source, target)
	}, d.retry)
}

func (d *DeepL) call(ctx context.Context, text, source, target string) (string, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("source_lang", strings.ToUpper(source))
	form.Set("target_lang", strings.ToUpper(target))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/v2/translate", strings.NewReader(form.Encode()))
	if err != nil {
		return "", utils.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "DeepL-Auth-Key "+d.apiKey)

	started := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		deeplCalls.WithLabelValues("error").Inc()
		return "", err
	}
	defer resp.Body.Close()
	deeplLatency.Observe(time.Since(started).Seconds())

	// 429 : trop de requêtes, 5xx : indisponible. Le reste ne se rejoue pas.
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		deeplCalls.WithLabelValues("retry").Inc()
		return "", fmt.Errorf("deepl: status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		deeplCalls.WithLabelValues("error").Inc()
		return "", utils.Permanent(fmt.Errorf("deepl: status %d", resp.StatusCode))
	}

	var body deeplResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", utils.Permanent(fmt.Errorf("deepl: decode: %w", err))
	}
	if len(body.Translations) == 0 {
		return "", utils.Permanent(errors.New("deepl: empty response"))
	}
	deeplCalls.WithLabelValues("ok").Inc()
	return body.Translations[0].Text, nil
}
