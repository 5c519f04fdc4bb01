package managers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"microblog/internal/config"
)

var (
	ErrTranslationNotConfigured = errors.New("translation service is not configured")
	ErrTranslationFailed        = errors.New("translation service failed")
)

type TranslationMgr interface {
	Translate(ctx context.Context, text, sourceLanguage, destLanguage string) (string, error)
}

// TranslationManager talks to the Microsoft Translator v3 REST API.
type TranslationManager struct {
	baseURL    string
	key        string
	region     string
	httpClient *http.Client
}

func NewTranslationManager(cfg config.TranslatorConfig) TranslationMgr {
	log.Info("Initializing translation manager")
	if cfg.Key == "" {
		log.Warn("MS_TRANSLATOR_KEY is not set, translations are disabled")
	}
	return &TranslationManager{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		key:        cfg.Key,
		region:     cfg.Region,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type translateText struct {
	Text string `json:"Text"`
}

type translateResult struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

// checkResp returns an error if the status is not 2xx. The upstream body is included for debugging.
func checkResp(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("translator returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

// Translate translates text into destLanguage. An empty sourceLanguage lets the service detect it.
func (tm *TranslationManager) Translate(ctx context.Context, text, sourceLanguage, destLanguage string) (string, error) {
	if tm.key == "" {
		return "", ErrTranslationNotConfigured
	}

	query := url.Values{}
	query.Set("api-version", "3.0")
	query.Set("to", destLanguage)
	if sourceLanguage != "" {
		query.Set("from", sourceLanguage)
	}

	payload, err := json.Marshal([]translateText{{Text: text}})
	if err != nil {
		return "", errors.Wrap(ErrTranslationFailed, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tm.baseURL+"/translate?"+query.Encode(), bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(ErrTranslationFailed, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", tm.key)
	if tm.region != "" {
		req.Header.Set("Ocp-Apim-Subscription-Region", tm.region)
	}

	start := time.Now()
	resp, err := tm.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("Translator request failed")
		return "", errors.Wrap(ErrTranslationFailed, err.Error())
	}
	defer resp.Body.Close()

	if err := checkResp(resp); err != nil {
		log.WithError(err).Warn("Translator rejected request")
		return "", errors.Wrap(ErrTranslationFailed, err.Error())
	}

	var results []translateResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", errors.Wrap(ErrTranslationFailed, "decode: "+err.Error())
	}
	if len(results) == 0 || len(results[0].Translations) == 0 {
		return "", errors.Wrap(ErrTranslationFailed, "empty translation")
	}

	log.WithFields(log.Fields{"to": destLanguage, "duration": time.Since(start)}).Debug("Translated text")
	return results[0].Translations[0].Text, nil
}
