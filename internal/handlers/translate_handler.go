package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"microblog/internal/managers"
	"microblog/internal/metrics"
	"microblog/internal/schemas"
	"microblog/internal/utils"
)

const (
	translationNotConfiguredText = "Error: the translation service is not configured."
	translationFailedText        = "Error: the translation service failed."
)

type TranslateHdl interface {
	Translate(c *gin.Context)
}

type TranslateHandler struct {
	TranslationManager managers.TranslationMgr
	Metrics            *metrics.Metrics
}

func NewTranslateHandler(translationManager managers.TranslationMgr, m *metrics.Metrics) TranslateHdl {
	return &TranslateHandler{
		TranslationManager: translationManager,
		Metrics:            m,
	}
}

// Translate answers with the translated text. Service failures are reported in the text itself,
// with status 200, so the page can show them in place of the translation.
func (handler *TranslateHandler) Translate(c *gin.Context) {
	translateRequest := utils.Payload[schemas.TranslateRequest](c)

	text, err := handler.TranslationManager.Translate(c, translateRequest.Text, translateRequest.SourceLanguage, translateRequest.DestLanguage)
	switch {
	case errors.Is(err, managers.ErrTranslationNotConfigured):
		handler.Metrics.Translations.WithLabelValues("not_configured").Inc()
		text = translationNotConfiguredText
	case err != nil:
		utils.LogMessageWithFieldsAndError(c, "warn", "Translation failed", err)
		handler.Metrics.Translations.WithLabelValues("failed").Inc()
		text = translationFailedText
	default:
		handler.Metrics.Translations.WithLabelValues("success").Inc()
	}

	utils.WriteAndLogResponse(c, &schemas.TranslationDTO{Text: text}, http.StatusOK)
}
