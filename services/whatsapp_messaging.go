package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/config"

	"github.com/sirupsen/logrus"
)

// WhatsAppMessagingService posts text messages to the school's WhatsApp
// gateway. The gateway endpoint and token come from config; when either is
// missing the service is disabled and sends are logged instead of erroring,
// so admission workflows never depend on the gateway being up.
type WhatsAppMessagingService struct {
	gatewayURL string
	authToken  string
	httpClient *http.Client
}

func NewWhatsAppMessagingService() *WhatsAppMessagingService {
	svc := &WhatsAppMessagingService{
		gatewayURL: config.AppConfig.WhatsAppGatewayURL,
		authToken:  config.AppConfig.WhatsAppAuthToken,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	if svc.gatewayURL == "" {
		logrus.Warn("[whatsapp] gateway not configured, messages will be logged only")
	}
	return svc
}

type whatsAppSendRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Send delivers a text message to the given phone number through the gateway.
func (s *WhatsAppMessagingService) Send(phone, message string) error {
	if s.gatewayURL == "" {
		logrus.WithField("phone", phone).Info("[whatsapp] gateway disabled, skipping send")
		return nil
	}

	payload, err := json.Marshal(whatsAppSendRequest{Phone: phone, Message: message})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.gatewayURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("whatsapp gateway returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
