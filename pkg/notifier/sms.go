package notifier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"socialgram/pkg/utils"
)

// SMSNotifier sends verification codes through an HTTP SMS gateway that
// accepts form-encoded requests.
type SMSNotifier struct {
	baseURL  string
	userID   string
	password string
	senderID string
	client   *http.Client
}

func NewSMSNotifier(config utils.SMSConfig) *SMSNotifier {
	return &SMSNotifier{
		baseURL:  config.BaseURL,
		userID:   config.UserID,
		password: config.Password,
		senderID: config.SenderID,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *SMSNotifier) Send(ctx context.Context, destination string, channel Channel, code string) error {
	form := url.Values{}
	form.Set("userid", s.userID)
	form.Set("password", s.password)
	form.Set("senderid", s.senderID)
	form.Set("msgType", "text")
	form.Set("msg", fmt.Sprintf("Your verification code is %s", code))
	form.Set("mobile", destination)
	form.Set("output", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send sms request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
