package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Domenick1991/airtech/internal/kafka"
)

type PostmarkSender struct {
	url    string
	token  string
	from   string
	client *http.Client
}

func NewPostmarkSender(url, token, from string, timeout time.Duration) *PostmarkSender {
	return &PostmarkSender{url: url, token: token, from: from, client: &http.Client{Timeout: timeout}}
}

type postmarkRequest struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
}

type postmarkResponse struct {
	ErrorCode int    `json:"ErrorCode"`
	Message   string `json:"Message"`
}

func (s *PostmarkSender) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(postmarkRequest{From: s.from, To: msg.To, Subject: msg.Subject, HtmlBody: msg.HTMLBody})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Postmark-Server-Token", s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("postmark request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var result postmarkResponse
	_ = json.Unmarshal(body, &result)

	if resp.StatusCode == http.StatusOK && result.ErrorCode == 0 {
		return nil
	}
	err = fmt.Errorf("postmark: status %d, code %d: %s", resp.StatusCode, result.ErrorCode, result.Message)
	if rejected(resp.StatusCode) {
		return kafka.Permanent(err)
	}
	return err
}

// rejected reports statuses for which resending the same message cannot succeed.
func rejected(status int) bool {
	if status == http.StatusRequestTimeout || status == http.StatusTooManyRequests {
		return false
	}
	return status < 500
}
