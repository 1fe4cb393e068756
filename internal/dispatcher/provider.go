package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jmehdipour/wa-assistant/internal/model"
)

type Provider interface {
	Name() string
	Ready() bool
	Acquire() bool
	Send(ctx context.Context, env model.Envelope) error
}

// HTTPProvider posts envelopes to a WhatsApp gateway. Plain messages go out as JSON,
// messages with an attachment as multipart/form-data with the file under "file".
type HTTPProvider struct {
	name     string
	baseURL  string
	sendPath string
	token    string
	client   *http.Client
	br       *MicroBreaker
}

func NewHTTPProvider(
	name, baseURL, sendPath, token string,
	timeoutMs, failThreshold, openForMs int,
) *HTTPProvider {
	if timeoutMs <= 0 {
		timeoutMs = 20000
	}

	if failThreshold <= 0 {
		failThreshold = 3
	}

	if openForMs <= 0 {
		openForMs = 15000
	}

	if sendPath == "" {
		sendPath = "/messages"
	}

	return &HTTPProvider{
		name:     name,
		baseURL:  baseURL,
		sendPath: sendPath,
		token:    token,
		client:   &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
		br:       NewMicroBreaker(failThreshold, time.Duration(openForMs)*time.Millisecond),
	}
}

func (p *HTTPProvider) Name() string  { return p.name }
func (p *HTTPProvider) Ready() bool   { return p.br.Ready() }
func (p *HTTPProvider) Acquire() bool { return p.br.TryAcquire() }

func (p *HTTPProvider) Send(ctx context.Context, env model.Envelope) error {
	if err := p.post(ctx, env); err != nil {
		p.br.OnFailure()
		return err
	}

	p.br.OnSuccess()

	return nil
}

func (p *HTTPProvider) post(ctx context.Context, env model.Envelope) error {
	body, contentType, err := encodeEnvelope(env)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+p.sendPath, body)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", contentType)
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	res, err := p.client.Do(req)
	if err != nil {
		return err
	}

	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("provider=%s status=%d body=%q", p.name, res.StatusCode, bytes.TrimSpace(msg))
	}

	return nil
}

func encodeEnvelope(env model.Envelope) (io.Reader, string, error) {
	if env.Attachment == "" {
		b, err := json.Marshal(env)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(b), "application/json", nil
	}

	f, err := os.Open(env.Attachment)
	if err != nil {
		return nil, "", fmt.Errorf("open attachment: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range map[string]string{"id": env.ID, "phone": env.Phone, "text": env.Text} {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	part, err := w.CreateFormFile("file", filepath.Base(env.Attachment))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("read attachment: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}
