package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/application/prompt"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/repository"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/shared/types"
)

const maxErrorBody = 512

type completeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completeRequest struct {
	Model    string            `json:"model"`
	Messages []completeMessage `json:"messages"`
	Stream   bool              `json:"stream"`
}

type completeResponse struct {
	Choices []struct {
		Message completeMessage `json:"message"`
	} `json:"choices"`
}

// HTTPCompleter chama um endpoint REST de completion (formato messages/choices).
type HTTPCompleter struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewHTTPCompleter cria o completer para cfg.Endpoint.
func NewHTTPCompleter(cfg types.CompletionConfig) (repository.CompletionRepository, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("completion endpoint is required for the http provider")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &HTTPCompleter{
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// Complete envia o prompt como uma única mensagem de usuário.
func (c *HTTPCompleter) Complete(ctx context.Context, model string, text string) (string, error) {
	answer, err := c.complete(ctx, model, text)
	if err != nil {
		return "", &types.CompletionError{Model: model, Err: err}
	}
	return answer, nil
}

func (c *HTTPCompleter) complete(ctx context.Context, model string, text string) (string, error) {
	body, err := json.Marshal(completeRequest{
		Model:    model,
		Messages: []completeMessage{{Role: "user", Content: prompt.Clean(text)}},
	})
	if err != nil {
		return "", fmt.Errorf("error encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var decoded completeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("error decoding response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("response has no choices")
	}
	return decoded.Choices[0].Message.Content, nil
}
