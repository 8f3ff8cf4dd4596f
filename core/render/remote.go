package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gaurav-prasanna/reportgate/core"
)

const (
	defaultRemoteTimeout = 60 * time.Second
	defaultUserAgent     = "ReportGate/1.0"
	maxErrorBody         = 4 << 10
)

// RemoteRenderer delegates rendering of one kind to an external engine over HTTP.
//
// The engine receives POST {"report", "data", "outputFormat"} and answers
// 200 with the artifact bytes, or 400 with {"errors": [FieldError...]}.
type RemoteRenderer struct {
	endpoint string
	kind     core.OutputKind
	client   *http.Client
}

// NewRemoteRenderer creates a RemoteRenderer. A zero timeout uses the default.
func NewRemoteRenderer(endpoint string, kind core.OutputKind, timeout time.Duration) *RemoteRenderer {
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	return &RemoteRenderer{
		endpoint: endpoint,
		kind:     kind,
		client:   &http.Client{Timeout: timeout},
	}
}

// NewRemoteGateway creates a Gateway that sends every kind to endpoint.
func NewRemoteGateway(endpoint string, timeout time.Duration) *Gateway {
	return NewGateway(
		NewRemoteRenderer(endpoint, core.KindPDF, timeout),
		NewRemoteRenderer(endpoint, core.KindXLSX, timeout),
	)
}

// Kind returns the artifact kind.
func (r *RemoteRenderer) Kind() core.OutputKind {
	return r.kind
}

type remoteRequest struct {
	Report       core.ReportDefinition `json:"report"`
	Data         core.ReportData       `json:"data"`
	OutputFormat core.OutputKind       `json:"outputFormat"`
}

type remoteErrors struct {
	Errors []FieldError `json:"errors"`
}

// Render posts the definition and data to the engine and returns its response body.
func (r *RemoteRenderer) Render(ctx context.Context, def core.ReportDefinition, data core.ReportData) ([]byte, error) {
	body, err := json.Marshal(remoteRequest{Report: def, Data: data, OutputFormat: r.kind})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling render engine: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		out, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading response body: %w", err)
		}
		return out, nil
	case resp.StatusCode == http.StatusBadRequest:
		var re remoteErrors
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&re); err == nil && len(re.Errors) > 0 {
			return nil, &ValidationError{Errors: re.Errors}
		}
		return nil, errors.New("render engine rejected the report")
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("render engine returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
}
