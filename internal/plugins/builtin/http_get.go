package builtin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// httpClient bounds every fetch; plugin workers must not hang forever
var httpClient = &http.Client{Timeout: 30 * time.Second}

// HTTPGet fetches a URL and returns status and body as named outputs
type HTTPGet struct{}

// Name returns the plugin registration name
func (p *HTTPGet) Name() string { return "http-get" }

// Description returns the catalog summary
func (p *HTTPGet) Description() string { return "Fetches a URL and returns status and body outputs" }

// Docs returns the plugin documentation page
func (p *HTTPGet) Docs() string {
	return `http-get - performs an HTTP GET against the url param.

Params:
  url   (required) the URL to fetch

Output:
  status   the numeric response status code
  body     the response body

Each output is cached in its own stdout file; reference them with
` + "`${result:<job_id>:status}` and `${result:<job_id>:body}`." + `
A 4xx/5xx status fails the job.`
}

// Run performs the GET; cancellation aborts the request
func (p *HTTPGet) Run(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	raw, ok := params["url"]
	if !ok {
		return nil, fmt.Errorf("http-get requires a url param")
	}
	url := fmt.Sprint(raw)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("http-get %s: %w", url, err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http-get %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("http-get %s: failed to read body: %w", url, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("http-get %s: status %d", url, resp.StatusCode)
	}

	return map[string]string{
		"status": strconv.Itoa(resp.StatusCode),
		"body":   string(body),
	}, nil
}
