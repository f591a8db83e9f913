package audit

import (
	"context"
	"io"
	"net/http"
	"time"
)

// probeResult is one external check outcome. Status 0 means the request
// never produced an HTTP response.
type probeResult struct {
	status  int
	elapsed time.Duration
}

// probe checks one external URL. HEAD goes first; servers that reject it
// with 403 or 405, and requests that fail outright, retry as GET. The
// elapsed time covers only the attempt whose result is returned.
func probe(ctx context.Context, client *http.Client, userAgent, target string) probeResult {
	start := time.Now()
	resp, err := send(ctx, client, http.MethodHead, userAgent, target)
	if err == nil {
		drain(resp)
		if resp.StatusCode != http.StatusForbidden && resp.StatusCode != http.StatusMethodNotAllowed {
			return probeResult{status: resp.StatusCode, elapsed: time.Since(start)}
		}
	}

	start = time.Now()
	resp, err = send(ctx, client, http.MethodGet, userAgent, target)
	if err != nil {
		return probeResult{elapsed: time.Since(start)}
	}
	drain(resp)
	return probeResult{status: resp.StatusCode, elapsed: time.Since(start)}
}

func send(ctx context.Context, client *http.Client, method, userAgent, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	return client.Do(req)
}

// drain empties and closes the body so the connection can be reused.
func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
	resp.Body.Close()
}

// isOK covers 2xx and 3xx responses.
func isOK(status int) bool {
	return status >= 200 && status < 400
}

// isBroken covers hard failures: no response, not found, gone.
func isBroken(status int) bool {
	return status == 0 || status == 404 || status == 410
}
