package audit

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestProbeHeadSuccess(t *testing.T) {
	t.Parallel()

	client, tr := newProbeClient(func(req *http.Request) (*http.Response, error) {
		return stubResponse(req, http.StatusOK), nil
	})

	res := probe(context.Background(), client, "linkaudit/1.0", "https://example.com/ok")
	if res.status != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", res.status, http.StatusOK)
	}
	if got := tr.methods(); len(got) != 1 || got[0] != http.MethodHead {
		t.Fatalf("unexpected requests: %v", got)
	}
}

func TestProbeFallsBackToGetOnMethodNotAllowed(t *testing.T) {
	t.Parallel()

	client, tr := newProbeClient(func(req *http.Request) (*http.Response, error) {
		if req.Method == http.MethodHead {
			return stubResponse(req, http.StatusMethodNotAllowed), nil
		}
		return stubResponse(req, http.StatusOK), nil
	})

	res := probe(context.Background(), client, "linkaudit/1.0", "https://example.com/headless")
	if res.status != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", res.status, http.StatusOK)
	}
	if got := tr.methods(); len(got) != 2 || got[0] != http.MethodHead || got[1] != http.MethodGet {
		t.Fatalf("unexpected requests: %v", got)
	}
}

func TestProbeFallsBackToGetOnForbidden(t *testing.T) {
	t.Parallel()

	client, tr := newProbeClient(func(req *http.Request) (*http.Response, error) {
		if req.Method == http.MethodHead {
			return stubResponse(req, http.StatusForbidden), nil
		}
		return stubResponse(req, http.StatusNotFound), nil
	})

	res := probe(context.Background(), client, "linkaudit/1.0", "https://example.com/gone")
	if res.status != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d want %d", res.status, http.StatusNotFound)
	}
	if got := tr.methods(); len(got) != 2 {
		t.Fatalf("unexpected requests: %v", got)
	}
}

func TestProbeKeepsOtherHeadStatuses(t *testing.T) {
	t.Parallel()

	client, tr := newProbeClient(func(req *http.Request) (*http.Response, error) {
		return stubResponse(req, http.StatusInternalServerError), nil
	})

	res := probe(context.Background(), client, "linkaudit/1.0", "https://example.com/down")
	if res.status != http.StatusInternalServerError {
		t.Fatalf("unexpected status: got %d want %d", res.status, http.StatusInternalServerError)
	}
	if got := tr.methods(); len(got) != 1 || got[0] != http.MethodHead {
		t.Fatalf("expected a single HEAD request, got %v", got)
	}
}

func TestProbeFallsBackToGetOnTransportError(t *testing.T) {
	t.Parallel()

	client, tr := newProbeClient(func(req *http.Request) (*http.Response, error) {
		if req.Method == http.MethodHead {
			return nil, errors.New("connection reset")
		}
		return stubResponse(req, http.StatusOK), nil
	})

	res := probe(context.Background(), client, "linkaudit/1.0", "https://example.com/flaky")
	if res.status != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", res.status, http.StatusOK)
	}
	if got := tr.methods(); len(got) != 2 || got[1] != http.MethodGet {
		t.Fatalf("unexpected requests: %v", got)
	}
}

func TestProbeReturnsZeroWhenBothAttemptsFail(t *testing.T) {
	t.Parallel()

	client, _ := newProbeClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("no route to host")
	})

	res := probe(context.Background(), client, "linkaudit/1.0", "https://broken.test/")
	if res.status != 0 {
		t.Fatalf("unexpected status: got %d want 0", res.status)
	}
	if res.elapsed < 0 {
		t.Fatalf("negative elapsed time: %v", res.elapsed)
	}
}

func TestProbeSetsUserAgentOnEveryAttempt(t *testing.T) {
	t.Parallel()

	var agents []string
	client, _ := newProbeClient(func(req *http.Request) (*http.Response, error) {
		agents = append(agents, req.Header.Get("User-Agent"))
		if req.Method == http.MethodHead {
			return stubResponse(req, http.StatusMethodNotAllowed), nil
		}
		return stubResponse(req, http.StatusOK), nil
	})

	probe(context.Background(), client, "linkaudit/1.0 (+https://metergeist.com)", "https://example.com/")
	if len(agents) != 2 {
		t.Fatalf("expected two attempts, got %d", len(agents))
	}
	for i, ua := range agents {
		if want := "linkaudit/1.0 (+https://metergeist.com)"; ua != want {
			t.Fatalf("attempt %d user agent: got %q want %q", i, ua, want)
		}
	}
}

func TestStatusBuckets(t *testing.T) {
	t.Parallel()

	okStatuses := []int{200, 204, 301, 302, 399}
	for _, s := range okStatuses {
		if !isOK(s) {
			t.Fatalf("expected %d to be ok", s)
		}
	}
	notOK := []int{0, 404, 410, 500, 503, 403}
	for _, s := range notOK {
		if isOK(s) {
			t.Fatalf("expected %d to not be ok", s)
		}
	}
	broken := []int{0, 404, 410}
	for _, s := range broken {
		if !isBroken(s) {
			t.Fatalf("expected %d to be broken", s)
		}
	}
	notBroken := []int{200, 301, 403, 500, 503}
	for _, s := range notBroken {
		if isBroken(s) {
			t.Fatalf("expected %d to not be broken", s)
		}
	}
}

type recordedCall struct {
	method string
	url    string
}

type scriptedTransport struct {
	calls  []recordedCall
	handle func(req *http.Request) (*http.Response, error)
}

func (st *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	st.calls = append(st.calls, recordedCall{method: req.Method, url: req.URL.String()})
	return st.handle(req)
}

func (st *scriptedTransport) methods() []string {
	out := make([]string, len(st.calls))
	for i, c := range st.calls {
		out[i] = c.method
	}
	return out
}

func newProbeClient(handle func(req *http.Request) (*http.Response, error)) (*http.Client, *scriptedTransport) {
	tr := &scriptedTransport{handle: handle}
	return &http.Client{Transport: tr, Timeout: 5 * time.Second}, tr
}

func stubResponse(req *http.Request, status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader("")),
		Request:    req,
	}
}
