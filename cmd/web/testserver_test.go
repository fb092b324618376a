package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/descope/virtualwebauthn"
	"github.com/detectivesigma/sigma/internal/errors"
	"github.com/detectivesigma/sigma/internal/logging"
	"github.com/justinas/nosurf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func waitForReady(ctx context.Context, endpoint string) error {
	timeout := 1 * time.Second
	client := http.Client{}
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = http.NewRequestWithContext(
			ctx,
			http.MethodGet,
			endpoint,
			nil,
		); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = client.Do(req); err == nil {
			if resp.StatusCode == http.StatusOK {
				if err = resp.Body.Close(); err != nil {
					return errors.Wrap(err, "close response body")
				}
				return nil
			}
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(250 * time.Millisecond)
		}
	}
}

func testLookupEnv(key string) (string, bool) {
	switch key {
	case "SIGMA_ADDR":
		return "localhost:0", true
	case "SIGMA_SQLITE_URL":
		return ":memory:", true
	case "SIGMA_PPROF_PORT":
		// Port 0 keeps parallel test servers from fighting over the default.
		return ":0", true
	default:
		return "", false
	}
}

type testServer struct {
	url           string
	client        http.Client
	rp            virtualwebauthn.RelyingParty
	authenticator virtualwebauthn.Authenticator
	csrfToken     string
}

// startTestServer starts the test server, waits for it to be ready, and
// returns a handle for driving it over HTTP.
func startTestServer(t *testing.T, w io.Writer, lookupEnv func(string) (string, bool)) *testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	// We need to grab the dynamically allocated port from the log output.
	addrCh := make(chan string, 1)
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == "Addr" {
				addrCh <- a.Value.String()
			}
			return a
		},
	})))

	// Start the server and wait for it to be ready.
	go func() {
		if err := run(ctx, logger, lookupEnv); err != nil {
			cancel()
			assert.NoError(t, err)
		}
	}()
	select {
	case <-ctx.Done():
		t.Fatal("server failed to start")
		return nil
	case addr := <-addrCh:
		serverURL := fmt.Sprintf("http://%s", addr)
		if err := waitForReady(ctx, fmt.Sprintf("%s/api/healthy", serverURL)); err != nil {
			require.NoError(t, err)
		}
		jar, err := newUnsafeCookieJar()
		require.NoError(t, err)
		return &testServer{
			url:    serverURL,
			client: http.Client{Jar: jar},
			rp: virtualwebauthn.RelyingParty{
				Name:   "Detective Sigma",
				ID:     "localhost",
				Origin: "http://localhost:0",
			},
			authenticator: virtualwebauthn.NewAuthenticator(),
			csrfToken:     "",
		}
	}
}

// Get fetches a URL and returns the response.
func (s *testServer) Get(t *testing.T, urlPath string) *http.Response {
	t.Helper()
	resp, err := s.client.Get(s.url + urlPath)
	require.NoError(t, err)
	return resp
}

// GetJSON fetches a URL, requires a 200, and decodes the JSON body into dst.
func (s *testServer) GetJSON(t *testing.T, urlPath string, dst any) {
	t.Helper()
	resp := s.Get(t, urlPath)
	defer func() {
		require.NoError(t, resp.Body.Close())
	}()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

// DoJSON sends a JSON request with the session's CSRF token and returns the
// response.
func (s *testServer) DoJSON(t *testing.T, method, urlPath string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, s.url+urlPath, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(nosurf.HeaderName, s.CSRFToken(t))
	resp, err := s.client.Do(req)
	require.NoError(t, err)
	return resp
}

// CSRFToken fetches the session's CSRF token once and reuses it afterwards.
func (s *testServer) CSRFToken(t *testing.T) string {
	t.Helper()
	if s.csrfToken != "" {
		return s.csrfToken
	}
	var payload struct {
		CSRFToken string `json:"csrfToken"`
	}
	s.GetJSON(t, "/api/csrf", &payload)
	require.NotEmpty(t, payload.CSRFToken)
	s.csrfToken = payload.CSRFToken
	return s.csrfToken
}

// decodeBody decodes a JSON response body into dst and closes the body.
func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer func() {
		require.NoError(t, resp.Body.Close())
	}()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

// Register registers a new passkey with the server, leaving the client logged
// in as a fresh user.
func (s *testServer) Register(t *testing.T) {
	t.Helper()

	// Start WebAuthn registration.
	resp, err := s.client.Post(s.url+"/api/registration/start", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bodyBytes []byte
	bodyBytes, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	attOpts, err := virtualwebauthn.ParseAttestationOptions(string(bodyBytes))
	require.NoError(t, err)
	credential := virtualwebauthn.NewCredential(virtualwebauthn.KeyTypeEC2)

	// Finalise WebAuthn registration.
	attestationResponse := virtualwebauthn.CreateAttestationResponse(s.rp, s.authenticator, credential, *attOpts)
	resp, err = s.client.Post(s.url+"/api/registration/finish", "application/json",
		strings.NewReader(attestationResponse))
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// At this point, our credential is ready for logging in.
	s.authenticator.AddCredential(credential)
	// This option is needed for making Passkey login work.
	s.authenticator.Options.UserHandle = []byte(attOpts.UserID)
}

// Login logs in with the previously registered passkey.
func (s *testServer) Login(t *testing.T) {
	t.Helper()

	resp, err := s.client.Post(s.url+"/api/login/start", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bodyBytes []byte
	bodyBytes, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	asOpts, err := virtualwebauthn.ParseAssertionOptions(string(bodyBytes))
	require.NoError(t, err)

	credential := s.authenticator.Credentials[0]
	assertionResponse := virtualwebauthn.CreateAssertionResponse(s.rp, s.authenticator, credential, *asOpts)
	resp, err = s.client.Post(s.url+"/api/login/finish", "application/json",
		strings.NewReader(assertionResponse))
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
