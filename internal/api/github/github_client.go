package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/doyensec/safeurl"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/devconnector-api/config"
	"github.com/FACorreiaa/devconnector-api/internal/api"
)

const (
	userAgent       = "devconnector-api"
	maxResponseSize = 1 << 20
)

// GitHub logins: alphanumerics and single inner hyphens, at most 39 chars.
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9]|-[A-Za-z0-9]){0,38}$`)

var errNoProfile = api.WithMessage(api.ErrUpstream, "No Github profile found")

var _ Client = (*HTTPClient)(nil)

// Client lists a GitHub user's most recent public repositories.
type Client interface {
	Repos(ctx context.Context, username string) (json.RawMessage, error)
}

type HTTPClient struct {
	logger  *slog.Logger
	cfg     config.GithubConfig
	http    *http.Client
	baseURL string
}

// NewClient builds a client for cfg.BaseURL. With SafeClient set, requests
// go through safeurl so redirects or DNS answers pointing at private
// addresses are refused.
func NewClient(cfg config.GithubConfig, logger *slog.Logger) *HTTPClient {
	var hc *http.Client
	if cfg.SafeClient {
		sc := safeurl.GetConfigBuilder().
			SetTimeout(cfg.Timeout).
			SetAllowedSchemes("https").
			SetAllowedPorts(443).
			Build()
		hc = safeurl.Client(sc).Client
	} else {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPClient{
		logger:  logger,
		cfg:     cfg,
		http:    hc,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// WithHTTPClient replaces the transport, mainly for tests.
func (c *HTTPClient) WithHTTPClient(hc *http.Client) *HTTPClient {
	c.http = hc
	return c
}

func (c *HTTPClient) reposURL(username string) string {
	q := url.Values{}
	q.Set("per_page", "5")
	q.Set("sort", "created:asc")
	if c.cfg.ClientID != "" {
		q.Set("client_id", c.cfg.ClientID)
		q.Set("client_secret", c.cfg.ClientSecret)
	}
	return fmt.Sprintf("%s/users/%s/repos?%s", c.baseURL, url.PathEscape(username), q.Encode())
}

func (c *HTTPClient) Repos(ctx context.Context, username string) (json.RawMessage, error) {
	ctx, span := otel.Tracer("GithubClient").Start(ctx, "Repos")
	defer span.End()
	span.SetAttributes(attribute.String("github.username", username))
	l := c.logger.With(slog.String("method", "Repos"), slog.String("username", username))

	if !usernamePattern.MatchString(username) {
		span.SetStatus(codes.Error, "invalid username")
		return nil, errNoProfile
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.reposURL(username), nil)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to build github request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		l.WarnContext(ctx, "GitHub request failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", errNoProfile, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: reading body: %w", errNoProfile, err)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		span.SetStatus(codes.Error, "upstream rejected")
		l.InfoContext(ctx, "GitHub returned non-200", slog.Int("status", resp.StatusCode))
		return nil, errNoProfile
	}
	if !json.Valid(body) {
		span.SetStatus(codes.Error, "invalid upstream body")
		return nil, fmt.Errorf("%w: upstream body is not JSON", errNoProfile)
	}

	span.SetStatus(codes.Ok, "repos fetched")
	return json.RawMessage(body), nil
}
