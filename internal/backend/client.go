package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jobscraper-web/internal/domain"
)

// maxBody caps how much of a response is decoded.
const maxBody = 8 << 20

// Client fetches pre-scraped job listings from the scraper backend.
// Each call is single-shot: no retry and no caching.
type Client struct {
	host    string
	client  *http.Client
	limiter *HostLimiter
	log     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.client = c
	}
}

func WithLimiter(l *HostLimiter) Option {
	return func(cl *Client) {
		cl.limiter = l
	}
}

// WithTimeout bounds each request. Zero keeps the default of no timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.client = &http.Client{Transport: cl.client.Transport, Timeout: d}
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		cl.log = l
	}
}

func New(host string, options ...Option) (*Client, error) {
	host = strings.TrimRight(strings.TrimSpace(host), "/")

	u, err := url.Parse(host)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid backend host %q", host)
	}

	c := &Client{
		host:   host,
		client: &http.Client{},
		log:    slog.Default(),
	}

	for _, option := range options {
		option(c)
	}

	return c, nil
}

func (c *Client) Host() string { return c.host }

// URLFor returns the endpoint for role. The identifier is used verbatim.
func (c *Client) URLFor(role domain.Role) string {
	return c.host + "/api/" + string(role)
}

func (c *Client) FetchJobData(ctx context.Context, role domain.Role) (domain.JobData, error) {
	u := c.URLFor(role)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.JobData{}, fmt.Errorf("%w: build request: %w", ErrTransportOrParse, err)
	}
	req.Header.Set("Accept", "application/json")

	waited, err := c.limiter.Wait(req)
	if err != nil {
		return domain.JobData{}, fmt.Errorf("%w: wait for limiter: %w", ErrTransportOrParse, err)
	}
	if waited > 100*time.Millisecond {
		c.log.Debug("backend request throttled", "url", u, "waited_ms", waited.Milliseconds())
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.JobData{}, fmt.Errorf("%w: GET %s: %w", ErrTransportOrParse, u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		c.log.Debug("backend non-2xx", "url", u, "status", resp.StatusCode, "body", string(b))
		return domain.JobData{}, &RequestFailedError{StatusCode: resp.StatusCode, URL: u}
	}

	data, err := decodeJobData(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return domain.JobData{}, fmt.Errorf("%w: decode %s: %w", ErrTransportOrParse, u, err)
	}
	return data, nil
}

// object keeps raw members so keys are matched exactly; encoding/json alone
// would also accept "JOBS" or "company".
type object map[string]json.RawMessage

// member returns the value under key. A missing key and an explicit null are
// both errors.
func (o object) member(key, where string) (json.RawMessage, error) {
	raw, ok := o[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, fmt.Errorf("%smissing %q", where, key)
	}
	return raw, nil
}

func (o object) str(key, where string) (string, error) {
	raw, err := o.member(key, where)
	if err != nil {
		return "", err
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("%s%q: %w", where, key, err)
	}
	return v, nil
}

func (o object) list(key, where string) ([]object, error) {
	raw, err := o.member(key, where)
	if err != nil {
		return nil, err
	}
	var v []object
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%s%q: %w", where, key, err)
	}
	return v, nil
}

// decodeJobData accepts exactly one JSON document shaped like JobData. Keys
// are case-sensitive, every company needs "Company" and "jobs", and every job
// needs the four string fields. Unknown keys are ignored.
func decodeJobData(r io.Reader) (domain.JobData, error) {
	dec := json.NewDecoder(r)

	var root object
	if err := dec.Decode(&root); err != nil {
		return domain.JobData{}, err
	}
	// More() stops at a stray '}' or ']', so ask for the next token instead.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return domain.JobData{}, errors.New("trailing data after JSON document")
	}
	if root == nil {
		return domain.JobData{}, errors.New("body is not a JSON object")
	}

	companies, err := root.list("jobs", "")
	if err != nil {
		return domain.JobData{}, err
	}

	out := domain.JobData{Jobs: make([]domain.Company, 0, len(companies))}
	for i, c := range companies {
		where := fmt.Sprintf("jobs[%d]: ", i)
		if c == nil {
			return domain.JobData{}, fmt.Errorf("%snull company", where)
		}
		name, err := c.str("Company", where)
		if err != nil {
			return domain.JobData{}, err
		}
		postings, err := c.list("jobs", where)
		if err != nil {
			return domain.JobData{}, err
		}

		company := domain.Company{Name: name, Jobs: make([]domain.Job, 0, len(postings))}
		for k, p := range postings {
			jw := fmt.Sprintf("jobs[%d].jobs[%d]: ", i, k)
			if p == nil {
				return domain.JobData{}, fmt.Errorf("%snull job", jw)
			}
			var j domain.Job
			for _, f := range []struct {
				key string
				dst *string
			}{{"role", &j.Role}, {"type", &j.Type}, {"salary", &j.Salary}, {"link", &j.Link}} {
				if *f.dst, err = p.str(f.key, jw); err != nil {
					return domain.JobData{}, err
				}
			}
			company.Jobs = append(company.Jobs, j)
		}
		out.Jobs = append(out.Jobs, company)
	}
	return out, nil
}
