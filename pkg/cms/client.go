// Package cms is a small client for the Strapi REST API.
package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/tidwall/gjson"
	"github.com/yi-nology/lab_portal/pkg/config"
	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// ErrNotFound is matched by 404 responses and empty single-record results.
var ErrNotFound = errors.New("cms: not found")

// APIError is a non-2xx response from the CMS.
type APIError struct {
	Status  int
	Name    string
	Message string
}

func (e *APIError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("cms: %d %s: %s", e.Status, e.Name, e.Message)
	}
	return fmt.Sprintf("cms: %d: %s", e.Status, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == consts.StatusNotFound
}

// Pagination mirrors meta.pagination.
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

// Response is a collection result.
type Response struct {
	Data       []Document
	Pagination *Pagination
}

// Client talks to one Strapi instance.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	hc      *client.Client
	log     *zap.Logger
}

// New builds a client for cfg.URL (e.g. http://localhost:1337/api).
func New(cfg config.CMSConfig, log *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("cms url is required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("parse cms url: %w", err)
	}
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc, err := client.NewClient(
		client.WithDialer(standard.NewDialer()),
		client.WithDialTimeout(timeout),
		client.WithClientReadTimeout(timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		token:   cfg.APIToken,
		timeout: timeout,
		hc:      hc,
		log:     log.Named("cms"),
	}, nil
}

// Origin returns the CMS origin without the /api suffix; media URLs are relative to it.
func (c *Client) Origin() string {
	return strings.TrimSuffix(c.baseURL, "/api")
}

// Find lists a collection.
func (c *Client) Find(ctx context.Context, collection string, q Query) (*Response, error) {
	body, err := c.do(ctx, consts.MethodGet, "/"+collection, q, nil)
	if err != nil {
		return nil, err
	}
	parsed := gjson.ParseBytes(body)
	resp := &Response{}
	for _, item := range parsed.Get("data").Array() {
		resp.Data = append(resp.Data, NewDocument(item))
	}
	if p := parsed.Get("meta.pagination"); p.IsObject() {
		var pg Pagination
		if err := json.Unmarshal([]byte(p.Raw), &pg); err == nil {
			resp.Pagination = &pg
		}
	}
	return resp, nil
}

// FindOne fetches one record of a collection by document id.
func (c *Client) FindOne(ctx context.Context, collection, documentID string, q Query) (Document, error) {
	body, err := c.do(ctx, consts.MethodGet, "/"+collection+"/"+url.PathEscape(documentID), q, nil)
	if err != nil {
		return Document{}, err
	}
	return single(body)
}

// FindFirst returns the first record matching q, ErrNotFound when none does.
func (c *Client) FindFirst(ctx context.Context, collection string, q Query) (Document, error) {
	resp, err := c.Find(ctx, collection, q)
	if err != nil {
		return Document{}, err
	}
	if len(resp.Data) == 0 {
		return Document{}, ErrNotFound
	}
	return resp.Data[0], nil
}

// FindSingle fetches a single type.
func (c *Client) FindSingle(ctx context.Context, singleType string, q Query) (Document, error) {
	body, err := c.do(ctx, consts.MethodGet, "/"+singleType, q, nil)
	if err != nil {
		return Document{}, err
	}
	return single(body)
}

// Create posts {data: payload} to a collection.
func (c *Client) Create(ctx context.Context, collection string, payload any) (Document, error) {
	encoded, err := json.Marshal(map[string]any{"data": payload})
	if err != nil {
		return Document{}, fmt.Errorf("encode payload: %w", err)
	}
	body, err := c.do(ctx, consts.MethodPost, "/"+collection, Query{}, encoded)
	if err != nil {
		return Document{}, err
	}
	return single(body)
}

func (c *Client) do(ctx context.Context, method, path string, q Query, payload []byte) ([]byte, error) {
	uri := c.baseURL + path
	if qs := q.Encode(); qs != "" {
		uri += "?" + qs
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if payload != nil {
		req.Header.SetContentTypeBytes([]byte("application/json"))
		req.SetBody(payload)
	}

	start := time.Now()
	if err := c.hc.DoTimeout(ctx, req, resp, c.timeout); err != nil {
		c.log.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("cms %s %s: %w", method, path, err)
	}
	status := resp.StatusCode()
	body := append([]byte(nil), resp.Body()...)
	c.log.Debug("request finished",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("took", time.Since(start)))

	if status < 200 || status >= 300 {
		return nil, apiError(status, body)
	}
	return body, nil
}

func apiError(status int, body []byte) *APIError {
	parsed := gjson.ParseBytes(body)
	e := &APIError{
		Status:  status,
		Name:    parsed.Get("error.name").String(),
		Message: parsed.Get("error.message").String(),
	}
	if e.Message == "" {
		e.Message = consts.StatusMessage(status)
	}
	return e
}

func single(body []byte) (Document, error) {
	data := gjson.GetBytes(body, "data")
	if !data.IsObject() {
		return Document{}, ErrNotFound
	}
	return NewDocument(data), nil
}
