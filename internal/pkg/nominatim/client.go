package nominatim

import (
	"HalalCalendar/internal/api/config"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
)

// Place 单条地点候选
type Place struct {
	PlaceID     int64  `json:"place_id"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Type        string `json:"type"`
}

// Client Nominatim 搜索客户端
type Client struct {
	http  *resty.Client
	limit int
}

// NewClient 根据配置创建客户端
func NewClient(cfg config.NominatimConfig) *Client {
	timeout := time.Duration(cfg.TimeoutMillis) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)

	return &Client{
		http:  httpClient,
		limit: cfg.Limit,
	}
}

// Search 按自由文本查询地点
func (s *Client) Search(ctx context.Context, query string) ([]Place, error) {
	var places []Place
	req := s.http.R().
		SetContext(ctx).
		SetQueryParam("format", "json").
		SetQueryParam("q", query).
		SetResult(&places)
	if s.limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(s.limit))
	}

	resp, err := req.Get("/search")
	if err != nil {
		return nil, fmt.Errorf("nominatim request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("nominatim returned status %d", resp.StatusCode())
	}
	return places, nil
}
