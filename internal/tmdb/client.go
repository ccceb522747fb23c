// Package tmdb TMDB 电影详情客户端
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/user/cinerec/internal/utils"
)

// ErrNoToken 未配置 TMDB 访问令牌
var ErrNoToken = errors.New("tmdb access token required")

// MovieDetails TMDB 电影详情（只取用到的字段）
type MovieDetails struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	PosterPath string `json:"poster_path"`
}

// DetailsFetcher 获取电影详情
type DetailsFetcher interface {
	MovieDetails(ctx context.Context, tmdbID int64) (*MovieDetails, error)
}

// Client TMDB 客户端，使用 Bearer 令牌认证
type Client struct {
	token   string
	baseURL string
	http    *utils.HTTPClient
}

var _ DetailsFetcher = (*Client)(nil)

// New 创建 TMDB 客户端
func New(token, baseURL string, httpClient *utils.HTTPClient) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNoToken
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	if httpClient == nil {
		httpClient = utils.NewHTTPClient(0)
	}
	return &Client{token: token, baseURL: baseURL, http: httpClient}, nil
}

// MovieDetails GET /movie/{tmdbID}
func (c *Client) MovieDetails(ctx context.Context, tmdbID int64) (*MovieDetails, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.token)

	var details MovieDetails
	endpoint := c.baseURL + "/movie/" + strconv.FormatInt(tmdbID, 10)
	if err := c.http.GetJSON(ctx, endpoint, header, &details); err != nil {
		return nil, fmt.Errorf("tmdb movie %d: %w", tmdbID, err)
	}
	return &details, nil
}

// PosterURL 拼接海报地址：{imageBase}/{size}{posterPath}
func PosterURL(imageBase, size, posterPath string) string {
	if posterPath == "" {
		return ""
	}
	if !strings.HasPrefix(posterPath, "/") {
		posterPath = "/" + posterPath
	}
	return strings.TrimRight(imageBase, "/") + "/" + strings.Trim(size, "/") + posterPath
}
