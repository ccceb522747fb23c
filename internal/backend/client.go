// Package backend 推荐后端客户端
package backend

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/user/cinerec/internal/model"
	"github.com/user/cinerec/internal/utils"
)

// WatchedMovie 用户看过的电影
type WatchedMovie struct {
	MovieID int64   `json:"movie_id"`
	Title   string  `json:"title"`
	Rating  float64 `json:"rating"`
}

// Recommendation 推荐结果
type Recommendation struct {
	MovieID        int64   `json:"movie_id"`
	Title          string  `json:"title"`
	PredictedScore float64 `json:"predicted_score"`
}

// MovieLink 电影与 TMDB 的关联，TMDBID 为 0 表示无关联
type MovieLink struct {
	TMDBID int64 `json:"tmdbId"`
}

type userMoviesResponse struct {
	Watched []WatchedMovie `json:"watched"`
}

type recommendationsRequest struct {
	UserID int64 `json:"user_id"`
	K      int   `json:"k"`
}

type recommendationsResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
}

// Client 推荐后端客户端
type Client struct {
	baseURL string
	http    *utils.HTTPClient
}

// New 创建后端客户端
func New(baseURL string, httpClient *utils.HTTPClient) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("backend base url required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if httpClient == nil {
		httpClient = utils.NewHTTPClient(0)
	}
	return &Client{baseURL: baseURL, http: httpClient}, nil
}

// MovieLink 查询电影的 TMDB 关联
// GET /api/movie-links/{movieID}
func (c *Client) MovieLink(ctx context.Context, movieID int64) (MovieLink, error) {
	var link MovieLink
	endpoint := c.baseURL + "/api/movie-links/" + strconv.FormatInt(movieID, 10)
	if err := c.http.GetJSON(ctx, endpoint, nil, &link); err != nil {
		return MovieLink{}, fmt.Errorf("movie link %d: %w", movieID, err)
	}
	return link, nil
}

// WatchedMovies 获取用户观影记录（缺少 watched 字段时返回空列表）
// GET /api/user-movies?user_id={id}
func (c *Client) WatchedMovies(ctx context.Context, userID model.Identifier) ([]WatchedMovie, error) {
	params := url.Values{}
	params.Set("user_id", userID.String())

	var resp userMoviesResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/api/user-movies?"+params.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("user movies for %s: %w", userID, err)
	}
	if resp.Watched == nil {
		return []WatchedMovie{}, nil
	}
	return resp.Watched, nil
}

// Recommendations 获取推荐列表，保持后端返回顺序
// POST /api/recommendations {user_id, k}
func (c *Client) Recommendations(ctx context.Context, userID model.Identifier, k int) ([]Recommendation, error) {
	body := recommendationsRequest{UserID: int64(userID), K: k}

	var resp recommendationsResponse
	if err := c.http.PostJSON(ctx, c.baseURL+"/api/recommendations", body, &resp); err != nil {
		return nil, fmt.Errorf("recommendations for %s: %w", userID, err)
	}
	if resp.Recommendations == nil {
		return []Recommendation{}, nil
	}
	return resp.Recommendations, nil
}
