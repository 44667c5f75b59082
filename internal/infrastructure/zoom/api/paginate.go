// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain"
)

// pageInfo carries both continuation styles Zoom uses on list endpoints.
type pageInfo struct {
	NextPageToken string `json:"next_page_token"`
	PageNumber    int    `json:"page_number"`
	PageCount     int    `json:"page_count"`
}

// collect fetches every page of a list endpoint and concatenates the array
// found under field. Cursor pagination takes precedence over page numbers.
func collect[T any](ctx context.Context, c *Client, path string, params url.Values, field string) ([]T, error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = append([]string(nil), v...)
	}
	query.Set("page_size", strconv.Itoa(c.config.PageSize))

	var all []T
	for {
		var page map[string]json.RawMessage
		if err := c.doRequest(ctx, http.MethodGet, path, query, nil, &page); err != nil {
			return nil, err
		}
		if page == nil {
			return all, nil
		}

		if raw, ok := page[field]; ok {
			var items []T
			if err := json.Unmarshal(raw, &items); err != nil {
				return nil, domain.NewInternalError("failed to decode "+field+" page", err)
			}
			all = append(all, items...)
		}

		info := readPageInfo(page)
		switch {
		case info.NextPageToken != "":
			query.Set("next_page_token", info.NextPageToken)
		case info.PageNumber > 0 && info.PageNumber < info.PageCount:
			query.Set("page_number", strconv.Itoa(info.PageNumber+1))
		default:
			return all, nil
		}
	}
}

func readPageInfo(page map[string]json.RawMessage) pageInfo {
	var info pageInfo
	if raw, ok := page["next_page_token"]; ok {
		_ = json.Unmarshal(raw, &info.NextPageToken)
	}
	if raw, ok := page["page_number"]; ok {
		_ = json.Unmarshal(raw, &info.PageNumber)
	}
	if raw, ok := page["page_count"]; ok {
		_ = json.Unmarshal(raw, &info.PageCount)
	}
	return info
}
